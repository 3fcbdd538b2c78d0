// Package folders provisions the deterministic root/category/subject
// folder path, idempotently: existing folders are reused, missing ones
// created, and concurrent requests for the same path share one
// resolution so duplicates are never created.
package folders

import (
	"context"
	"strings"
	"sync"

	"github.com/awibisono/arsipdrive/internal/errors"
	"github.com/awibisono/arsipdrive/internal/logging"
	"github.com/awibisono/arsipdrive/internal/sdk"
	"github.com/awibisono/arsipdrive/internal/types"
	"github.com/awibisono/arsipdrive/internal/utils"
)

// Provisioner resolves three-level folder paths against the remote
// store. The remote API is not transactional, so get-or-create is made
// atomic from the caller's perspective by serializing per path.
type Provisioner struct {
	drive    sdk.DriveService
	rootName string
	logger   logging.Logger

	mu       sync.Mutex
	inflight map[string]*pathCall
	resolved map[string]*types.FolderStructure
}

type pathCall struct {
	done   chan struct{}
	result *types.FolderStructure
	err    error
}

// NewProvisioner creates a provisioner rooted at the fixed top-level
// folder name.
func NewProvisioner(drive sdk.DriveService, rootName string, logger logging.Logger) *Provisioner {
	if rootName == "" {
		rootName = utils.DefaultRootFolderName
	}
	if logger == nil {
		logger = logging.NewNoOpLogger()
	}
	return &Provisioner{
		drive:    drive,
		rootName: rootName,
		logger:   logger,
		inflight: make(map[string]*pathCall),
		resolved: make(map[string]*types.FolderStructure),
	}
}

// NormalizeName produces the stable folder name for a raw category or
// subject value: surrounding whitespace trimmed, internal runs of
// whitespace collapsed to single spaces.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// Resolve returns the folder identifiers for (category, subject),
// creating any level that does not exist yet. Concurrent calls for the
// same normalized pair share one resolution; sequential calls reuse
// the already-resolved structure.
func (p *Provisioner) Resolve(ctx context.Context, category, subject string) (*types.FolderStructure, error) {
	category = NormalizeName(category)
	subject = NormalizeName(subject)

	if category == "" || subject == "" {
		return nil, utils.NewAppError(utils.NewClientError(utils.CategoryUnknown,
			"category and subject must not be empty").
			WithRemediation(errors.RemediationFor(utils.CategoryUnknown)).
			Build())
	}

	key := category + "/" + subject

	p.mu.Lock()
	if structure, ok := p.resolved[key]; ok {
		p.mu.Unlock()
		return structure, nil
	}
	if call, ok := p.inflight[key]; ok {
		p.mu.Unlock()
		return p.await(ctx, call)
	}

	call := &pathCall{done: make(chan struct{})}
	p.inflight[key] = call
	p.mu.Unlock()

	structure, err := p.resolve(ctx, category, subject)

	p.mu.Lock()
	delete(p.inflight, key)
	if err == nil {
		p.resolved[key] = structure
	}
	p.mu.Unlock()

	call.result = structure
	call.err = err
	close(call.done)

	return structure, err
}

func (p *Provisioner) await(ctx context.Context, call *pathCall) (*types.FolderStructure, error) {
	select {
	case <-call.done:
		return call.result, call.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *Provisioner) resolve(ctx context.Context, category, subject string) (*types.FolderStructure, error) {
	root, err := p.getOrCreate(ctx, p.rootName, "")
	if err != nil {
		return nil, err
	}

	categoryFolder, err := p.getOrCreate(ctx, category, root.ID)
	if err != nil {
		return nil, err
	}

	subjectFolder, err := p.getOrCreate(ctx, subject, categoryFolder.ID)
	if err != nil {
		return nil, err
	}

	structure := &types.FolderStructure{
		RootID:     root.ID,
		CategoryID: categoryFolder.ID,
		SubjectID:  subjectFolder.ID,
	}

	p.logger.Debug("folder structure resolved",
		logging.F("category", category),
		logging.F("subject", subject),
		logging.F("subjectId", structure.SubjectID),
	)

	return structure, nil
}

// getOrCreate finds a folder by name under parentID, creating it when
// absent. Re-querying on a later call is fine; creating a duplicate is
// not, which is why Resolve serializes per path.
func (p *Provisioner) getOrCreate(ctx context.Context, name, parentID string) (*types.DriveFile, error) {
	folder, err := p.drive.FindFolder(ctx, name, parentID)
	if err != nil {
		return nil, errors.Classify(types.StageProvisioning, err)
	}
	if folder != nil {
		return folder, nil
	}

	folder, err = p.drive.CreateFolder(ctx, name, parentID)
	if err != nil {
		return nil, errors.Classify(types.StageProvisioning, err)
	}

	p.logger.Info("created folder",
		logging.F("name", name),
		logging.F("parentId", parentID),
	)

	return folder, nil
}
