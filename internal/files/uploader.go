// Package files performs single-shot multipart uploads into resolved
// folders.
package files

import (
	"context"
	"io"
	"mime"
	"path/filepath"

	"github.com/awibisono/arsipdrive/internal/errors"
	"github.com/awibisono/arsipdrive/internal/logging"
	"github.com/awibisono/arsipdrive/internal/sdk"
	"github.com/awibisono/arsipdrive/internal/types"
	"github.com/awibisono/arsipdrive/internal/utils"
	"github.com/google/uuid"
)

// SessionSource exposes the current auth session. The uploader only
// inspects validity; it never reads the token itself.
type SessionSource interface {
	Session() *types.AuthSession
}

// Uploader performs a single multipart create-and-upload per call. No
// chunking, no resume, and no retry here; retry policy belongs to the
// caller.
type Uploader struct {
	drive    sdk.DriveService
	sessions SessionSource
	logger   logging.Logger
}

// NewUploader creates a new uploader
func NewUploader(drive sdk.DriveService, sessions SessionSource, logger logging.Logger) *Uploader {
	if logger == nil {
		logger = logging.NewNoOpLogger()
	}
	return &Uploader{
		drive:    drive,
		sessions: sessions,
		logger:   logger,
	}
}

// Upload uploads content into parentFolderID under destinationName.
// A missing or stale session fails with an ACCESS_DENIED class error
// before any network activity; token refresh is out of scope here, the
// session's lifetime is the refresh boundary.
func (u *Uploader) Upload(ctx context.Context, content io.Reader, parentFolderID, destinationName, mimeType string) (*types.UploadResult, error) {
	if !u.sessions.Session().Valid() {
		return nil, utils.NewAppError(utils.NewClientError(utils.CategoryAccessDenied,
			"no valid session; sign in before uploading").
			WithRemediation(errors.RemediationFor(utils.CategoryAccessDenied)).
			Build())
	}

	if mimeType == "" {
		mimeType = inferMimeType(destinationName)
	}

	logger := u.logger.WithTraceID(uuid.New().String())
	logger.Info("upload starting",
		logging.F("name", destinationName),
		logging.F("parentId", parentFolderID),
		logging.F("mimeType", mimeType),
	)

	file, err := u.drive.CreateFile(ctx, sdk.FileMetadata{
		Name:     destinationName,
		ParentID: parentFolderID,
		MimeType: mimeType,
	}, content)
	if err != nil {
		classified := errors.Classify(types.StageUploading, err)
		logger.Error("upload failed",
			logging.F("name", destinationName),
			logging.F("category", classified.ClientError.Category),
		)
		return nil, classified
	}

	logger.Info("upload complete", logging.F("fileId", file.ID))

	return &types.UploadResult{
		FileID:         file.ID,
		FileName:       file.Name,
		WebViewLink:    file.WebViewLink,
		WebContentLink: file.WebContentLink,
	}, nil
}

func inferMimeType(name string) string {
	if mimeType := mime.TypeByExtension(filepath.Ext(name)); mimeType != "" {
		return mimeType
	}
	return utils.MimeTypeBinary
}
