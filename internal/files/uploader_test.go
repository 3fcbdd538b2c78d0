package files

import (
	"context"
	"strings"
	"testing"
	"time"

	apptest "github.com/awibisono/arsipdrive/internal/testing"
	"github.com/awibisono/arsipdrive/internal/testing/mocks"
	"github.com/awibisono/arsipdrive/internal/types"
	"github.com/awibisono/arsipdrive/internal/utils"
	"google.golang.org/api/googleapi"
)

type staticSessions struct {
	session *types.AuthSession
}

func (s *staticSessions) Session() *types.AuthSession { return s.session }

func validSessions() *staticSessions {
	return &staticSessions{session: apptest.TestSession("budi@example.com")}
}

func TestUpload(t *testing.T) {
	drive := mocks.NewMockDriveService()
	uploader := NewUploader(drive, validSessions(), nil)

	result, err := uploader.Upload(context.Background(), strings.NewReader("isi dokumen"), "sub-1", "pengajuan-cuti.pdf", "application/pdf")
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if result.FileID == "" {
		t.Error("missing file ID")
	}
	if result.FileName != "pengajuan-cuti.pdf" {
		t.Errorf("FileName = %q, want pengajuan-cuti.pdf", result.FileName)
	}
	if result.WebViewLink == "" {
		t.Error("missing web view link")
	}

	uploads := drive.Uploads()
	if len(uploads) != 1 {
		t.Fatalf("recorded %d uploads, want 1", len(uploads))
	}
	if uploads[0].Parents[0] != "sub-1" {
		t.Errorf("uploaded into %q, want sub-1", uploads[0].Parents[0])
	}
	if uploads[0].MimeType != "application/pdf" {
		t.Errorf("MimeType = %q, want application/pdf", uploads[0].MimeType)
	}
}

func TestUploadWithoutSession(t *testing.T) {
	tests := []struct {
		name    string
		session *types.AuthSession
	}{
		{name: "no session", session: nil},
		{name: "expired session", session: apptest.ExpiredSession("budi@example.com")},
		{name: "empty token", session: &types.AuthSession{
			Expiry: time.Now().Add(time.Hour),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			drive := mocks.NewMockDriveService()
			uploader := NewUploader(drive, &staticSessions{session: tt.session}, nil)

			_, err := uploader.Upload(context.Background(), strings.NewReader("x"), "sub-1", "f.txt", "")
			apptest.AssertCategory(t, err, utils.CategoryAccessDenied)
			// The precondition must fail before any network call.
			if drive.UploadCalls != 0 {
				t.Errorf("upload attempted %d times, want 0", drive.UploadCalls)
			}
		})
	}
}

func TestUploadMimeInference(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		explicit string
		want     string
	}{
		{name: "explicit wins", fileName: "doc.pdf", explicit: "application/x-custom", want: "application/x-custom"},
		{name: "inferred from extension", fileName: "doc.pdf", want: "application/pdf"},
		{name: "unknown extension falls back", fileName: "doc.xyzq", want: utils.MimeTypeBinary},
		{name: "no extension falls back", fileName: "README", want: utils.MimeTypeBinary},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			drive := mocks.NewMockDriveService()
			uploader := NewUploader(drive, validSessions(), nil)

			_, err := uploader.Upload(context.Background(), strings.NewReader("x"), "sub-1", tt.fileName, tt.explicit)
			if err != nil {
				t.Fatalf("Upload failed: %v", err)
			}
			uploads := drive.Uploads()
			if uploads[0].MimeType != tt.want {
				t.Errorf("MimeType = %q, want %q", uploads[0].MimeType, tt.want)
			}
		})
	}
}

func TestUploadRemoteFailure(t *testing.T) {
	drive := mocks.NewMockDriveService()
	drive.UploadErr = &googleapi.Error{
		Code:   403,
		Errors: []googleapi.ErrorItem{{Reason: "storageQuotaExceeded"}},
	}
	uploader := NewUploader(drive, validSessions(), nil)

	_, err := uploader.Upload(context.Background(), strings.NewReader("x"), "sub-1", "f.txt", "text/plain")
	apptest.AssertCategory(t, err, utils.CategoryQuotaExceeded)
	apptest.AssertEqual(t, drive.UploadCalls, 1, "upload attempts")
}
