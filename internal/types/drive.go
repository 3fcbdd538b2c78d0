package types

import "time"

// DriveFile represents a remote file or folder
type DriveFile struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	MimeType       string   `json:"mimeType"`
	Parents        []string `json:"parents,omitempty"`
	WebViewLink    string   `json:"webViewLink,omitempty"`
	WebContentLink string   `json:"webContentLink,omitempty"`
	Trashed        bool     `json:"trashed,omitempty"`
}

// FolderStructure is a resolved root/category/subject folder path.
// Built once per (category, subject) pair and never mutated.
type FolderStructure struct {
	RootID     string `json:"rootId"`
	CategoryID string `json:"categoryId"`
	SubjectID  string `json:"subjectId"`
}

// UploadResult describes a completed file upload. It is a plain value;
// the client does not track it after returning it.
type UploadResult struct {
	FileID         string `json:"fileId"`
	FileName       string `json:"fileName"`
	WebViewLink    string `json:"webViewLink,omitempty"`
	WebContentLink string `json:"webContentLink,omitempty"`
}

// AuthSession holds the current sign-in state. It lives only in memory
// and is cleared on Reset or sign-out; it is never written to storage.
type AuthSession struct {
	AccessToken string    `json:"-"`
	Expiry      time.Time `json:"expiry"`
	Account     string    `json:"account"`
}

// Valid reports whether the session carries a usable access token.
func (s *AuthSession) Valid() bool {
	if s == nil || s.AccessToken == "" {
		return false
	}
	if s.Expiry.IsZero() {
		return true
	}
	return time.Now().Before(s.Expiry)
}
