package utils

import "time"

// OAuth scopes
const (
	ScopeFull     = "https://www.googleapis.com/auth/drive"
	ScopeFile     = "https://www.googleapis.com/auth/drive.file"
	ScopeReadonly = "https://www.googleapis.com/auth/drive.readonly"
)

// DefaultDiscoveryDocURL is the discovery document for the Drive REST surface.
const DefaultDiscoveryDocURL = "https://www.googleapis.com/discovery/v1/apis/drive/v3/rest"

// Initialization budgets. The module-load sub-timeout is deliberately
// shorter than the overall budget so a hang there is diagnosed as
// MODULE_LOAD_TIMEOUT rather than attributed to the outer step.
const (
	InitTimeout       = 15 * time.Second
	ModuleLoadTimeout = 10 * time.Second
)

// Retry configuration
const (
	DefaultMaxRetries   = 3
	DefaultRetryDelayMs = 1000
	MaxRetryDelayMs     = 32000
)

// DefaultRootFolderName is the fixed top-level folder all provisioned
// paths hang under.
const DefaultRootFolderName = "Arsip Pengajuan"

// MIME types
const (
	MimeTypeFolder = "application/vnd.google-apps.folder"
	MimeTypeBinary = "application/octet-stream"
)

// SDK module names
const (
	ModuleClient = "client"
	ModuleAuth   = "auth"
)
