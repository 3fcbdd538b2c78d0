package types

// ClientError is the classified form of a provider failure. Every error
// that crosses the public boundary is one of these; raw SDK errors never
// escape unclassified.
type ClientError struct {
	Category    string                 `json:"category"`
	Message     string                 `json:"message"`
	Remediation string                 `json:"remediation"`
	Retryable   bool                   `json:"retryable"`
	HTTPStatus  int                    `json:"httpStatus,omitempty"`
	Context     map[string]interface{} `json:"context,omitempty"`
	Raw         error                  `json:"-"`
}

// InitStage identifies which initialization step was active when a
// failure occurred. The provider's own errors carry no reliable
// discriminant, so classification leans on the stage instead.
type InitStage string

const (
	StageNone               InitStage = ""
	StageLoadingSDK         InitStage = "loading_sdk"
	StageLoadingModules     InitStage = "loading_modules"
	StageInitializingClient InitStage = "initializing_client"
	StageInitializingAuth   InitStage = "initializing_auth"
	StageAuthenticating     InitStage = "authenticating"
	StageProvisioning       InitStage = "provisioning"
	StageUploading          InitStage = "uploading"
)
