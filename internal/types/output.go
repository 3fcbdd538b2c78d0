package types

// OutputFormat selects how command results are rendered
type OutputFormat string

const (
	OutputFormatJSON  OutputFormat = "json"
	OutputFormatTable OutputFormat = "table"
)

// GlobalFlags holds flags shared across all commands
type GlobalFlags struct {
	OutputFormat OutputFormat
	Quiet        bool
	Verbose      bool
	Debug        bool
	JSON         bool
	EnvFile      string
}

// CLIWarning is a non-fatal notice attached to command output
type CLIWarning struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

// CLIError is the wire form of a classified error
type CLIError struct {
	Category    string `json:"category"`
	Message     string `json:"message"`
	Remediation string `json:"remediation,omitempty"`
	Retryable   bool   `json:"retryable"`
}

// CLIOutput is the top-level JSON envelope for command results
type CLIOutput struct {
	SchemaVersion string       `json:"schemaVersion"`
	TraceID       string       `json:"traceId"`
	Command       string       `json:"command"`
	Data          interface{}  `json:"data"`
	Warnings      []CLIWarning `json:"warnings"`
	Errors        []CLIError   `json:"errors"`
}

// TableRenderer renders a result as rows for table output
type TableRenderer interface {
	Headers() []string
	Rows() [][]string
	EmptyMessage() string
}
