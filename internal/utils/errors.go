package utils

import (
	"errors"
	"fmt"

	"github.com/awibisono/arsipdrive/internal/types"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitUnknown = 1

	ExitNotConfigured = 10
	ExitInitFailed    = 11
	ExitAuthDeclined  = 12
	ExitAccessDenied  = 13
	ExitQuotaExceeded = 14
)

// ExitCodeFor maps an error category to the process exit code.
func ExitCodeFor(category string) int {
	switch category {
	case CategoryNotConfigured:
		return ExitNotConfigured
	case CategoryScriptLoadFailed, CategoryModuleLoadFailed, CategoryModuleLoadTimeout,
		CategoryDomainNotAuthorized, CategoryCspBlocked, CategoryInitTimeout:
		return ExitInitFailed
	case CategoryPopupBlocked:
		return ExitAuthDeclined
	case CategoryAccessDenied:
		return ExitAccessDenied
	case CategoryQuotaExceeded:
		return ExitQuotaExceeded
	default:
		return ExitUnknown
	}
}

// SchemaVersion identifies the JSON output schema
const SchemaVersion = "1.0"

// Error categories (tool-owned, stable)
const (
	CategoryNotConfigured       = "NOT_CONFIGURED"
	CategoryScriptLoadFailed    = "SCRIPT_LOAD_FAILED"
	CategoryModuleLoadFailed    = "MODULE_LOAD_FAILED"
	CategoryModuleLoadTimeout   = "MODULE_LOAD_TIMEOUT"
	CategoryDomainNotAuthorized = "DOMAIN_NOT_AUTHORIZED"
	CategoryPopupBlocked        = "POPUP_BLOCKED"
	CategoryAccessDenied        = "ACCESS_DENIED"
	CategoryQuotaExceeded       = "QUOTA_EXCEEDED"
	CategoryCspBlocked          = "CSP_BLOCKED"
	CategoryInitTimeout         = "INIT_TIMEOUT"
	CategoryUnknown             = "UNKNOWN"
)

// ClientErrorBuilder helps construct ClientError instances
type ClientErrorBuilder struct {
	err types.ClientError
}

// NewClientError creates a new error builder
func NewClientError(category, message string) *ClientErrorBuilder {
	return &ClientErrorBuilder{
		err: types.ClientError{
			Category: category,
			Message:  message,
		},
	}
}

func (b *ClientErrorBuilder) WithRemediation(remediation string) *ClientErrorBuilder {
	b.err.Remediation = remediation
	return b
}

func (b *ClientErrorBuilder) WithRetryable(retryable bool) *ClientErrorBuilder {
	b.err.Retryable = retryable
	return b
}

func (b *ClientErrorBuilder) WithHTTPStatus(status int) *ClientErrorBuilder {
	b.err.HTTPStatus = status
	return b
}

func (b *ClientErrorBuilder) WithRaw(raw error) *ClientErrorBuilder {
	b.err.Raw = raw
	return b
}

func (b *ClientErrorBuilder) WithContext(key string, value interface{}) *ClientErrorBuilder {
	if b.err.Context == nil {
		b.err.Context = make(map[string]interface{})
	}
	b.err.Context[key] = value
	return b
}

func (b *ClientErrorBuilder) Build() types.ClientError {
	return b.err
}

// AppError is a custom error type that carries the classified error
type AppError struct {
	ClientError types.ClientError
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.ClientError.Category, e.ClientError.Message)
}

func (e *AppError) Unwrap() error {
	return e.ClientError.Raw
}

// NewAppError creates an AppError from a ClientError
func NewAppError(clientErr types.ClientError) *AppError {
	return &AppError{ClientError: clientErr}
}

// CategoryOf extracts the category from any error. Errors that are not
// an *AppError report CategoryUnknown.
func CategoryOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.ClientError.Category
	}
	return CategoryUnknown
}

// IsCategory reports whether err carries the given category.
func IsCategory(err error, category string) bool {
	return CategoryOf(err) == category
}
