// Package errors turns opaque provider failures into a closed taxonomy
// with user-actionable remediation text. The provider's SDK is observed
// to fail with empty messages, callback errors, or silent hangs, so
// classification combines whatever signal the error carries with the
// stage the client was in when it failed.
package errors

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/awibisono/arsipdrive/internal/types"
	"github.com/awibisono/arsipdrive/internal/utils"
	"google.golang.org/api/googleapi"
)

// Remediation text per category, intended for direct display.
var remediations = map[string]string{
	utils.CategoryNotConfigured:       "Set the API key and client ID in the configuration before initializing.",
	utils.CategoryScriptLoadFailed:    "Check network connectivity and retry.",
	utils.CategoryModuleLoadFailed:    "Check network connectivity and retry.",
	utils.CategoryModuleLoadTimeout:   "Check network connectivity and retry.",
	utils.CategoryDomainNotAuthorized: "Add the current origin to the provider's list of authorized JavaScript origins for this client ID, then retry.",
	utils.CategoryPopupBlocked:        "Allow popups for this site in the browser settings, then retry sign-in.",
	utils.CategoryAccessDenied:        "Consent was declined. Sign in again and grant the requested access.",
	utils.CategoryQuotaExceeded:       "Storage or request quota exceeded. Wait a moment and retry, or free up space.",
	utils.CategoryCspBlocked:          "Relax the Content-Security-Policy (script-src and frame-src) to allow the provider's domains.",
	utils.CategoryInitTimeout:         "Initialization took too long. Check connectivity and try again.",
	utils.CategoryUnknown:             "An unexpected error occurred. Try again.",
}

// RemediationFor returns the display remediation for a category.
func RemediationFor(category string) string {
	if r, ok := remediations[category]; ok {
		return r
	}
	return remediations[utils.CategoryUnknown]
}

// Classify maps a raw provider error onto exactly one category. It is
// total: nil errors, empty-message errors, and foreign error types all
// resolve to a category. Already-classified errors pass through
// unchanged so classification at nested boundaries stays idempotent.
func Classify(stage types.InitStage, raw error) *utils.AppError {
	var appErr *utils.AppError
	if stderrors.As(raw, &appErr) {
		return appErr
	}

	category := categorize(stage, raw)

	message := ""
	if raw != nil {
		message = raw.Error()
	}
	if message == "" {
		message = "provider returned no error detail"
	}

	builder := utils.NewClientError(category, message).
		WithRemediation(RemediationFor(category)).
		WithRetryable(retryable(category)).
		WithRaw(raw)

	if stage != types.StageNone {
		builder = builder.WithContext("stage", string(stage))
	}

	var apiErr *googleapi.Error
	if stderrors.As(raw, &apiErr) {
		builder = builder.WithHTTPStatus(apiErr.Code)
	}

	return utils.NewAppError(builder.Build())
}

func categorize(stage types.InitStage, raw error) string {
	if raw == nil {
		return emptyMessageCategory(stage)
	}

	// A deadline is only INIT_TIMEOUT when the initialization budget
	// expired. Later stages run under caller deadlines and categorize
	// from whatever other signal the error carries.
	if stderrors.Is(raw, context.DeadlineExceeded) && initStage(stage) {
		return utils.CategoryInitTimeout
	}

	var apiErr *googleapi.Error
	if stderrors.As(raw, &apiErr) {
		if category, ok := categorizeAPIError(apiErr); ok {
			return category
		}
	}

	message := strings.ToLower(raw.Error())
	if message == "" {
		return emptyMessageCategory(stage)
	}

	switch {
	case strings.Contains(message, "idpiframe_initialization_failed"),
		strings.Contains(message, "not a valid origin"),
		strings.Contains(message, "origin"),
		strings.Contains(message, "domain"):
		return utils.CategoryDomainNotAuthorized
	case strings.Contains(message, "popup"):
		return utils.CategoryPopupBlocked
	case strings.Contains(message, "access_denied"):
		return utils.CategoryAccessDenied
	case strings.Contains(message, "quota"):
		return utils.CategoryQuotaExceeded
	case strings.Contains(message, "content security policy"),
		strings.Contains(message, "content-security-policy"),
		strings.Contains(message, "script-src"),
		strings.Contains(message, "frame-src"):
		return utils.CategoryCspBlocked
	}

	return utils.CategoryUnknown
}

// initStage reports whether stage belongs to the initialization
// sequence the overall init deadline covers.
func initStage(stage types.InitStage) bool {
	switch stage {
	case types.StageLoadingSDK, types.StageLoadingModules,
		types.StageInitializingClient, types.StageInitializingAuth:
		return true
	}
	return false
}

func categorizeAPIError(apiErr *googleapi.Error) (string, bool) {
	switch apiErr.Code {
	case 401:
		return utils.CategoryAccessDenied, true
	case 403:
		for _, e := range apiErr.Errors {
			switch e.Reason {
			case "storageQuotaExceeded", "quotaExceeded", "userRateLimitExceeded", "rateLimitExceeded", "dailyLimitExceeded":
				return utils.CategoryQuotaExceeded, true
			}
		}
		return utils.CategoryAccessDenied, true
	case 429:
		return utils.CategoryQuotaExceeded, true
	}
	return "", false
}

// emptyMessageCategory resolves errors carrying no signal at all. The
// provider fails silently exactly this way when the origin is not
// authorized for the client ID, so during either init handshake an
// empty message diagnoses as DOMAIN_NOT_AUTHORIZED. This is a
// documented heuristic inferred from observed behavior, not a
// guaranteed diagnosis.
func emptyMessageCategory(stage types.InitStage) string {
	switch stage {
	case types.StageInitializingClient, types.StageInitializingAuth:
		return utils.CategoryDomainNotAuthorized
	}
	return utils.CategoryUnknown
}

func retryable(category string) bool {
	switch category {
	case utils.CategoryScriptLoadFailed,
		utils.CategoryModuleLoadFailed,
		utils.CategoryModuleLoadTimeout,
		utils.CategoryQuotaExceeded,
		utils.CategoryInitTimeout,
		utils.CategoryUnknown:
		return true
	}
	return false
}
