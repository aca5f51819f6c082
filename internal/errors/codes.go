// Package errors provides structured error handling for bigindex.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors (model or repository misconfiguration)
//   - 4XX: Validation errors (caller programming errors, malformed queries)
//   - 5XX: Backend errors (adapter failures and unsupported operations)
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates model or repository misconfiguration.
	CategoryConfig Category = "CONFIG"
	// CategoryValidation indicates invalid caller input.
	CategoryValidation Category = "VALIDATION"
	// CategoryBackend indicates a failure reported by, or on behalf of, an adapter.
	CategoryBackend Category = "BACKEND"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates unrecoverable error, must abort.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates the call failed but the process can continue.
	SeverityError Severity = "ERROR"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeInvalidFieldSpec      = "ERR_101_INVALID_FIELD_SPEC"
	ErrCodeNoIterationCapability = "ERR_102_NO_ITERATION_CAPABILITY"
	ErrCodeConfigInvalid         = "ERR_103_CONFIG_INVALID"
	ErrCodeRebuildLocked         = "ERR_104_REBUILD_LOCKED"

	// Validation errors (400-499)
	ErrCodeUnknownView              = "ERR_401_UNKNOWN_VIEW"
	ErrCodeUnknownRepository        = "ERR_402_UNKNOWN_REPOSITORY"
	ErrCodeMissingConditionArgument = "ERR_403_MISSING_CONDITION_ARGUMENT"
	ErrCodeInvalidFindOption        = "ERR_404_INVALID_FIND_OPTION"

	// Backend errors (500-599)
	ErrCodeUnsupportedOperation = "ERR_501_UNSUPPORTED_OPERATION"
	ErrCodeIndexBackend         = "ERR_502_INDEX_BACKEND"
)

// Sentinels for errors.Is checks. Matching is by code, so any error built
// with the same code matches its sentinel.
var (
	ErrInvalidFieldSpec         = New(ErrCodeInvalidFieldSpec, "invalid field spec", nil)
	ErrNoIterationCapability    = New(ErrCodeNoIterationCapability, "no iteration capability", nil)
	ErrConfigInvalid            = New(ErrCodeConfigInvalid, "invalid configuration", nil)
	ErrRebuildLocked            = New(ErrCodeRebuildLocked, "rebuild already running", nil)
	ErrUnknownView              = New(ErrCodeUnknownView, "unknown view", nil)
	ErrUnknownRepository        = New(ErrCodeUnknownRepository, "unknown repository", nil)
	ErrMissingConditionArgument = New(ErrCodeMissingConditionArgument, "missing condition argument", nil)
	ErrInvalidFindOption        = New(ErrCodeInvalidFindOption, "invalid find option", nil)
	ErrUnsupportedOperation     = New(ErrCodeUnsupportedOperation, "unsupported operation", nil)
	ErrIndexBackend             = New(ErrCodeIndexBackend, "index backend error", nil)
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryBackend
	}

	// Extract numeric portion (e.g., "101" from "ERR_101_INVALID_FIELD_SPEC")
	switch code[4] {
	case '1':
		return CategoryConfig
	case '4':
		return CategoryValidation
	default:
		return CategoryBackend
	}
}

// severityFromCode determines severity based on error code.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeInvalidFieldSpec, ErrCodeNoIterationCapability, ErrCodeConfigInvalid:
		return SeverityFatal
	}
	return SeverityError
}
