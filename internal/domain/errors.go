package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the domain layer. The completion client maps provider
// failures onto the first three; everything the orchestrator raises itself
// wraps one of the rest.
var (
	ErrProviderUnreachable = fmt.Errorf("completion service unreachable")
	ErrRateLimit           = fmt.Errorf("rate limit exceeded")
	ErrModelUnavailable    = fmt.Errorf("model not available")
	ErrChatFailure         = fmt.Errorf("chat completion failed")

	ErrToolNotFound     = fmt.Errorf("tool not found")
	ErrToolFailure      = fmt.Errorf("tool execution failed")
	ErrInvalidArguments = fmt.Errorf("invalid tool arguments")
	ErrTurnLimit        = fmt.Errorf("conversation turn limit exceeded")

	ErrExtractorFailure = fmt.Errorf("profile extraction failed")
	ErrProfileStore     = fmt.Errorf("profile store failed")
	ErrProfileNotFound  = fmt.Errorf("no profile has been generated yet")
	ErrConfigLoad       = fmt.Errorf("failed to load configuration")
	ErrDecryption       = fmt.Errorf("decryption failed")
)

// DomainError wraps a sentinel error with context.
type DomainError struct {
	Op     string // operation name (e.g., "Orchestrator.Run")
	Err    error  // underlying sentinel or wrapped error
	Detail string // human-readable detail
}

func (e *DomainError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Err)
}

func (e *DomainError) Unwrap() error { return e.Err }

// NewDomainError creates a new DomainError.
func NewDomainError(op string, err error, detail string) *DomainError {
	return &DomainError{Op: op, Err: err, Detail: detail}
}

// WrapOp adds operation context to an error using fmt.Errorf wrapping.
// Returns nil if err is nil, enabling idiomatic use: return domain.WrapOp("op", err)
func WrapOp(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

// ErrorCode is a machine-parseable error category for monitoring.
type ErrorCode string

const (
	CodeUnknown             ErrorCode = "UNKNOWN"
	CodeProviderUnreachable ErrorCode = "PROVIDER_UNREACHABLE"
	CodeRateLimit           ErrorCode = "RATE_LIMIT"
	CodeModelUnavailable    ErrorCode = "MODEL_UNAVAILABLE"
	CodeChatFailure         ErrorCode = "CHAT_FAILURE"
	CodeToolNotFound        ErrorCode = "TOOL_NOT_FOUND"
	CodeToolFailure         ErrorCode = "TOOL_FAILURE"
	CodeInvalidArguments    ErrorCode = "INVALID_ARGUMENTS"
	CodeTurnLimit           ErrorCode = "TURN_LIMIT"
	CodeExtractorFailure    ErrorCode = "EXTRACTOR_FAILURE"
	CodeProfileStore        ErrorCode = "PROFILE_STORE"
	CodeProfileNotFound     ErrorCode = "PROFILE_NOT_FOUND"
	CodeConfigLoad          ErrorCode = "CONFIG_LOAD"
	CodeDecryption          ErrorCode = "DECRYPTION"
)

// errorCodeMap maps sentinel errors to their machine-parseable codes.
var errorCodeMap = map[error]ErrorCode{
	ErrProviderUnreachable: CodeProviderUnreachable,
	ErrRateLimit:           CodeRateLimit,
	ErrModelUnavailable:    CodeModelUnavailable,
	ErrChatFailure:         CodeChatFailure,
	ErrToolNotFound:        CodeToolNotFound,
	ErrToolFailure:         CodeToolFailure,
	ErrInvalidArguments:    CodeInvalidArguments,
	ErrTurnLimit:           CodeTurnLimit,
	ErrExtractorFailure:    CodeExtractorFailure,
	ErrProfileStore:        CodeProfileStore,
	ErrProfileNotFound:     CodeProfileNotFound,
	ErrConfigLoad:          CodeConfigLoad,
	ErrDecryption:          CodeDecryption,
}

// ErrorCodeOf returns the machine-parseable error code for the given error.
// It walks the error chain with errors.Is and returns CodeUnknown when no
// sentinel matches.
func ErrorCodeOf(err error) ErrorCode {
	if err == nil {
		return CodeUnknown
	}
	if code, ok := errorCodeMap[err]; ok {
		return code
	}
	for sentinel, code := range errorCodeMap {
		if errors.Is(err, sentinel) {
			return code
		}
	}
	return CodeUnknown
}
