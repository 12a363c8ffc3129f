package portal

import "errors"

// Error codes surfaced to callers. Authentication errors propagate verbatim
// because they require user action; scrape errors are accumulated per record.
const (
	CodeAuthRequired        = "AUTH_REQUIRED"
	CodeNeedsVerification   = "NEEDS_VERIFICATION"
	CodeInvalidCode         = "INVALID_CODE"
	CodeAuthFailed          = "AUTH_FAILED"
	CodeVerificationTimeout = "VERIFICATION_TIMEOUT"
	CodeNetworkError        = "NETWORK_ERROR"
	CodeParseError          = "PARSE_ERROR"
)

// Error is a portal error with a stable machine-readable code.
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// NewError builds a portal error with the given code.
func NewError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError builds a portal error wrapping an underlying cause.
func WrapError(code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// CodeOf extracts the portal error code from err, or "" if err is not a
// portal error.
func CodeOf(err error) string {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}
