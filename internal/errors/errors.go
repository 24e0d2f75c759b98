// Package errors carries machine-readable codes alongside wrapped errors so
// commands can branch on failure kind without matching message text.
package errors

import "errors"

// Code names a failure kind.
type Code string

const (
	// Setup and input.
	CodeConfigurationError Code = "configuration_error"
	CodeParseFailed        Code = "parse_failed"

	// Progress lifecycle.
	CodeAlreadyStarted Code = "already_started"

	// Course service.
	CodeRemoteFailed  Code = "remote_failed"
	CodeUnauthorized  Code = "unauthorized"
	CodeNotFound      Code = "not_found"
	CodeArchiveFailed Code = "archive_failed"

	// Local submission history.
	CodeHistoryFailed Code = "history_failed"
)

// Error pairs a Code with a human message and the underlying cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

// Error renders "message: cause", falling back to whichever part is set and
// finally to the code itself.
func (e Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return e.Message + ": " + e.Err.Error()
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	default:
		return string(e.Code)
	}
}

func (e Error) Unwrap() error {
	return e.Err
}

// New builds a coded error. err may be nil.
func New(code Code, msg string, err error) Error {
	return Error{Code: code, Message: msg, Err: err}
}

// CodeOf returns the outermost code in err's chain. ok is false when the
// chain carries no coded error.
func CodeOf(err error) (code Code, ok bool) {
	var coded Error
	if !errors.As(err, &coded) {
		return "", false
	}
	return coded.Code, true
}

// IsCode reports whether err's chain carries code.
func IsCode(err error, code Code) bool {
	got, ok := CodeOf(err)
	return ok && got == code
}
