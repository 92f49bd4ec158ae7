package types

import (
	"errors"
	"fmt"
)

// ErrorCode represents a query error code.
type ErrorCode string

// Error codes. Standard codes follow the XQuery error namespace; GX codes are
// specific to goxmatch.
const (
	// Static errors
	ErrSyntaxError     ErrorCode = "XPST0003"
	ErrUnknownFunction ErrorCode = "XPST0017"

	// Type errors
	ErrTypeMismatch ErrorCode = "XPTY0004"
	ErrInvalidEBV   ErrorCode = "FORG0006"

	// Dynamic errors
	ErrContextAbsent      ErrorCode = "XPDY0002"
	ErrCardinality        ErrorCode = "FORG0005"
	ErrInvalidFlags       ErrorCode = "FORX0001"
	ErrPatternTranslation ErrorCode = "FORX0002"
	ErrRegexCompile       ErrorCode = "GXRX0001"
	ErrIndexQuery         ErrorCode = "GXIX0001"
)

// Error represents a structured query error.
type Error struct {
	Code     ErrorCode
	Message  string
	Position int
	Token    string
	Err      error
}

// Sentinels for errors.Is. Matching is by code only.
var (
	ErrCardinalityError        = &Error{Code: ErrCardinality}
	ErrTypeError               = &Error{Code: ErrTypeMismatch}
	ErrInvalidFlagError        = &Error{Code: ErrInvalidFlags}
	ErrPatternTranslationError = &Error{Code: ErrPatternTranslation}
	ErrRegexCompileError       = &Error{Code: ErrRegexCompile}
	ErrIndexQueryError         = &Error{Code: ErrIndexQuery}
)

// NewError creates a new query error.
func NewError(code ErrorCode, message string, position int) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Position: position,
	}
}

// Errorf creates a new query error without position information.
func Errorf(code ErrorCode, format string, args ...interface{}) *Error {
	return NewError(code, fmt.Sprintf(format, args...), -1)
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Err != nil && msg == "" {
		msg = e.Err.Error()
	} else if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	if e.Position >= 0 {
		return fmt.Sprintf("%s at position %d: %s", e.Code, e.Position, msg)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithToken adds token information to the error.
func (e *Error) WithToken(token string) *Error {
	e.Token = token
	return e
}

// WithCause wraps another error.
func (e *Error) WithCause(err error) *Error {
	e.Err = err
	return e
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var qe *Error
	if errors.As(err, &qe) {
		return qe.Code
	}
	return ""
}

// NewIndexQueryError wraps a storage-layer failure raised by a value index.
func NewIndexQueryError(message string, cause error) *Error {
	return Errorf(ErrIndexQuery, "%s", message).WithCause(cause)
}
