package types

import "fmt"

// ErrorCode identifies a class of query-processing error.
type ErrorCode string

// Error codes, grouped by the stage that detects them.
const (
	// L01xx: lexical errors
	ErrUnexpectedChar  ErrorCode = "L0101"
	ErrStringNotClosed ErrorCode = "L0102"
	ErrInvalidEscape   ErrorCode = "L0103"
	ErrInvalidNumber   ErrorCode = "L0104"
	ErrControlChar     ErrorCode = "L0105"
	ErrBadSurrogate    ErrorCode = "L0106"
	ErrSpaceAfterDot   ErrorCode = "L0107"

	// S02xx: syntax errors
	ErrSyntax         ErrorCode = "S0201"
	ErrExpectedToken  ErrorCode = "S0202"
	ErrEmptySelection ErrorCode = "S0203"
	ErrBadSlice       ErrorCode = "S0204"
	ErrIndexRange     ErrorCode = "S0205"
	ErrUnexpectedEnd  ErrorCode = "S0206"

	// T03xx: static type errors
	ErrNonSingular     ErrorCode = "T0301"
	ErrUnknownFunction ErrorCode = "T0302"
	ErrArgumentCount   ErrorCode = "T0303"
	ErrArgumentType    ErrorCode = "T0304"
	ErrNotComparable   ErrorCode = "T0305"
	ErrNotLogical      ErrorCode = "T0306"

	// R04xx: resource exhaustion
	ErrTooDeep ErrorCode = "R0401"
)

// Error is a structured query-processing error carrying the byte offset of
// the failure point in the query string. Position is -1 when no offset
// applies.
type Error struct {
	Code     ErrorCode
	Message  string
	Position int
	Token    string
	Err      error
}

// NewError creates a new structured error.
func NewError(code ErrorCode, message string, position int) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Position: position,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Position >= 0 {
		return fmt.Sprintf("%s at position %d: %s", e.Code, e.Position, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithToken adds the offending token text to the error.
func (e *Error) WithToken(token string) *Error {
	e.Token = token
	return e
}

// WithCause wraps another error.
func (e *Error) WithCause(err error) *Error {
	e.Err = err
	return e
}
