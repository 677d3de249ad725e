package core

import "fmt"

// Stable error codes surfaced to gateway clients. These are part of the
// public contract and never change between releases.
const (
	CodeContextFetchFailed = "MCP_001"
	CodeModelNotFound      = "MCP_002"
	CodeTokenLimit         = "MCP_003"
	CodeInternal           = "MCP_999"
)

// Error carries a stable machine-readable code alongside the human-readable
// message and the wrapped cause.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
	Details string `json:"details,omitempty"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates an Error with the given code and message.
func NewError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error under a stable code.
func WrapError(code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// WithDetails attaches extra diagnostic detail and returns the same error.
func (e *Error) WithDetails(details string) *Error {
	e.Details = details
	return e
}
