// Package epperr provides coded errors for the registry core.
//
// Registrar-visible failures carry an EPP result code; callers match on
// sentinel values with errors.Is and translate to protocol responses at the
// transport edge. Internal failures use CodeInternal and are never shown to
// registrars verbatim.
package epperr

import (
	"errors"
	"fmt"
)

// Code classifies an error by EPP result code family.
type Code int

const (
	// CodeAuthorizationError maps to EPP 2201 (authorization error).
	CodeAuthorizationError Code = 2201
	// CodeStatusProhibits maps to EPP 2304 (object status prohibits operation).
	CodeStatusProhibits Code = 2304
	// CodeAssociationProhibits maps to EPP 2305 (object association prohibits operation).
	CodeAssociationProhibits Code = 2305
	// CodeParameterPolicy maps to EPP 2306 (parameter value policy error).
	CodeParameterPolicy Code = 2306
	// CodeObjectNotFound maps to EPP 2303 (object does not exist).
	CodeObjectNotFound Code = 2303
	// CodeObjectExists maps to EPP 2302 (object exists).
	CodeObjectExists Code = 2302
	// CodeInternal maps to EPP 2400 (command failed); configuration or
	// caller bugs, logged and never retried.
	CodeInternal Code = 2400
)

// Error is a coded error. Client-facing messages should stay at or under
// 32 characters so they fit in domain check responses.
type Error struct {
	code Code
	msg  string
	err  error
}

// New constructs a coded error.
func New(code Code, msg string) *Error {
	return &Error{code: code, msg: msg}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{code: code, msg: msg, err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

// Unwrap exposes the underlying error for errors.Is/As chains.
func (e *Error) Unwrap() error {
	return e.err
}

// Code returns the EPP result code family.
func (e *Error) Code() Code {
	return e.code
}

// Message returns the client-facing message without wrapped detail.
func (e *Error) Message() string {
	return e.msg
}

// CodeOf returns the code of the first coded error in the chain, or
// CodeInternal if none is present.
func CodeOf(err error) Code {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.code
	}
	return CodeInternal
}

// HasCode reports whether any error in the chain carries the given code.
func HasCode(err error, code Code) bool {
	for err != nil {
		var coded *Error
		if !errors.As(err, &coded) {
			return false
		}
		if coded.code == code {
			return true
		}
		err = coded.Unwrap()
	}
	return false
}

// IsClientError reports whether the code is a registrar-visible failure
// rather than an internal one.
func IsClientError(err error) bool {
	return CodeOf(err) != CodeInternal
}
