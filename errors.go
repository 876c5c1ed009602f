package ews

import (
	"errors"
	"fmt"
)

// ErrorKind classifies engine errors.
type ErrorKind int

const (
	// ErrKindUnexpectedEndOfDocument indicates the XML stream ended while a
	// node was still expected.
	ErrKindUnexpectedEndOfDocument ErrorKind = iota + 1
	// ErrKindSchemaMismatch indicates the current node doesn't have the
	// expected kind or name.
	ErrKindSchemaMismatch
	// ErrKindReadError indicates malformed content, e.g. an element found
	// where text was expected.
	ErrKindReadError
	// ErrKindTypeMismatch indicates a factory produced an object for a
	// different element name.
	ErrKindTypeMismatch
	// ErrKindUnresolvableReference indicates a reference to an unknown id
	// inside a structured property.
	ErrKindUnresolvableReference
	// ErrKindRegistrationConflict indicates two property definitions claim
	// the same URI.
	ErrKindRegistrationConflict
	// ErrKindInvalidValue indicates a value couldn't be parsed, formatted or
	// serialized.
	ErrKindInvalidValue
)

var errorKindNames = map[ErrorKind]string{
	ErrKindUnexpectedEndOfDocument: "unexpected end of document",
	ErrKindSchemaMismatch:          "schema mismatch",
	ErrKindReadError:               "read error",
	ErrKindTypeMismatch:            "type mismatch",
	ErrKindUnresolvableReference:   "unresolvable reference",
	ErrKindRegistrationConflict:    "registration conflict",
	ErrKindInvalidValue:            "invalid value",
}

func (k ErrorKind) String() string {
	if s, ok := errorKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error is returned by the XML engine.
type Error struct {
	Kind ErrorKind
	// Expected and Actual are set for schema mismatches.
	Expected, Actual string
	// Name is the local name at the point of failure, if any.
	Name    string
	Message string
	Err     error
}

func (err *Error) Error() string {
	s := "ews: " + err.Kind.String()
	if err.Expected != "" || err.Actual != "" {
		s += fmt.Sprintf(": expected %v, got %v", err.Expected, err.Actual)
	}
	if err.Name != "" {
		s += fmt.Sprintf(" (at %q)", err.Name)
	}
	if err.Message != "" {
		s += ": " + err.Message
	}
	if err.Err != nil {
		s += ": " + err.Err.Error()
	}
	return s
}

func (err *Error) Unwrap() error {
	return err.Err
}

// IsKind reports whether err is an *Error of the provided kind.
func IsKind(err error, kind ErrorKind) bool {
	var ewsErr *Error
	return errors.As(err, &ewsErr) && ewsErr.Kind == kind
}

func newError(kind ErrorKind, name string, format string, v ...interface{}) *Error {
	return &Error{Kind: kind, Name: name, Message: fmt.Sprintf(format, v...)}
}

func invalidValue(name string, err error) *Error {
	var ewsErr *Error
	if errors.As(err, &ewsErr) && ewsErr.Kind == ErrKindInvalidValue {
		if ewsErr.Name == "" {
			ewsErr.Name = name
		}
		return ewsErr
	}
	return &Error{Kind: ErrKindInvalidValue, Name: name, Err: err}
}

// ResponseError is returned when the server reports a failed response
// message.
type ResponseError struct {
	Class   string
	Code    string
	Message string
}

func (err *ResponseError) Error() string {
	return fmt.Sprintf("ews: %v: %v (%v)", err.Class, err.Message, err.Code)
}
