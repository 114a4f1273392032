package service

import (
	"errors"
	"fmt"
)

// Kind classifies gateway errors. Only KindAuth crosses the transport
// boundary as a rejection; every other kind is absorbed into a scripted
// in-band reply before it reaches the caller.
type Kind int

const (
	KindAuth Kind = iota
	KindValidation
	KindRateLimit
	KindUpstream
	KindPersistence
	KindNotification
)

// Error is a coded gateway error.
type Error struct {
	Kind  Kind
	Code  string
	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.cause)
	}
	return e.Code
}

func (e *Error) Unwrap() error {
	return e.cause
}

func newError(kind Kind, code string, cause error) *Error {
	return &Error{Kind: kind, Code: code, cause: cause}
}

// IsAuth reports whether err is an authentication failure.
func IsAuth(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindAuth
}

// IsValidation reports whether err is an input validation failure.
func IsValidation(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindValidation
}
