package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode is a stable category for programmatic error handling.
//
// Callers should branch on the code rather than matching error strings;
// messages are intended for humans and may evolve.
type ErrorCode string

const (
	// ErrInvalidInput flags an empty required field.
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrDuplicateAnchor flags a digest already anchored by the same owner.
	ErrDuplicateAnchor ErrorCode = "DUPLICATE_ANCHOR"
	// ErrMissingAuthorizationSource flags a grant over a digest the owner
	// never anchored.
	ErrMissingAuthorizationSource ErrorCode = "MISSING_AUTHORIZATION_SOURCE"
	// ErrDuplicateAuthorization flags a second grant for an occupied
	// (owner, recipient, digest) triple.
	ErrDuplicateAuthorization ErrorCode = "DUPLICATE_AUTHORIZATION"
	// ErrAuthorizationNotFound flags an update/revoke of an empty triple.
	ErrAuthorizationNotFound ErrorCode = "AUTHORIZATION_NOT_FOUND"
	// ErrSignatureMismatch flags a signature that does not recover to the
	// stated owner under the current nonce.
	ErrSignatureMismatch ErrorCode = "SIGNATURE_MISMATCH"
	// ErrOwnershipMismatch and ErrRecipientMismatch are defensive integrity
	// checks on resolved records; the uniqueness key should already rule
	// them out.
	ErrOwnershipMismatch ErrorCode = "OWNERSHIP_MISMATCH"
	ErrRecipientMismatch ErrorCode = "RECIPIENT_MISMATCH"
	// ErrUnauthorized flags a caller rejected by the administrative gate.
	ErrUnauthorized ErrorCode = "UNAUTHORIZED"
)

// CodedError is a stable error with a machine-readable code and a human
// message.
type CodedError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

func (e *CodedError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewError(code ErrorCode, message string) *CodedError {
	return &CodedError{Code: code, Message: message}
}

func NewErrorf(code ErrorCode, format string, args ...interface{}) *CodedError {
	return &CodedError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Code extracts the ErrorCode from err, or "" if err carries none.
func Code(err error) ErrorCode {
	var e *CodedError
	if !errors.As(err, &e) || e == nil {
		return ""
	}
	return e.Code
}

// IsCode reports whether err is (or wraps) a *CodedError with the given code.
func IsCode(err error, code ErrorCode) bool {
	return Code(err) == code
}

var knownCodes = map[ErrorCode]bool{
	ErrInvalidInput:               true,
	ErrDuplicateAnchor:            true,
	ErrMissingAuthorizationSource: true,
	ErrDuplicateAuthorization:     true,
	ErrAuthorizationNotFound:      true,
	ErrSignatureMismatch:          true,
	ErrOwnershipMismatch:          true,
	ErrRecipientMismatch:          true,
	ErrUnauthorized:               true,
}

// ParseError reconstructs a CodedError from its Error() rendering
// ("CODE: message"). It returns nil when the text does not start with a
// known code. Used to round-trip codes through transport boundaries that
// only carry strings.
func ParseError(s string) *CodedError {
	code, msg, ok := strings.Cut(s, ": ")
	if !ok || !knownCodes[ErrorCode(code)] {
		return nil
	}
	return &CodedError{Code: ErrorCode(code), Message: msg}
}
