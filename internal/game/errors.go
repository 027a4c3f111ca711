package game

import (
	"errors"
	"fmt"
)

// ErrorCode classifies every failure the core can return. Codes are stable:
// the transport layer maps them to status codes and clients switch on them.
type ErrorCode string

const (
	// CodeNotFound marks a missing room, round, player or question reference.
	CodeNotFound ErrorCode = "not_found"
	// CodeInvalidPhase marks an operation attempted outside its legal phase.
	CodeInvalidPhase ErrorCode = "invalid_phase"
	// CodeConflict marks duplicate joins, self-votes, full rooms and similar
	// state collisions.
	CodeConflict ErrorCode = "conflict"
	// CodePreconditionFailed marks a start or advance requested without its
	// quorum or configuration preconditions met.
	CodePreconditionFailed ErrorCode = "precondition_failed"
	// CodeResourceExhausted marks an empty question pool for the requested
	// filter. Fatal to that round-start attempt; the room is left untouched.
	CodeResourceExhausted ErrorCode = "resource_exhausted"
	// CodeUnauthorized marks a non-host attempting a host-only operation or
	// a bad room passphrase.
	CodeUnauthorized ErrorCode = "unauthorized"
)

// Error is the typed error returned by every core operation. All core errors
// are local, synchronous and non-retryable; the calling layer decides whether
// to surface or retry.
type Error struct {
	Code   ErrorCode
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Reason)
}

func newError(code ErrorCode, format string, args ...interface{}) *Error {
	return &Error{Code: code, Reason: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the ErrorCode from err, unwrapping as needed. Errors that
// did not originate in the core report an empty code.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsCode reports whether err carries the given core error code.
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// ErrNoQuestions is returned by QuestionPool implementations when no question
// pair satisfies the requested filter.
var ErrNoQuestions = &Error{Code: CodeResourceExhausted, Reason: "no questions available for filter"}
