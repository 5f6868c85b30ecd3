package espn

import (
	"fmt"

	crerr "github.com/cockroachdb/errors"
)

// ErrorClass partitions upstream failures by how callers must react.
type ErrorClass string

const (
	// ClassNotFound is a benign "no data for this entity" signal,
	// never retried.
	ClassNotFound ErrorClass = "not_found"
	// ClassRateLimited and ClassTransient are retried with backoff
	// until the attempt budget is exhausted.
	ClassRateLimited ErrorClass = "rate_limited"
	ClassTransient   ErrorClass = "transient"
	// ClassFatal covers malformed requests, auth failures, and other
	// permanent rejections. Never retried.
	ClassFatal ErrorClass = "fatal"
)

var (
	ErrNotFound    = crerr.New("espn: entity not found")
	ErrRateLimited = crerr.New("espn: rate limited")
	ErrTransient   = crerr.New("espn: transient upstream failure")
	ErrFatal       = crerr.New("espn: permanent upstream rejection")
)

// APIError is a classified upstream failure. It unwraps to the class
// sentinel so callers can branch with errors.Is.
type APIError struct {
	Class      ErrorClass
	StatusCode int
	URL        string
	Detail     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("espn %s: status=%d url=%s %s", e.Class, e.StatusCode, e.URL, e.Detail)
}

func (e *APIError) Unwrap() error {
	switch e.Class {
	case ClassNotFound:
		return ErrNotFound
	case ClassRateLimited:
		return ErrRateLimited
	case ClassTransient:
		return ErrTransient
	default:
		return ErrFatal
	}
}

func (e *APIError) retryable() bool {
	return e.Class == ClassRateLimited || e.Class == ClassTransient
}

// IsNotFound reports whether an error chain carries the benign
// not-found class.
func IsNotFound(err error) bool {
	return crerr.Is(err, ErrNotFound)
}

func classifyStatus(status int) ErrorClass {
	switch {
	case status == 404:
		return ClassNotFound
	case status == 429:
		return ClassRateLimited
	case status >= 500:
		return ClassTransient
	default:
		return ClassFatal
	}
}
