package upstream

import (
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned by Download when the archive does not exist (yet), callers
// treat it as an empty-but-valid result.
var ErrNotFound = errors.New("upstream: not found")

// ErrorClass is the failure taxonomy every unit of work is classified into.
type ErrorClass int

const (
	ClassNone ErrorClass = iota
	ClassTransport
	ClassStatus
	ClassShape
	ClassPersistence
)

func (c ErrorClass) String() string {
	switch c {
	case ClassNone:
		return "none"
	case ClassTransport:
		return "transport"
	case ClassStatus:
		return "status"
	case ClassShape:
		return "shape"
	case ClassPersistence:
		return "persistence"
	}
	return fmt.Sprintf("class(%d)", int(c))
}

// Classed is implemented by errors that know their own class, packages outside
// upstream (ex. the table writer) use it to mark persistence failures.
type Classed interface {
	ErrorClass() ErrorClass
}

// StatusError is a non-2xx response.
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %s", e.URL, e.Status)
}

func (e *StatusError) ErrorClass() ErrorClass {
	return ClassStatus
}

// ShapeError is a body that could not be decoded or did not have the expected structure.
type ShapeError struct {
	URL string
	Err error
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("decode %s: %s", e.URL, e.Err)
}

func (e *ShapeError) Unwrap() error {
	return e.Err
}

func (e *ShapeError) ErrorClass() ErrorClass {
	return ClassShape
}

// Classify maps err to its ErrorClass. Unclassified errors are assumed to have come
// from the transport (dns, tls, timeouts, connection resets).
func Classify(err error) ErrorClass {
	if err == nil {
		return ClassNone
	}
	var classed Classed
	if errors.As(err, &classed) {
		return classed.ErrorClass()
	}
	if errors.Is(err, ErrNotFound) {
		return ClassStatus
	}
	return ClassTransport
}

// RetryPolicy decides how many attempts a unit of work gets per error class.
type RetryPolicy struct {
	Attempts map[ErrorClass]int
	Backoff  time.Duration
}

// DefaultRetryPolicy gives every class exactly one attempt, a failed unit is logged and
// skipped and the next run picks it up again.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Attempts: map[ErrorClass]int{
			ClassTransport:   1,
			ClassStatus:      1,
			ClassShape:       1,
			ClassPersistence: 1,
		},
	}
}

// Allows reports whether another attempt may be made after `attempt` attempts failed
// with an error of the given class.
func (p RetryPolicy) Allows(class ErrorClass, attempt int) bool {
	max, ok := p.Attempts[class]
	if !ok {
		max = 1
	}
	return attempt < max
}
