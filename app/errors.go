package app

import (
	"errors"
	"fmt"
)

var (
	// ErrContainerFormat is returned when a stream is not a valid zip or tar
	// structure, or its compression header can't be decoded.
	ErrContainerFormat = errors.New("invalid container format")

	// ErrEncrypted is returned when opening an encrypted zip entry.
	ErrEncrypted = errors.New("encrypted entry")

	// ErrTooLarge is returned when an entry exceeds the configured size limit.
	ErrTooLarge = errors.New("entry too large")

	// ErrTooDeep is returned when a container is nested deeper than the
	// configured depth limit.
	ErrTooDeep = errors.New("maximum nesting depth exceeded")
)

// ArchiveError ties an error to the path label of the container or entry
// it occurred in.
type ArchiveError struct {
	p string

	Err error
}

func (ae *ArchiveError) Path() string {
	return ae.p
}

func (ae *ArchiveError) Error() string {
	switch {
	case ae.Err == nil:
		panic("programmer error: no error")
	case ae.p == "":
		return ae.Err.Error()
	default:
		return fmt.Sprintf("%s: %v", ae.p, ae.Err)
	}
}

func (ae *ArchiveError) Unwrap() error {
	return ae.Err
}

// formatError marks err as a container format failure while keeping the
// decoder's own message.
type formatError struct {
	inner error
}

func (e *formatError) Error() string {
	return e.inner.Error()
}

func (e *formatError) Unwrap() error {
	return e.inner
}

func (e *formatError) Is(target error) bool {
	return target == ErrContainerFormat
}

func badFormat(err error) error {
	if err == nil {
		return nil
	}

	return &formatError{inner: err}
}
