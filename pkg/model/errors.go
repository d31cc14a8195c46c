package model

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when a document is not found, or when it exists
	// but is not owned by the requesting user. The two cases are deliberately
	// indistinguishable to the caller.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument is returned when a caller-supplied value violates a
	// precondition (empty required string, negative pagination parameter).
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrCorrupted is returned when a collection's persisted representation
	// cannot be parsed as a JSON array of records.
	ErrCorrupted = errors.New("collection data corrupted")
	// ErrStorageIO is returned when the backing file cannot be read or written.
	ErrStorageIO = errors.New("storage i/o failure")
	// ErrUpstream is returned when the external image API cannot be reached or
	// responds with a non-2xx status.
	ErrUpstream = errors.New("upstream api failure")
	// ErrCanceled is returned when the operation is canceled by the client.
	ErrCanceled = errors.New("operation canceled")
)

// IsCanceled returns true if the error is due to context cancellation or
// deadline expiry, directly or wrapped.
func IsCanceled(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, ErrCanceled)
}
