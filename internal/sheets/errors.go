package sheets

import (
	"errors"
	"fmt"
)

// ConnectionError is returned when a sheet cannot be read: transport failure,
// a non-200 status or a body that is not a JSON array of rows.
type ConnectionError struct {
	Sheet      string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *ConnectionError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("read sheet %s: status %d: %s", e.Sheet, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("read sheet %s: %s", e.Sheet, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// WriteError is returned when appending rows did not end with a 201.
// The store is not transactional, so part of a multi-row payload may have been written.
type WriteError struct {
	Sheet      string
	StatusCode int
	Err        error
}

func (e *WriteError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("append to sheet %s: status %d: %s", e.Sheet, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("append to sheet %s: %s", e.Sheet, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

func IsConnectionError(err error) bool {
	var connErr *ConnectionError
	return errors.As(err, &connErr)
}

func IsWriteError(err error) bool {
	var writeErr *WriteError
	return errors.As(err, &writeErr)
}
