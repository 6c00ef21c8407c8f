// Package apperr defines the sentinel errors shared by all profile services.
package apperr

import "errors"

var (
	// ErrNotFound means the operation targeted a record id that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrPersistence means the durable medium is unavailable or a write failed.
	ErrPersistence = errors.New("persistence failure")
	// ErrDisabled means a privacy setting rejected the operation.
	ErrDisabled = errors.New("disabled by user settings")
	// ErrRejected means a policy gate refused to store the record.
	ErrRejected = errors.New("rejected")
	// ErrUnsupported means the session variant lacks the requested capability.
	ErrUnsupported = errors.New("not supported for this profile type")
	// ErrClosed means the target store or profile was already torn down.
	ErrClosed = errors.New("closed")
)
