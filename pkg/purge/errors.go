package purge

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRoot is returned when a run is requested without a root UUID.
	ErrInvalidRoot = errors.New("root project uuid is required")

	// ErrRootNotFound is returned when the root project does not exist in the store.
	ErrRootNotFound = errors.New("root project not found")

	// ErrSessionFinalized is returned when a session is used after Commit or Rollback.
	ErrSessionFinalized = errors.New("session already committed or rolled back")
)

// PreconditionError is returned before any mutation when the caller's input or
// the session state makes the operation invalid.
type PreconditionError struct {
	Op    string // Operation that was rejected
	Cause error  // One of the Err* sentinels
}

// Error implements the error interface.
func (e *PreconditionError) Error() string {
	return fmt.Sprintf("precondition failed [op=%s]: %v", e.Op, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *PreconditionError) Unwrap() error {
	return e.Cause
}

// NewPreconditionError creates a new PreconditionError.
func NewPreconditionError(op string, cause error) *PreconditionError {
	return &PreconditionError{Op: op, Cause: cause}
}

// StorageError represents an error from the storage backend.
type StorageError struct {
	Backend   string // Storage backend type ("sqlite3", "sqlite")
	Operation string // Operation that failed ("delete_snapshots", "commit", etc.)
	Cause     error  // Underlying error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error [backend=%s, operation=%s]: %v", e.Backend, e.Operation, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *StorageError) Unwrap() error {
	return e.Cause
}

// NewStorageError creates a new StorageError.
func NewStorageError(backend, operation string, cause error) *StorageError {
	return &StorageError{
		Backend:   backend,
		Operation: operation,
		Cause:     cause,
	}
}

// BatchError reports the chunk of a batched operation that failed.
// Chunks before it ran inside the same transaction and are discarded with it.
type BatchError struct {
	Chunk  int   // Zero-based chunk index
	Offset int   // Index of the chunk's first key in the input
	Size   int   // Number of keys in the chunk
	Cause  error // Underlying error
}

// Error implements the error interface.
func (e *BatchError) Error() string {
	return fmt.Sprintf("batch error [chunk=%d, offset=%d, size=%d]: %v", e.Chunk, e.Offset, e.Size, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *BatchError) Unwrap() error {
	return e.Cause
}

// RunError is returned by a purge run that did not commit.
type RunError struct {
	RootUUID string // Root project of the run
	Phase    string // Phase that failed ("load_tree", "clean_project", ...)
	Cause    error  // Underlying error
}

// Error implements the error interface.
func (e *RunError) Error() string {
	return fmt.Sprintf("purge failed [root=%s, phase=%s]: %v", e.RootUUID, e.Phase, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *RunError) Unwrap() error {
	return e.Cause
}

// NewRunError creates a new RunError.
func NewRunError(rootUUID, phase string, cause error) *RunError {
	return &RunError{
		RootUUID: rootUUID,
		Phase:    phase,
		Cause:    cause,
	}
}

// IsPrecondition reports whether err was caused by a rejected precondition.
func IsPrecondition(err error) bool {
	var pe *PreconditionError
	return errors.As(err, &pe)
}
