package storage

import (
	"errors"
	"fmt"

	sqlite3 "github.com/mattn/go-sqlite3"
)

// Sentinel error kinds. Callers match with errors.Is/errors.As; the host
// boundary maps them to stable integer codes via HostErrorCode.
var (
	// ErrInvalidURL means an observation URL failed to parse. It is
	// rejected before any write.
	ErrInvalidURL = errors.New("invalid URL")

	// ErrNoSuchPage means an operation referenced a page row that does
	// not exist.
	ErrNoSuchPage = errors.New("no such page")
)

// StorageError wraps a failure reported by the underlying SQLite engine,
// including constraint violations.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("storage: %s: %v", e.Op, e.Err) }

func (e *StorageError) Unwrap() error { return e.Err }

// CollaboratorError wraps a failure from an injected collaborator (guid or
// frecency). The underlying error is propagated verbatim.
type CollaboratorError struct {
	Name string
	Err  error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s collaborator: %v", e.Name, e.Err)
}

func (e *CollaboratorError) Unwrap() error { return e.Err }

// IsUniqueViolation reports whether err is a SQLite uniqueness constraint
// failure, e.g. two concurrent creations racing on the same URL.
func IsUniqueViolation(err error) bool {
	var serr sqlite3.Error
	if !errors.As(err, &serr) {
		return false
	}
	return serr.Code == sqlite3.ErrConstraint &&
		(serr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			serr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey)
}

// IsNotADatabase reports whether err means the store file is unreadable or
// not a SQLite database at all. Hosts surface this distinctly so they can
// prompt for re-initialization.
func IsNotADatabase(err error) bool {
	var serr sqlite3.Error
	return errors.As(err, &serr) && serr.Code == sqlite3.ErrNotADB
}

// Stable integer codes for the host marshalling boundary. 0 (success) and
// -1 (panic) are reserved by the host-side support layer.
const (
	CodeSuccess      int32 = 0
	CodeUnexpected   int32 = -2
	CodeInvalidURL   int32 = 1
	CodeNotADatabase int32 = 2
	CodeNoSuchPage   int32 = 3
	CodeStorage      int32 = 4
	CodeCollaborator int32 = 5
)

// HostErrorCode maps an error to its stable host-boundary code without
// inspecting message text.
func HostErrorCode(err error) int32 {
	switch {
	case err == nil:
		return CodeSuccess
	case errors.Is(err, ErrInvalidURL):
		return CodeInvalidURL
	case IsNotADatabase(err):
		return CodeNotADatabase
	case errors.Is(err, ErrNoSuchPage):
		return CodeNoSuchPage
	}
	var cerr *CollaboratorError
	if errors.As(err, &cerr) {
		return CodeCollaborator
	}
	var serr *StorageError
	if errors.As(err, &serr) {
		return CodeStorage
	}
	return CodeUnexpected
}
