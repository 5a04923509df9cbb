package vcs

import (
	"errors"
	"fmt"
)

// Sentinel kinds. Match them with errors.Is.
var (
	ErrRepositoryNotFound = errors.New("repository not found")
	ErrTreeNotFound       = errors.New("tree not found")
	ErrTreeParse          = errors.New("tree parse error")
	ErrDiff               = errors.New("diff error")
	ErrCommitInfo         = errors.New("commit info error")
	ErrNoTagFound         = errors.New("no tag found")
)

// Error is the failure type returned by every Adapter operation.
type Error struct {
	Kind error
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the kind of e.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func newError(kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// RepositoryNotFound reports a missing, bare or empty repository.
func RepositoryNotFound(err error, format string, args ...any) *Error {
	return newError(ErrRepositoryNotFound, err, format, args...)
}

// TreeNotFound reports a revision that cannot be resolved or has no predecessor.
func TreeNotFound(err error, format string, args ...any) *Error {
	return newError(ErrTreeNotFound, err, format, args...)
}

// TreeParse reports a revision that cannot be read as a tree.
func TreeParse(err error, format string, args ...any) *Error {
	return newError(ErrTreeParse, err, format, args...)
}

// DiffFailed reports a failed comparison.
func DiffFailed(err error, format string, args ...any) *Error {
	return newError(ErrDiff, err, format, args...)
}

// CommitInfoFailed reports a failure reading commit metadata.
func CommitInfoFailed(err error, format string, args ...any) *Error {
	return newError(ErrCommitInfo, err, format, args...)
}

// NoTagFound reports a repository without a usable tag.
func NoTagFound(err error, format string, args ...any) *Error {
	return newError(ErrNoTagFound, err, format, args...)
}

// NoPreviousHead is the TreeNotFound error for a revision without parent.
func NoPreviousHead(path string) *Error {
	return TreeNotFound(nil, "Could not find previous head of repository located at %s. Its your first commit?", path)
}

// KindOf returns the sentinel kind of err, or nil when err is not an *Error.
func KindOf(err error) error {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return nil
}
