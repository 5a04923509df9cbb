// Package vcs defines the contract every version-control back-end implements
// so that revision resolution and change aggregation stay back-end agnostic.
package vcs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/masmgr/lastchanges-go/internal/model"
)

// Kind names a supported back-end.
type Kind string

const (
	Git Kind = "git"
	Svn Kind = "svn"
)

// ParseKind converts a user supplied name into a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case Git:
		return Git, nil
	case Svn:
		return Svn, nil
	default:
		return "", fmt.Errorf("unknown vcs %q (expected git or svn)", s)
	}
}

// Adapter is the capability contract of a back-end. R is the repository
// handle type and V the revision type.
//
// Handles returned by Open are owned by the caller and must be released with
// Close on every path. No method mutates the repository.
type Adapter[R any, V comparable] interface {
	// Open returns a handle on the repository at path.
	Open(path string) (R, error)

	// Close releases resources held by the handle.
	Close(repo R) error

	// Head returns the current revision of the repository.
	Head(ctx context.Context, repo R) (V, error)

	// Resolve turns a revision expression into a revision.
	Resolve(ctx context.Context, repo R, expr string) (V, error)

	// Previous returns the immediate predecessor of rev.
	Previous(ctx context.Context, repo R, rev V) (V, error)

	// ChangesOf diffs the head revision against its predecessor.
	ChangesOf(ctx context.Context, repo R) (*model.LastChanges, error)

	// ChangesBetween diffs current against previous.
	ChangesBetween(ctx context.Context, repo R, current, previous V) (*model.LastChanges, error)

	// CommitInfo extracts the metadata of rev.
	CommitInfo(ctx context.Context, repo R, rev V) (model.CommitInfo, error)

	// LastTagRevision returns the revision of the most recent tag.
	LastTagRevision(ctx context.Context, repo R) (V, error)

	// CommitsBetween lists commits reachable from current and not from
	// previous, oldest first.
	CommitsBetween(ctx context.Context, repo R, current, previous V) ([]V, error)

	// FormatRevision renders rev the way CommitInfo renders its id.
	FormatRevision(rev V) string
}

// Tag is a named reference resolved down to the commit it marks.
type Tag struct {
	Name      string
	Target    string // object the reference points at
	Commit    string // commit after peeling
	When      time.Time
	Annotated bool
}
