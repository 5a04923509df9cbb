package lastchanges

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/masmgr/lastchanges-go/internal/logging"
	"github.com/masmgr/lastchanges-go/internal/model"
	"github.com/masmgr/lastchanges-go/internal/vcs"
)

// Engine is the back-end independent entry point used by the CLI.
type Engine interface {
	// Run computes the changes of the working copy at path.
	Run(ctx context.Context, path string, opts Options) (*model.LastChanges, error)

	// LastTag returns the formatted revision of the most recent tag.
	LastTag(ctx context.Context, path string, opts Options) (string, error)
}

// Aggregator computes LastChanges for one back-end.
type Aggregator[R any, V comparable] struct {
	adapter  vcs.Adapter[R, V]
	resolver *Resolver[R, V]
	log      *logging.Logger
}

// Compile-time interface conformance check.
var _ Engine = (*Aggregator[any, int])(nil)

// NewAggregator creates an aggregator over adapter.
func NewAggregator[R any, V comparable](adapter vcs.Adapter[R, V], log *logging.Logger) *Aggregator[R, V] {
	return &Aggregator[R, V]{
		adapter:  adapter,
		resolver: NewResolver(adapter, log),
		log:      log,
	}
}

// Run opens the working copy, resolves both ends of the span, diffs them and,
// when the span covers more than one commit, diffs every commit in it
// against its own predecessor.
func (a *Aggregator[R, V]) Run(ctx context.Context, path string, opts Options) (*model.LastChanges, error) {
	repo, err := a.adapter.Open(workingCopy(path, opts))
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := a.adapter.Close(repo); err != nil {
			a.log.Warnf("Closing repository: %v", err)
		}
	}()

	current, err := a.adapter.Head(ctx, repo)
	if err != nil {
		return nil, err
	}
	previous, err := a.resolver.Previous(ctx, repo, current, opts)
	if err != nil {
		return nil, err
	}
	a.log.Debugf("Comparing %s against %s (%s)",
		a.adapter.FormatRevision(current), a.adapter.FormatRevision(previous), opts.EffectivePolicy())

	lc, err := a.adapter.ChangesBetween(ctx, repo, current, previous)
	if err != nil {
		return nil, err
	}

	immediate, err := a.isImmediatePredecessor(ctx, repo, current, previous, lc.Previous())
	if err != nil {
		return nil, err
	}
	if immediate {
		return lc, nil
	}

	commits, err := a.commitChanges(ctx, repo, current, previous)
	if err != nil {
		return nil, err
	}
	return lc.WithCommits(commits), nil
}

// isImmediatePredecessor reports whether previous is the parent of current.
// previous may name the parent in another form, such as its tree, so the
// commit ids of both are compared when the revisions differ.
func (a *Aggregator[R, V]) isImmediatePredecessor(ctx context.Context, repo R, current, previous V, previousInfo model.CommitInfo) (bool, error) {
	parent, err := a.adapter.Previous(ctx, repo, current)
	if errors.Is(err, vcs.ErrTreeNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if parent == previous {
		return true, nil
	}

	info, err := a.adapter.CommitInfo(ctx, repo, parent)
	if err != nil {
		return false, err
	}
	return info.ID == previousInfo.ID, nil
}

// commitChanges diffs each commit of the span against its own predecessor,
// oldest first.
func (a *Aggregator[R, V]) commitChanges(ctx context.Context, repo R, current, previous V) ([]model.CommitChanges, error) {
	revs, err := a.adapter.CommitsBetween(ctx, repo, current, previous)
	if err != nil {
		return nil, err
	}

	commits := make([]model.CommitChanges, 0, len(revs))
	for _, rev := range revs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		parent, err := a.adapter.Previous(ctx, repo, rev)
		if err != nil {
			return nil, err
		}
		lc, err := a.adapter.ChangesBetween(ctx, repo, rev, parent)
		if err != nil {
			return nil, err
		}
		commits = append(commits, model.NewCommitChanges(lc.Current(), lc.Diff()))
	}
	return commits, nil
}

// LastTag returns the formatted revision of the most recent tag.
func (a *Aggregator[R, V]) LastTag(ctx context.Context, path string, opts Options) (string, error) {
	repo, err := a.adapter.Open(workingCopy(path, opts))
	if err != nil {
		return "", err
	}
	defer func() {
		if err := a.adapter.Close(repo); err != nil {
			a.log.Warnf("Closing repository: %v", err)
		}
	}()

	rev, err := a.adapter.LastTagRevision(ctx, repo)
	if err != nil {
		return "", err
	}
	return a.adapter.FormatRevision(rev), nil
}

func workingCopy(path string, opts Options) string {
	if opts.VCSDir == "" {
		return path
	}
	return filepath.Join(path, opts.VCSDir)
}
