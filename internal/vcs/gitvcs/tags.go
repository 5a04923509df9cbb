package gitvcs

import (
	"context"
	"errors"
	"sort"

	"github.com/blang/semver/v4"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/masmgr/lastchanges-go/internal/vcs"
)

// Tags lists the repository tags whose target peels to a commit, newest
// commit first. Tags that cannot be peeled are skipped with a warning.
func (a *Adapter) Tags(ctx context.Context, r *Repository) ([]vcs.Tag, error) {
	iter, err := r.repo.Tags()
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var tags []vcs.Tag
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		tag, err := a.resolveTag(r.repo, ref)
		if err != nil {
			a.log.Warnf("Ignoring tag %s: %v", ref.Name().Short(), err)
			return nil
		}
		tags = append(tags, tag)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sortTags(tags)
	return tags, nil
}

func (a *Adapter) resolveTag(repo *git.Repository, ref *plumbing.Reference) (vcs.Tag, error) {
	tag := vcs.Tag{
		Name:   ref.Name().Short(),
		Target: ref.Hash().String(),
	}

	var commit *object.Commit
	tagObj, err := repo.TagObject(ref.Hash())
	switch {
	case err == nil:
		tag.Annotated = true
		commit, err = peelTag(tagObj)
	case errors.Is(err, plumbing.ErrObjectNotFound):
		commit, err = repo.CommitObject(ref.Hash())
	}
	if err != nil {
		return vcs.Tag{}, err
	}

	tag.Commit = commit.Hash.String()
	tag.When = commit.Committer.When
	return tag, nil
}

// sortTags orders by commit time descending, then by semantic version
// descending. Names that parse as versions come before names that do not;
// anything else keeps enumeration order.
func sortTags(tags []vcs.Tag) {
	sort.SliceStable(tags, func(i, j int) bool {
		ti, tj := tags[i].When, tags[j].When
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		vi, errI := semver.ParseTolerant(tags[i].Name)
		vj, errJ := semver.ParseTolerant(tags[j].Name)
		switch {
		case errI == nil && errJ == nil:
			return vi.GT(vj)
		case errI == nil:
			return true
		default:
			return false
		}
	})
}

// LastTagRevision returns the commit of the most recent tag.
func (a *Adapter) LastTagRevision(ctx context.Context, r *Repository) (plumbing.Hash, error) {
	tags, err := a.Tags(ctx, r)
	if err != nil {
		return plumbing.ZeroHash, vcs.NoTagFound(err, "Could not list tags of repository located at %s.", r.path)
	}
	if len(tags) == 0 {
		return plumbing.ZeroHash, vcs.NoTagFound(nil, "No tags found in repository located at %s.", r.path)
	}

	last := tags[0]
	iter, err := r.repo.Log(&git.LogOptions{From: plumbing.NewHash(last.Commit)})
	if err != nil {
		return plumbing.ZeroHash, vcs.NoTagFound(err, "Could not walk history from tag %s.", last.Name)
	}
	defer iter.Close()

	c, err := iter.Next()
	if err != nil {
		return plumbing.ZeroHash, vcs.NoTagFound(err, "Could not walk history from tag %s.", last.Name)
	}
	a.log.Debugf("Last tag is %s at %s", last.Name, c.Hash)
	return c.Hash, nil
}
