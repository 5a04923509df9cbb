package gitvcs

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"

	"github.com/masmgr/lastchanges-go/internal/logging"
	"github.com/masmgr/lastchanges-go/internal/model"
	"github.com/masmgr/lastchanges-go/internal/vcs"
)

const treeSuffix = "^{tree}"

// maxTagDepth bounds how many nested tag objects are followed while peeling.
const maxTagDepth = 16

// Options configures an Adapter.
type Options struct {
	// Filter restricts which files appear in produced diffs.
	Filter vcs.PathFilter
	Logger *logging.Logger
}

// Adapter is the git back-end. It holds no per-repository state and is
// safe to share.
type Adapter struct {
	filter vcs.PathFilter
	log    *logging.Logger
}

// Compile-time interface conformance check.
var _ vcs.Adapter[*Repository, plumbing.Hash] = (*Adapter)(nil)

// New creates a git adapter.
func New(opts Options) *Adapter {
	return &Adapter{filter: opts.Filter, log: opts.Logger}
}

// Open opens the repository at path. A path naming the .git directory
// itself is mapped to its working tree.
func (a *Adapter) Open(path string) (*Repository, error) {
	return openRepository(path)
}

// Close releases the handle.
func (a *Adapter) Close(repo *Repository) error {
	return repo.close()
}

// Head returns the commit HEAD points at.
func (a *Adapter) Head(_ context.Context, r *Repository) (plumbing.Hash, error) {
	ref, err := r.repo.Head()
	if err != nil {
		return plumbing.ZeroHash, vcs.TreeNotFound(err, "Could not resolve HEAD of repository located at %s.", r.path)
	}
	return ref.Hash(), nil
}

// Resolve accepts anything go-git's ResolveRevision does, full object ids
// of any type and the <expr>^{tree} suffix.
func (a *Adapter) Resolve(ctx context.Context, r *Repository, expr string) (plumbing.Hash, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return plumbing.ZeroHash, vcs.TreeNotFound(nil, "Revision cannot be empty.")
	}

	if base, ok := strings.CutSuffix(expr, treeSuffix); ok {
		h, err := a.Resolve(ctx, r, base)
		if err != nil {
			return plumbing.ZeroHash, err
		}
		tree, err := a.tree(r, h)
		if err != nil {
			return plumbing.ZeroHash, vcs.TreeNotFound(err, "Could not resolve %s in repository located at %s.", expr, r.path)
		}
		return tree.Hash, nil
	}

	if plumbing.IsHash(expr) {
		h := plumbing.NewHash(expr)
		obj, err := r.repo.Object(plumbing.AnyObject, h)
		if err == nil {
			if tag, ok := obj.(*object.Tag); ok {
				c, err := peelTag(tag)
				if err != nil {
					return plumbing.ZeroHash, vcs.TreeNotFound(err, "Could not resolve %s in repository located at %s.", expr, r.path)
				}
				return c.Hash, nil
			}
			return h, nil
		}
	}

	h, err := r.repo.ResolveRevision(plumbing.Revision(expr))
	if err != nil {
		return plumbing.ZeroHash, vcs.TreeNotFound(err, "Could not resolve %s in repository located at %s.", expr, r.path)
	}
	return *h, nil
}

// Previous returns the first parent of rev. For a tree revision it returns
// the tree of the first parent of the commit holding that tree.
func (a *Adapter) Previous(ctx context.Context, r *Repository, rev plumbing.Hash) (plumbing.Hash, error) {
	obj, err := r.repo.Object(plumbing.AnyObject, rev)
	if err != nil {
		return plumbing.ZeroHash, vcs.TreeNotFound(err, "Could not find revision %s in repository located at %s.", rev, r.path)
	}
	_, isTree := obj.(*object.Tree)

	c, err := a.commitFor(ctx, r, obj)
	if err != nil {
		return plumbing.ZeroHash, vcs.TreeNotFound(err, "Could not find commit for %s in repository located at %s.", rev, r.path)
	}
	if c.NumParents() == 0 {
		return plumbing.ZeroHash, vcs.NoPreviousHead(r.path)
	}

	parent, err := c.Parent(0)
	if err != nil {
		return plumbing.ZeroHash, vcs.TreeNotFound(err, "Could not read parent of %s in repository located at %s.", c.Hash, r.path)
	}
	if isTree {
		return parent.TreeHash, nil
	}
	return parent.Hash, nil
}

// ChangesOf diffs HEAD against its first parent.
func (a *Adapter) ChangesOf(ctx context.Context, r *Repository) (*model.LastChanges, error) {
	head, err := a.Head(ctx, r)
	if err != nil {
		return nil, err
	}
	prev, err := a.Previous(ctx, r, head)
	if err != nil {
		return nil, err
	}
	return a.ChangesBetween(ctx, r, head, prev)
}

// ChangesBetween produces the unified diff turning previous into current.
func (a *Adapter) ChangesBetween(ctx context.Context, r *Repository, current, previous plumbing.Hash) (*model.LastChanges, error) {
	curTree, err := a.tree(r, current)
	if err != nil {
		return nil, vcs.TreeParse(err, "Could not parse revision %s as a tree in repository located at %s.", current, r.path)
	}
	prevTree, err := a.tree(r, previous)
	if err != nil {
		return nil, vcs.TreeParse(err, "Could not parse revision %s as a tree in repository located at %s.", previous, r.path)
	}

	diff, err := a.diffTrees(ctx, prevTree, curTree)
	if err != nil {
		return nil, vcs.DiffFailed(err, "Could not diff %s against %s in repository located at %s.", current, previous, r.path)
	}

	curInfo, err := a.CommitInfo(ctx, r, current)
	if err != nil {
		return nil, err
	}
	prevInfo, err := a.CommitInfo(ctx, r, previous)
	if err != nil {
		return nil, err
	}

	return model.NewLastChanges(curInfo, prevInfo, diff), nil
}

// CommitInfo reads the committer identity and message of rev. Tree
// revisions are mapped to the newest commit holding that tree.
func (a *Adapter) CommitInfo(ctx context.Context, r *Repository, rev plumbing.Hash) (model.CommitInfo, error) {
	obj, err := r.repo.Object(plumbing.AnyObject, rev)
	if err != nil {
		return model.CommitInfo{}, vcs.CommitInfoFailed(err, "Could not retrieve commit info of revision %s.", rev)
	}
	c, err := a.commitFor(ctx, r, obj)
	if err != nil {
		return model.CommitInfo{}, vcs.CommitInfoFailed(err, "Could not retrieve commit info of revision %s.", rev)
	}

	return model.NewCommitInfo(
		c.Hash.String(),
		strings.TrimRight(c.Message, "\n"),
		c.Committer.Name,
		c.Committer.Email,
		c.Committer.When,
	), nil
}

// CommitsBetween lists commits reachable from current but not from
// previous, oldest first by committer time.
func (a *Adapter) CommitsBetween(ctx context.Context, r *Repository, current, previous plumbing.Hash) ([]plumbing.Hash, error) {
	cur, err := a.commitOf(ctx, r, current)
	if err != nil {
		return nil, vcs.TreeNotFound(err, "Could not find commit for %s in repository located at %s.", current, r.path)
	}
	prev, err := a.commitOf(ctx, r, previous)
	if err != nil {
		return nil, vcs.TreeNotFound(err, "Could not find commit for %s in repository located at %s.", previous, r.path)
	}

	excluded := make(map[plumbing.Hash]bool)
	err = object.NewCommitPreorderIter(prev, nil, nil).ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		excluded[c.Hash] = true
		return nil
	})
	if err != nil {
		return nil, vcs.TreeNotFound(err, "Could not walk history of %s.", previous)
	}

	var commits []*object.Commit
	err = object.NewCommitPreorderIter(cur, excluded, nil).ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		commits = append(commits, c)
		return nil
	})
	if err != nil {
		return nil, vcs.TreeNotFound(err, "Could not walk history of %s.", current)
	}

	// Preorder yields newest first; reverse before the stable time sort so
	// equal timestamps keep topological order.
	for i, j := 0, len(commits)-1; i < j; i, j = i+1, j-1 {
		commits[i], commits[j] = commits[j], commits[i]
	}
	sort.SliceStable(commits, func(i, j int) bool {
		return commits[i].Committer.When.Before(commits[j].Committer.When)
	})

	hashes := make([]plumbing.Hash, len(commits))
	for i, c := range commits {
		hashes[i] = c.Hash
	}
	return hashes, nil
}

// FormatRevision returns the full hex id.
func (a *Adapter) FormatRevision(rev plumbing.Hash) string {
	return rev.String()
}

// tree returns the tree a revision denotes.
func (a *Adapter) tree(r *Repository, h plumbing.Hash) (*object.Tree, error) {
	obj, err := r.repo.Object(plumbing.AnyObject, h)
	if err != nil {
		return nil, err
	}
	switch o := obj.(type) {
	case *object.Tree:
		return o, nil
	case *object.Commit:
		return o.Tree()
	case *object.Tag:
		c, err := peelTag(o)
		if err != nil {
			return nil, err
		}
		return c.Tree()
	default:
		return nil, errNotTreeish
	}
}

func (a *Adapter) commitOf(ctx context.Context, r *Repository, h plumbing.Hash) (*object.Commit, error) {
	obj, err := r.repo.Object(plumbing.AnyObject, h)
	if err != nil {
		return nil, err
	}
	return a.commitFor(ctx, r, obj)
}

// commitFor maps an object to a commit. Trees are looked up by walking from
// HEAD in committer time order.
func (a *Adapter) commitFor(ctx context.Context, r *Repository, obj object.Object) (*object.Commit, error) {
	switch o := obj.(type) {
	case *object.Commit:
		return o, nil
	case *object.Tag:
		return peelTag(o)
	case *object.Tree:
		return a.commitForTree(ctx, r, o.Hash)
	default:
		return nil, errNotTreeish
	}
}

func (a *Adapter) commitForTree(ctx context.Context, r *Repository, tree plumbing.Hash) (*object.Commit, error) {
	head, err := r.repo.Head()
	if err != nil {
		return nil, err
	}
	iter, err := r.repo.Log(&git.LogOptions{From: head.Hash(), Order: git.LogOrderCommitterTime})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var found *object.Commit
	err = iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if c.TreeHash == tree {
			found = c
			return storer.ErrStop
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, errNoCommitForTree
	}
	return found, nil
}

var (
	errNotTreeish      = errors.New("object is neither a commit nor a tree")
	errNoCommitForTree = errors.New("no commit reachable from HEAD has this tree")
	errTagTooDeep      = errors.New("tag chain too deep")
)

// peelTag follows tag objects until a commit is reached.
func peelTag(tag *object.Tag) (*object.Commit, error) {
	for depth := 0; depth < maxTagDepth; depth++ {
		obj, err := tag.Object()
		if err != nil {
			return nil, err
		}
		switch o := obj.(type) {
		case *object.Commit:
			return o, nil
		case *object.Tag:
			tag = o
		default:
			return nil, errNotTreeish
		}
	}
	return nil, errTagTooDeep
}
