package gitvcs

import (
	"context"
	"strings"

	fdiff "github.com/go-git/go-git/v5/plumbing/format/diff"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// diffTrees renders the unified diff turning from into to with go-git's
// own tree comparison and encoder.
func (a *Adapter) diffTrees(ctx context.Context, from, to *object.Tree) (string, error) {
	changes, err := object.DiffTreeWithOptions(ctx, from, to, object.DefaultDiffTreeOptions)
	if err != nil {
		return "", err
	}

	patch, err := changes.PatchContext(ctx)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	enc := fdiff.NewUnifiedEncoder(&b, fdiff.DefaultContextLines)
	if err := enc.Encode(a.filterPatch(patch)); err != nil {
		return "", err
	}
	return b.String(), nil
}

// filteredPatch is a patch restricted to the file patches passing a filter.
type filteredPatch struct {
	files   []fdiff.FilePatch
	message string
}

func (p filteredPatch) FilePatches() []fdiff.FilePatch { return p.files }
func (p filteredPatch) Message() string                { return p.message }

func (a *Adapter) filterPatch(patch fdiff.Patch) fdiff.Patch {
	if a.filter.Empty() {
		return patch
	}

	var kept []fdiff.FilePatch
	for _, fp := range patch.FilePatches() {
		if a.filter.MatchAny(filePatchPaths(fp)...) {
			kept = append(kept, fp)
		}
	}
	return filteredPatch{files: kept, message: patch.Message()}
}

func filePatchPaths(fp fdiff.FilePatch) []string {
	from, to := fp.Files()
	var paths []string
	if from != nil {
		paths = append(paths, from.Path())
	}
	if to != nil {
		paths = append(paths, to.Path())
	}
	return paths
}
