package vcs

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// MaxDetectDepth bounds how many directory levels below the workspace are
// searched for a marker directory.
const MaxDetectDepth = 5

var markers = []struct {
	name string
	kind Kind
}{
	{".git", Git},
	{".svn", Svn},
}

// Detection is the result of Detect.
type Detection struct {
	Kind Kind
	// Dir is the working copy directory, the parent of the marker.
	Dir string
}

// Detect finds the shallowest working copy under root by looking for a .git
// or .svn marker. Git wins when both markers sit at the same depth.
func Detect(root string) (Detection, error) {
	info, err := os.Stat(root)
	if err != nil {
		return Detection{}, RepositoryNotFound(err, "workspace not found at %s", root)
	}
	if !info.IsDir() {
		return Detection{}, RepositoryNotFound(nil, "workspace %s is not a directory", root)
	}

	kind, dir, err := DetectFS(os.DirFS(root))
	if err != nil {
		return Detection{}, err
	}
	if kind == "" {
		return Detection{}, RepositoryNotFound(nil, "no .git or .svn directory found under %s", root)
	}
	return Detection{Kind: kind, Dir: filepath.Join(root, filepath.FromSlash(dir))}, nil
}

// DetectFS is Detect over an arbitrary file system. It returns an empty
// kind when no marker exists, and a slash separated directory relative to
// the file system root otherwise.
func DetectFS(fsys fs.FS) (Kind, string, error) {
	for depth := 0; depth <= MaxDetectDepth; depth++ {
		prefix := strings.Repeat("*/", depth)
		for _, m := range markers {
			matches, err := doublestar.Glob(fsys, prefix+m.name)
			if err != nil {
				return "", "", fmt.Errorf("searching for %s: %w", m.name, err)
			}
			if len(matches) == 0 {
				continue
			}
			sort.Strings(matches)
			return m.kind, path.Dir(matches[0]), nil
		}
	}
	return "", "", nil
}
