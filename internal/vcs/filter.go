package vcs

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// PathFilter restricts which file paths appear in a diff.
// The zero value accepts every path.
type PathFilter struct {
	Include []string
	Exclude []string
}

// NewPathFilter validates the glob patterns and returns a filter.
func NewPathFilter(include, exclude []string) (PathFilter, error) {
	for _, pattern := range append(append([]string(nil), include...), exclude...) {
		if !doublestar.ValidatePattern(pattern) {
			return PathFilter{}, fmt.Errorf("invalid path pattern %q", pattern)
		}
	}
	return PathFilter{Include: include, Exclude: exclude}, nil
}

// Empty reports whether the filter accepts everything.
func (f PathFilter) Empty() bool {
	return len(f.Include) == 0 && len(f.Exclude) == 0
}

// Match reports whether path passes the filter. Exclude wins over include.
func (f PathFilter) Match(path string) bool {
	path = strings.ReplaceAll(path, "\\", "/")

	for _, pattern := range f.Exclude {
		if matched, _ := doublestar.Match(pattern, path); matched {
			return false
		}
	}

	if len(f.Include) == 0 {
		return true
	}

	for _, pattern := range f.Include {
		if matched, _ := doublestar.Match(pattern, path); matched {
			return true
		}
	}

	return false
}

// MatchAny reports whether any of the non-empty paths passes the filter.
// Renames are kept when either side matches.
func (f PathFilter) MatchAny(paths ...string) bool {
	for _, p := range paths {
		if p != "" && f.Match(p) {
			return true
		}
	}
	return false
}
