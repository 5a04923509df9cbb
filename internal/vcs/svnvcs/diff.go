package svnvcs

import (
	"strings"

	"github.com/masmgr/lastchanges-go/internal/vcs"
)

const indexPrefix = "Index: "

// filterDiff keeps the "Index: <path>" blocks of svn diff output whose path
// passes the filter. Text before the first block is kept.
func filterDiff(diff string, filter vcs.PathFilter) string {
	if filter.Empty() || diff == "" {
		return diff
	}

	var b strings.Builder
	keep := true
	for _, line := range strings.SplitAfter(diff, "\n") {
		if strings.HasPrefix(line, indexPrefix) {
			path := strings.TrimRight(strings.TrimPrefix(line, indexPrefix), "\r\n")
			keep = filter.Match(path)
		}
		if keep {
			b.WriteString(line)
		}
	}
	return b.String()
}
