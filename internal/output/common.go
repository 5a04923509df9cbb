package output

import (
	"io"
	"os"
	"strconv"
	"strings"
)

const reportDateTimeLayout = "2006-01-02T15:04:05Z07:00"

func openOutputWriter(outputPath string) (io.Writer, *os.File, error) {
	if outputPath == "" {
		return os.Stdout, nil, nil
	}
	file, err := os.Create(outputPath)
	if err != nil {
		return nil, nil, err
	}
	return file, file, nil
}

// DiffStat summarizes a unified diff.
type DiffStat struct {
	Files   []string `json:"files"`
	Added   int      `json:"added"`
	Deleted int      `json:"deleted"`
}

// diffStat counts files and changed lines in git or svn unified diff text.
// Lines are only counted inside hunks, so removed or added lines that start
// with "--" or "++" are not mistaken for file headers.
func diffStat(diff string) DiffStat {
	stat := DiffStat{Files: []string{}}
	oldLeft, newLeft := 0, 0
	for _, line := range strings.Split(diff, "\n") {
		if oldLeft > 0 || newLeft > 0 {
			switch {
			case strings.HasPrefix(line, "+"):
				stat.Added++
				newLeft--
			case strings.HasPrefix(line, "-"):
				stat.Deleted++
				oldLeft--
			case strings.HasPrefix(line, `\`):
			default:
				oldLeft--
				newLeft--
			}
			continue
		}

		switch {
		case strings.HasPrefix(line, "diff --git "):
			stat.Files = append(stat.Files, gitDiffPath(line))
		case strings.HasPrefix(line, "Index: "):
			stat.Files = append(stat.Files, strings.TrimSpace(strings.TrimPrefix(line, "Index: ")))
		case strings.HasPrefix(line, "@@ "):
			oldLeft, newLeft = hunkSizes(line)
		}
	}
	return stat
}

// hunkSizes returns the old and new line counts of a "@@ -l,s +l,s @@" header.
// An omitted count means one line.
func hunkSizes(header string) (int, int) {
	fields := strings.Fields(header)
	if len(fields) < 3 {
		return 0, 0
	}
	return rangeSize(fields[1], "-"), rangeSize(fields[2], "+")
}

func rangeSize(r, sign string) int {
	r, ok := strings.CutPrefix(r, sign)
	if !ok {
		return 0
	}
	_, size, found := strings.Cut(r, ",")
	if !found {
		return 1
	}
	n, err := strconv.Atoi(size)
	if err != nil {
		return 0
	}
	return n
}

// gitDiffPath returns the new-side path of a "diff --git a/x b/y" header.
func gitDiffPath(header string) string {
	rest := strings.TrimPrefix(header, "diff --git ")
	if i := strings.LastIndex(rest, " b/"); i >= 0 {
		return rest[i+3:]
	}
	return rest
}

func truncateMessage(msg string, maxLen int) string {
	if len(msg) <= maxLen {
		return msg
	}
	return msg[:maxLen-3] + "..."
}
