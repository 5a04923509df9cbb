package output

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/masmgr/lastchanges-go/internal/model"
)

// ConsoleWriter writes reports to the terminal with a colored diff.
type ConsoleWriter struct{}

var (
	titleColor   = color.New(color.FgGreen, color.Bold)
	addedColor   = color.New(color.FgGreen)
	deletedColor = color.New(color.FgRed)
	hunkColor    = color.New(color.FgCyan)
	headerColor  = color.New(color.Bold)
)

// Write outputs the report to the console.
func (w *ConsoleWriter) Write(report *Report, options OutputOptions) error {
	out, file, err := openOutputWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	changes := report.Changes
	stat := diffStat(changes.Diff())

	titleColor.Fprintln(out, "Last Changes")
	fmt.Fprintf(out, "Repository: %s (%s)\n", report.RepoPath, report.VCS)
	fmt.Fprintf(out, "Since: %s\n", report.Since)
	fmt.Fprintf(out, "Current:  %s\n", revisionLine(changes.Current()))
	fmt.Fprintf(out, "Previous: %s\n", revisionLine(changes.Previous()))
	fmt.Fprintf(out, "Files changed: %d, +%d -%d\n", len(stat.Files), stat.Added, stat.Deleted)

	if report.Render.ShowFiles && len(stat.Files) > 0 {
		fmt.Fprintln(out)
		for _, f := range stat.Files {
			fmt.Fprintf(out, "  %s\n", f)
		}
	}

	if commits := changes.Commits(); len(commits) > 0 {
		fmt.Fprintf(out, "\nCommits (%d):\n", len(commits))
		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "#\tRevision\tAuthor\tDate\tMessage")
		for i, c := range commits {
			info := c.Info()
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
				i+1, info.ShortID(), info.AuthorName, info.Date, truncateMessage(info.Subject(), 50))
		}
		tw.Flush()
	}

	if changes.Diff() == "" {
		fmt.Fprintln(out, "\nNo changes.")
		return nil
	}

	fmt.Fprintln(out)
	writeColoredDiff(out, changes.Diff())
	return nil
}

func revisionLine(info model.CommitInfo) string {
	if info.IsZero() {
		return "-"
	}
	return fmt.Sprintf("%s %s <%s> %s", info.ShortID(), info.AuthorName, info.Date, info.Subject())
}

func writeColoredDiff(out io.Writer, diff string) {
	for _, line := range strings.Split(strings.TrimSuffix(diff, "\n"), "\n") {
		switch {
		case strings.HasPrefix(line, "diff --git "), strings.HasPrefix(line, "Index: "),
			strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			headerColor.Fprintln(out, line)
		case strings.HasPrefix(line, "@@"):
			hunkColor.Fprintln(out, line)
		case strings.HasPrefix(line, "+"):
			addedColor.Fprintln(out, line)
		case strings.HasPrefix(line, "-"):
			deletedColor.Fprintln(out, line)
		default:
			fmt.Fprintln(out, line)
		}
	}
}
