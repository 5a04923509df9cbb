package output

import (
	"fmt"
	"strings"

	"github.com/masmgr/lastchanges-go/internal/model"
)

// MarkdownWriter writes reports as Markdown.
type MarkdownWriter struct{}

// Write outputs the report as Markdown.
func (w *MarkdownWriter) Write(report *Report, options OutputOptions) error {
	out, file, err := openOutputWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	changes := report.Changes
	stat := diffStat(changes.Diff())

	fmt.Fprintln(out, "# Last Changes")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "**Repository:** %s (%s)\n\n", report.RepoPath, report.VCS)
	fmt.Fprintf(out, "**Since:** %s\n\n", report.Since)

	fmt.Fprintln(out, "| | Revision | Author | Date | Message |")
	fmt.Fprintln(out, "|---|----------|--------|------|---------|")
	fmt.Fprintln(out, markdownRevisionRow("Current", changes.Current()))
	fmt.Fprintln(out, markdownRevisionRow("Previous", changes.Previous()))
	fmt.Fprintln(out)

	fmt.Fprintf(out, "**Files changed:** %d (+%d -%d)\n\n", len(stat.Files), stat.Added, stat.Deleted)
	if report.Render.ShowFiles {
		for _, f := range stat.Files {
			fmt.Fprintf(out, "- `%s`\n", f)
		}
		if len(stat.Files) > 0 {
			fmt.Fprintln(out)
		}
	}

	if commits := changes.Commits(); len(commits) > 0 {
		fmt.Fprintln(out, "## Commits")
		fmt.Fprintln(out)
		fmt.Fprintln(out, "| # | Revision | Author | Date | Message |")
		fmt.Fprintln(out, "|---|----------|--------|------|---------|")
		for i, c := range commits {
			info := c.Info()
			fmt.Fprintf(out, "| %d | `%s` | %s | %s | %s |\n",
				i+1, info.ShortID(), escapeMarkdown(info.AuthorName), info.Date, escapeMarkdown(info.Subject()))
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintln(out, "## Diff")
	fmt.Fprintln(out)
	fence := codeFence(changes.Diff())
	fmt.Fprintln(out, fence+"diff")
	fmt.Fprint(out, changes.Diff())
	if d := changes.Diff(); d != "" && !strings.HasSuffix(d, "\n") {
		fmt.Fprintln(out)
	}
	fmt.Fprintln(out, fence)

	return nil
}

func markdownRevisionRow(label string, info model.CommitInfo) string {
	if info.IsZero() {
		return fmt.Sprintf("| %s | - | | | |", label)
	}
	return fmt.Sprintf("| %s | `%s` | %s | %s | %s |",
		label, info.ShortID(), escapeMarkdown(info.AuthorName), info.Date, escapeMarkdown(info.Subject()))
}

// codeFence returns a backtick fence longer than any run inside text.
func codeFence(text string) string {
	longest, run := 0, 0
	for _, r := range text {
		if r == '`' {
			run++
			if run > longest {
				longest = run
			}
			continue
		}
		run = 0
	}
	if longest < 3 {
		return "```"
	}
	return strings.Repeat("`", longest+1)
}

func escapeMarkdown(s string) string {
	replacer := strings.NewReplacer(
		"|", "\\|",
		"*", "\\*",
		"_", "\\_",
		"`", "\\`",
	)
	return replacer.Replace(s)
}
