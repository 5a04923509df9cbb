package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/masmgr/lastchanges-go/config"
	"github.com/masmgr/lastchanges-go/internal/model"
)

// JSONWriter writes reports as JSON.
type JSONWriter struct{}

// JSONReport is the JSON output structure. Diff holds the raw text and
// EscapedDiff the form safe to embed in a script literal.
type JSONReport struct {
	RepoPath    string              `json:"repo"`
	VCS         string              `json:"vcs"`
	Since       string              `json:"since"`
	GeneratedAt string              `json:"generatedAt"`
	Current     model.CommitInfo    `json:"currentRevision"`
	Previous    model.CommitInfo    `json:"previousRevision"`
	Diff        string              `json:"diff"`
	EscapedDiff string              `json:"escapedDiff"`
	Stat        DiffStat            `json:"stat"`
	Commits     []JSONCommit        `json:"commits"`
	Render      config.RenderConfig `json:"render"`
}

// JSONCommit is one commit of the span.
type JSONCommit struct {
	Commit      model.CommitInfo `json:"commitInfo"`
	Diff        string           `json:"diff"`
	EscapedDiff string           `json:"escapedDiff"`
}

func newJSONReport(report *Report) JSONReport {
	changes := report.Changes
	commits := make([]JSONCommit, 0, changes.CommitCount())
	for _, c := range changes.Commits() {
		commits = append(commits, JSONCommit{
			Commit:      c.Info(),
			Diff:        c.Diff(),
			EscapedDiff: c.EscapedDiff(),
		})
	}

	return JSONReport{
		RepoPath:    report.RepoPath,
		VCS:         string(report.VCS),
		Since:       string(report.Since),
		GeneratedAt: report.GeneratedAt.Format(reportDateTimeLayout),
		Current:     changes.Current(),
		Previous:    changes.Previous(),
		Diff:        changes.Diff(),
		EscapedDiff: changes.EscapedDiff(),
		Stat:        diffStat(changes.Diff()),
		Commits:     commits,
		Render:      report.Render,
	}
}

// Write outputs the report as JSON.
func (w *JSONWriter) Write(report *Report, options OutputOptions) error {
	out, file, err := openOutputWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}
	return writeJSON(out, newJSONReport(report))
}

func writeJSON(out io.Writer, data interface{}) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
