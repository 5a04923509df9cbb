package output

import (
	"encoding/json"
	"fmt"
	"io"
)

// CIWriter writes reports as NDJSON (one JSON object per line) for CI pipelines.
type CIWriter struct{}

// CISummary is the first line of CI output.
type CISummary struct {
	Type        string `json:"type"`
	VCS         string `json:"vcs"`
	Since       string `json:"since"`
	Current     string `json:"current"`
	Previous    string `json:"previous"`
	CommitCount int    `json:"commitCount"`
	FileCount   int    `json:"fileCount"`
	Added       int    `json:"added"`
	Deleted     int    `json:"deleted"`
}

// CICommitEntry is one commit of the span.
type CICommitEntry struct {
	Type    string `json:"type"`
	ID      string `json:"commitId"`
	Author  string `json:"author"`
	Date    string `json:"date"`
	Subject string `json:"subject"`
	Files   int    `json:"files"`
}

// CIFileEntry is one changed file of the full diff.
type CIFileEntry struct {
	Type string `json:"type"`
	Path string `json:"path"`
}

// Write outputs the report as NDJSON.
func (w *CIWriter) Write(report *Report, options OutputOptions) error {
	out, file, err := openOutputWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	changes := report.Changes
	stat := diffStat(changes.Diff())

	summary := CISummary{
		Type:        "summary",
		VCS:         string(report.VCS),
		Since:       string(report.Since),
		Current:     changes.Current().ID,
		Previous:    changes.Previous().ID,
		CommitCount: changes.CommitCount(),
		FileCount:   len(stat.Files),
		Added:       stat.Added,
		Deleted:     stat.Deleted,
	}
	if err := writeNDJSONLine(out, summary); err != nil {
		return err
	}

	for _, c := range changes.Commits() {
		info := c.Info()
		entry := CICommitEntry{
			Type:    "commit",
			ID:      info.ID,
			Author:  info.AuthorName,
			Date:    info.Date,
			Subject: info.Subject(),
			Files:   len(diffStat(c.Diff()).Files),
		}
		if err := writeNDJSONLine(out, entry); err != nil {
			return err
		}
	}

	for _, path := range stat.Files {
		if err := writeNDJSONLine(out, CIFileEntry{Type: "file", Path: path}); err != nil {
			return err
		}
	}

	return nil
}

func writeNDJSONLine(w io.Writer, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal NDJSON: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}
