package output

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/masmgr/lastchanges-go/config"
	"github.com/masmgr/lastchanges-go/internal/lastchanges"
	"github.com/masmgr/lastchanges-go/internal/model"
	"github.com/masmgr/lastchanges-go/internal/vcs"
)

const pomDiff = "diff --git a/pom.xml b/pom.xml\n" +
	"index 1111111..2222222 100644\n" +
	"--- a/pom.xml\n" +
	"+++ b/pom.xml\n" +
	"@@ -1,3 +1,3 @@\n" +
	" <project>\n" +
	"-  <version>1.0</version>\n" +
	"+  <version>1.1</version>\n" +
	" </project>\n"

const mainDiff = "diff --git a/src/main.go b/src/main.go\n" +
	"--- a/src/main.go\n" +
	"+++ b/src/main.go\n" +
	"@@ -1 +1,2 @@\n" +
	" package main\n" +
	"+// <script>\n"

const sampleDiff = pomDiff + mainDiff

func newTestReport(t *testing.T) *Report {
	t.Helper()

	when := time.Date(2016, 6, 5, 22, 15, 20, 0, time.UTC)
	current := model.NewCommitInfo("27ad83a8fbee4d5fd8dd4e3c8f5a8b5d1e6c7a90", "bump version\n\ndetails", "Alice", "alice@example.com", when)
	previous := model.NewCommitInfo("5d7e1b2c3a4f5e6d7c8b9a0f1e2d3c4b5a697887", "initial", "Bob", "bob@example.com", when.Add(-time.Hour))
	middle := model.NewCommitInfo("9abcdef0123456789abcdef0123456789abcdef0", "add main", "Carol | Dev", "carol@example.com", when.Add(-time.Minute))

	changes := model.NewLastChanges(current, previous, sampleDiff).WithCommits([]model.CommitChanges{
		model.NewCommitChanges(middle, pomDiff),
		model.NewCommitChanges(current, sampleDiff),
	})

	cfg := config.DefaultConfig()
	return &Report{
		RepoPath:    "/test/repo",
		VCS:         vcs.Git,
		Since:       lastchanges.LastTag,
		GeneratedAt: when,
		Changes:     changes,
		Render:      cfg.Render(),
	}
}

func writeToTemp(t *testing.T, w ReportWriter, report *Report) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "out")
	if err := w.Write(report, OutputOptions{OutputPath: path}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read output: %v", err)
	}
	return string(data)
}
