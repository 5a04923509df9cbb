// Package model holds the result records produced by the change aggregation
// engine and read by report writers and the build store.
package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// CommitInfo represents the metadata of one resolved commit revision.
type CommitInfo struct {
	ID          string    `json:"commitId"`
	Message     string    `json:"commitMessage"`
	AuthorName  string    `json:"committerName"`
	AuthorEmail string    `json:"committerEmail"`
	Date        string    `json:"commitDate"`
	When        time.Time `json:"when"`
}

// NewCommitInfo builds a CommitInfo and renders its display date from when.
func NewCommitInfo(id, message, authorName, authorEmail string, when time.Time) CommitInfo {
	return CommitInfo{
		ID:          id,
		Message:     message,
		AuthorName:  authorName,
		AuthorEmail: authorEmail,
		Date:        FormatCommitDate(when),
		When:        when,
	}
}

// ShortID returns numeric (svn) ids unchanged and truncates hash ids.
func (c CommitInfo) ShortID() string {
	if _, err := strconv.ParseInt(c.ID, 10, 64); err == nil {
		return c.ID
	}
	if len(c.ID) <= 8 {
		return c.ID
	}
	return c.ID[:8]
}

// Subject returns the first line of the commit message.
func (c CommitInfo) Subject() string {
	if idx := strings.IndexByte(c.Message, '\n'); idx != -1 {
		return c.Message[:idx]
	}
	return c.Message
}

// IsZero reports whether the value was never populated.
func (c CommitInfo) IsZero() bool {
	return c.ID == ""
}

func (c CommitInfo) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Commit: %s\n", c.ID)
	fmt.Fprintf(&b, "Author: %s\n", c.AuthorName)
	fmt.Fprintf(&b, "E-mail: %s\n", c.AuthorEmail)
	fmt.Fprintf(&b, "Date: %s\n", c.Date)
	fmt.Fprintf(&b, "Message: %s\n", c.Message)
	return b.String()
}

// CommitChanges pairs a commit with its diff against its own predecessor.
type CommitChanges struct {
	info CommitInfo
	diff string
}

// NewCommitChanges creates a CommitChanges value.
func NewCommitChanges(info CommitInfo, diff string) CommitChanges {
	return CommitChanges{info: info, diff: diff}
}

// Info returns the commit metadata.
func (c CommitChanges) Info() CommitInfo { return c.info }

// Diff returns the unified diff of the commit.
func (c CommitChanges) Diff() string { return c.diff }

// EscapedDiff returns the diff escaped for embedding in a script string.
func (c CommitChanges) EscapedDiff() string { return EscapeJS(c.diff) }

// Equal compares commit ids only; diff content is ignored.
func (c CommitChanges) Equal(other CommitChanges) bool {
	if c.info.ID == "" || other.info.ID == "" {
		return false
	}
	return c.info.ID == other.info.ID
}

// LastChanges is the result of one aggregation pass: both endpoints, the
// diff between them and the per-commit breakdown of the span.
type LastChanges struct {
	current  CommitInfo
	previous CommitInfo
	diff     string
	commits  []CommitChanges
}

// NewLastChanges creates a LastChanges without per-commit entries.
func NewLastChanges(current, previous CommitInfo, diff string) *LastChanges {
	return &LastChanges{
		current:  current,
		previous: previous,
		diff:     diff,
	}
}

// WithCommits returns a copy of lc carrying the given per-commit changes,
// ordered oldest to newest.
func (lc *LastChanges) WithCommits(commits []CommitChanges) *LastChanges {
	out := *lc
	out.commits = append([]CommitChanges(nil), commits...)
	return &out
}

// Current returns the commit the diff was computed for.
func (lc *LastChanges) Current() CommitInfo { return lc.current }

// Previous returns the commit the diff was computed against.
func (lc *LastChanges) Previous() CommitInfo { return lc.previous }

// Diff returns the raw unified diff.
func (lc *LastChanges) Diff() string { return lc.diff }

// EscapedDiff returns the diff escaped for embedding in a script string.
// It always escapes from the raw diff, so repeated calls never compound.
func (lc *LastChanges) EscapedDiff() string { return EscapeJS(lc.diff) }

// Commits returns a copy of the per-commit changes, oldest first.
func (lc *LastChanges) Commits() []CommitChanges {
	return append([]CommitChanges(nil), lc.commits...)
}

// CommitCount returns the number of per-commit entries.
func (lc *LastChanges) CommitCount() int { return len(lc.commits) }
