package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/masmgr/lastchanges-go/config"
	"github.com/masmgr/lastchanges-go/internal/lastchanges"
	"github.com/masmgr/lastchanges-go/internal/model"
	"github.com/masmgr/lastchanges-go/internal/vcs"
)

// Compile-time interface conformance checks.
var (
	_ ReportWriter = (*ConsoleWriter)(nil)
	_ ReportWriter = (*JSONWriter)(nil)
	_ ReportWriter = (*MarkdownWriter)(nil)
	_ ReportWriter = (*DiffWriter)(nil)
	_ ReportWriter = (*CIWriter)(nil)
)

// OutputFormat represents the output format type.
type OutputFormat string

const (
	FormatConsole  OutputFormat = "console"
	FormatJSON     OutputFormat = "json"
	FormatMarkdown OutputFormat = "markdown"
	FormatDiff     OutputFormat = "diff"
	FormatCI       OutputFormat = "ci"
)

// Formats lists the accepted output formats.
var Formats = []OutputFormat{FormatConsole, FormatJSON, FormatMarkdown, FormatDiff, FormatCI}

// ParseFormat validates a user supplied format name.
func ParseFormat(s string) (OutputFormat, error) {
	f := OutputFormat(strings.ToLower(strings.TrimSpace(s)))
	if f == "" {
		return FormatConsole, nil
	}
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown output format %q", s)
}

// OutputOptions controls output behavior.
type OutputOptions struct {
	Format     OutputFormat
	OutputPath string
}

// Report is a published set of last changes.
type Report struct {
	RepoPath    string
	VCS         vcs.Kind
	Since       lastchanges.Policy
	GeneratedAt time.Time
	Changes     *model.LastChanges
	Render      config.RenderConfig
}

// ReportWriter writes a last changes report.
type ReportWriter interface {
	Write(report *Report, options OutputOptions) error
}

// NewReportWriter creates a report writer for the specified format.
func NewReportWriter(format OutputFormat) ReportWriter {
	switch format {
	case FormatJSON:
		return &JSONWriter{}
	case FormatMarkdown:
		return &MarkdownWriter{}
	case FormatDiff:
		return &DiffWriter{}
	case FormatCI:
		return &CIWriter{}
	default:
		return &ConsoleWriter{}
	}
}
