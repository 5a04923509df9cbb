package output

import "testing"

func TestNewReportWriter(t *testing.T) {
	tests := []struct {
		name   string
		format OutputFormat
		check  func(ReportWriter) bool
	}{
		{name: "Console", format: FormatConsole, check: func(w ReportWriter) bool { _, ok := w.(*ConsoleWriter); return ok }},
		{name: "JSON", format: FormatJSON, check: func(w ReportWriter) bool { _, ok := w.(*JSONWriter); return ok }},
		{name: "Markdown", format: FormatMarkdown, check: func(w ReportWriter) bool { _, ok := w.(*MarkdownWriter); return ok }},
		{name: "Diff", format: FormatDiff, check: func(w ReportWriter) bool { _, ok := w.(*DiffWriter); return ok }},
		{name: "CI", format: FormatCI, check: func(w ReportWriter) bool { _, ok := w.(*CIWriter); return ok }},
		{name: "Unknown defaults to Console", format: "unknown", check: func(w ReportWriter) bool { _, ok := w.(*ConsoleWriter); return ok }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writer := NewReportWriter(tt.format)
			if writer == nil {
				t.Fatal("NewReportWriter returned nil")
			}
			if !tt.check(writer) {
				t.Errorf("NewReportWriter(%q) returned %T", tt.format, writer)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected OutputFormat
		wantErr  bool
	}{
		{input: "", expected: FormatConsole},
		{input: "JSON", expected: FormatJSON},
		{input: " markdown ", expected: FormatMarkdown},
		{input: "diff", expected: FormatDiff},
		{input: "ci", expected: FormatCI},
		{input: "csv", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseFormat(%q) expected error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseFormat(%q): %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("ParseFormat(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}
