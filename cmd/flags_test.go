package cmd

import (
	"flag"
	"testing"

	"github.com/urfave/cli/v2"

	"github.com/masmgr/lastchanges-go/internal/output"
)

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    output.OutputFormat
		wantErr bool
	}{
		{input: "json", want: output.FormatJSON},
		{input: "markdown", want: output.FormatMarkdown},
		{input: "md", want: output.FormatMarkdown},
		{input: "ci", want: output.FormatCI},
		{input: "ndjson", want: output.FormatCI},
		{input: "patch", want: output.FormatDiff},
		{input: "", want: output.FormatConsole},
		{input: "csv", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseOutputFormat(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("parseOutputFormat(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func newFlagContext(t *testing.T, flags []cli.Flag, args []string) *cli.Context {
	t.Helper()

	set := flag.NewFlagSet("test", flag.ContinueOnError)
	for _, f := range flags {
		if err := f.Apply(set); err != nil {
			t.Fatalf("Apply: %v", err)
		}
	}
	if err := set.Parse(args); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return cli.NewContext(App(), set, nil)
}

func TestConfigOverrides(t *testing.T) {
	c := newFlagContext(t, append(globalFlags(), changesFlags()...), []string{
		"--since", "last-tag",
		"--vcs-dir", "checkout",
		"--exclude", "docs/**",
		"--exclude", "*.md",
		"--build", "7",
		"--store", "memory",
		"--compare-last-successful-build",
	})

	got := configOverrides(c)
	if !got.CompareLastSuccessfulBuild {
		t.Errorf("CompareLastSuccessfulBuild = false, expected true")
	}
	if got.Since != "last-tag" || got.VCSDir != "checkout" || got.Build != 7 {
		t.Errorf("overrides = %+v", got)
	}
	if len(got.Filters.Exclude) != 2 || got.Filters.Exclude[1] != "*.md" {
		t.Errorf("Filters.Exclude = %v", got.Filters.Exclude)
	}
	if got.Store.Backend != "memory" {
		t.Errorf("Store.Backend = %q", got.Store.Backend)
	}
	if got.Revision != "" || len(got.Filters.Include) != 0 {
		t.Errorf("unset flags leaked into overrides: %+v", got)
	}
}

func TestLoadConfig_FlagsOverDefaults(t *testing.T) {
	c := newFlagContext(t, append(globalFlags(), changesFlags()...), []string{
		"--since", "LAST_SUCCESSFUL_BUILD",
		"--include", "src/**",
	})

	cfg, err := loadConfig(c)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Since != "LAST_SUCCESSFUL_BUILD" {
		t.Errorf("Since = %q", cfg.Since)
	}
	if len(cfg.Filters.Include) != 1 {
		t.Errorf("Filters.Include = %v", cfg.Filters.Include)
	}
	if cfg.Format != "line" || cfg.Store.Backend != "bolt" {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoadConfig_InvalidSince(t *testing.T) {
	c := newFlagContext(t, append(globalFlags(), changesFlags()...), []string{"--since", "yesterday"})
	if _, err := loadConfig(c); err == nil {
		t.Fatal("expected error, got nil")
	}
}
