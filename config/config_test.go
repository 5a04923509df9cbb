package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/masmgr/lastchanges-go/internal/buildstore"
	"github.com/masmgr/lastchanges-go/internal/lastchanges"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Format != "line" {
		t.Errorf("Format = %q, expected line", cfg.Format)
	}
	if cfg.Matching != "none" {
		t.Errorf("Matching = %q, expected none", cfg.Matching)
	}
	if !cfg.ShowFiles || !cfg.SynchronisedScroll {
		t.Error("ShowFiles and SynchronisedScroll should default to true")
	}
	if cfg.MatchWordsThresholdValue() != 0.25 {
		t.Errorf("MatchWordsThresholdValue() = %f, expected 0.25", cfg.MatchWordsThresholdValue())
	}
	if cfg.MatchingMaxComparisonsValue() != 1000 {
		t.Errorf("MatchingMaxComparisonsValue() = %d, expected 1000", cfg.MatchingMaxComparisonsValue())
	}
	if cfg.Store.Backend != "bolt" || cfg.Store.Path != buildstore.DefaultPath {
		t.Errorf("Store = %+v", cfg.Store)
	}
	if cfg.CompressThresholdKB != 250 {
		t.Errorf("CompressThresholdKB = %d, expected 250", cfg.CompressThresholdKB)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config does not validate: %v", err)
	}
}

func TestNumericFallbacks(t *testing.T) {
	tests := []struct {
		name        string
		threshold   string
		comparisons string
		wantThresh  float64
		wantComp    int
	}{
		{name: "Valid", threshold: "0.5", comparisons: "2000", wantThresh: 0.5, wantComp: 2000},
		{name: "Not numbers", threshold: "abc", comparisons: "lots", wantThresh: 0.25, wantComp: 1000},
		{name: "Empty", threshold: "", comparisons: "", wantThresh: 0.25, wantComp: 1000},
		{name: "Out of range", threshold: "1.5", comparisons: "-3", wantThresh: 0.25, wantComp: 1000},
		{name: "Padded", threshold: " 0.1 ", comparisons: " 10 ", wantThresh: 0.1, wantComp: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.MatchWordsThreshold = tt.threshold
			cfg.MatchingMaxComparisons = tt.comparisons

			render := cfg.Render()
			if render.MatchWordsThreshold != tt.wantThresh {
				t.Errorf("MatchWordsThreshold = %f, expected %f", render.MatchWordsThreshold, tt.wantThresh)
			}
			if render.MatchingMaxComparisons != tt.wantComp {
				t.Errorf("MatchingMaxComparisons = %d, expected %d", render.MatchingMaxComparisons, tt.wantComp)
			}
		})
	}
}

func TestLoadConfig_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".lastchanges.yaml")
	content := `format: side
matching: word
since: last-tag
filters:
  include:
    - "src/**"
store:
  backend: redis
  redis:
    addr: "redis:6379"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Format != "side" || cfg.Matching != "word" || cfg.Since != "last-tag" {
		t.Errorf("cfg = %+v", cfg)
	}
	if len(cfg.Filters.Include) != 1 || cfg.Filters.Include[0] != "src/**" {
		t.Errorf("Filters.Include = %v", cfg.Filters.Include)
	}
	if cfg.Store.Backend != "redis" || cfg.Store.Redis.Addr != "redis:6379" {
		t.Errorf("Store = %+v", cfg.Store)
	}
	// untouched keys keep their defaults
	if cfg.Store.Redis.Prefix != "lastchanges" || !cfg.ShowFiles || cfg.CompressThresholdKB != 250 {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoadConfig_JSONAndMissing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".lastchanges.json")
	if err := os.WriteFile(path, []byte(`{"showFiles": false, "compressThresholdKB": 10}`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.ShowFiles || cfg.CompressThresholdKB != 10 {
		t.Errorf("cfg = %+v", cfg)
	}

	cfg, err = LoadConfig(filepath.Join(dir, "missing.json"))
	if err != nil {
		t.Fatalf("LoadConfig(missing): %v", err)
	}
	if cfg.Format != "line" {
		t.Error("missing file should yield defaults")
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("format: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(bad); err == nil {
		t.Error("expected parse error")
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	for _, name := range []string{"out.json", "out.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			cfg := DefaultConfig()
			cfg.Since = "last-successful-build"
			cfg.Filters.Exclude = []string{"vendor/**"}

			if err := SaveConfig(cfg, path); err != nil {
				t.Fatalf("SaveConfig: %v", err)
			}
			loaded, err := LoadConfig(path)
			if err != nil {
				t.Fatalf("LoadConfig: %v", err)
			}
			if loaded.Since != cfg.Since || len(loaded.Filters.Exclude) != 1 {
				t.Errorf("loaded = %+v", loaded)
			}
		})
	}
}

func TestMerge(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.Merge(&Config{
		Since:   "last-tag",
		VCSDir:  "checkout",
		Filters: FilterConfig{Exclude: []string{"docs/**"}},
	})
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}

	if cfg.Since != "last-tag" || cfg.VCSDir != "checkout" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.Format != "line" || cfg.Store.Backend != "bolt" {
		t.Errorf("zero overrides clobbered defaults: %+v", cfg)
	}
	if len(cfg.Filters.Exclude) != 1 {
		t.Errorf("Filters.Exclude = %v", cfg.Filters.Exclude)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{name: "Format", modify: func(c *Config) { c.Format = "split" }},
		{name: "Matching", modify: func(c *Config) { c.Matching = "char" }},
		{name: "Since", modify: func(c *Config) { c.Since = "yesterday" }},
		{name: "Backend", modify: func(c *Config) { c.Store.Backend = "sqlite" }},
		{name: "Build", modify: func(c *Config) { c.Build = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Since = "LAST_TAG"
	cfg.VCSDir = "sub"

	opts, err := cfg.Options("abc123")
	if err != nil {
		t.Fatalf("Options: %v", err)
	}
	if opts.Since != lastchanges.LastTag || opts.VCSDir != "sub" || opts.LastSuccessfulRevision != "abc123" {
		t.Errorf("opts = %+v", opts)
	}

	if opts.CompareLastSuccessfulBuild {
		t.Errorf("CompareLastSuccessfulBuild = true, expected false by default")
	}

	cfg.Since = "previous-revision"
	cfg.CompareLastSuccessfulBuild = true
	opts, err = cfg.Options("")
	if err != nil {
		t.Fatalf("Options: %v", err)
	}
	if got := opts.EffectivePolicy(); got != lastchanges.LastSuccessfulBuild {
		t.Errorf("EffectivePolicy() = %q, expected %q", got, lastchanges.LastSuccessfulBuild)
	}

	store := cfg.StoreSettings()
	if store.Backend != buildstore.BackendBolt || store.CompressThresholdKB != 250 {
		t.Errorf("StoreSettings() = %+v", store)
	}
}
