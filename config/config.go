package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"dario.cat/mergo"
	"github.com/ghodss/yaml"

	"github.com/masmgr/lastchanges-go/internal/buildstore"
	"github.com/masmgr/lastchanges-go/internal/lastchanges"
)

// Default numeric settings, also used when a configured value does not parse.
const (
	DefaultMatchWordsThreshold    = 0.25
	DefaultMatchingMaxComparisons = 1000
)

// Config is the root configuration structure.
type Config struct {
	// Diff rendering hints passed through to report consumers.
	Format                 string `json:"format"`   // line | side
	Matching               string `json:"matching"` // none | line | word
	ShowFiles              bool   `json:"showFiles"`
	SynchronisedScroll     bool   `json:"synchronisedScroll"`
	MatchWordsThreshold    string `json:"matchWordsThreshold"`
	MatchingMaxComparisons string `json:"matchingMaxComparisons"`

	Since    string `json:"since"`
	Revision string `json:"revision,omitempty"`
	Build    int    `json:"build,omitempty"` // compare against this stored build
	VCSDir   string `json:"vcsDir,omitempty"`

	// CompareLastSuccessfulBuild upgrades previous-revision to the last
	// successful build when one is recorded.
	CompareLastSuccessfulBuild bool `json:"compareLastSuccessfulBuild,omitempty"`

	Filters             FilterConfig `json:"filters"`
	Store               StoreConfig  `json:"store"`
	CompressThresholdKB int          `json:"compressThresholdKB"`
}

// FilterConfig holds diff path filtering options.
type FilterConfig struct {
	Include []string `json:"include"`
	Exclude []string `json:"exclude"`
}

// StoreConfig selects where build records are kept.
type StoreConfig struct {
	Backend string      `json:"backend"` // bolt | redis | memory
	Path    string      `json:"path"`
	Redis   RedisConfig `json:"redis"`
}

// RedisConfig holds redis connection settings.
type RedisConfig struct {
	Addr     string `json:"addr"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
	DB       int    `json:"db"`
	Prefix   string `json:"prefix"`
}

// RenderConfig is the resolved rendering section of a report.
type RenderConfig struct {
	Format                 string  `json:"format"`
	Matching               string  `json:"matching"`
	ShowFiles              bool    `json:"showFiles"`
	SynchronisedScroll     bool    `json:"synchronisedScroll"`
	MatchWordsThreshold    float64 `json:"matchWordsThreshold"`
	MatchingMaxComparisons int     `json:"matchingMaxComparisons"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		Format:                 "line",
		Matching:               "none",
		ShowFiles:              true,
		SynchronisedScroll:     true,
		MatchWordsThreshold:    "0.25",
		MatchingMaxComparisons: "1000",
		Since:                  string(lastchanges.PreviousRevision),
		Filters: FilterConfig{
			Include: []string{},
			Exclude: []string{},
		},
		Store: StoreConfig{
			Backend: string(buildstore.BackendBolt),
			Path:    buildstore.DefaultPath,
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "lastchanges",
			},
		},
		CompressThresholdKB: buildstore.DefaultCompressThresholdKB,
	}
}

var candidateNames = []string{".lastchanges.json", ".lastchanges.yaml", ".lastchanges.yml"}

// LoadConfig loads configuration from a file, merging with defaults. An
// empty path searches the working directory, then the home directory.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = findConfigFile()
	}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	// JSON is valid YAML, so one decoder serves every candidate.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

func findConfigFile() string {
	dirs := []string{"."}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		dirs = append(dirs, home)
	} else if envHome := os.Getenv("HOME"); envHome != "" {
		dirs = append(dirs, envHome)
	}

	for _, dir := range dirs {
		for _, name := range candidateNames {
			p := filepath.Join(dir, name)
			if _, err := os.Stat(p); err == nil {
				return p
			}
		}
	}
	return ""
}

// SaveConfig saves configuration to a file, as YAML when the extension asks
// for it and as JSON otherwise.
func SaveConfig(cfg *Config, path string) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(cfg)
	default:
		data, err = json.MarshalIndent(cfg, "", "  ")
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Merge applies the non-zero fields of overrides on top of cfg.
func (c *Config) Merge(overrides *Config) error {
	if overrides == nil {
		return nil
	}
	return mergo.Merge(c, overrides, mergo.WithOverride)
}

// Validate checks the enumerated settings.
func (c *Config) Validate() error {
	switch c.Format {
	case "line", "side":
	default:
		return fmt.Errorf("invalid format %q (expected line or side)", c.Format)
	}
	switch c.Matching {
	case "none", "line", "word":
	default:
		return fmt.Errorf("invalid matching %q (expected none, line or word)", c.Matching)
	}
	if _, err := lastchanges.ParsePolicy(c.Since); err != nil {
		return err
	}
	switch buildstore.Backend(c.Store.Backend) {
	case buildstore.BackendBolt, buildstore.BackendRedis, buildstore.BackendMemory:
	default:
		return fmt.Errorf("invalid store backend %q (expected bolt, redis or memory)", c.Store.Backend)
	}
	if c.Build < 0 {
		return fmt.Errorf("invalid build number %d", c.Build)
	}
	return nil
}

// MatchWordsThresholdValue parses MatchWordsThreshold, falling back to the
// default when it is not a number in [0, 1].
func (c *Config) MatchWordsThresholdValue() float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(c.MatchWordsThreshold), 64)
	if err != nil || v < 0 || v > 1 {
		return DefaultMatchWordsThreshold
	}
	return v
}

// MatchingMaxComparisonsValue parses MatchingMaxComparisons, falling back to
// the default when it is not a positive integer.
func (c *Config) MatchingMaxComparisonsValue() int {
	v, err := strconv.Atoi(strings.TrimSpace(c.MatchingMaxComparisons))
	if err != nil || v <= 0 {
		return DefaultMatchingMaxComparisons
	}
	return v
}

// Render returns the resolved rendering settings.
func (c *Config) Render() RenderConfig {
	return RenderConfig{
		Format:                 c.Format,
		Matching:               c.Matching,
		ShowFiles:              c.ShowFiles,
		SynchronisedScroll:     c.SynchronisedScroll,
		MatchWordsThreshold:    c.MatchWordsThresholdValue(),
		MatchingMaxComparisons: c.MatchingMaxComparisonsValue(),
	}
}

// StoreSettings converts the store section for buildstore.Open.
func (c *Config) StoreSettings() buildstore.Config {
	return buildstore.Config{
		Backend: buildstore.Backend(c.Store.Backend),
		Path:    c.Store.Path,
		Redis: buildstore.RedisConfig{
			Addr:     c.Store.Redis.Addr,
			Username: c.Store.Redis.Username,
			Password: c.Store.Redis.Password,
			DB:       c.Store.Redis.DB,
			Prefix:   c.Store.Redis.Prefix,
		},
		CompressThresholdKB: c.CompressThresholdKB,
	}
}

// Options converts the since-policy settings. lastSuccessful is the revision
// recorded by the build being compared against, if any.
func (c *Config) Options(lastSuccessful string) (lastchanges.Options, error) {
	since, err := lastchanges.ParsePolicy(c.Since)
	if err != nil {
		return lastchanges.Options{}, err
	}
	return lastchanges.Options{
		Since:                      since,
		Revision:                   c.Revision,
		CompareLastSuccessfulBuild: c.CompareLastSuccessfulBuild,
		LastSuccessfulRevision:     lastSuccessful,
		VCSDir:                     c.VCSDir,
	}, nil
}
