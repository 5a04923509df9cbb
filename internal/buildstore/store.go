// Package buildstore records what each build published so later builds can
// compare against the last successful one.
package buildstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/masmgr/lastchanges-go/internal/model"
	"github.com/masmgr/lastchanges-go/internal/vcs"
)

// ErrBuildNotFound is returned when no record matches.
var ErrBuildNotFound = errors.New("build not found")

// Result is the outcome of a build.
type Result string

const (
	Success  Result = "success"
	Unstable Result = "unstable"
	Failure  Result = "failure"
	Aborted  Result = "aborted"
)

// ParseResult accepts the result names case-insensitively.
func ParseResult(s string) (Result, error) {
	switch r := Result(strings.ToLower(strings.TrimSpace(s))); r {
	case Success, Unstable, Failure, Aborted:
		return r, nil
	default:
		return "", fmt.Errorf("unknown build result %q (expected success, unstable, failure or aborted)", s)
	}
}

// Record is one stored build.
type Record struct {
	Number     int
	Result     Result
	VCS        vcs.Kind
	Revision   string
	RecordedAt time.Time
	Changes    *model.LastChanges
}

// Store persists build records keyed by build number.
type Store interface {
	// Save inserts or replaces the record with the same number.
	Save(ctx context.Context, rec Record) error

	// Get returns the record of a build or ErrBuildNotFound.
	Get(ctx context.Context, number int) (Record, error)

	// LastSuccessful returns the highest numbered successful build or
	// ErrBuildNotFound.
	LastSuccessful(ctx context.Context) (Record, error)

	// List returns every record ordered by build number.
	List(ctx context.Context) ([]Record, error)

	Close() error
}

// Backend names a Store implementation.
type Backend string

const (
	BackendBolt   Backend = "bolt"
	BackendRedis  Backend = "redis"
	BackendMemory Backend = "memory"
)

// DefaultPath is where the bolt backend keeps its file.
const DefaultPath = ".lastchanges/builds.db"

// DefaultCompressThresholdKB is the diff size above which diffs are stored
// gzip-compressed.
const DefaultCompressThresholdKB = 250

// RedisConfig holds connection settings for the redis backend.
type RedisConfig struct {
	Addr     string
	Username string
	Password string
	DB       int
	Prefix   string
}

// Config selects and configures a backend.
type Config struct {
	Backend             Backend
	Path                string
	Redis               RedisConfig
	CompressThresholdKB int
}

// Open creates the configured Store.
func Open(cfg Config) (Store, error) {
	threshold := cfg.CompressThresholdKB * 1024

	switch cfg.Backend {
	case BackendBolt, "":
		path := cfg.Path
		if path == "" {
			path = DefaultPath
		}
		return NewBoltStore(path, threshold)
	case BackendRedis:
		return NewRedisStore(cfg.Redis, threshold)
	case BackendMemory:
		return NewMemoryStore(threshold), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q (expected bolt, redis or memory)", cfg.Backend)
	}
}

func validate(rec Record) error {
	if rec.Number <= 0 {
		return fmt.Errorf("build number must be positive, got %d", rec.Number)
	}
	if _, err := ParseResult(string(rec.Result)); err != nil {
		return err
	}
	return nil
}
