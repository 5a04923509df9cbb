package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/urfave/cli/v2"

	"github.com/masmgr/lastchanges-go/config"
	"github.com/masmgr/lastchanges-go/internal/buildstore"
	"github.com/masmgr/lastchanges-go/internal/lastchanges"
	"github.com/masmgr/lastchanges-go/internal/logging"
	"github.com/masmgr/lastchanges-go/internal/vcs"
	"github.com/masmgr/lastchanges-go/internal/vcs/gitvcs"
	"github.com/masmgr/lastchanges-go/internal/vcs/svnvcs"
)

// CommandContext holds common state for command execution.
type CommandContext struct {
	Config *config.Config
	Log    *logging.Logger
	// RepoPath is the workspace and VCSDir the working copy below it.
	RepoPath string
	VCSDir   string
	Kind     vcs.Kind
	Engine   lastchanges.Engine
}

// newLogger creates the stderr logger from the global flags.
func newLogger(c *cli.Context) (*logging.Logger, error) {
	level, err := logging.ParseLevel(c.String("log-level"))
	if err != nil {
		return nil, err
	}
	log := logging.New(os.Stderr, level)
	if c.Bool("no-color") {
		log.SetColor(false)
		color.NoColor = true
	}
	return log, nil
}

// NewCommandContext loads configuration, locates the working copy and
// builds the engine for its back-end.
func NewCommandContext(c *cli.Context) (*CommandContext, error) {
	log, err := newLogger(c)
	if err != nil {
		return nil, err
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}

	repoPath := c.String("repo")
	kind, vcsDir, err := locateWorkingCopy(repoPath, cfg.VCSDir, c.String("vcs"))
	if err != nil {
		return nil, err
	}
	log.Debugf("Using %s working copy at %s", kind, filepath.Join(repoPath, vcsDir))

	filter, err := vcs.NewPathFilter(cfg.Filters.Include, cfg.Filters.Exclude)
	if err != nil {
		return nil, err
	}

	engine, err := newEngine(kind, filter, log, svnvcs.Options{
		Username: c.String("svn-username"),
		Password: c.String("svn-password"),
	})
	if err != nil {
		return nil, err
	}

	return &CommandContext{
		Config:   cfg,
		Log:      log,
		RepoPath: repoPath,
		VCSDir:   vcsDir,
		Kind:     kind,
		Engine:   engine,
	}, nil
}

// locateWorkingCopy returns the back-end and the working copy directory
// relative to repoPath. A forced kind skips detection.
func locateWorkingCopy(repoPath, vcsDir, forced string) (vcs.Kind, string, error) {
	if forced != "" {
		kind, err := vcs.ParseKind(forced)
		if err != nil {
			return "", "", err
		}
		return kind, vcsDir, nil
	}

	det, err := vcs.Detect(filepath.Join(repoPath, vcsDir))
	if err != nil {
		return "", "", err
	}
	rel, err := filepath.Rel(repoPath, det.Dir)
	if err != nil {
		return "", "", fmt.Errorf("working copy %s is outside %s: %w", det.Dir, repoPath, err)
	}
	if rel == "." {
		rel = ""
	}
	return det.Kind, rel, nil
}

// newEngine builds the aggregator for kind. svnOpts carries the svn
// credentials; its filter and logger are filled in here.
func newEngine(kind vcs.Kind, filter vcs.PathFilter, log *logging.Logger, svnOpts svnvcs.Options) (lastchanges.Engine, error) {
	switch kind {
	case vcs.Git:
		adapter := gitvcs.New(gitvcs.Options{Filter: filter, Logger: log})
		return lastchanges.NewAggregator[*gitvcs.Repository, plumbing.Hash](adapter, log), nil
	case vcs.Svn:
		svnOpts.Filter = filter
		svnOpts.Logger = log
		adapter := svnvcs.New(svnOpts)
		return lastchanges.NewAggregator[*svnvcs.WorkingCopy, svnvcs.Revision](adapter, log), nil
	default:
		return nil, fmt.Errorf("unsupported vcs %q", kind)
	}
}

// Options builds the engine options. lastSuccessful is the revision of the
// build compared against, if any.
func (ctx *CommandContext) Options(lastSuccessful string) (lastchanges.Options, error) {
	opts, err := ctx.Config.Options(lastSuccessful)
	if err != nil {
		return opts, err
	}
	opts.VCSDir = ctx.VCSDir
	return opts, nil
}

// OpenStore opens the configured build record store.
func (ctx *CommandContext) OpenStore() (buildstore.Store, error) {
	store, err := buildstore.Open(ctx.Config.StoreSettings())
	if err != nil {
		return nil, fmt.Errorf("failed to open build store: %w", err)
	}
	return store, nil
}
