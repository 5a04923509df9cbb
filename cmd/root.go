package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/masmgr/lastchanges-go/config"
	"github.com/masmgr/lastchanges-go/internal/buildstore"
	"github.com/masmgr/lastchanges-go/internal/output"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "lastchanges",
		Usage:   "Publish the changes of a git or svn working copy since a chosen revision",
		Version: "1.0.0",
		Commands: []*cli.Command{
			ChangesCmd(),
			TagCmd(),
			BuildsCmd(),
		},
		Flags:  append(globalFlags(), changesFlags()...),
		Action: changesAction,
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
		},
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "Log level (debug, info, warn, error)",
			Value:   "info",
			EnvVars: []string{"LASTCHANGES_LOG_LEVEL"},
		},
		&cli.BoolFlag{
			Name:  "no-color",
			Usage: "Disable colored output",
		},
	}
}

// Flags shared by every command that opens a working copy.
func repoFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "repo",
			Aliases: []string{"r"},
			Usage:   "Workspace containing the git or svn working copy",
			Value:   ".",
		},
		&cli.StringFlag{
			Name:  "vcs-dir",
			Usage: "Subdirectory of the workspace holding the working copy",
		},
		&cli.StringFlag{
			Name:  "vcs",
			Usage: "Force the back-end (git, svn) instead of detecting it",
		},
		&cli.StringFlag{
			Name:    "svn-username",
			Usage:   "Subversion user name",
			EnvVars: []string{"LASTCHANGES_SVN_USERNAME"},
		},
		&cli.StringFlag{
			Name:    "svn-password",
			Usage:   "Subversion password",
			EnvVars: []string{"LASTCHANGES_SVN_PASSWORD"},
		},
	}
}

func storeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "store",
			Usage: "Build record store backend (bolt, redis, memory)",
		},
		&cli.StringFlag{
			Name:  "store-path",
			Usage: "Build record database file (bolt backend)",
		},
		&cli.StringFlag{
			Name:    "redis-addr",
			Usage:   "Redis address (redis backend)",
			EnvVars: []string{"LASTCHANGES_REDIS_ADDR"},
		},
	}
}

func changesFlags() []cli.Flag {
	flags := append(repoFlags(),
		&cli.StringFlag{
			Name:  "since",
			Usage: "Compare against (previous-revision, last-successful-build, last-tag)",
		},
		&cli.StringFlag{
			Name:  "revision",
			Usage: "Compare against this revision (overrides --since)",
		},
		&cli.IntFlag{
			Name:  "build",
			Usage: "Compare against the revision recorded by this build number",
		},
		&cli.BoolFlag{
			Name:  "compare-last-successful-build",
			Usage: "Compare against the last successful build instead of the previous revision",
		},
		&cli.StringSliceFlag{
			Name:  "include",
			Usage: "Glob patterns of files to keep in the diff (can be specified multiple times)",
		},
		&cli.StringSliceFlag{
			Name:  "exclude",
			Usage: "Glob patterns of files to drop from the diff (can be specified multiple times)",
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format (console, json, markdown, diff, ci)",
			Value:   "console",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output file path (default: stdout)",
		},
		&cli.IntFlag{
			Name:  "record",
			Usage: "Store the result as this build number",
		},
		&cli.StringFlag{
			Name:  "result",
			Usage: "Result of the recorded build (success, unstable, failure, aborted)",
			Value: string(buildstore.Success),
		},
	)
	return append(flags, storeFlags()...)
}

// parseOutputFormat parses the output format flag.
func parseOutputFormat(s string) (output.OutputFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "md":
		return output.FormatMarkdown, nil
	case "ndjson":
		return output.FormatCI, nil
	case "patch":
		return output.FormatDiff, nil
	}
	return output.ParseFormat(s)
}

// configOverrides collects the configuration values given on the command line.
func configOverrides(c *cli.Context) *config.Config {
	return &config.Config{
		Since:    c.String("since"),
		Revision: c.String("revision"),
		Build:    c.Int("build"),
		VCSDir:   c.String("vcs-dir"),

		CompareLastSuccessfulBuild: c.Bool("compare-last-successful-build"),

		Filters: config.FilterConfig{
			Include: c.StringSlice("include"),
			Exclude: c.StringSlice("exclude"),
		},
		Store: config.StoreConfig{
			Backend: c.String("store"),
			Path:    c.String("store-path"),
			Redis: config.RedisConfig{
				Addr: c.String("redis-addr"),
			},
		},
	}
}

// loadConfig loads configuration from file or defaults and applies the
// command line overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Merge(configOverrides(c)); err != nil {
		return nil, fmt.Errorf("failed to apply flags: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Run executes the CLI application.
func Run() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := App().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
