package cmd

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"github.com/masmgr/lastchanges-go/internal/buildstore"
	"github.com/masmgr/lastchanges-go/internal/logging"
	"github.com/masmgr/lastchanges-go/internal/output"
)

// BuildsCmd returns the builds command.
func BuildsCmd() *cli.Command {
	return &cli.Command{
		Name:      "builds",
		Usage:     "List recorded builds, or show the changes published by one",
		ArgsUsage: "[number]",
		Flags: append(storeFlags(),
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format when showing a build (console, json, markdown, diff, ci)",
				Value:   "console",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file path (default: stdout)",
			},
		),
		Action: buildsAction,
	}
}

func buildsAction(c *cli.Context) error {
	log, err := newLogger(c)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	store, err := buildstore.Open(cfg.StoreSettings())
	if err != nil {
		return fmt.Errorf("failed to open build store: %w", err)
	}
	defer closeStore(store, log)

	if c.NArg() == 0 {
		records, err := store.List(c.Context)
		if err != nil {
			return err
		}
		return writeBuildList(c, records)
	}

	number, err := strconv.Atoi(c.Args().First())
	if err != nil || number <= 0 {
		return fmt.Errorf("invalid build number %q", c.Args().First())
	}
	format, err := parseOutputFormat(c.String("format"))
	if err != nil {
		return err
	}

	rec, err := store.Get(c.Context, number)
	if err != nil {
		return fmt.Errorf("build #%d: %w", number, err)
	}
	if rec.Changes == nil {
		return fmt.Errorf("build #%d has no recorded changes", number)
	}

	report := &output.Report{
		RepoPath:    fmt.Sprintf("build #%d", rec.Number),
		VCS:         rec.VCS,
		GeneratedAt: rec.RecordedAt,
		Changes:     rec.Changes,
		Render:      cfg.Render(),
	}
	return writeReport(report, format, c.String("output"))
}

func writeBuildList(c *cli.Context, records []buildstore.Record) error {
	if len(records) == 0 {
		fmt.Fprintln(c.App.Writer, "No builds recorded.")
		return nil
	}

	tw := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tResult\tVCS\tRevision\tRecorded\tCommits")
	for _, rec := range records {
		commits := 0
		revision := rec.Revision
		if rec.Changes != nil {
			commits = rec.Changes.CommitCount()
			revision = rec.Changes.Current().ShortID()
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%d\n",
			rec.Number, rec.Result, rec.VCS, revision,
			rec.RecordedAt.Format("2006-01-02 15:04:05"), commits)
	}
	return tw.Flush()
}

func closeStore(store buildstore.Store, log *logging.Logger) {
	if err := store.Close(); err != nil {
		log.Warnf("Closing build store: %v", err)
	}
}
