package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/masmgr/lastchanges-go/internal/buildstore"
	"github.com/masmgr/lastchanges-go/internal/lastchanges"
	"github.com/masmgr/lastchanges-go/internal/model"
	"github.com/masmgr/lastchanges-go/internal/output"
	"github.com/masmgr/lastchanges-go/internal/vcs"
)

// ChangesCmd returns the changes command, also the default action.
func ChangesCmd() *cli.Command {
	return &cli.Command{
		Name:    "changes",
		Aliases: []string{"c"},
		Usage:   "Show the changes of the working copy since the selected revision",
		Flags:   changesFlags(),
		Action:  changesAction,
	}
}

func changesAction(c *cli.Context) error {
	format, err := parseOutputFormat(c.String("format"))
	if err != nil {
		return err
	}
	result, err := buildstore.ParseResult(c.String("result"))
	if err != nil {
		return err
	}

	cc, err := NewCommandContext(c)
	if err != nil {
		return err
	}

	opts, err := cc.Options("")
	if err != nil {
		return err
	}

	var store buildstore.Store
	record := c.Int("record")
	if needsStore(opts, cc.Config.Build, record) {
		store, err = cc.OpenStore()
		if err != nil {
			return err
		}
		defer func() {
			if err := store.Close(); err != nil {
				cc.Log.Warnf("Closing build store: %v", err)
			}
		}()
	}

	opts, err = withBuildRevision(c.Context, cc, store, opts)
	if err != nil {
		return err
	}

	changes, opts, err := runWithFallback(c.Context, cc, opts)
	if err != nil {
		return err
	}

	report := &output.Report{
		RepoPath:    cc.RepoPath,
		VCS:         cc.Kind,
		Since:       opts.EffectivePolicy(),
		GeneratedAt: time.Now(),
		Changes:     changes,
		Render:      cc.Config.Render(),
	}
	if err := writeReport(report, format, c.String("output")); err != nil {
		return err
	}

	if record > 0 {
		rec := buildstore.Record{
			Number:     record,
			Result:     result,
			VCS:        cc.Kind,
			Revision:   changes.Current().ID,
			RecordedAt: time.Now(),
			Changes:    changes,
		}
		if err := store.Save(c.Context, rec); err != nil {
			return fmt.Errorf("failed to record build %d: %w", record, err)
		}
		cc.Log.Infof("Recorded build #%d (%s) at revision %s", record, result, changes.Current().ShortID())
	}

	return nil
}

// needsStore reports whether the run reads or writes build records.
func needsStore(opts lastchanges.Options, build, record int) bool {
	return record > 0 || build > 0 || opts.EffectivePolicy() == lastchanges.LastSuccessfulBuild
}

// withBuildRevision fills in the revision of the build compared against: the
// build named by --build, or the last successful one. A missing record is
// logged and left empty so the since-policy fails and falls back.
func withBuildRevision(ctx context.Context, cc *CommandContext, store buildstore.Store, opts lastchanges.Options) (lastchanges.Options, error) {
	if store == nil || opts.EffectivePolicy() == lastchanges.Revision {
		return opts, nil
	}

	var (
		rec buildstore.Record
		err error
	)
	switch {
	case cc.Config.Build > 0:
		opts.Since = lastchanges.LastSuccessfulBuild
		rec, err = store.Get(ctx, cc.Config.Build)
	case opts.EffectivePolicy() == lastchanges.LastSuccessfulBuild:
		rec, err = store.LastSuccessful(ctx)
	default:
		return opts, nil
	}

	if errors.Is(err, buildstore.ErrBuildNotFound) {
		cc.Log.Warnf("No recorded build to compare against")
		return opts, nil
	}
	if err != nil {
		return opts, err
	}
	if rec.VCS != "" && rec.VCS != cc.Kind {
		cc.Log.Warnf("Build #%d was recorded from %s, not %s", rec.Number, rec.VCS, cc.Kind)
	}
	cc.Log.Debugf("Comparing against build #%d at revision %s", rec.Number, rec.Revision)
	opts.LastSuccessfulRevision = rec.Revision
	return opts, nil
}

// runWithFallback runs the engine. When the last-tag or last-successful-build
// policy cannot resolve its revision the failure is logged and the run is
// retried against the previous revision; the returned options reflect what
// actually ran. Any other error is returned as is.
func runWithFallback(ctx context.Context, cc *CommandContext, opts lastchanges.Options) (*model.LastChanges, lastchanges.Options, error) {
	changes, err := cc.Engine.Run(ctx, cc.RepoPath, opts)
	if err == nil {
		return changes, opts, nil
	}

	policy := opts.EffectivePolicy()
	if policy != lastchanges.LastTag && policy != lastchanges.LastSuccessfulBuild {
		return nil, opts, err
	}
	if ctx.Err() != nil || !isUnresolvedRevision(err) {
		return nil, opts, err
	}

	cc.Log.Warnf("Could not compare against %s, using previous revision instead: %v", policy, err)
	opts.Since = lastchanges.PreviousRevision
	opts.CompareLastSuccessfulBuild = false
	opts.LastSuccessfulRevision = ""

	changes, err = cc.Engine.Run(ctx, cc.RepoPath, opts)
	if err != nil {
		return nil, opts, err
	}
	return changes, opts, nil
}

// isUnresolvedRevision reports whether err means the compared revision could
// not be found, as opposed to a failing repository or diff.
func isUnresolvedRevision(err error) bool {
	return errors.Is(err, vcs.ErrNoTagFound) || errors.Is(err, vcs.ErrTreeNotFound)
}
