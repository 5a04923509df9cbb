package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

// TagCmd returns the tag command.
func TagCmd() *cli.Command {
	return &cli.Command{
		Name:   "tag",
		Usage:  "Print the revision of the most recent tag",
		Flags:  repoFlags(),
		Action: tagAction,
	}
}

func tagAction(c *cli.Context) error {
	cc, err := NewCommandContext(c)
	if err != nil {
		return err
	}
	opts, err := cc.Options("")
	if err != nil {
		return err
	}

	rev, err := cc.Engine.LastTag(c.Context, cc.RepoPath, opts)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, rev)
	return nil
}
