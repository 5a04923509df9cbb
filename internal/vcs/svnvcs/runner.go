package svnvcs

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Runner executes the svn client.
type Runner interface {
	Run(ctx context.Context, dir string, args ...string) ([]byte, error)
}

// ExecRunner runs the svn binary found on PATH, or Binary when set.
type ExecRunner struct {
	Binary string
}

// CommandContext is replaced in tests.
var CommandContext = exec.CommandContext

func (r ExecRunner) Run(ctx context.Context, dir string, args ...string) ([]byte, error) {
	bin := r.Binary
	if bin == "" {
		bin = "svn"
	}

	cmd := CommandContext(ctx, bin, args...)
	cmd.Dir = dir
	// Keep error text unlocalized.
	cmd.Env = append(os.Environ(), "LC_ALL=C")

	eb := &bytes.Buffer{}
	ob := &bytes.Buffer{}
	cmd.Stderr = eb
	cmd.Stdout = ob

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("exec: svn %s failed: %s (%w)", argsString(args), strings.TrimSpace(eb.String()), err)
	}
	return ob.Bytes(), nil
}

// argsString renders args for copy/paste into a terminal, hiding passwords.
func argsString(args []string) string {
	b := &strings.Builder{}
	hideNext := false
	for i, arg := range args {
		switch {
		case hideNext:
			b.WriteString("***")
			hideNext = false
		case strings.Contains(arg, " "):
			b.WriteString(`"` + arg + `"`)
		default:
			b.WriteString(arg)
		}
		if arg == "--password" {
			hideNext = true
		}
		if i < len(args)-1 {
			b.WriteString(" ")
		}
	}
	return b.String()
}
