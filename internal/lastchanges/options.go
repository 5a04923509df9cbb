// Package lastchanges resolves a since-policy into a starting revision and
// aggregates the changes between it and the current revision.
package lastchanges

import (
	"fmt"
	"strings"
)

// Policy selects the revision changes are computed against.
type Policy string

const (
	PreviousRevision    Policy = "previous-revision"
	LastSuccessfulBuild Policy = "last-successful-build"
	LastTag             Policy = "last-tag"
	Revision            Policy = "revision"
)

// Policies lists every accepted policy.
var Policies = []Policy{PreviousRevision, LastSuccessfulBuild, LastTag, Revision}

// ParsePolicy accepts the kebab-case names as well as the upper snake case
// names used by older job configurations (e.g. LAST_TAG). Empty means
// previous-revision.
func ParsePolicy(s string) (Policy, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	name = strings.ReplaceAll(name, "_", "-")
	if name == "" {
		return PreviousRevision, nil
	}
	for _, p := range Policies {
		if string(p) == name {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown since policy %q (expected one of %s)", s, policyNames())
}

func policyNames() string {
	names := make([]string, len(Policies))
	for i, p := range Policies {
		names[i] = string(p)
	}
	return strings.Join(names, ", ")
}

// Options configures one aggregation run.
type Options struct {
	Since Policy
	// Revision is an explicit revision expression. When set it wins over
	// Since.
	Revision string
	// LastSuccessfulRevision is the revision recorded by the last successful
	// build, supplied by the caller.
	LastSuccessfulRevision string
	// CompareLastSuccessfulBuild upgrades previous-revision to
	// last-successful-build.
	CompareLastSuccessfulBuild bool
	// VCSDir is a subdirectory of the workspace holding the working copy.
	VCSDir string
}

// EffectivePolicy returns the policy actually applied.
func (o Options) EffectivePolicy() Policy {
	if strings.TrimSpace(o.Revision) != "" {
		return Revision
	}
	since := o.Since
	if since == "" {
		since = PreviousRevision
	}
	if since == PreviousRevision && o.CompareLastSuccessfulBuild {
		return LastSuccessfulBuild
	}
	return since
}
