package lastchanges

import (
	"context"
	"strings"

	"github.com/masmgr/lastchanges-go/internal/logging"
	"github.com/masmgr/lastchanges-go/internal/vcs"
)

// Resolver turns Options into the starting revision of a span.
type Resolver[R any, V comparable] struct {
	adapter vcs.Adapter[R, V]
	log     *logging.Logger
}

// NewResolver creates a resolver over adapter.
func NewResolver[R any, V comparable](adapter vcs.Adapter[R, V], log *logging.Logger) *Resolver[R, V] {
	return &Resolver[R, V]{adapter: adapter, log: log}
}

// Previous resolves the revision current is compared against.
func (r *Resolver[R, V]) Previous(ctx context.Context, repo R, current V, opts Options) (V, error) {
	var zero V

	switch policy := opts.EffectivePolicy(); policy {
	case PreviousRevision:
		return r.adapter.Previous(ctx, repo, current)

	case LastSuccessfulBuild:
		rev := strings.TrimSpace(opts.LastSuccessfulRevision)
		if rev == "" {
			return zero, vcs.TreeNotFound(nil, "no revision recorded for last successful build")
		}
		r.log.Debugf("Comparing against last successful build revision %s", rev)
		return r.adapter.Resolve(ctx, repo, rev)

	case LastTag:
		return r.adapter.LastTagRevision(ctx, repo)

	case Revision:
		rev := strings.TrimSpace(opts.Revision)
		if rev == "" {
			return zero, vcs.TreeNotFound(nil, "no revision given for since policy %s", policy)
		}
		return r.adapter.Resolve(ctx, repo, rev)

	default:
		return zero, vcs.TreeNotFound(nil, "unknown since policy %q", policy)
	}
}
