package resolver

import (
	"context"
	"log/slog"

	"stashbatch/internal/logging"
)

// Catalog is the slice of the catalog client the resolver needs.
// *stash.Client satisfies it.
type Catalog interface {
	FindOrCreateTag(ctx context.Context, name string) (string, error)
}

// Resolver resolves tag names against the catalog, remembering the outcome
// per name. Both successes and failures are cached so a name is resolved at
// most once per run regardless of how often it recurs in the queue.
type Resolver struct {
	catalog Catalog
	logger  *slog.Logger

	ids    map[string]string
	failed map[string]error
}

// New returns a resolver with an empty cache. Resolvers are per-run; build a
// fresh one for each run so earlier outcomes never leak forward.
func New(catalog Catalog, logger *slog.Logger) *Resolver {
	return &Resolver{
		catalog: catalog,
		logger:  logging.WithComponent(logger, "resolver"),
		ids:     make(map[string]string),
		failed:  make(map[string]error),
	}
}

// Resolve returns the catalog ID for name, creating the tag when it does not
// exist yet. A repeated name returns the cached outcome without touching the
// catalog. Failures are reported to the caller but do not poison later names.
func (r *Resolver) Resolve(ctx context.Context, name string) (string, error) {
	if name == "" {
		return "", nil
	}
	if id, ok := r.ids[name]; ok {
		return id, nil
	}
	if err, ok := r.failed[name]; ok {
		return "", err
	}

	id, err := r.catalog.FindOrCreateTag(ctx, name)
	if err != nil {
		r.failed[name] = err
		r.logger.Warn("tag resolution failed",
			logging.String(logging.FieldTag, name),
			logging.Error(err))
		return "", err
	}
	r.ids[name] = id
	return id, nil
}

// Resolved reports how many distinct names resolved successfully.
func (r *Resolver) Resolved() int {
	return len(r.ids)
}

// Failed reports how many distinct names failed to resolve.
func (r *Resolver) Failed() int {
	return len(r.failed)
}
