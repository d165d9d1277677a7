// Package resolver sequences the local index and the knowledge-graph resolver
// to turn a free-text name into a resolved athlete.
package resolver

import (
	"context"
	"strings"
	"time"

	"github.com/okian/playerhunt/internal/domain/model"
	"github.com/okian/playerhunt/internal/domain/normalize"
	"github.com/okian/playerhunt/pkg/logger"
	"github.com/okian/playerhunt/pkg/metrics"
)

// Strategy labels used in logs and metrics.
const (
	strategyAlias    = "alias"
	strategyExact    = "exact"
	strategySuffix   = "suffix"
	strategyExternal = "external"
)

// LocalMatcher looks names up in the local athlete index.
type LocalMatcher interface {
	// Exact matches the whole normalized name.
	Exact(ctx context.Context, name string) (model.ResolvedEntity, bool)
	// Suffix matches the name as the last token of a stored full name.
	Suffix(ctx context.Context, name string) (model.ResolvedEntity, bool)
}

// ExternalResolver resolves names through a remote knowledge graph.
type ExternalResolver interface {
	Resolve(ctx context.Context, name string) (model.ResolvedEntity, bool)
}

// Lookuper is the contract consumed by the service layer and by caches
// wrapping a Resolver.
type Lookuper interface {
	Lookup(ctx context.Context, name string) (model.ResolvedEntity, bool)
}

// Option applies a configuration option to the Resolver.
type Option func(*Resolver)

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithAliases replaces the single-word alias table. Keys are normalized
// with normalize.Key.
func WithAliases(aliases map[string]string) Option {
	return func(r *Resolver) {
		r.aliases = make(map[string]string, len(aliases))
		for k, v := range aliases {
			r.aliases[normalize.Key(k)] = v
		}
	}
}

// Resolver implements Lookuper. It holds no per-call state.
type Resolver struct {
	local    LocalMatcher
	external ExternalResolver
	aliases  map[string]string
	logger   logger.Logger
}

// New creates a Resolver. Either dependency may be nil, in which case that
// strategy never matches.
func New(local LocalMatcher, external ExternalResolver, opts ...Option) *Resolver {
	r := &Resolver{
		local:    local,
		external: external,
		aliases:  DefaultAliases(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logger.OrNamed(r.logger, "resolver")
	return r
}

// Lookup resolves name. Famous single-word names are first tried under their
// full form; then the exact local match; then, for single tokens, the
// external resolver before the local suffix match, and the reverse order for
// multi-token names.
func (r *Resolver) Lookup(ctx context.Context, name string) (model.ResolvedEntity, bool) {
	start := time.Now()
	defer func() {
		metrics.RecordLookupLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	name = strings.TrimSpace(name)
	if name == "" {
		return model.ResolvedEntity{}, false
	}

	if full, ok := r.aliases[normalize.Key(name)]; ok {
		if e, ok := r.exact(ctx, full); ok {
			return r.found(ctx, name, strategyAlias, e)
		}
		if e, ok := r.externalLookup(ctx, full); ok {
			return r.found(ctx, name, strategyAlias, e)
		}
		r.logger.Debug(ctx, "alias did not resolve, continuing with input",
			logger.String("input", name), logger.String("alias", full))
	}

	if e, ok := r.exact(ctx, name); ok {
		return r.found(ctx, name, strategyExact, e)
	}

	if isSingleToken(name) {
		if e, ok := r.externalLookup(ctx, name); ok {
			return r.found(ctx, name, strategyExternal, e)
		}
		if e, ok := r.suffix(ctx, name); ok {
			return r.found(ctx, name, strategySuffix, e)
		}
	} else {
		if e, ok := r.suffix(ctx, name); ok {
			return r.found(ctx, name, strategySuffix, e)
		}
		if e, ok := r.externalLookup(ctx, name); ok {
			return r.found(ctx, name, strategyExternal, e)
		}
	}

	r.logger.Info(ctx, "athlete not found", logger.String("input", name))
	return model.ResolvedEntity{}, false
}

func (r *Resolver) found(ctx context.Context, input, strategy string, e model.ResolvedEntity) (model.ResolvedEntity, bool) {
	r.logger.Debug(ctx, "athlete resolved",
		logger.String("input", input),
		logger.String("strategy", strategy),
		logger.String("matched", e.MatchedName),
		logger.String("sport", e.Sport),
	)
	return e, true
}

func (r *Resolver) exact(ctx context.Context, name string) (model.ResolvedEntity, bool) {
	if r.local == nil {
		return model.ResolvedEntity{}, false
	}
	e, ok := r.local.Exact(ctx, name)
	record(strategyExact, ok)
	return e, ok
}

func (r *Resolver) suffix(ctx context.Context, name string) (model.ResolvedEntity, bool) {
	if r.local == nil {
		return model.ResolvedEntity{}, false
	}
	e, ok := r.local.Suffix(ctx, name)
	record(strategySuffix, ok)
	return e, ok
}

func (r *Resolver) externalLookup(ctx context.Context, name string) (model.ResolvedEntity, bool) {
	if r.external == nil {
		return model.ResolvedEntity{}, false
	}
	e, ok := r.external.Resolve(ctx, name)
	record(strategyExternal, ok)
	return e, ok
}

func record(strategy string, ok bool) {
	if ok {
		metrics.RecordLookup(strategy, metrics.OutcomeHit)
		return
	}
	metrics.RecordLookup(strategy, metrics.OutcomeMiss)
}

func isSingleToken(name string) bool {
	return len(strings.Fields(name)) == 1
}
