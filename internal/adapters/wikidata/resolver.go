package wikidata

import (
	"context"
	"strings"

	"github.com/okian/playerhunt/internal/domain/disambiguate"
	"github.com/okian/playerhunt/internal/domain/model"
	"github.com/okian/playerhunt/internal/domain/normalize"
	"github.com/okian/playerhunt/pkg/logger"
)

// ResolverOption applies a configuration option to the Resolver.
type ResolverOption func(*Resolver)

// WithRules replaces the disambiguation keyword lists.
func WithRules(rules disambiguate.Rules) ResolverOption {
	return func(r *Resolver) {
		if rules != nil {
			r.rules = rules
		}
	}
}

// WithResolverLogger sets a custom logger.
func WithResolverLogger(l logger.Logger) ResolverOption {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// Resolver turns a name into an athlete using search, disambiguation and
// entity expansion.
type Resolver struct {
	client *Client
	rules  disambiguate.Rules
	logger logger.Logger
}

// NewResolver creates a resolver backed by client.
func NewResolver(client *Client, opts ...ResolverOption) *Resolver {
	r := &Resolver{client: client, rules: disambiguate.DefaultRules()}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logger.OrNamed(r.logger, "wikidata")
	return r
}

// Resolve searches for name and expands the chosen entity. It reports false
// when no candidate survives disambiguation, the entity cannot be fetched,
// or no sport can be derived.
func (r *Resolver) Resolve(ctx context.Context, name string) (model.ResolvedEntity, bool) {
	name = strings.TrimSpace(name)
	if name == "" || r.client == nil {
		return model.ResolvedEntity{}, false
	}

	hit, ok := r.search(ctx, name)
	if !ok {
		return model.ResolvedEntity{}, false
	}

	claims, ok := r.client.Entity(ctx, hit.ID)
	if !ok {
		return model.ResolvedEntity{}, false
	}

	sport, ok := r.sport(ctx, claims)
	if !ok {
		r.logger.Debug(ctx, "entity has no sport", logger.String("id", hit.ID), logger.String("label", hit.Label))
		return model.ResolvedEntity{}, false
	}

	return model.ResolvedEntity{
		Sport:       sport,
		Country:     r.country(ctx, claims),
		MatchedName: hit.Label,
		Source:      model.SourceWikidata,
	}, true
}

// search tries each spelling variant in turn and returns the first
// disambiguation winner.
func (r *Resolver) search(ctx context.Context, name string) (model.Candidate, bool) {
	for _, term := range Variants(name) {
		cands, ok := r.client.Search(ctx, term)
		if !ok || len(cands) == 0 {
			continue
		}
		if c, pass, ok := disambiguate.Select(cands, r.rules); ok {
			r.logger.Debug(ctx, "candidate selected",
				logger.String("term", term),
				logger.String("id", c.ID),
				logger.String("pass", pass.String()))
			return c, true
		}
	}
	return model.Candidate{}, false
}

// sport reads P641 first and falls back to the first occupation that maps to
// a sport.
func (r *Resolver) sport(ctx context.Context, claims Claims) (string, bool) {
	if id := claims.FirstID(PropSport); id != "" {
		if label, ok := r.client.Label(ctx, id); ok {
			return normalize.Sport(label), true
		}
	}
	for _, id := range claims.IDs(PropOccupation) {
		label, ok := r.client.Label(ctx, id)
		if !ok {
			continue
		}
		if sport, ok := normalize.OccupationToSport(label); ok {
			return sport, true
		}
	}
	return "", false
}

func (r *Resolver) country(ctx context.Context, claims Claims) string {
	id := claims.FirstID(PropCitizen)
	if id == "" {
		return ""
	}
	label, ok := r.client.Label(ctx, id)
	if !ok {
		return ""
	}
	return normalize.Country(label)
}

// Variants returns the search terms tried for term: term itself, then for
// each letter a..z whose doubled form appears in the lower-cased term, the
// lower-cased term with that pair collapsed.
func Variants(term string) []string {
	out := []string{term}
	lower := strings.ToLower(term)
	for c := 'a'; c <= 'z'; c++ {
		pair := string([]rune{c, c})
		if strings.Contains(lower, pair) {
			out = append(out, strings.ReplaceAll(lower, pair, string(c)))
		}
	}
	return out
}
