// Package model contains domain models passed between layers.
package model

import "time"

// Source records which strategy produced a resolution.
type Source string

// Resolution sources.
const (
	SourceExact    Source = "exact"
	SourceSuffix   Source = "suffix"
	SourceWikidata Source = "wikidata"
)

// ResolvedEntity is the result of resolving a free-text athlete name.
// An empty Country means the country is unknown.
type ResolvedEntity struct {
	Sport       string // normalized sport vocabulary
	Country     string // normalized country vocabulary, "" when absent
	MatchedName string // canonical display name
	Source      Source // strategy that produced the result; not part of identity
}

// HasCountry reports whether a country was resolved.
func (e ResolvedEntity) HasCountry() bool { return e.Country != "" }

// Same reports whether two resolutions describe the same identity tuple.
func (e ResolvedEntity) Same(o ResolvedEntity) bool {
	return e.Sport == o.Sport && e.Country == o.Country && e.MatchedName == o.MatchedName
}

// IndexRow is one row of the read-only local athlete index.
type IndexRow struct {
	Key     string // lower-cased, trimmed name; unique
	Name    string // canonical display form
	Sport   string
	Country string // raw, pre-normalization; "" when absent
}

// Candidate is one knowledge-graph search hit.
type Candidate struct {
	ID          string
	Label       string
	Description string
}

// CollectionEntry is an athlete stored in a room.
type CollectionEntry struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Sport          string    `json:"sport"`
	Country        string    `json:"country,omitempty"`
	MatchedName    string    `json:"matched_name"`
	AddedBy        string    `json:"added_by"`
	AddedAt        time.Time `json:"added_at"`
	ChallengeBonus int       `json:"challenge_bonus"` // reserved for room challenges; always 0
	Points         int       `json:"points"`
}
