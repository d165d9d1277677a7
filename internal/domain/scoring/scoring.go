// Package scoring computes rarity points for an athlete added to a collection.
package scoring

import (
	"sort"

	"github.com/okian/playerhunt/internal/domain/model"
)

// basePoints is awarded for any successful add.
const basePoints = 1

// Threshold awards Bonus when an attribute's share of the collection is at
// most MaxPercent percent (inclusive).
type Threshold struct {
	MaxPercent int
	Bonus      int
}

// DefaultSportThresholds returns the sport rarity table.
func DefaultSportThresholds() []Threshold {
	return []Threshold{{2, 4}, {5, 3}, {15, 2}, {30, 1}}
}

// DefaultCountryThresholds returns the country rarity table.
func DefaultCountryThresholds() []Threshold {
	return []Threshold{{2, 2}, {5, 1}}
}

// Option applies a configuration option to the RarityScorer.
type Option func(*RarityScorer)

// WithSportThresholds replaces the sport rarity table.
func WithSportThresholds(t []Threshold) Option {
	return func(s *RarityScorer) {
		if len(t) > 0 {
			s.sport = sortedCopy(t)
		}
	}
}

// WithCountryThresholds replaces the country rarity table.
func WithCountryThresholds(t []Threshold) Option {
	return func(s *RarityScorer) {
		if len(t) > 0 {
			s.country = sortedCopy(t)
		}
	}
}

// Result is the point breakdown for one add.
type Result struct {
	Total        int
	SportBonus   int
	CountryBonus int
}

// Scorer computes rarity points against a collection snapshot.
type Scorer interface {
	// Score must be given the collection as it was before the new entry is
	// inserted. It never mutates collection.
	Score(sport, country string, collection []model.CollectionEntry) Result
}

// RarityScorer implements Scorer with ascending threshold tables.
type RarityScorer struct {
	sport   []Threshold
	country []Threshold
}

// NewRarityScorer creates a scorer with the default tables unless overridden.
func NewRarityScorer(opts ...Option) *RarityScorer {
	s := &RarityScorer{
		sport:   DefaultSportThresholds(),
		country: DefaultCountryThresholds(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score computes points for sport and country. An empty country earns no
// country bonus.
func (s *RarityScorer) Score(sport, country string, collection []model.CollectionEntry) Result {
	total := len(collection)
	if total < 1 {
		total = 1
	}

	var sportCount, countryCount int
	for i := range collection {
		if collection[i].Sport == sport {
			sportCount++
		}
		if country != "" && collection[i].Country == country {
			countryCount++
		}
	}

	r := Result{SportBonus: bonus(s.sport, sportCount, total)}
	if country != "" {
		r.CountryBonus = bonus(s.country, countryCount, total)
	}
	r.Total = basePoints + r.SportBonus + r.CountryBonus
	return r
}

// bonus returns the first threshold satisfied by count/total, compared in
// integer arithmetic so that exact boundaries such as 2 of 100 stay inclusive.
func bonus(table []Threshold, count, total int) int {
	for _, t := range table {
		if count*100 <= t.MaxPercent*total {
			return t.Bonus
		}
	}
	return 0
}

func sortedCopy(t []Threshold) []Threshold {
	out := make([]Threshold, len(t))
	copy(out, t)
	sort.SliceStable(out, func(i, j int) bool { return out[i].MaxPercent < out[j].MaxPercent })
	return out
}
