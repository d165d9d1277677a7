// Package types contains response shapes shared by the service and the HTTP API.
package types

import "github.com/okian/playerhunt/internal/domain/model"

// Submission statuses.
const (
	StatusAdded     = "added"
	StatusDuplicate = "duplicate"
	StatusNotFound  = "not_found"
)

// Athlete is the JSON form of a resolved entity.
type Athlete struct {
	Sport       string `json:"sport"`
	Country     string `json:"country,omitempty"`
	MatchedName string `json:"matched_name"`
	Source      string `json:"source,omitempty"`
}

// FromEntity converts a resolved entity to its JSON form.
func FromEntity(e model.ResolvedEntity) Athlete {
	return Athlete{Sport: e.Sport, Country: e.Country, MatchedName: e.MatchedName, Source: string(e.Source)}
}

// Points is the rarity breakdown for an add.
type Points struct {
	Total        int `json:"total"`
	SportBonus   int `json:"sport_bonus"`
	CountryBonus int `json:"country_bonus"`
}

// Outcome is the result of submitting a name to a room.
type Outcome struct {
	Status    string   `json:"status"`
	Input     string   `json:"input"`
	Athlete   *Athlete `json:"athlete,omitempty"`
	Points    *Points  `json:"points,omitempty"`
	Streak    int      `json:"streak"`
	Best      int      `json:"best_streak"`
	NewRecord bool     `json:"new_record"`
}

// Milestone describes progress toward the next collection size goal.
type Milestone struct {
	Total    int     `json:"total"`
	Previous int     `json:"previous"`
	Next     int     `json:"next"`
	Progress float64 `json:"progress"`
	Reached  []int   `json:"reached"`
}

// RoomStats aggregates a room's collection.
type RoomStats struct {
	Total         int            `json:"total"`
	BySport       map[string]int `json:"by_sport"`
	ByCountry     map[string]int `json:"by_country"`
	ByPlayer      map[string]int `json:"by_player"`
	CountryTarget int            `json:"country_target"`
	Milestone     Milestone      `json:"milestone"`
	Achievements  []Achievement  `json:"achievements"`
}

// LookupResult is one entry of a batch lookup.
type LookupResult struct {
	Input   string   `json:"input"`
	Found   bool     `json:"found"`
	Athlete *Athlete `json:"athlete,omitempty"`
}

// Achievement is one unlockable room goal.
type Achievement struct {
	Name     string `json:"name"`
	Hint     string `json:"hint"`
	Unlocked bool   `json:"unlocked"`
}
