// Package progress derives milestone progress and achievements from a room's
// collection.
package progress

import (
	"github.com/okian/playerhunt/internal/domain/model"
	"github.com/okian/playerhunt/internal/domain/types"
)

// UnknownCountry is the bucket for entries without a country.
const UnknownCountry = "Unknown"

var milestones = []int{10, 25, 50, 100, 150, 200, 300, 500} //nolint:gochecknoglobals // immutable table

// Milestones returns the collection size goals in ascending order.
func Milestones() []int {
	out := make([]int, len(milestones))
	copy(out, milestones)
	return out
}

// MilestoneFor reports progress from the last reached goal toward the next.
// Past the final goal, Next stays at the final goal and Progress is 1.
func MilestoneFor(total int) types.Milestone {
	m := types.Milestone{Total: total, Next: milestones[len(milestones)-1], Reached: []int{}}
	for _, goal := range milestones {
		if goal <= total {
			m.Previous = goal
			m.Reached = append(m.Reached, goal)
			continue
		}
		m.Next = goal
		break
	}
	m.Progress = float64(total) / float64(m.Next)
	if m.Progress > 1 {
		m.Progress = 1
	}
	return m
}

// Facts summarizes a room for achievement evaluation.
type Facts struct {
	Total      int
	Sports     int
	Countries  int // distinct known countries
	Players    int
	BestStreak int // highest best streak of any player
	Defunct    int // distinct countries that no longer exist
}

// Summarize computes Facts from a collection and the room's best streak.
func Summarize(entries []model.CollectionEntry, bestStreak int) Facts {
	sports := map[string]struct{}{}
	countries := map[string]struct{}{}
	defunct := map[string]struct{}{}
	players := map[string]struct{}{}
	for _, e := range entries {
		sports[e.Sport] = struct{}{}
		players[e.AddedBy] = struct{}{}
		if e.Country == "" {
			continue
		}
		countries[e.Country] = struct{}{}
		if IsDefunct(e.Country) {
			defunct[e.Country] = struct{}{}
		}
	}
	return Facts{
		Total:      len(entries),
		Sports:     len(sports),
		Countries:  len(countries),
		Players:    len(players),
		BestStreak: bestStreak,
		Defunct:    len(defunct),
	}
}

type rule struct {
	name, hint string
	met        func(Facts) bool
}

var rules = []rule{ //nolint:gochecknoglobals // immutable table
	{"First Steps", "Add 1 athlete", func(f Facts) bool { return f.Total >= 1 }},
	{"Getting Started", "Add 10 athletes", func(f Facts) bool { return f.Total >= 10 }},
	{"Half Century", "Add 50 athletes", func(f Facts) bool { return f.Total >= 50 }},
	{"Century Club", "Add 100 athletes", func(f Facts) bool { return f.Total >= 100 }},
	{"Sport Explorer", "Find 5 different sports", func(f Facts) bool { return f.Sports >= 5 }},
	{"Sport Master", "Find 10 different sports", func(f Facts) bool { return f.Sports >= 10 }},
	{"Globe Trotter", "Find 10 different countries", func(f Facts) bool { return f.Countries >= 10 }},
	{"World Tour", "Find 25 different countries", func(f Facts) bool { return f.Countries >= 25 }},
	{"Team Effort", "3+ players contribute", func(f Facts) bool { return f.Players >= 3 }},
	{"Streak Legend", "Any player gets a 10 best streak", func(f Facts) bool { return f.BestStreak >= 10 }},
	{"Grandpa", "Add athlete from a defunct country", func(f Facts) bool { return f.Defunct >= 1 }},
	{"Historian", "5 athletes from defunct countries", func(f Facts) bool { return f.Defunct >= 5 }},
}

// Achievements evaluates every achievement against f, in display order.
func Achievements(f Facts) []types.Achievement {
	out := make([]types.Achievement, len(rules))
	for i, r := range rules {
		out[i] = types.Achievement{Name: r.name, Hint: r.hint, Unlocked: r.met(f)}
	}
	return out
}

// IsDefunct reports whether country names a state that no longer exists.
func IsDefunct(country string) bool {
	_, ok := defunctCountries[country]
	return ok
}

var defunctCountries = toSet( //nolint:gochecknoglobals // immutable table
	"Ottoman Empire", "Soviet Union", "USSR", "Yugoslavia", "Czechoslovakia",
	"East Germany", "West Germany", "Prussia", "Austria-Hungary", "British Raj",
	"Mandatory Palestine", "Rhodesia", "Zaire", "Burma", "Siam", "Persia", "Ceylon",
	"Dutch East Indies", "Serbia and Montenegro", "Korean Empire", "German Empire",
	"Russian Empire", "Qing dynasty", "British Empire", "Austrian Empire",
	"Holy Roman Empire", "Empire of Japan", "Chinese Empire", "Bohemia", "Papal States",
	"Republic of Venice", "Republic of Vietnam", "German Confederation", "Kingdom of Italy",
	"Kingdom of Yugoslavia", "Kingdom of Hungary", "Kingdom of Romania",
	"Kingdom of Greece", "Kingdom of Egypt", "Kingdom of Serbia", "Kingdom of Bulgaria",
	"Kingdom of Poland", "Kingdom of Prussia", "Kingdom of Saxony", "Kingdom of England",
	"Kingdom of Scotland", "Kingdom of Ireland", "Kingdom of France",
	"Kingdom of Great Britain", "Kingdom of Castile", "Kingdom of Naples",
	"Kingdom of Sicily", "Kingdom of Bohemia", "Kingdom of Mysore", "Kingdom of Portugal",
	"Kingdom of Württemberg", "Socialist Federal Republic of Yugoslavia",
	"Byelorussian Soviet Socialist Republic",
	"Russian Soviet Federative Socialist Republic", "Ukrainian Soviet Socialist Republic",
	"United Kingdom of Great Britain and Ireland", "United Kingdom of the Netherlands",
	"Grand Duchy of Finland", "Grand Duchy of Baden", "Grand Duchy of Hesse",
	"Grand Duchy of Tuscany", "Grand Duchy of Mecklenburg-Strelitz", "Duchy of Brabant",
	"Duchy of Brunswick", "Duchy of Urbino", "Republic of Egypt", "Republic of China",
)

func toSet(items ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(items))
	for _, it := range items {
		m[it] = struct{}{}
	}
	return m
}
