// Package disambiguate picks the one knowledge-graph search hit that most
// plausibly names an athlete.
package disambiguate

import (
	"strings"

	"github.com/okian/playerhunt/internal/domain/model"
)

// Class classifies a description keyword.
type Class int

// Keyword classes.
const (
	// Reject marks descriptions of non-person entities (events, teams, works).
	Reject Class = iota
	// Athlete marks descriptions of sporting roles.
	Athlete
	// Person marks descriptions that merely look like a person.
	Person
)

// Pass identifies which selection pass accepted a candidate.
type Pass int

// Selection passes, in priority order.
const (
	PassNone Pass = iota
	PassAthlete
	PassPerson
	PassFirst
)

func (p Pass) String() string {
	switch p {
	case PassAthlete:
		return "athlete"
	case PassPerson:
		return "person"
	case PassFirst:
		return "first"
	default:
		return "none"
	}
}

// Keyword is one lower-case description keyword and its class.
type Keyword struct {
	Word  string
	Class Class
}

// Rules is an ordered keyword table.
type Rules []Keyword

// words returns the keywords of class c in table order.
func (r Rules) words(c Class) []string {
	var out []string
	for _, k := range r {
		if k.Class == c {
			out = append(out, k.Word)
		}
	}
	return out
}

// Select chooses one candidate in three passes over the non-rejected hits:
// the first whose description names a sporting role, else the first that
// looks like a person, else the first at all. It reports false when every
// candidate is rejected or the list is empty.
func Select(cands []model.Candidate, rules Rules) (model.Candidate, Pass, bool) {
	reject, athlete, person := rules.words(Reject), rules.words(Athlete), rules.words(Person)

	kept := make([]model.Candidate, 0, len(cands))
	descs := make([]string, 0, len(cands))
	for _, c := range cands {
		d := strings.ToLower(c.Description)
		if containsAny(d, reject) {
			continue
		}
		kept = append(kept, c)
		descs = append(descs, d)
	}

	for i, d := range descs {
		if containsAny(d, athlete) {
			return kept[i], PassAthlete, true
		}
	}
	for i, d := range descs {
		if containsAny(d, person) {
			return kept[i], PassPerson, true
		}
	}
	if len(kept) > 0 {
		return kept[0], PassFirst, true
	}
	return model.Candidate{}, PassNone, false
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// DefaultRules returns the production keyword table.
func DefaultRules() Rules {
	rules := make(Rules, 0, len(rejectWords)+len(athleteWords)+len(personWords))
	for _, w := range rejectWords {
		rules = append(rules, Keyword{Word: w, Class: Reject})
	}
	for _, w := range athleteWords {
		rules = append(rules, Keyword{Word: w, Class: Athlete})
	}
	for _, w := range personWords {
		rules = append(rules, Keyword{Word: w, Class: Person})
	}
	return rules
}

var rejectWords = []string{ //nolint:gochecknoglobals // immutable keyword table
	"rivalry", "match", "tournament", "championship", "game",
	"season", "team", "club", "stadium", "award", "record",
	"film", "song", "album", "book", "series", "episode",
}

var athleteWords = []string{ //nolint:gochecknoglobals // immutable keyword table
	"player", "footballer", "basketball player", "tennis player",
	"athlete", "swimmer", "boxer", "golfer", "cyclist", "skier",
	"runner", "olympic", "champion", "racing driver", "gymnast",
	"volleyball player", "cricketer", "baseball player", "judoka",
	"chess player", "wrestler", "skateboarder", "surfer",
}

// personWords holds "born" plus nationality adjectives.
var personWords = []string{ //nolint:gochecknoglobals // immutable keyword table
	"born",
	"american", "british", "french", "german", "spanish", "italian",
	"brazilian", "argentine", "japanese", "chinese", "russian",
	"australian", "canadian", "swiss", "dutch", "portuguese",
}
