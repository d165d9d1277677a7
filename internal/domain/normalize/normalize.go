// Package normalize maps raw knowledge-graph labels (sport names, occupation
// titles, country names) onto the controlled vocabulary the game emits.
//
// All functions are pure. The tables are fixed at compile time and only
// reachable through the functions below.
package normalize

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Key returns the lookup key for a name: NFC, lower-cased, trimmed.
// Every local index comparison goes through Key.
func Key(name string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFC.String(name)))
}

// TitleCase upper-cases the first letter of every word and lower-cases the rest.
func TitleCase(s string) string {
	// cases.Caser is stateful; a fresh one per call keeps TitleCase safe for concurrent use.
	return cases.Title(language.English).String(s)
}

// Sport maps a raw sport label to the controlled vocabulary. Unknown labels
// fall back to title case.
func Sport(raw string) string {
	if sport, ok := sportSynonyms[strings.ToLower(raw)]; ok {
		return sport
	}
	return TitleCase(raw)
}

// Country maps a raw country label to its short form. The match is exact and
// case-sensitive; unknown labels pass through unchanged.
func Country(raw string) string {
	if country, ok := countryAliases[raw]; ok {
		return country
	}
	return raw
}

// OccupationToSport maps an occupation label such as "tennis player" to a
// sport. The ordered table is scanned by substring and the first hit wins.
// Labels outside the table that still mention "player" or "athlete" yield
// the remaining words in title case. Anything else reports false.
func OccupationToSport(raw string) (string, bool) {
	lower := strings.ToLower(raw)
	for _, m := range occupationTable {
		if strings.Contains(lower, m.occupation) {
			return m.sport, true
		}
	}

	if !strings.Contains(lower, "player") && !strings.Contains(lower, "athlete") {
		return "", false
	}
	rest := strings.Join(strings.Fields(stripWords(lower, "player", "athlete")), " ")
	if rest == "" {
		return "", false
	}
	return TitleCase(rest), true
}

// stripWords removes every token of s that contains one of words, matching
// the substring test that lets a label through to it.
func stripWords(s string, words ...string) string {
	fields := strings.Fields(s)
	out := fields[:0]
	for _, f := range fields {
		drop := false
		for _, w := range words {
			if strings.Contains(f, w) {
				drop = true
				break
			}
		}
		if !drop {
			out = append(out, f)
		}
	}
	return strings.Join(out, " ")
}

// SupportedSports lists the sports the occupation and sport tables can emit,
// in display order.
func SupportedSports() []string {
	out := make([]string, len(supportedSports))
	copy(out, supportedSports)
	return out
}

// IsSupported reports whether sport is one of SupportedSports.
func IsSupported(sport string) bool {
	for _, s := range supportedSports {
		if s == sport {
			return true
		}
	}
	return false
}
