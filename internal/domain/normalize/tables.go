package normalize

// sportSynonyms is keyed by lower-cased knowledge-graph sport labels.
var sportSynonyms = map[string]string{ //nolint:gochecknoglobals // immutable lookup table
	"association football": "Football",
	"football":             "Football",
	"soccer":               "Football",
	"basketball":           "Basketball",
	"tennis":               "Tennis",
	"cricket":              "Cricket",
	"golf":                 "Golf",
	"baseball":             "Baseball",
	"ice hockey":           "Hockey",
	"swimming":             "Swimming",
	"athletics":            "Athletics",
	"track and field":      "Athletics",
	"boxing":               "Boxing",
	"mixed martial arts":   "MMA",
	"rugby union":          "Rugby",
	"rugby league":         "Rugby",
	"cycling":              "Cycling",
	"artistic gymnastics":  "Gymnastics",
	"gymnastics":           "Gymnastics",
	"volleyball":           "Volleyball",
	"skateboarding":        "Skateboarding",
	"surfing":              "Surfing",
	"snowboarding":         "Snowboarding",
	"chess":                "Chess",
	"formula one":          "Formula 1",
	"formula one racing":   "Formula 1",
	"kart racing":          "Motorsport",
	"auto racing":          "Motorsport",
	"motorcycle racing":    "Motorsport",
	"rallying":             "Motorsport",
	"alpine skiing":        "Skiing",
	"figure skating":       "Figure Skating",
	"badminton":            "Badminton",
	"table tennis":         "Table Tennis",
}

// countryAliases is keyed by the exact English label.
var countryAliases = map[string]string{ //nolint:gochecknoglobals // immutable lookup table
	"United States of America":              "USA",
	"United States":                         "USA",
	"United Kingdom":                        "UK",
	"Kingdom of the Netherlands":            "Netherlands",
	"People's Republic of China":            "China",
	"Republic of Korea":                     "South Korea",
	"Democratic People's Republic of Korea": "North Korea",
	"Russian Federation":                    "Russia",
	"Czech Republic":                        "Czechia",
}

type occupationMapping struct {
	occupation string // lower-case substring
	sport      string
}

// occupationTable order is significant: the first substring hit wins, so
// "table tennis player" resolves through "tennis player".
var occupationTable = []occupationMapping{ //nolint:gochecknoglobals // immutable lookup table
	{"footballer", "Football"},
	{"association football player", "Football"},
	{"soccer player", "Football"},
	{"basketball player", "Basketball"},
	{"tennis player", "Tennis"},
	{"cricketer", "Cricket"},
	{"golfer", "Golf"},
	{"baseball player", "Baseball"},
	{"ice hockey player", "Hockey"},
	{"field hockey player", "Hockey"},
	{"swimmer", "Swimming"},
	{"sprinter", "Athletics"},
	{"marathon runner", "Athletics"},
	{"long-distance runner", "Athletics"},
	{"track and field athlete", "Athletics"},
	{"boxer", "Boxing"},
	{"mixed martial artist", "MMA"},
	{"rugby player", "Rugby"},
	{"rugby union player", "Rugby"},
	{"cyclist", "Cycling"},
	{"racing driver", "Motorsport"},
	{"formula one driver", "Formula 1"},
	{"gymnast", "Gymnastics"},
	{"volleyball player", "Volleyball"},
	{"wrestler", "Wrestling"},
	{"alpine skier", "Skiing"},
	{"figure skater", "Skating"},
	{"skateboarder", "Skateboarding"},
	{"surfer", "Surfing"},
	{"snowboarder", "Snowboarding"},
	{"badminton player", "Badminton"},
	{"table tennis player", "Table Tennis"},
	{"fencer", "Fencing"},
	{"archer", "Archery"},
	{"weightlifter", "Weightlifting"},
	{"diver", "Diving"},
	{"rower", "Rowing"},
	{"judoka", "Judo"},
	{"chess player", "Chess"},
	{"esports player", "Esports"},
	{"triathlete", "Triathlon"},
}

var supportedSports = []string{ //nolint:gochecknoglobals // immutable display list
	"Football", "Basketball", "Tennis", "Cricket", "Golf", "Baseball",
	"Hockey", "Swimming", "Athletics", "Boxing", "MMA", "Rugby",
	"Cycling", "Formula 1", "Motorsport", "Gymnastics", "Volleyball",
	"Wrestling", "Skiing", "Skating", "Skateboarding", "Surfing",
	"Snowboarding", "Badminton", "Table Tennis", "Fencing", "Archery",
	"Weightlifting", "Diving", "Rowing", "Judo", "Chess", "Esports",
	"Triathlon",
}
