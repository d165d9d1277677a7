package resolver

// DefaultAliases returns the built-in table of famous athletes commonly
// entered by a single word, keyed by lower-case input.
func DefaultAliases() map[string]string {
	return map[string]string{
		"nadal":      "Rafael Nadal",
		"federer":    "Roger Federer",
		"djokovic":   "Novak Djokovic",
		"messi":      "Lionel Messi",
		"ronaldo":    "Cristiano Ronaldo",
		"neymar":     "Neymar",
		"lebron":     "LeBron James",
		"kobe":       "Kobe Bryant",
		"jordan":     "Michael Jordan",
		"serena":     "Serena Williams",
		"venus":      "Venus Williams",
		"tiger":      "Tiger Woods",
		"bolt":       "Usain Bolt",
		"phelps":     "Michael Phelps",
		"sharapova":  "Maria Sharapova",
		"beckham":    "David Beckham",
		"zidane":     "Zinedine Zidane",
		"maradona":   "Diego Maradona",
		"pele":       "Pelé",
		"tyson":      "Mike Tyson",
		"ali":        "Muhammad Ali",
		"schumacher": "Michael Schumacher",
		"hamilton":   "Lewis Hamilton",
		"verstappen": "Max Verstappen",
		"curry":      "Stephen Curry",
		"durant":     "Kevin Durant",
		"mbappe":     "Kylian Mbappé",
		"haaland":    "Erling Haaland",
		"modric":     "Luka Modrić",
		"benzema":    "Karim Benzema",
	}
}
