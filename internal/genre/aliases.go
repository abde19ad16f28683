package genre

// CanonicalAliases maps common spellings to canonical slugs of the default taxonomy.
// A spelling can stand for more than one genre.
var CanonicalAliases = map[string][]string{
	// Drum and bass
	"dnb":         {"drum-and-bass"},
	"d-b":         {"drum-and-bass"},
	"drum-bass":   {"drum-and-bass"},
	"drum-n-bass": {"drum-and-bass"},
	"jungle-dnb":  {"jungle", "drum-and-bass"},

	// Hip hop
	"hiphop":  {"hip-hop"},
	"rap":     {"hip-hop"},
	"boombap": {"boom-bap"},

	// Rock
	"punk":        {"punk-rock"},
	"alt-rock":    {"alternative-rock"},
	"alternative": {"alternative-rock"},
	"psych-rock":  {"psychedelic-rock"},
	"acid-rock":   {"psychedelic-rock"},
	"postpunk":    {"post-punk"},
	"hardcore":    {"hardcore-punk"},
	"shoegazing":  {"shoegaze"},

	// Electronic
	"rave":        {"breakbeat-hardcore"},
	"detroit":     {"detroit-techno"},
	"electronica": {"electronic"},
	"house-music": {"house"},
	"deephouse":   {"deep-house"},
	"acidhouse":   {"acid-house"},

	// Jazz
	"bop":       {"bebop"},
	"fusion":    {"jazz-fusion"},
	"jazz-funk": {"jazz-fusion", "funk"},
}

// NormalizeToSlugs takes a raw genre string and returns canonical slug(s).
// Returns the slugified input if no specific mapping found.
func NormalizeToSlugs(raw string) []string {
	slug := Slugify(raw)
	if canonical, ok := CanonicalAliases[slug]; ok {
		return canonical
	}
	return []string{slug}
}
