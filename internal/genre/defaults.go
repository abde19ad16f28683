package genre

// GenreSeed defines a genre for seeding the default taxonomy.
// DerivedFrom and Influences reference other seeds by slug.
type GenreSeed struct {
	Name        string
	Slug        string
	Type        string
	AKAs        []string
	DerivedFrom []string
	Influences  []string
	Children    []GenreSeed
}

// DefaultGenres is the default music taxonomy.
// Users can reshape it freely after seeding.
var DefaultGenres = []GenreSeed{
	{
		Name: "Rock",
		Slug: "rock",
		Type: "META",
		AKAs: []string{"Rock Music"},
		Children: []GenreSeed{
			{Name: "Hard Rock", Slug: "hard-rock"},
			{Name: "Psychedelic Rock", Slug: "psychedelic-rock", AKAs: []string{"Psych Rock", "Acid Rock"}},
			{
				Name: "Punk Rock",
				Slug: "punk-rock",
				AKAs: []string{"Punk"},
				Children: []GenreSeed{
					{Name: "Hardcore Punk", Slug: "hardcore-punk", AKAs: []string{"Hardcore"}},
					{Name: "Post-Punk", Slug: "post-punk", Influences: []string{"dub"}},
				},
			},
			{
				Name: "Alternative Rock",
				Slug: "alternative-rock",
				AKAs: []string{"Alt-Rock"},
				Children: []GenreSeed{
					{Name: "Grunge", Slug: "grunge", DerivedFrom: []string{"hardcore-punk"}, Influences: []string{"hard-rock"}},
					{Name: "Shoegaze", Slug: "shoegaze", AKAs: []string{"Shoegazing"}, DerivedFrom: []string{"post-punk"}, Influences: []string{"psychedelic-rock"}},
				},
			},
		},
	},
	{
		Name: "Electronic",
		Slug: "electronic",
		Type: "META",
		AKAs: []string{"Electronic Music"},
		Children: []GenreSeed{
			{
				Name:       "House",
				Slug:       "house",
				Influences: []string{"disco"},
				Children: []GenreSeed{
					{Name: "Deep House", Slug: "deep-house"},
					{Name: "Acid House", Slug: "acid-house", Influences: []string{"detroit-techno"}},
				},
			},
			{
				Name: "Techno",
				Slug: "techno",
				Children: []GenreSeed{
					{Name: "Detroit Techno", Slug: "detroit-techno", Type: "SCENE"},
				},
			},
			{Name: "Jungle", Slug: "jungle", DerivedFrom: []string{"breakbeat-hardcore"}, Influences: []string{"dub"}},
			{Name: "Breakbeat Hardcore", Slug: "breakbeat-hardcore", AKAs: []string{"Rave"}},
			{
				Name:        "Drum and Bass",
				Slug:        "drum-and-bass",
				AKAs:        []string{"DnB", "Drum & Bass", "D&B"},
				DerivedFrom: []string{"jungle"},
				Influences:  []string{"techno"},
			},
		},
	},
	{
		Name:       "Hip Hop",
		Slug:       "hip-hop",
		AKAs:       []string{"Hip-Hop", "Rap"},
		Influences: []string{"funk", "disco"},
		Children: []GenreSeed{
			{Name: "Boom Bap", Slug: "boom-bap"},
			{Name: "Trap", Slug: "trap", Influences: []string{"DnB"}},
		},
	},
	{
		Name: "Jazz",
		Slug: "jazz",
		Type: "META",
		Children: []GenreSeed{
			{Name: "Bebop", Slug: "bebop", AKAs: []string{"Bop"}},
			{Name: "Jazz Fusion", Slug: "jazz-fusion", AKAs: []string{"Fusion"}, DerivedFrom: []string{"bebop"}, Influences: []string{"psychedelic-rock", "funk"}},
		},
	},
	{Name: "Funk", Slug: "funk", Influences: []string{"jazz"}},
	{Name: "Disco", Slug: "disco", Type: "MOVEMENT", Influences: []string{"funk"}},
	{Name: "Dub", Slug: "dub", Influences: []string{"funk"}},
}

// SeedEntry is a GenreSeed flattened with its parent's slug.
type SeedEntry struct {
	GenreSeed
	ParentSlug string
}

// Flatten walks seeds depth-first so every parent precedes its children.
func Flatten(seeds []GenreSeed) []SeedEntry {
	var out []SeedEntry
	var walk func(parent string, seeds []GenreSeed)
	walk = func(parent string, seeds []GenreSeed) {
		for _, s := range seeds {
			out = append(out, SeedEntry{GenreSeed: s, ParentSlug: parent})
			walk(s.Slug, s.Children)
		}
	}
	walk("", seeds)
	return out
}
