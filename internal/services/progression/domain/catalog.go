package domain

// chapterSeed is the compact form the default catalog is built from.
type chapterSeed struct {
	number    int
	title     string
	geometry  string
	element   string
	gate      bool
	milestone bool
}

// defaultChapterSeeds lists the 27 chapters of the journey. Gates close each
// directional arc; milestones mark the golden-path checkpoints.
var defaultChapterSeeds = []chapterSeed{
	{number: 1, title: "The First Breath", geometry: "Point", element: "Earth"},
	{number: 2, title: "The Circle Drawn", geometry: "Circle", element: "Earth"},
	{number: 3, title: "Vesica Dawn", geometry: "Vesica Piscis", element: "Earth"},
	{number: 4, title: "Roots of the Triad", geometry: "Triangle", element: "Earth"},
	{number: 5, title: "Gate of Stone", geometry: "Square", element: "Earth", gate: true},
	{number: 6, title: "The Rising Wind", geometry: "Pentagon", element: "Air"},
	{number: 7, title: "Seed of Life", geometry: "Seed of Life", element: "Air"},
	{number: 8, title: "The Sixfold Path", geometry: "Hexagon", element: "Air"},
	{number: 9, title: "Spiral Ascent", geometry: "Golden Spiral", element: "Air", milestone: true},
	{number: 10, title: "Gate of the East Wind", geometry: "Flower of Life", element: "Air", gate: true},
	{number: 11, title: "The Kindled Flame", geometry: "Tetrahedron", element: "Fire"},
	{number: 12, title: "Forge of Noon", geometry: "Star Tetrahedron", element: "Fire"},
	{number: 13, title: "The Burning Mirror", geometry: "Octahedron", element: "Fire"},
	{number: 14, title: "Ember Constellations", geometry: "Sri Yantra", element: "Fire"},
	{number: 15, title: "Gate of Flame", geometry: "Fruit of Life", element: "Fire", gate: true},
	{number: 16, title: "Tides of Memory", geometry: "Icosahedron", element: "Water"},
	{number: 17, title: "The Silver River", geometry: "Torus", element: "Water"},
	{number: 18, title: "Deep Currents", geometry: "Nautilus Spiral", element: "Water", milestone: true},
	{number: 19, title: "Mirror of the Moon", geometry: "Dodecahedron", element: "Water"},
	{number: 20, title: "Gate of the Deep", geometry: "Metatron's Cube", element: "Water", gate: true},
	{number: 21, title: "Stillpoint", geometry: "Bindu", element: "Aether"},
	{number: 22, title: "The Woven Field", geometry: "Tube Torus", element: "Aether"},
	{number: 23, title: "Harmonic Union", geometry: "Vector Equilibrium", element: "Aether"},
	{number: 24, title: "The Inner Temple", geometry: "64 Tetrahedron Grid", element: "Aether"},
	{number: 25, title: "Crown of Light", geometry: "Icosidodecahedron", element: "Aether"},
	{number: 26, title: "The Return", geometry: "Ouroboros", element: "Aether"},
	{number: 27, title: "The Unbroken Circle", geometry: "Unity Circle", element: "Aether", gate: true, milestone: true},
}

// DefaultCatalog builds the fixed production catalog.
//
// The seed data is validated at startup; a malformed seed list is a
// programming error, so failure panics rather than returning an error.
func DefaultCatalog() Catalog {
	chapters := make([]Chapter, 0, len(defaultChapterSeeds))
	for _, seed := range defaultChapterSeeds {
		group, err := GroupForNumber(seed.number, nil)
		if err != nil {
			panic(err)
		}
		chapters = append(chapters, Chapter{
			Number:     seed.number,
			Title:      seed.title,
			Group:      group,
			Geometry:   seed.geometry,
			Element:    seed.element,
			Gate:       seed.gate,
			Milestone:  seed.milestone,
			BaseReward: BaseChapterReward,
		})
	}
	catalog, err := NewCatalog(chapters)
	if err != nil {
		panic(err)
	}
	return catalog
}
