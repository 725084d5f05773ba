package quest

// Catalog holds the static quest definitions, fixed at process start.
type Catalog struct {
	defs []*Definition
	byID map[string]*Definition
}

func NewCatalog(defs []*Definition) *Catalog {
	byID := make(map[string]*Definition, len(defs))
	for _, d := range defs {
		byID[d.ID] = d
	}
	return &Catalog{defs: defs, byID: byID}
}

func (c *Catalog) Get(id string) (*Definition, bool) {
	d, ok := c.byID[id]
	return d, ok
}

func (c *Catalog) All() []*Definition {
	return c.defs
}

func DefaultCatalog() *Catalog {
	return NewCatalog([]*Definition{
		{
			ID:        "recycle-plastic",
			Title:     "Recycle 5 plastic items",
			Required:  5,
			Category:  "recycling",
			ActionTag: "recycle",
			Prompt:    "Does this photo show a plastic item being placed in a recycling bin? Answer yes or no.",
		},
		{
			ID:        "reusable-bottle",
			Title:     "Use a reusable bottle 3 days",
			Required:  3,
			Category:  "waste",
			ActionTag: "reuse",
			Prompt:    "Does this photo show a reusable water bottle in use? Answer yes or no.",
		},
		{
			ID:        "public-transport",
			Title:     "Take public transport 5 times",
			Required:  5,
			Category:  "transport",
			ActionTag: "transport",
			Prompt:    "Does this photo show the inside of a bus, tram, metro or train? Answer yes or no.",
		},
		{
			ID:        "bike-commute",
			Title:     "Commute by bike 5 times",
			Required:  5,
			Category:  "transport",
			ActionTag: "transport",
			Prompt:    "Does this photo show a bicycle being used for a trip? Answer yes or no.",
		},
		{
			ID:        "litter-pickup",
			Title:     "Pick up litter 4 times",
			Required:  4,
			Category:  "cleanup",
			ActionTag: "cleanup",
			Prompt:    "Does this photo show collected litter or someone picking up trash outdoors? Answer yes or no.",
		},
		{
			ID:        "compost-food-waste",
			Title:     "Compost food waste 3 times",
			Required:  3,
			Category:  "waste",
			ActionTag: "compost",
			Prompt:    "Does this photo show food scraps in a compost bin? Answer yes or no.",
		},
		{
			ID:        "plant-tree",
			Title:     "Plant a tree",
			Required:  1,
			Category:  "nature",
			ActionTag: "planting",
			Prompt:    "Does this photo show a tree or plant being planted in soil? Answer yes or no.",
		},
		{
			ID:        "secondhand-purchase",
			Title:     "Buy secondhand twice",
			Required:  2,
			Category:  "waste",
			ActionTag: "reuse",
			Prompt:    "Does this photo show a secondhand or thrift store purchase? Answer yes or no.",
		},
	})
}
