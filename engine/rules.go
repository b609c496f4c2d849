package engine

// HouseRules holds configurable game rule settings.
type HouseRules struct {
	BagDistribution      map[TokenKind]int `json:"bagDistribution" yaml:"bag_distribution"`
	MarketCapacity       int               `json:"marketCapacity" yaml:"market_capacity"`               // token slots on offer
	AnimalMarketCapacity int               `json:"animalMarketCapacity" yaml:"animal_market_capacity"` // animal cards on offer
	AnimalCopies         int               `json:"animalCopies" yaml:"animal_copies"`                   // copies of each animal in the deck
	MaxPlayers           int               `json:"maxPlayers" yaml:"max_players"`
	MaxIncompleteAnimals int               `json:"maxIncompleteAnimals" yaml:"max_incomplete_animals"` // drafting is refused at this many
	DiscardPenalty       int               `json:"discardPenalty" yaml:"discard_penalty"`               // points netted per discarded token; 0 disables, negative means default
	Layout               Layout            `json:"layout" yaml:"layout"`
}

// DefaultHouseRules returns the standard rules.
func DefaultHouseRules() HouseRules {
	return HouseRules{
		BagDistribution: map[TokenKind]int{
			Wood:  21,
			Leaf:  19,
			Stone: 23,
			Water: 23,
			Sand:  19,
			Brick: 15,
		},
		MarketCapacity:       5,
		AnimalMarketCapacity: 5,
		AnimalCopies:         1,
		MaxPlayers:           4,
		MaxIncompleteAnimals: 4,
		DiscardPenalty:       2,
		Layout:               LayoutStaggered,
	}
}

// withDefaults fills zero fields from DefaultHouseRules. DiscardPenalty is the exception:
// zero is a valid setting and only a negative value takes the default.
func (r HouseRules) withDefaults() HouseRules {
	d := DefaultHouseRules()
	if len(r.BagDistribution) == 0 {
		r.BagDistribution = d.BagDistribution
	}
	if r.MarketCapacity <= 0 {
		r.MarketCapacity = d.MarketCapacity
	}
	if r.AnimalMarketCapacity <= 0 {
		r.AnimalMarketCapacity = d.AnimalMarketCapacity
	}
	if r.AnimalCopies <= 0 {
		r.AnimalCopies = d.AnimalCopies
	}
	if r.MaxPlayers <= 0 {
		r.MaxPlayers = d.MaxPlayers
	}
	if r.MaxIncompleteAnimals <= 0 {
		r.MaxIncompleteAnimals = d.MaxIncompleteAnimals
	}
	if r.DiscardPenalty < 0 {
		r.DiscardPenalty = d.DiscardPenalty
	}
	if r.Layout == "" {
		r.Layout = d.Layout
	}
	return r
}

func (r HouseRules) clone() HouseRules {
	cp := r
	if r.BagDistribution != nil {
		cp.BagDistribution = make(map[TokenKind]int, len(r.BagDistribution))
		for k, v := range r.BagDistribution {
			cp.BagDistribution[k] = v
		}
	}
	return cp
}
