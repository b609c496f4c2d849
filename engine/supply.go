package engine

// TokensPerSlot is the number of tokens in one market slot.
const TokensPerSlot = 3

// TokenSlot is one offer of the token market.
type TokenSlot struct {
	ID     string      `json:"id"`
	Tokens []TokenKind `json:"tokens"`
}

// MarketAnimal is one face-up card of the animal market.
type MarketAnimal struct {
	ID   string     `json:"id"`
	Type AnimalKind `json:"type"`
}

// CreateBag builds the token bag from dist and shuffles it. Kinds are laid out in
// TokenKinds order before shuffling so the result depends only on the RNG state.
func CreateBag(rng *RNG, dist map[TokenKind]int) []TokenKind {
	total := 0
	for _, n := range dist {
		total += n
	}
	bag := make([]TokenKind, 0, total)
	for _, k := range TokenKinds {
		for i := 0; i < dist[k]; i++ {
			bag = append(bag, k)
		}
	}
	shuffle(rng, bag)
	return bag
}

// CreateAnimalDeck shuffles copies of every catalog key.
func CreateAnimalDeck(rng *RNG, copies int) []AnimalKind {
	if copies < 1 {
		copies = 1
	}
	deck := make([]AnimalKind, 0, len(catalog)*copies)
	for c := 0; c < copies; c++ {
		for _, d := range catalog {
			deck = append(deck, d.ID)
		}
	}
	shuffle(rng, deck)
	return deck
}

// RefillTokenMarket tops market up to capacity with slots popped from the end of bag.
// It stops when fewer than TokensPerSlot tokens remain and never builds a partial slot.
// The inputs are not modified.
func RefillTokenMarket(rng *RNG, market []TokenSlot, bag []TokenKind, capacity int) ([]TokenSlot, []TokenKind) {
	m := cloneSlots(market)
	b := append([]TokenKind{}, bag...)
	for len(m) < capacity {
		var ok bool
		m, b, ok = drawSlot(rng, m, b)
		if !ok {
			break
		}
	}
	return m, b
}

// RefillAnimalMarket tops market up to capacity with cards popped from the end of deck.
// The inputs are not modified.
func RefillAnimalMarket(rng *RNG, market []MarketAnimal, deck []AnimalKind, capacity int) ([]MarketAnimal, []AnimalKind) {
	m := append(make([]MarketAnimal, 0, capacity), market...)
	d := append([]AnimalKind{}, deck...)
	for len(m) < capacity {
		var ok bool
		m, d, ok = drawCard(rng, m, d)
		if !ok {
			break
		}
	}
	return m, d
}

// drawSlot moves one slot's worth of tokens from bag into market.
func drawSlot(rng *RNG, market []TokenSlot, bag []TokenKind) ([]TokenSlot, []TokenKind, bool) {
	if len(bag) < TokensPerSlot {
		return market, bag, false
	}
	tokens := make([]TokenKind, 0, TokensPerSlot)
	for i := 0; i < TokensPerSlot; i++ {
		tokens = append(tokens, bag[len(bag)-1])
		bag = bag[:len(bag)-1]
	}
	return append(market, TokenSlot{ID: rng.NewID(), Tokens: tokens}), bag, true
}

// drawCard moves one card from deck into market.
func drawCard(rng *RNG, market []MarketAnimal, deck []AnimalKind) ([]MarketAnimal, []AnimalKind, bool) {
	if len(deck) == 0 {
		return market, deck, false
	}
	kind := deck[len(deck)-1]
	return append(market, MarketAnimal{ID: rng.NewID(), Type: kind}), deck[:len(deck)-1], true
}

func cloneSlots(s []TokenSlot) []TokenSlot {
	out := make([]TokenSlot, len(s))
	for i, slot := range s {
		out[i] = TokenSlot{ID: slot.ID, Tokens: append([]TokenKind(nil), slot.Tokens...)}
	}
	return out
}
