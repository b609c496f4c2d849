package engine

import "fmt"

// turnOwner clones s for an action by playerID after checking that the game is in play
// and that it is that player's turn.
func turnOwner(s *GameState, playerID string) (*GameState, *Player, error) {
	if s.Status != StatusPlaying {
		return nil, nil, ErrNotPlaying
	}
	idx := s.PlayerIndex(playerID)
	if idx < 0 {
		return nil, nil, ErrUnknownPlayer
	}
	if idx != s.TurnIndex {
		return nil, nil, ErrNotYourTurn
	}
	g := s.Clone()
	return g, g.Players[idx], nil
}

// ApplyDraftTokens takes market slot slot into the player's holding and attempts one
// refill. If the bag can no longer fill a slot the last round begins.
func ApplyDraftTokens(s *GameState, playerID string, slot int) (*GameState, error) {
	g, me, err := turnOwner(s, playerID)
	if err != nil {
		return s, err
	}
	if me.HasDraftedTokens {
		return s, ErrAlreadyDrafted
	}
	if slot < 0 || slot >= len(g.Market) {
		return s, ErrBadIndex
	}

	me.Holding = append([]TokenKind{}, g.Market[slot].Tokens...)
	me.HasDraftedTokens = true
	g.Market = append(g.Market[:slot], g.Market[slot+1:]...)

	var refilled bool
	g.Market, g.Bag, refilled = drawSlot(&g.RNG, g.Market, g.Bag)
	if !refilled && !g.IsLastRound {
		g.IsLastRound = true
		g.log(LogWarning, "The Bag is empty! Finishing the round...")
	}
	g.log(LogNeutral, me.Name+" drafted tokens.")
	return g, nil
}

// ApplyDraftAnimal takes animal market card idx and attempts one refill from the deck.
func ApplyDraftAnimal(s *GameState, playerID string, idx int) (*GameState, error) {
	g, me, err := turnOwner(s, playerID)
	if err != nil {
		return s, err
	}
	if me.HasDraftedAnimal {
		return s, ErrAlreadyDrafted
	}
	if me.IncompleteAnimals() >= g.Rules.MaxIncompleteAnimals {
		return s, ErrTooManyAnimals
	}
	if idx < 0 || idx >= len(g.AnimalMarket) {
		return s, ErrBadIndex
	}
	card := g.AnimalMarket[idx]
	def, err := Lookup(card.Type)
	if err != nil {
		return s, fmt.Errorf("%w: market card %s: %w", ErrCorruptState, card.ID, err)
	}

	me.Animals = append(me.Animals, AnimalCard{ID: card.ID, Type: card.Type, MaxSlots: def.Slots})
	me.HasDraftedAnimal = true
	g.AnimalMarket = append(g.AnimalMarket[:idx], g.AnimalMarket[idx+1:]...)
	g.AnimalMarket, g.AnimalDeck, _ = drawCard(&g.RNG, g.AnimalMarket, g.AnimalDeck)
	g.log(LogNeutral, fmt.Sprintf("%s adopted a %s.", me.Name, def.Name))
	return g, nil
}

// ApplyPlaceToken places held token holdingIdx on the cell at at and rescores the board.
// Filling the last empty cell begins the last round.
func ApplyPlaceToken(s *GameState, playerID string, holdingIdx int, at Coord) (*GameState, error) {
	g, me, err := turnOwner(s, playerID)
	if err != nil {
		return s, err
	}
	if holdingIdx < 0 || holdingIdx >= len(me.Holding) {
		return s, ErrBadIndex
	}
	cell := me.Board.Cell(at)
	if cell == nil {
		return s, ErrUnknownCoordinate
	}
	token := me.Holding[holdingIdx]
	if !IsValidPlacement(cell, token) {
		return s, ErrIllegalPlacement
	}

	PlaceToken(cell, token)
	me.Holding = append(me.Holding[:holdingIdx], me.Holding[holdingIdx+1:]...)
	ls := ScoreLandscape(me.Board)
	me.LandscapeScore = ls.Total
	me.LandscapeScoreBreakdown = ls.Breakdown

	if !me.Board.HasEmptyCell() && !g.IsLastRound {
		g.IsLastRound = true
		g.log(LogWarning, me.Name+"'s world is full! Finishing the round...")
	}
	return g, nil
}

// ApplyPlaceAnimal places one copy of animal card cardIdx on the cell at at. The card's
// pattern must match with that cell as the anchor.
func ApplyPlaceAnimal(s *GameState, playerID string, cardIdx int, at Coord) (*GameState, error) {
	g, me, err := turnOwner(s, playerID)
	if err != nil {
		return s, err
	}
	if cardIdx < 0 || cardIdx >= len(me.Animals) {
		return s, ErrBadIndex
	}
	card := &me.Animals[cardIdx]
	def, err := Lookup(card.Type)
	if err != nil {
		return s, fmt.Errorf("%w: card %s: %w", ErrCorruptState, card.ID, err)
	}
	cell := me.Board.Cell(at)
	if cell == nil {
		return s, ErrUnknownCoordinate
	}
	if cell.Animal != "" {
		return s, ErrCellOccupied
	}
	if card.Complete() {
		return s, ErrCardComplete
	}
	if !def.Check(cell, me.Board) {
		return s, ErrPatternMismatch
	}
	if card.SlotsFilled >= len(def.Points) {
		return s, fmt.Errorf("%w: card %s has %d slots but %s scores %d", ErrCorruptState, card.ID, card.MaxSlots, def.ID, len(def.Points))
	}

	cell.Animal = card.Type
	pts := def.Points[card.SlotsFilled]
	card.SlotsFilled++
	me.Score += pts
	g.log(LogSuccess, fmt.Sprintf("%s placed a %s (+%d)!", me.Name, def.Name, pts))
	return g, nil
}

// ApplyDiscard throws away held token holdingIdx for a penalty netted at the end.
func ApplyDiscard(s *GameState, playerID string, holdingIdx int) (*GameState, error) {
	g, me, err := turnOwner(s, playerID)
	if err != nil {
		return s, err
	}
	if holdingIdx < 0 || holdingIdx >= len(me.Holding) {
		return s, ErrBadIndex
	}
	me.Holding = append(me.Holding[:holdingIdx], me.Holding[holdingIdx+1:]...)
	me.Penalties++
	g.log(LogFailure, fmt.Sprintf("%s discarded a token (-%d pts).", me.Name, g.Rules.DiscardPenalty))
	return g, nil
}

// ApplyEndTurn passes the turn, or finishes the game when an end condition holds.
func ApplyEndTurn(s *GameState, playerID string) (*GameState, error) {
	g, me, err := turnOwner(s, playerID)
	if err != nil {
		return s, err
	}
	if len(me.Holding) > 0 {
		return s, ErrHoldingNotEmpty
	}
	// An empty market means there was nothing to draft.
	if !me.HasDraftedTokens && len(g.Market) > 0 {
		return s, ErrMustDraftTokens
	}
	me.HasDraftedTokens = false
	me.HasDraftedAnimal = false
	g.advanceTurn()
	return g, nil
}
