package engine

// LegalCells returns every cell of board where token may be placed, in row order.
func LegalCells(board Board, token TokenKind) []Coord {
	var out []Coord
	for _, c := range board.Coords() {
		if IsValidPlacement(board[c], token) {
			out = append(out, c)
		}
	}
	return out
}

// AnimalTargets returns every cell without an animal where kind's pattern matches.
func AnimalTargets(board Board, kind AnimalKind) ([]Coord, error) {
	def, err := Lookup(kind)
	if err != nil {
		return nil, err
	}
	var out []Coord
	for _, c := range board.Coords() {
		cell := board[c]
		if cell.Animal == "" && def.Check(cell, board) {
			out = append(out, c)
		}
	}
	return out, nil
}

// CanDraftAnimal reports whether p may take another animal card this turn.
func CanDraftAnimal(p *Player, rules HouseRules) bool {
	return !p.HasDraftedAnimal && p.IncompleteAnimals() < rules.withDefaults().MaxIncompleteAnimals
}

// CanEndTurn reports whether playerID may end the turn in s.
func CanEndTurn(s *GameState, playerID string) bool {
	if s.Status != StatusPlaying || s.PlayerIndex(playerID) != s.TurnIndex {
		return false
	}
	me := s.Players[s.TurnIndex]
	return len(me.Holding) == 0 && (me.HasDraftedTokens || len(s.Market) == 0)
}

// Actions summarizes what the current player can do, for clients that highlight moves.
type Actions struct {
	CanDraftTokens bool                  `json:"canDraftTokens"`
	CanDraftAnimal bool                  `json:"canDraftAnimal"`
	CanEndTurn     bool                  `json:"canEndTurn"`
	Placements     map[TokenKind][]Coord `json:"placements,omitempty"`
	AnimalTargets  map[string][]Coord    `json:"animalTargets,omitempty"` // by card ID
}

// LegalActions describes the moves open to playerID. It is empty when it is not
// that player's turn.
func LegalActions(s *GameState, playerID string) Actions {
	var a Actions
	if s.Status != StatusPlaying || s.PlayerIndex(playerID) != s.TurnIndex {
		return a
	}
	me := s.Players[s.TurnIndex]
	a.CanDraftTokens = !me.HasDraftedTokens && len(s.Market) > 0
	a.CanDraftAnimal = CanDraftAnimal(me, s.Rules) && len(s.AnimalMarket) > 0
	a.CanEndTurn = CanEndTurn(s, playerID)
	if len(me.Holding) > 0 {
		a.Placements = make(map[TokenKind][]Coord)
		for _, t := range me.Holding {
			if _, seen := a.Placements[t]; !seen {
				a.Placements[t] = LegalCells(me.Board, t)
			}
		}
	}
	for _, card := range me.Animals {
		if card.Complete() {
			continue
		}
		targets, err := AnimalTargets(me.Board, card.Type)
		if err != nil || len(targets) == 0 {
			continue
		}
		if a.AnimalTargets == nil {
			a.AnimalTargets = make(map[string][]Coord)
		}
		a.AnimalTargets[card.ID] = targets
	}
	return a
}
