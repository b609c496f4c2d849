// Package engine implements the Equilibrium rules.
//
// Every exported operation takes a *GameState snapshot and returns a new one; the
// input is never modified. Rule violations return the input snapshot together with
// an error wrapping ErrRejected, so callers can tell accepted from rejected actions
// with errors.Is. The package performs no I/O.
package engine

// AnimalCard is a drafted animal owned by a player.
type AnimalCard struct {
	ID          string     `json:"id"`
	Type        AnimalKind `json:"type"`
	SlotsFilled int        `json:"slotsFilled"`
	MaxSlots    int        `json:"maxSlots"`
}

// Complete reports whether every slot of the card is filled.
func (a AnimalCard) Complete() bool { return a.SlotsFilled >= a.MaxSlots }

// Player is one seat at the table.
type Player struct {
	ID                      string       `json:"id"`
	Name                    string       `json:"name"`
	Score                   int          `json:"score"`
	Penalties               int          `json:"penalties"`
	LandscapeScore          int          `json:"landscapeScore"`
	LandscapeScoreBreakdown Breakdown    `json:"landscapeScoreBreakdown"`
	Board                   Board        `json:"board"`
	Holding                 []TokenKind  `json:"holding"`
	Animals                 []AnimalCard `json:"animals"`
	Ready                   bool         `json:"ready"`
	HasDraftedTokens        bool         `json:"hasDraftedTokens"`
	HasDraftedAnimal        bool         `json:"hasDraftedAnimal"`
}

// newPlayer returns a seat with an empty board and zero scores.
func newPlayer(id, name string, layout Layout) *Player {
	return &Player{
		ID:      id,
		Name:    name,
		Board:   GenerateBoard(layout),
		Holding: []TokenKind{},
		Animals: []AnimalCard{},
	}
}

// IncompleteAnimals counts cards with open slots.
func (p *Player) IncompleteAnimals() int {
	n := 0
	for _, a := range p.Animals {
		if !a.Complete() {
			n++
		}
	}
	return n
}

// AnimalsPlaced is the total number of animal copies on the player's board.
func (p *Player) AnimalsPlaced() int {
	n := 0
	for _, a := range p.Animals {
		n += a.SlotsFilled
	}
	return n
}

func (p *Player) clone() *Player {
	cp := *p
	cp.Board = p.Board.Clone()
	cp.Holding = append([]TokenKind{}, p.Holding...)
	cp.Animals = append([]AnimalCard{}, p.Animals...)
	return &cp
}

// GameState is the complete snapshot of one room.
type GameState struct {
	RoomID           string         `json:"roomId"`
	HostID           string         `json:"hostId"`
	Status           Status         `json:"status"`
	Players          []*Player      `json:"players"`
	Market           []TokenSlot    `json:"market"`
	Bag              []TokenKind    `json:"bag"`
	AnimalMarket     []MarketAnimal `json:"animalMarket"`
	AnimalDeck       []AnimalKind   `json:"animalDeck"`
	TurnIndex        int            `json:"turnIndex"`
	StartPlayerIndex int            `json:"startPlayerIndex"`
	IsLastRound      bool           `json:"isLastRound"`
	Logs             []LogEntry     `json:"logs"`
	WinnerID         string         `json:"winnerId,omitempty"`
	WinnerIDs        []string       `json:"winnerIds,omitempty"`
	Rules            HouseRules     `json:"rules"`
	RNG              RNG            `json:"rng"`
	LogSeq           int64          `json:"logSeq"`
}

// ---------------------------------------------------------------------------
// Copy-on-write
// ---------------------------------------------------------------------------

// Clone returns a deep copy of g. Mutating the copy never affects g.
func (g *GameState) Clone() *GameState {
	cp := *g
	cp.Players = make([]*Player, len(g.Players))
	for i, p := range g.Players {
		cp.Players[i] = p.clone()
	}
	cp.Market = cloneSlots(g.Market)
	cp.Bag = append([]TokenKind{}, g.Bag...)
	cp.AnimalMarket = append([]MarketAnimal{}, g.AnimalMarket...)
	cp.AnimalDeck = append([]AnimalKind{}, g.AnimalDeck...)
	cp.Logs = append([]LogEntry{}, g.Logs...)
	cp.WinnerIDs = append([]string(nil), g.WinnerIDs...)
	cp.Rules = g.Rules.clone()
	return &cp
}

// ---------------------------------------------------------------------------
// Query methods
// ---------------------------------------------------------------------------

// IsTerminal reports whether the game has finished.
func (g *GameState) IsTerminal() bool { return g.Status == StatusFinished }

// PlayerIndex returns the seat of id, or -1.
func (g *GameState) PlayerIndex(id string) int {
	for i, p := range g.Players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// Player returns the seat of id, or nil.
func (g *GameState) Player(id string) *Player {
	if i := g.PlayerIndex(id); i >= 0 {
		return g.Players[i]
	}
	return nil
}

// CurrentPlayer returns the player whose turn it is, or nil outside play.
func (g *GameState) CurrentPlayer() *Player {
	if g.TurnIndex < 0 || g.TurnIndex >= len(g.Players) {
		return nil
	}
	return g.Players[g.TurnIndex]
}

// NextPlayer returns the seat after current in turn order.
func (g *GameState) NextPlayer(current int) int {
	if len(g.Players) == 0 {
		return 0
	}
	return (current + 1) % len(g.Players)
}

// ---------------------------------------------------------------------------
// Activity log
// ---------------------------------------------------------------------------

func (g *GameState) log(typ LogType, text string) {
	g.LogSeq++
	g.Logs = append(g.Logs, LogEntry{Text: text, Type: typ, ID: g.LogSeq})
}
