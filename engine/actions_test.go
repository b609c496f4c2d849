package engine

import (
	"bytes"
	"errors"
	"slices"
	"strings"
	"testing"
)

// mustApply returns a check that fails the test when an action is rejected.
// Use it as mustApply(t)(ApplyX(...)).
func mustApply(t *testing.T) func(*GameState, error) *GameState {
	t.Helper()
	return func(g *GameState, err error) *GameState {
		t.Helper()
		if err != nil {
			t.Fatalf("action rejected: %v", err)
		}
		return g
	}
}

// countLogs counts log entries containing text.
func countLogs(g *GameState, text string) int {
	n := 0
	for _, l := range g.Logs {
		if strings.Contains(l.Text, text) {
			n++
		}
	}
	return n
}

// TestDraftTokens verifies the slot moves to holding and the market refills once.
func TestDraftTokens(t *testing.T) {
	g := newPlayingGame(t, 2)
	me := current(t, g)
	slot := g.Market[2]
	bagBefore := len(g.Bag)

	next := mustApply(t)(ApplyDraftTokens(g, me.ID, 2))
	p := next.Player(me.ID)
	if !slices.Equal(p.Holding, slot.Tokens) {
		t.Errorf("holding = %v, want %v", p.Holding, slot.Tokens)
	}
	if !p.HasDraftedTokens {
		t.Error("HasDraftedTokens not set")
	}
	if len(next.Market) != 5 {
		t.Errorf("market = %d slots, want 5", len(next.Market))
	}
	if len(next.Bag) != bagBefore-3 {
		t.Errorf("bag = %d, want %d", len(next.Bag), bagBefore-3)
	}
	for _, s := range next.Market {
		if s.ID == slot.ID {
			t.Error("drafted slot still in market")
		}
	}
	if countLogs(next, "drafted tokens.") != 1 {
		t.Error("missing draft log")
	}

	again, err := ApplyDraftTokens(next, me.ID, 0)
	if !errors.Is(err, ErrAlreadyDrafted) {
		t.Fatalf("second draft error = %v, want ErrAlreadyDrafted", err)
	}
	if again != next {
		t.Error("rejected action returned a different snapshot")
	}
}

// TestActionsRejectWrongPlayer verifies turn ownership on every action.
func TestActionsRejectWrongPlayer(t *testing.T) {
	g := newPlayingGame(t, 3)
	who := other(t, g).ID
	at := Coord{0, 0}
	tests := []struct {
		name string
		run  func() (*GameState, error)
	}{
		{"draft tokens", func() (*GameState, error) { return ApplyDraftTokens(g, who, 0) }},
		{"draft animal", func() (*GameState, error) { return ApplyDraftAnimal(g, who, 0) }},
		{"place token", func() (*GameState, error) { return ApplyPlaceToken(g, who, 0, at) }},
		{"place animal", func() (*GameState, error) { return ApplyPlaceAnimal(g, who, 0, at) }},
		{"discard", func() (*GameState, error) { return ApplyDiscard(g, who, 0) }},
		{"end turn", func() (*GameState, error) { return ApplyEndTurn(g, who) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.run()
			if !errors.Is(err, ErrNotYourTurn) || !errors.Is(err, ErrRejected) {
				t.Fatalf("error = %v, want ErrNotYourTurn", err)
			}
			if got != g {
				t.Error("rejected action returned a different snapshot")
			}
		})
	}
	if _, err := ApplyDraftTokens(g, "stranger", 0); !errors.Is(err, ErrUnknownPlayer) {
		t.Errorf("stranger error = %v, want ErrUnknownPlayer", err)
	}
}

// TestActionsRequirePlaying verifies nothing happens in the lobby.
func TestActionsRequirePlaying(t *testing.T) {
	g := NewRoom("R", "h", "Host", 1, DefaultHouseRules())
	if _, err := ApplyDraftTokens(g, "h", 0); !errors.Is(err, ErrNotPlaying) {
		t.Errorf("error = %v, want ErrNotPlaying", err)
	}
}

// TestActionsDoNotMutateInput verifies copy-on-write across a full turn.
func TestActionsDoNotMutateInput(t *testing.T) {
	g := newPlayingGame(t, 2)
	me := current(t, g).ID

	before := snapshotJSON(t, g)
	g1 := mustApply(t)(ApplyDraftTokens(g, me, 0))
	if !bytes.Equal(before, snapshotJSON(t, g)) {
		t.Fatal("ApplyDraftTokens mutated its input")
	}

	before = snapshotJSON(t, g1)
	tok := g1.Player(me).Holding[0]
	at := LegalCells(g1.Player(me).Board, tok)[0]
	g2 := mustApply(t)(ApplyPlaceToken(g1, me, 0, at))
	if !bytes.Equal(before, snapshotJSON(t, g1)) {
		t.Fatal("ApplyPlaceToken mutated its input")
	}

	before = snapshotJSON(t, g2)
	g3 := mustApply(t)(ApplyDiscard(g2, me, 0))
	g3 = mustApply(t)(ApplyDiscard(g3, me, 0))
	if !bytes.Equal(before, snapshotJSON(t, g2)) {
		t.Fatal("ApplyDiscard mutated its input")
	}

	before = snapshotJSON(t, g3)
	mustApply(t)(ApplyEndTurn(g3, me))
	if !bytes.Equal(before, snapshotJSON(t, g3)) {
		t.Fatal("ApplyEndTurn mutated its input")
	}
}

// TestPlaceTokenBuildsTree verifies the WOOD then LEAF scenario and the stack caps.
func TestPlaceTokenBuildsTree(t *testing.T) {
	g := newPlayingGame(t, 2)
	me := current(t, g)
	me.Holding = []TokenKind{Wood, Leaf, Wood}
	me.HasDraftedTokens = true
	at := Coord{0, 0}

	g = mustApply(t)(ApplyPlaceToken(g, me.ID, 0, at))
	g = mustApply(t)(ApplyPlaceToken(g, me.ID, 0, at))
	p := g.Player(me.ID)
	if p.LandscapeScoreBreakdown.Trees != 3 || p.LandscapeScore != 3 {
		t.Errorf("trees = %d total = %d, want 3 and 3", p.LandscapeScoreBreakdown.Trees, p.LandscapeScore)
	}
	if !slices.Equal(p.Holding, []TokenKind{Wood}) {
		t.Errorf("holding = %v, want [WOOD]", p.Holding)
	}

	// WOOD does not go on LEAF.
	if _, err := ApplyPlaceToken(g, me.ID, 0, at); !errors.Is(err, ErrIllegalPlacement) {
		t.Errorf("wood on leaf error = %v, want ErrIllegalPlacement", err)
	}

	// A fourth token is refused on a full stack.
	p.Board.Cell(at).Stack = []TokenKind{Wood, Wood, Leaf}
	if _, err := ApplyPlaceToken(g, me.ID, 0, at); !errors.Is(err, ErrIllegalPlacement) {
		t.Errorf("fourth token error = %v, want ErrIllegalPlacement", err)
	}
	if _, err := ApplyPlaceToken(g, me.ID, 0, Coord{9, 9}); !errors.Is(err, ErrUnknownCoordinate) {
		t.Errorf("off-board error = %v, want ErrUnknownCoordinate", err)
	}
	if _, err := ApplyPlaceToken(g, me.ID, 5, at); !errors.Is(err, ErrBadIndex) {
		t.Errorf("bad holding index error = %v, want ErrBadIndex", err)
	}
}

// TestSquirrelScenario verifies drafting, matching and scoring an animal.
func TestSquirrelScenario(t *testing.T) {
	g := newPlayingGame(t, 2)
	me := current(t, g)
	g.AnimalMarket[0] = MarketAnimal{ID: "card-1", Type: Squirrel}
	me.Holding = []TokenKind{Wood, Leaf}
	me.HasDraftedTokens = true

	g = mustApply(t)(ApplyDraftAnimal(g, me.ID, 0))
	p := g.Player(me.ID)
	if len(p.Animals) != 1 || p.Animals[0].Type != Squirrel || p.Animals[0].MaxSlots != 3 || p.Animals[0].ID != "card-1" {
		t.Fatalf("animals = %+v, want one SQUIRREL card with 3 slots", p.Animals)
	}
	if len(g.AnimalMarket) != 5 {
		t.Errorf("animal market = %d, want 5 after refill", len(g.AnimalMarket))
	}

	at := Coord{1, 0}
	if _, err := ApplyPlaceAnimal(g, me.ID, 0, at); !errors.Is(err, ErrPatternMismatch) {
		t.Fatalf("empty cell error = %v, want ErrPatternMismatch", err)
	}
	g = mustApply(t)(ApplyPlaceToken(g, me.ID, 0, at))
	g = mustApply(t)(ApplyPlaceToken(g, me.ID, 0, at))
	g = mustApply(t)(ApplyPlaceAnimal(g, me.ID, 0, at))

	p = g.Player(me.ID)
	if p.Animals[0].SlotsFilled != 1 {
		t.Errorf("SlotsFilled = %d, want 1", p.Animals[0].SlotsFilled)
	}
	if p.Score != 2 {
		t.Errorf("Score = %d, want 2", p.Score)
	}
	if p.Board.Cell(at).Animal != Squirrel {
		t.Errorf("cell animal = %q, want SQUIRREL", p.Board.Cell(at).Animal)
	}
	if countLogs(g, "placed a Squirrel (+2)!") != 1 {
		t.Error("missing placement log")
	}

	if _, err := ApplyPlaceAnimal(g, me.ID, 0, at); !errors.Is(err, ErrCellOccupied) {
		t.Errorf("second animal error = %v, want ErrCellOccupied", err)
	}
	p.Holding = []TokenKind{Leaf}
	if _, err := ApplyPlaceToken(g, me.ID, 0, at); !errors.Is(err, ErrIllegalPlacement) {
		t.Errorf("token on animal error = %v, want ErrIllegalPlacement", err)
	}
}

// TestPlaceAnimalCompleteCard verifies a full card cannot place more copies.
func TestPlaceAnimalCompleteCard(t *testing.T) {
	g := newPlayingGame(t, 2)
	me := current(t, g)
	me.Animals = []AnimalCard{{ID: "c", Type: Hawk, SlotsFilled: 2, MaxSlots: 2}}
	setStacks(t, me.Board, map[Coord][]TokenKind{{0, 0}: {Wood, Wood, Wood}})
	if _, err := ApplyPlaceAnimal(g, me.ID, 0, Coord{0, 0}); !errors.Is(err, ErrCardComplete) {
		t.Errorf("error = %v, want ErrCardComplete", err)
	}
}

// TestPlaceAnimalCorruptCard verifies an unregistered kind is a structural failure.
func TestPlaceAnimalCorruptCard(t *testing.T) {
	g := newPlayingGame(t, 2)
	me := current(t, g)
	me.Animals = []AnimalCard{{ID: "c", Type: "DODO", MaxSlots: 2}}
	got, err := ApplyPlaceAnimal(g, me.ID, 0, Coord{0, 0})
	if !errors.Is(err, ErrCorruptState) || !errors.Is(err, ErrUnknownAnimal) {
		t.Fatalf("error = %v, want ErrCorruptState wrapping ErrUnknownAnimal", err)
	}
	if errors.Is(err, ErrRejected) {
		t.Error("structural failure reported as a rule rejection")
	}
	if got != g {
		t.Error("failed action returned a different snapshot")
	}
}

// TestDraftAnimalLimit verifies the incomplete-card cap.
func TestDraftAnimalLimit(t *testing.T) {
	g := newPlayingGame(t, 2)
	me := current(t, g)
	for i := 0; i < 4; i++ {
		me.Animals = append(me.Animals, AnimalCard{Type: Bee, MaxSlots: 3})
	}
	if _, err := ApplyDraftAnimal(g, me.ID, 0); !errors.Is(err, ErrTooManyAnimals) {
		t.Fatalf("error = %v, want ErrTooManyAnimals", err)
	}
	me.Animals[0].SlotsFilled = 3
	g = mustApply(t)(ApplyDraftAnimal(g, me.ID, 0))
	if _, err := ApplyDraftAnimal(g, me.ID, 0); !errors.Is(err, ErrAlreadyDrafted) {
		t.Errorf("second animal draft error = %v, want ErrAlreadyDrafted", err)
	}
}

// TestDiscardPenalty verifies penalties accrue without touching score.
func TestDiscardPenalty(t *testing.T) {
	g := newPlayingGame(t, 2)
	me := current(t, g)
	me.Holding = []TokenKind{Sand, Water}
	me.Score = 4

	g = mustApply(t)(ApplyDiscard(g, me.ID, 1))
	p := g.Player(me.ID)
	if p.Penalties != 1 || p.Score != 4 {
		t.Errorf("penalties = %d score = %d, want 1 and 4", p.Penalties, p.Score)
	}
	if !slices.Equal(p.Holding, []TokenKind{Sand}) {
		t.Errorf("holding = %v, want [SAND]", p.Holding)
	}
	if countLogs(g, "discarded a token (-2 pts).") != 1 {
		t.Error("missing discard log")
	}
}

// TestEndTurnPreconditions verifies holding and drafting requirements.
func TestEndTurnPreconditions(t *testing.T) {
	g := newPlayingGame(t, 2)
	me := current(t, g)

	if _, err := ApplyEndTurn(g, me.ID); !errors.Is(err, ErrMustDraftTokens) {
		t.Errorf("undrafted error = %v, want ErrMustDraftTokens", err)
	}
	me.HasDraftedTokens = true
	me.Holding = []TokenKind{Wood}
	if _, err := ApplyEndTurn(g, me.ID); !errors.Is(err, ErrHoldingNotEmpty) {
		t.Errorf("holding error = %v, want ErrHoldingNotEmpty", err)
	}
	me.Holding = nil
	me.HasDraftedAnimal = true

	next := mustApply(t)(ApplyEndTurn(g, me.ID))
	if next.TurnIndex != g.NextPlayer(g.TurnIndex) {
		t.Errorf("TurnIndex = %d, want %d", next.TurnIndex, g.NextPlayer(g.TurnIndex))
	}
	p := next.Player(me.ID)
	if p.HasDraftedTokens || p.HasDraftedAnimal {
		t.Error("draft flags not reset")
	}
	if countLogs(next, "Turn passed to ") != 1 {
		t.Error("missing turn log")
	}
}

// TestEndTurnEmptyMarket verifies ending without a draft when nothing is on offer.
func TestEndTurnEmptyMarket(t *testing.T) {
	g := newPlayingGame(t, 2)
	me := current(t, g)
	g.Market = []TokenSlot{}
	next := mustApply(t)(ApplyEndTurn(g, me.ID))
	if next.Status != StatusPlaying {
		t.Errorf("status = %s, want playing while the bag still has tokens", next.Status)
	}
}

// TestSupplyExhaustedEndsGame verifies immediate finish when market and bag are empty.
func TestSupplyExhaustedEndsGame(t *testing.T) {
	g := newPlayingGame(t, 2)
	me := current(t, g)
	g.Market = []TokenSlot{}
	g.Bag = []TokenKind{}
	me.Score = 10

	next := mustApply(t)(ApplyEndTurn(g, me.ID))
	if next.Status != StatusFinished {
		t.Fatalf("status = %s, want finished", next.Status)
	}
	if next.WinnerID != me.ID || len(next.WinnerIDs) != 1 {
		t.Errorf("winners = %q %v, want %s alone", next.WinnerID, next.WinnerIDs, me.ID)
	}
	if countLogs(next, "Market exhausted. Game Over!") != 1 {
		t.Error("missing game over log")
	}
	if _, err := ApplyDraftTokens(next, me.ID, 0); !errors.Is(err, ErrNotPlaying) {
		t.Errorf("action after finish error = %v, want ErrNotPlaying", err)
	}
}

// TestBagEmptyTriggersLastRoundOnce verifies the flag is set once and the round completes.
func TestBagEmptyTriggersLastRoundOnce(t *testing.T) {
	g := newPlayingGame(t, 2)
	g.Bag = g.Bag[:2]
	first := current(t, g).ID

	g = mustApply(t)(ApplyDraftTokens(g, first, 0))
	if !g.IsLastRound {
		t.Fatal("IsLastRound not set when the bag could not refill")
	}
	if len(g.Market) != 4 {
		t.Errorf("market = %d, want 4", len(g.Market))
	}
	for range 3 {
		g = mustApply(t)(ApplyDiscard(g, first, 0))
	}
	g = mustApply(t)(ApplyEndTurn(g, first))
	if g.Status != StatusPlaying {
		t.Fatalf("game ended before the round completed")
	}

	second := current(t, g).ID
	g = mustApply(t)(ApplyDraftTokens(g, second, 0))
	if n := countLogs(g, "The Bag is empty!"); n != 1 {
		t.Errorf("bag-empty warning logged %d times, want 1", n)
	}
	for range 3 {
		g = mustApply(t)(ApplyDiscard(g, second, 0))
	}
	g = mustApply(t)(ApplyEndTurn(g, second))
	if g.Status != StatusFinished {
		t.Fatalf("status = %s, want finished after the round returned to the start player", g.Status)
	}
	if countLogs(g, "Round complete. Game Over!") != 1 {
		t.Error("missing round complete log")
	}
}

// TestFullBoardTriggersLastRound verifies filling the last empty cell.
func TestFullBoardTriggersLastRound(t *testing.T) {
	g := newPlayingGame(t, 2)
	me := current(t, g)
	for c, cell := range me.Board {
		if c != (Coord{0, 0}) {
			cell.Stack = []TokenKind{Water}
		}
	}
	me.Holding = []TokenKind{Sand}
	me.HasDraftedTokens = true

	g = mustApply(t)(ApplyPlaceToken(g, me.ID, 0, Coord{0, 0}))
	if !g.IsLastRound {
		t.Fatal("IsLastRound not set on a full board")
	}
	if countLogs(g, "'s world is full! Finishing the round...") != 1 {
		t.Error("missing full board log")
	}
}
