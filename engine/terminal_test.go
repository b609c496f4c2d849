package engine

import "testing"

// TestCheckGameEnd verifies the two end conditions and their precedence.
func TestCheckGameEnd(t *testing.T) {
	g := newPlayingGame(t, 3)
	g.StartPlayerIndex = 0
	tests := []struct {
		name      string
		market    int
		bag       int
		lastRound bool
		next      int
		want      EndReason
	}{
		{"ongoing", 5, 100, false, 0, EndNone},
		{"last round mid-way", 5, 0, true, 2, EndNone},
		{"last round back at start", 5, 0, true, 0, EndRoundComplete},
		{"empty market, bag left", 0, 2, false, 1, EndNone},
		{"supply exhausted", 0, 0, false, 1, EndSupplyExhausted},
		{"supply wins over round", 0, 0, true, 0, EndSupplyExhausted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g.Market = make([]TokenSlot, tt.market)
			g.Bag = make([]TokenKind, tt.bag)
			g.IsLastRound = tt.lastRound
			if got := g.checkGameEnd(tt.next); got != tt.want {
				t.Errorf("checkGameEnd(%d) = %q, want %q", tt.next, got, tt.want)
			}
		})
	}
}

// TestAdvanceTurnWraps verifies the seat order wraps around.
func TestAdvanceTurnWraps(t *testing.T) {
	g := newPlayingGame(t, 3)
	g.TurnIndex = 2
	g.advanceTurn()
	if g.TurnIndex != 0 || g.Status != StatusPlaying {
		t.Errorf("turn = %d status = %s, want 0 and playing", g.TurnIndex, g.Status)
	}
	if last := g.Logs[len(g.Logs)-1]; last.Text != "Turn passed to Player0." {
		t.Errorf("last log = %q", last.Text)
	}
}

// TestLogIDsIncrease verifies log entries get strictly increasing IDs.
func TestLogIDsIncrease(t *testing.T) {
	g := newPlayingGame(t, 2)
	for range 3 {
		g.advanceTurn()
	}
	for i := 1; i < len(g.Logs); i++ {
		if g.Logs[i].ID <= g.Logs[i-1].ID {
			t.Fatalf("log %d id %d not after %d", i, g.Logs[i].ID, g.Logs[i-1].ID)
		}
	}
}
