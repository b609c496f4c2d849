package engine

// EndReason says why a game finished.
type EndReason string

const (
	EndNone            EndReason = ""
	EndSupplyExhausted EndReason = "supply_exhausted"
	EndRoundComplete   EndReason = "round_complete"
)

// checkGameEnd reports whether the game ends before seat next takes a turn.
// The supply check wins over the last-round check.
func (g *GameState) checkGameEnd(next int) EndReason {
	if len(g.Market) == 0 && len(g.Bag) == 0 {
		return EndSupplyExhausted
	}
	if g.IsLastRound && next == g.StartPlayerIndex {
		return EndRoundComplete
	}
	return EndNone
}

// advanceTurn moves play to the next seat or finishes the game.
func (g *GameState) advanceTurn() {
	next := g.NextPlayer(g.TurnIndex)
	switch g.checkGameEnd(next) {
	case EndSupplyExhausted:
		g.finish()
		g.log(LogWarning, "Market exhausted. Game Over!")
	case EndRoundComplete:
		g.finish()
		g.log(LogNeutral, "Round complete. Game Over!")
	default:
		g.TurnIndex = next
		g.log(LogNeutral, "Turn passed to "+g.Players[next].Name+".")
	}
}

// finish marks the game over and records the winners.
func (g *GameState) finish() {
	g.Status = StatusFinished
	winners := Winners(g.Players, g.Rules.DiscardPenalty)
	g.WinnerIDs = make([]string, len(winners))
	for i, p := range winners {
		g.WinnerIDs[i] = p.ID
	}
	g.WinnerID = ""
	if len(winners) > 0 {
		g.WinnerID = winners[0].ID
	}
}
