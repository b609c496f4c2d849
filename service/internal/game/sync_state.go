// internal/game/sync_state.go
package game

import (
	"github.com/google/uuid"
	"github.com/jason-s-yu/equilibrium/engine"
)

// ObfPlayerState is one seat as shown to clients. Boards and holdings are public.
type ObfPlayerState struct {
	*engine.Player
	Connected     bool `json:"connected"`
	IsHost        bool `json:"isHost"`
	IsCurrentTurn bool `json:"isCurrentTurn"`
	NetScore      int  `json:"netScore"`
}

// ObfGameState is a snapshot as shown to one player. The bag and deck order and the
// RNG state are hidden; only their sizes are sent.
type ObfGameState struct {
	RoomID           string                `json:"roomId"`
	GameID           uuid.UUID             `json:"gameId"`
	HostID           string                `json:"hostId"`
	Status           engine.Status         `json:"status"`
	Players          []ObfPlayerState      `json:"players"`
	Market           []engine.TokenSlot    `json:"market"`
	BagSize          int                   `json:"bagSize"`
	AnimalMarket     []engine.MarketAnimal `json:"animalMarket"`
	DeckSize         int                   `json:"deckSize"`
	TurnIndex        int                   `json:"turnIndex"`
	StartPlayerIndex int                   `json:"startPlayerIndex"`
	CurrentPlayerID  string                `json:"currentPlayerId,omitempty"`
	IsLastRound      bool                  `json:"isLastRound"`
	Logs             []engine.LogEntry     `json:"logs"`
	WinnerID         string                `json:"winnerId,omitempty"`
	WinnerIDs        []string              `json:"winnerIds,omitempty"`
	Standings        []engine.Standing     `json:"standings,omitempty"`
	Rules            engine.HouseRules     `json:"rules"`
	// Actions is populated only for the requesting player on their turn.
	Actions *engine.Actions `json:"actions,omitempty"`
}

// GetCurrentObfuscatedGameState renders s for forUser.
// Assumes lock is held by caller.
func (r *Room) GetCurrentObfuscatedGameState(s *engine.GameState, forUser uuid.UUID) ObfGameState {
	obf := ObfGameState{
		RoomID:           s.RoomID,
		HostID:           s.HostID,
		Status:           s.Status,
		Market:           s.Market,
		BagSize:          len(s.Bag),
		AnimalMarket:     s.AnimalMarket,
		DeckSize:         len(s.AnimalDeck),
		TurnIndex:        s.TurnIndex,
		StartPlayerIndex: s.StartPlayerIndex,
		IsLastRound:      s.IsLastRound,
		Logs:             s.Logs,
		WinnerID:         s.WinnerID,
		WinnerIDs:        s.WinnerIDs,
		Rules:            s.Rules,
	}
	if s.Status != engine.StatusLobby {
		obf.GameID = GameID(s)
	}

	playing := s.Status == engine.StatusPlaying
	if cur := s.CurrentPlayer(); playing && cur != nil {
		obf.CurrentPlayerID = cur.ID
	}
	if s.IsTerminal() {
		obf.Standings = engine.Standings(s.Players, s.Rules.DiscardPenalty)
	}

	obf.Players = make([]ObfPlayerState, len(s.Players))
	for i, p := range s.Players {
		ps := ObfPlayerState{
			Player:        p,
			IsHost:        p.ID == s.HostID,
			IsCurrentTurn: playing && i == s.TurnIndex,
			NetScore:      engine.NetScore(p, s.Rules.DiscardPenalty),
		}
		if id, err := uuid.Parse(p.ID); err == nil {
			if conn := r.getPlayerByID(id); conn != nil {
				ps.Connected = conn.Connected
			}
		}
		obf.Players[i] = ps
	}

	if self := forUser.String(); playing && obf.CurrentPlayerID == self {
		actions := engine.LegalActions(s, self)
		obf.Actions = &actions
	}
	return obf
}
