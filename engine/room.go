package engine

// RoomCodeAlphabet omits 0 and O to keep codes readable.
const RoomCodeAlphabet = "123456789ABCDEFGHIJKLMNPQRSTUVWXYZ"

// RoomCodeLength is the length of a generated room code.
const RoomCodeLength = 6

// NewRoomCode draws a room code from rng.
func NewRoomCode(rng *RNG) string {
	b := make([]byte, RoomCodeLength)
	for i := range b {
		b[i] = RoomCodeAlphabet[rng.Intn(len(RoomCodeAlphabet))]
	}
	return string(b)
}

// NewRoom creates a lobby hosted by hostID with the supply already dealt.
func NewRoom(roomID, hostID, hostName string, seed uint64, rules HouseRules) *GameState {
	g := &GameState{
		RoomID: roomID,
		HostID: hostID,
		Status: StatusLobby,
		Rules:  rules.withDefaults(),
		RNG:    NewRNG(seed),
		Logs:   []LogEntry{},
	}
	host := newPlayer(hostID, hostName, g.Rules.Layout)
	host.Ready = true
	g.Players = []*Player{host}
	g.dealSupply()
	return g
}

// dealSupply builds a fresh bag and deck and fills both markets.
func (g *GameState) dealSupply() {
	bag := CreateBag(&g.RNG, g.Rules.BagDistribution)
	deck := CreateAnimalDeck(&g.RNG, g.Rules.AnimalCopies)
	g.Market, g.Bag = RefillTokenMarket(&g.RNG, nil, bag, g.Rules.MarketCapacity)
	g.AnimalMarket, g.AnimalDeck = RefillAnimalMarket(&g.RNG, nil, deck, g.Rules.AnimalMarketCapacity)
}

// JoinRoom seats a new player. Joining a room you are already in is accepted in any
// phase and changes nothing.
func JoinRoom(s *GameState, playerID, name string) (*GameState, error) {
	if s.PlayerIndex(playerID) >= 0 {
		return s, nil
	}
	if s.Status != StatusLobby {
		return s, ErrNotInLobby
	}
	if len(s.Players) >= s.Rules.MaxPlayers {
		return s, ErrRoomFull
	}
	g := s.Clone()
	g.Players = append(g.Players, newPlayer(playerID, name, g.Rules.Layout))
	return g, nil
}

// StartGame moves the lobby into play with a random first player.
func StartGame(s *GameState, playerID string) (*GameState, error) {
	if s.Status != StatusLobby {
		return s, ErrNotInLobby
	}
	if playerID != s.HostID {
		return s, ErrNotHost
	}
	if len(s.Players) == 0 {
		return s, ErrNoPlayers
	}
	g := s.Clone()
	start := g.RNG.Intn(len(g.Players))
	g.Status = StatusPlaying
	g.TurnIndex = start
	g.StartPlayerIndex = start
	g.IsLastRound = false
	g.log(LogNeutral, "The ecosystem awakens.")
	return g, nil
}

// LeaveRoom removes playerID. When the host leaves the room is gone: deleted is true
// and the returned snapshot is nil.
func LeaveRoom(s *GameState, playerID string) (next *GameState, deleted bool, err error) {
	if s.PlayerIndex(playerID) < 0 {
		return s, false, ErrUnknownPlayer
	}
	if playerID == s.HostID {
		return nil, true, nil
	}
	g := s.Clone()
	g.removePlayer(playerID)
	return g, false, nil
}

// KickedLogText is logged when the host removes a player.
const KickedLogText = "A player was removed from the world."

// KickPlayer lets the host remove another player.
func KickPlayer(s *GameState, hostID, targetID string) (*GameState, error) {
	if hostID != s.HostID {
		return s, ErrNotHost
	}
	if targetID == hostID {
		return s, ErrCannotKickSelf
	}
	if s.PlayerIndex(targetID) < 0 {
		return s, ErrUnknownPlayer
	}
	g := s.Clone()
	g.removePlayer(targetID)
	g.log(LogWarning, KickedLogText)
	return g, nil
}

// removePlayer drops a seat and keeps the turn and start indices on the same
// remaining players.
func (g *GameState) removePlayer(id string) {
	idx := g.PlayerIndex(id)
	if idx < 0 {
		return
	}
	g.Players = append(g.Players[:idx], g.Players[idx+1:]...)
	n := len(g.Players)
	if n == 0 {
		g.TurnIndex, g.StartPlayerIndex = 0, 0
		return
	}
	shift := func(i int) int {
		if i > idx {
			i--
		}
		return i % n
	}
	g.TurnIndex = shift(g.TurnIndex)
	g.StartPlayerIndex = shift(g.StartPlayerIndex)
}

// ReturnToLobby resets the room for another game with the same seats.
func ReturnToLobby(s *GameState, playerID string) (*GameState, error) {
	if playerID != s.HostID {
		return s, ErrNotHost
	}
	g := s.Clone()
	for i, p := range g.Players {
		g.Players[i] = newPlayer(p.ID, p.Name, g.Rules.Layout)
	}
	g.dealSupply()
	g.Status = StatusLobby
	g.TurnIndex = 0
	g.StartPlayerIndex = 0
	g.IsLastRound = false
	g.Logs = []LogEntry{}
	g.WinnerID = ""
	g.WinnerIDs = nil
	return g, nil
}
