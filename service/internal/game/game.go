// internal/game/game.go
package game

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/jason-s-yu/equilibrium/engine"
	"github.com/jason-s-yu/equilibrium/service/internal/cache"
	"github.com/jason-s-yu/equilibrium/service/internal/database"
	"github.com/jason-s-yu/equilibrium/service/internal/models"
	"github.com/sirupsen/logrus"
)

// OnGameEndFunc is called once when a game in the room finishes.
type OnGameEndFunc func(roomID string, gameID uuid.UUID, winners []uuid.UUID, scores map[uuid.UUID]int)

// GameEventType identifies a server push.
type GameEventType string

const (
	EventSyncState         GameEventType = "sync_state"          // Private: the room as seen by one player.
	EventPrivateActionFail GameEventType = "private_action_fail" // Private: an action was rejected.
	EventGameEnd           GameEventType = "game_end"            // Public: final standings.
	EventRoomClosed        GameEventType = "room_closed"         // Public, or private to a kicked player.
)

// EventUser identifies a user within a GameEvent.
type EventUser struct {
	ID uuid.UUID `json:"id"`
}

// GameEvent is the envelope of every server push.
type GameEvent struct {
	Type    GameEventType          `json:"type"`
	User    *EventUser             `json:"user,omitempty"`
	Payload map[string]interface{} `json:"payload,omitempty"`
	State   *ObfGameState          `json:"state,omitempty"`
}

// gameNamespace scopes derived game IDs.
var gameNamespace = uuid.MustParse("5b0c3f8e-2f5d-4c1a-9a57-3e4d2c6b7a10")

// Room connects the websocket players of one room to its stored snapshot.
// The snapshot itself lives in the Store; Room only tracks local connections.
type Room struct {
	ID       string      // room code
	Store    cache.Store // authoritative snapshots
	Instance string      // this server process, for cross-process room events

	Players []*models.Player // connections attached to this process

	gameID      uuid.UUID // game of the last snapshot seen
	logSeq      int64     // log sequence of the last snapshot seen
	actionIndex int       // sequential index for the action stream
	Mu          sync.Mutex

	BroadcastFn         func(ev GameEvent)
	BroadcastToPlayerFn func(playerID uuid.UUID, ev GameEvent)
	OnGameEnd           OnGameEndFunc
	OnClosed            func(roomID string)
}

// NewRoom returns an orchestrator for roomID backed by store.
func NewRoom(roomID string, store cache.Store) *Room {
	return &Room{ID: roomID, Store: store}
}

// Create stores a fresh lobby hosted by host.
func (r *Room) Create(ctx context.Context, host *models.User, seed uint64, rules engine.HouseRules) (*engine.GameState, error) {
	s := engine.NewRoom(r.ID, host.ID.String(), host.Username, seed, rules)
	if err := r.Store.Create(ctx, s); err != nil {
		return nil, err
	}
	r.logAction(host.ID, "room_create", map[string]interface{}{"seed": seed})
	return s, nil
}

// GameID derives the ID of the game being played in s. It is stable for the whole game
// and changes with every return to the lobby.
func GameID(s *engine.GameState) uuid.UUID {
	var first int64
	if len(s.Logs) > 0 {
		first = s.Logs[0].ID
	}
	return uuid.NewSHA1(gameNamespace, []byte(fmt.Sprintf("%s/%d", s.RoomID, first)))
}

// AddPlayer seats p in the lobby, or reattaches a seated player's connection.
// Assumes lock is held by caller.
func (r *Room) AddPlayer(ctx context.Context, p *models.Player) error {
	pid := p.ID.String()
	s, err := r.Store.Update(ctx, r.ID, func(cur *engine.GameState) (*engine.GameState, error) {
		return engine.JoinRoom(cur, pid, p.User.Username)
	})
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{"room": r.ID, "player": p.ID}).Info("player cannot join")
		if p.Conn != nil {
			p.Conn.Close(websocket.StatusPolicyViolation, joinFailReason(err))
		}
		return err
	}

	r.observe(s)
	reconnect := false
	if existing := r.getPlayerByID(p.ID); existing != nil {
		if existing.Conn != nil && existing.Conn != p.Conn {
			existing.Conn.Close(websocket.StatusPolicyViolation, "Connected from another session.")
		}
		existing.Conn = p.Conn
		existing.Connected = true
		existing.User = p.User
		reconnect = true
	} else {
		p.Connected = true
		r.Players = append(r.Players, p)
	}
	logrus.WithFields(logrus.Fields{"room": r.ID, "player": p.ID, "reconnect": reconnect}).Info("player attached")
	r.logAction(p.ID, "player_add", map[string]interface{}{"reconnect": reconnect, "username": p.User.Username})
	r.publishRoomEvent("sync")
	r.broadcastSyncStateToAll(s)
	return nil
}

func joinFailReason(err error) string {
	switch {
	case errors.Is(err, cache.ErrRoomNotFound):
		return "Room not found."
	case errors.Is(err, engine.ErrRoomFull):
		return "Room is full."
	case errors.Is(err, engine.ErrNotInLobby):
		return "Game already in progress."
	default:
		return "Unable to join room."
	}
}

// HandleDisconnect marks a connection as gone. The seat is kept so the player can return.
// Assumes lock is held by caller.
func (r *Room) HandleDisconnect(ctx context.Context, playerID uuid.UUID) {
	p := r.getPlayerByID(playerID)
	if p == nil || !p.Connected {
		return
	}
	p.Connected = false
	p.Conn = nil
	logrus.WithFields(logrus.Fields{"room": r.ID, "player": playerID}).Info("player disconnected")
	r.logAction(playerID, "player_disconnect", nil)

	s, err := r.Store.Load(ctx, r.ID)
	if err != nil {
		if !errors.Is(err, cache.ErrRoomNotFound) {
			logrus.WithError(err).WithField("room", r.ID).Error("loading room after disconnect")
		}
		return
	}
	r.broadcastSyncStateToAll(s)
}

// Refresh rebroadcasts the stored snapshot after another process changed it.
// Assumes lock is held by caller.
func (r *Room) Refresh(ctx context.Context) {
	s, err := r.Store.Load(ctx, r.ID)
	if errors.Is(err, cache.ErrRoomNotFound) {
		r.closeRoom("host_left")
		return
	}
	if err != nil {
		logrus.WithError(err).WithField("room", r.ID).Error("refreshing room")
		return
	}
	r.detachRemoved(s)
	r.observe(s)
	r.broadcastSyncStateToAll(s)
}

// observe records s as the latest snapshot this room has seen.
func (r *Room) observe(s *engine.GameState) {
	r.gameID = GameID(s)
	r.logSeq = s.LogSeq
}

// detachRemoved drops local connections whose seat no longer exists in s. Removals are
// reported as kicks when a kick was logged since the last snapshot seen.
// Assumes lock is held by caller.
func (r *Room) detachRemoved(s *engine.GameState) {
	reason := "left"
	for _, l := range s.Logs {
		if l.ID > r.logSeq && l.Text == engine.KickedLogText {
			reason = "kicked"
		}
	}
	var gone []uuid.UUID
	for _, p := range r.Players {
		if s.Player(p.ID.String()) == nil {
			gone = append(gone, p.ID)
		}
	}
	for _, id := range gone {
		logrus.WithFields(logrus.Fields{"room": r.ID, "player": id, "reason": reason}).Info("seat removed elsewhere")
		r.detachPlayer(id, reason)
	}
}

// HandlePlayerAction decodes action, applies it to the stored snapshot and notifies
// the room. Rejections go back to the sender only.
// Assumes lock is held by caller.
func (r *Room) HandlePlayerAction(ctx context.Context, playerID uuid.UUID, action models.GameAction) {
	log := logrus.WithFields(logrus.Fields{"room": r.ID, "player": playerID, "action": action.ActionType})

	player := r.getPlayerByID(playerID)
	if player == nil || !player.Connected {
		log.Debug("action from unattached player ignored")
		return
	}

	apply, err := decodeAction(playerID.String(), action)
	if err != nil {
		log.WithError(err).Debug("undecodable action")
		r.failAction(playerID, action.ActionType, err.Error())
		return
	}

	var before engine.Status
	next, err := r.Store.Update(ctx, r.ID, func(cur *engine.GameState) (*engine.GameState, error) {
		before = cur.Status
		return apply(cur)
	})
	switch {
	case err == nil:
	case errors.Is(err, engine.ErrRejected):
		log.WithError(err).Debug("action rejected")
		r.failAction(playerID, action.ActionType, failMessage(err))
		return
	case errors.Is(err, cache.ErrRoomNotFound):
		r.failAction(playerID, action.ActionType, "Room not found.")
		return
	default:
		log.WithError(err).Error("applying action")
		r.failAction(playerID, action.ActionType, "Server error.")
		return
	}

	if next != nil {
		r.observe(next)
	}
	r.logAction(playerID, action.ActionType, action.Payload)

	if next == nil {
		r.publishRoomEvent("closed")
		r.closeRoom("host_left")
		return
	}

	switch action.ActionType {
	case ActionLobbyLeave:
		r.detachPlayer(playerID, "")
	case ActionLobbyKick:
		if target, err := uuid.Parse(stringField(action.Payload, "target")); err == nil {
			r.detachPlayer(target, "kicked")
		}
	}

	r.publishRoomEvent("sync")
	r.broadcastSyncStateToAll(next)

	if before == engine.StatusLobby && next.Status == engine.StatusPlaying {
		r.persistInitialGameState(next)
	}
	if before == engine.StatusPlaying && next.IsTerminal() {
		r.EndGame(ctx, next)
	}
}

// failMessage turns a rejection into text for the player.
func failMessage(err error) string {
	switch {
	case errors.Is(err, engine.ErrNotYourTurn):
		return "It's not your turn."
	case errors.Is(err, engine.ErrNotHost):
		return "Only the host can do that."
	case errors.Is(err, engine.ErrMustDraftTokens):
		return "You must draft tokens first."
	case errors.Is(err, engine.ErrHoldingNotEmpty):
		return "Place or discard your tokens first."
	default:
		return err.Error()
	}
}

func (r *Room) failAction(playerID uuid.UUID, actionType, msg string) {
	r.fireEventToPlayer(playerID, GameEvent{
		Type:    EventPrivateActionFail,
		Payload: map[string]interface{}{"message": msg, "action": actionType},
	})
}

// EndGame records and announces the results of finished snapshot s.
// Assumes lock is held by caller.
func (r *Room) EndGame(ctx context.Context, s *engine.GameState) {
	gameID := GameID(s)
	standings := engine.Standings(s.Players, s.Rules.DiscardPenalty)

	scores := make(map[uuid.UUID]int, len(standings))
	scorePayload := make(map[string]int, len(standings))
	for _, st := range standings {
		scorePayload[st.PlayerID] = st.Net
		if id, err := uuid.Parse(st.PlayerID); err == nil {
			scores[id] = st.Net
		}
	}
	var winners []uuid.UUID
	for _, w := range s.WinnerIDs {
		if id, err := uuid.Parse(w); err == nil {
			winners = append(winners, id)
		}
	}

	r.logAction(uuid.Nil, string(EventGameEnd), map[string]interface{}{
		"scores":  scorePayload,
		"winners": s.WinnerIDs,
	})
	if database.DB != nil {
		go database.StoreFinalGameStateInDB(context.WithoutCancel(ctx), gameID, r.ID, s, standings)
	}

	r.fireEvent(GameEvent{
		Type: EventGameEnd,
		Payload: map[string]interface{}{
			"gameId":    gameID.String(),
			"winnerId":  s.WinnerID,
			"winnerIds": s.WinnerIDs,
			"standings": standings,
			"scores":    scorePayload,
		},
	})

	if r.OnGameEnd != nil {
		r.OnGameEnd(r.ID, gameID, winners, scores)
	}
	logrus.WithFields(logrus.Fields{"room": r.ID, "game": gameID, "winners": s.WinnerIDs}).Info("game ended")
}

// persistInitialGameState saves the snapshot a game started from.
// Assumes lock is held by caller.
func (r *Room) persistInitialGameState(s *engine.GameState) {
	gameID := GameID(s)
	if database.DB != nil {
		go database.UpsertInitialGameState(gameID, r.ID, s)
	}
	r.logAction(uuid.Nil, "game_initial_state_saved", map[string]interface{}{
		"gameId":  gameID.String(),
		"bagSize": len(s.Bag),
	})
}

// closeRoom tells everyone the room is gone and detaches them.
func (r *Room) closeRoom(reason string) {
	r.fireEvent(GameEvent{Type: EventRoomClosed, Payload: map[string]interface{}{"reason": reason}})
	for _, p := range r.Players {
		if p.Conn != nil {
			p.Conn.Close(websocket.StatusNormalClosure, "Room closed.")
		}
		p.Connected = false
		p.Conn = nil
	}
	r.Players = nil
	if r.OnClosed != nil {
		r.OnClosed(r.ID)
	}
}

// detachPlayer drops a connection that no longer has a seat. A non-empty reason is sent
// to the player first.
func (r *Room) detachPlayer(playerID uuid.UUID, reason string) {
	p := r.getPlayerByID(playerID)
	if p == nil {
		return
	}
	if reason != "" {
		r.fireEventToPlayer(playerID, GameEvent{Type: EventRoomClosed, Payload: map[string]interface{}{"reason": reason}})
	}
	if p.Conn != nil {
		p.Conn.Close(websocket.StatusNormalClosure, "Removed from room.")
	}
	p.Connected = false
	p.Conn = nil
	for i, pl := range r.Players {
		if pl.ID == playerID {
			r.Players = append(r.Players[:i], r.Players[i+1:]...)
			break
		}
	}
}

// sendSyncState sends s as seen by one player.
// Assumes lock is held by caller.
func (r *Room) sendSyncState(s *engine.GameState, playerID uuid.UUID) {
	state := r.GetCurrentObfuscatedGameState(s, playerID)
	r.fireEventToPlayer(playerID, GameEvent{Type: EventSyncState, State: &state})
}

// broadcastSyncStateToAll sends each connected player their view of s.
// Assumes lock is held by caller.
func (r *Room) broadcastSyncStateToAll(s *engine.GameState) {
	for _, p := range r.Players {
		if p.Connected {
			r.sendSyncState(s, p.ID)
		}
	}
}

// fireEvent broadcasts an event to every connection of the room.
func (r *Room) fireEvent(ev GameEvent) {
	if r.BroadcastFn == nil {
		logrus.WithFields(logrus.Fields{"room": r.ID, "event": ev.Type}).Warn("BroadcastFn is nil")
		return
	}
	r.BroadcastFn(ev)
}

// fireEventToPlayer sends an event to one connected player.
func (r *Room) fireEventToPlayer(playerID uuid.UUID, ev GameEvent) {
	if r.BroadcastToPlayerFn == nil {
		logrus.WithFields(logrus.Fields{"room": r.ID, "event": ev.Type}).Warn("BroadcastToPlayerFn is nil")
		return
	}
	if p := r.getPlayerByID(playerID); p != nil && p.Connected {
		r.BroadcastToPlayerFn(playerID, ev)
	}
}

func (r *Room) getPlayerByID(playerID uuid.UUID) *models.Player {
	for _, p := range r.Players {
		if p.ID == playerID {
			return p
		}
	}
	return nil
}

// ConnectedCount returns the number of live connections.
func (r *Room) ConnectedCount() int {
	n := 0
	for _, p := range r.Players {
		if p.Connected {
			n++
		}
	}
	return n
}

// Attached reports whether conn is still the live connection of playerID.
// Assumes lock is held by caller.
func (r *Room) Attached(playerID uuid.UUID, conn *websocket.Conn) bool {
	p := r.getPlayerByID(playerID)
	return p != nil && p.Connected && p.Conn == conn
}

// publishRoomEvent lets other server processes know the room changed.
func (r *Room) publishRoomEvent(kind string) {
	if cache.Rdb == nil {
		return
	}
	ev := cache.RoomEvent{Origin: r.Instance, RoomID: r.ID, Kind: kind}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := cache.PublishRoomEvent(ctx, ev); err != nil {
			logrus.WithError(err).WithField("room", ev.RoomID).Warn("publishing room event")
		}
	}()
}

// logAction appends an entry to the action stream.
// Assumes lock is held by caller.
func (r *Room) logAction(actorID uuid.UUID, actionType string, payload map[string]interface{}) {
	r.actionIndex++
	if payload == nil {
		payload = make(map[string]interface{})
	}
	record := cache.GameActionRecord{
		GameID:        r.gameID,
		RoomID:        r.ID,
		ActionIndex:   r.actionIndex,
		ActorUserID:   actorID,
		ActionType:    actionType,
		ActionPayload: payload,
		Timestamp:     time.Now().UnixMilli(),
	}
	if cache.Rdb == nil {
		return
	}
	go func(rec cache.GameActionRecord) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := cache.PublishGameAction(ctx, rec); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{"room": rec.RoomID, "action": rec.ActionType}).Error("publishing action")
		}
	}(record)
}
