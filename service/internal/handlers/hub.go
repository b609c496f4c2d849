// internal/handlers/hub.go
package handlers

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/jason-s-yu/equilibrium/engine"
	"github.com/jason-s-yu/equilibrium/service/internal/cache"
	"github.com/jason-s-yu/equilibrium/service/internal/game"
	"github.com/jason-s-yu/equilibrium/service/internal/models"
	"github.com/sirupsen/logrus"
)

// writeTimeout bounds a single websocket write.
const writeTimeout = 5 * time.Second

// Hub owns the room orchestrators of this process and the HTTP surface in front of them.
type Hub struct {
	Store          cache.Store
	Secret         []byte
	Rules          engine.HouseRules
	OriginPatterns []string
	Instance       string        // identifies this process on the room event channel
	TokenTTL       time.Duration // lifetime of guest tokens

	mu     sync.Mutex
	rooms  map[string]*game.Room
	claims map[*game.Room]int // in-flight attaches; a claimed room is never evicted
	rng    engine.RNG         // room codes and game seeds

	gamesFinished atomic.Int64
}

// NewHub returns a hub serving rooms from store.
func NewHub(store cache.Store, secret []byte, rules engine.HouseRules, origins []string) *Hub {
	return &Hub{
		Store:          store,
		Secret:         secret,
		Rules:          rules,
		OriginPatterns: origins,
		Instance:       uuid.NewString(),
		TokenTTL:       7 * 24 * time.Hour,
		rooms:          make(map[string]*game.Room),
		claims:         make(map[*game.Room]int),
		rng:            engine.NewRNG(uint64(time.Now().UnixNano())),
	}
}

// claim returns the orchestrator for roomID, creating it on first use, and keeps it
// registered until the matching release.
func (h *Hub) claim(roomID string) *game.Room {
	h.mu.Lock()
	defer h.mu.Unlock()
	r := h.roomLocked(roomID)
	h.claims[r]++
	return r
}

// release ends a claim taken by claim.
func (h *Hub) release(r *game.Room) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.claims[r] <= 1 {
		delete(h.claims, r)
		return
	}
	h.claims[r]--
}

// roomLocked returns the orchestrator for roomID, creating it on first use.
// Assumes h.mu is held.
func (h *Hub) roomLocked(roomID string) *game.Room {
	if r, ok := h.rooms[roomID]; ok {
		return r
	}
	r := game.NewRoom(roomID, h.Store)
	r.Instance = h.Instance
	r.BroadcastFn = func(ev game.GameEvent) {
		for _, p := range r.Players {
			if p.Connected {
				send(p, ev)
			}
		}
	}
	r.BroadcastToPlayerFn = func(playerID uuid.UUID, ev game.GameEvent) {
		for _, p := range r.Players {
			if p.ID == playerID {
				send(p, ev)
				return
			}
		}
	}
	r.OnGameEnd = func(roomID string, gameID uuid.UUID, winners []uuid.UUID, _ map[uuid.UUID]int) {
		h.gamesFinished.Add(1)
		logrus.WithFields(logrus.Fields{"room": roomID, "game": gameID, "winners": len(winners)}).Debug("game recorded")
	}
	// OnClosed runs under the room lock; the hub lock is taken separately.
	r.OnClosed = func(roomID string) { go h.forget(roomID, r) }
	h.rooms[roomID] = r
	return r
}

// lookup returns the orchestrator for roomID if this process has one.
func (h *Hub) lookup(roomID string) *game.Room {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.rooms[roomID]
}

// forget drops r if it is still the orchestrator registered for roomID.
func (h *Hub) forget(roomID string, r *game.Room) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[roomID] == r {
		delete(h.rooms, roomID)
	}
}

// evictIfIdle drops r once no connection is attached or attaching. The snapshot stays
// in the store.
func (h *Hub) evictIfIdle(roomID string, r *game.Room) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.claims[r] > 0 || h.rooms[roomID] != r {
		return
	}
	r.Mu.Lock()
	defer r.Mu.Unlock()
	if r.ConnectedCount() == 0 {
		delete(h.rooms, roomID)
		logrus.WithField("room", roomID).Debug("room evicted from hub")
	}
}

// RoomCount returns the number of rooms with an orchestrator in this process.
func (h *Hub) RoomCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms)
}

// nextRoom draws a room code and a game seed.
func (h *Hub) nextRoom() (string, uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return engine.NewRoomCode(&h.rng), h.rng.Uint64()
}

// Relay pushes a change made by another process to the local connections of the room.
func (h *Hub) Relay(ev cache.RoomEvent) {
	r := h.lookup(ev.RoomID)
	if r == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	r.Mu.Lock()
	defer r.Mu.Unlock()
	r.Refresh(ctx)
}

// send writes ev to p's socket.
func send(p *models.Player, ev game.GameEvent) {
	if p.Conn == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := wsjson.Write(ctx, p.Conn, ev); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{"player": p.ID, "event": ev.Type}).Debug("websocket write failed")
	}
}
