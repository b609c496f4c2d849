// internal/handlers/routes.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/jason-s-yu/equilibrium/service/internal/auth"
	"github.com/jason-s-yu/equilibrium/service/internal/cache"
	"github.com/jason-s-yu/equilibrium/service/internal/models"
	"github.com/sirupsen/logrus"
)

// readLimit caps one client frame. Actions are a few small fields.
const readLimit = 4096

// createAttempts bounds retries when a drawn room code is taken.
const createAttempts = 5

// Routes returns the HTTP handler for the service.
func (h *Hub) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", h.handleHealth)
	mux.HandleFunc("POST /auth/guest", h.handleGuest)
	mux.HandleFunc("POST /rooms", h.handleCreateRoom)
	mux.HandleFunc("GET /ws/{roomId}", h.handleWS)
	return h.corsMiddleware(mux)
}

// corsMiddleware adds CORS headers for the configured origins.
func (h *Hub) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && slices.Contains(h.OriginPatterns, origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Hub) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"rooms":         h.RoomCount(),
		"gamesFinished": h.gamesFinished.Load(),
	})
}

type guestRequest struct {
	Name string `json:"name"`
}

type guestResponse struct {
	Token    string `json:"token"`
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
}

// handleGuest issues a token for a new guest identity.
func (h *Hub) handleGuest(w http.ResponseWriter, r *http.Request) {
	var req guestRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, readLimit)).Decode(&req); err != nil {
		http.Error(w, "bad request: "+err.Error(), http.StatusBadRequest)
		return
	}
	user, err := auth.NewGuest(req.Name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	token, err := auth.IssueToken(h.Secret, *user, h.TokenTTL)
	if err != nil {
		logrus.WithError(err).Error("issuing guest token")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, guestResponse{Token: token, PlayerID: user.ID.String(), Name: user.Username})
}

// handleCreateRoom opens a lobby hosted by the bearer of the request's token.
func (h *Hub) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	user, err := h.bearerUser(r)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	for range createAttempts {
		code, seed := h.nextRoom()
		room := h.claim(code)
		room.Mu.Lock()
		_, err = room.Create(r.Context(), user, seed, h.Rules)
		room.Mu.Unlock()
		h.release(room)
		if err == nil {
			logrus.WithFields(logrus.Fields{"room": code, "player": user.ID}).Info("room created")
			writeJSON(w, http.StatusCreated, map[string]string{"roomId": code})
			return
		}
		h.evictIfIdle(code, room)
		if !errors.Is(err, cache.ErrRoomExists) {
			break
		}
	}
	logrus.WithError(err).WithField("player", user.ID).Error("creating room")
	http.Error(w, "could not create room", http.StatusServiceUnavailable)
}

// bearerUser verifies the Authorization header.
func (h *Hub) bearerUser(r *http.Request) (*models.User, error) {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return nil, auth.ErrInvalidToken
	}
	return auth.ParseToken(h.Secret, token)
}

// handleWS attaches a websocket to a room and pumps its actions until it closes.
func (h *Hub) handleWS(w http.ResponseWriter, r *http.Request) {
	roomID := strings.ToUpper(r.PathValue("roomId"))
	user, err := auth.ParseToken(h.Secret, r.URL.Query().Get("token"))
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: originHosts(h.OriginPatterns)})
	if err != nil {
		logrus.WithError(err).WithField("room", roomID).Warn("websocket accept failed")
		return
	}
	c.SetReadLimit(readLimit)
	ctx := context.WithoutCancel(r.Context())

	room := h.claim(roomID)
	p := &models.Player{ID: user.ID, Conn: c, User: user}
	room.Mu.Lock()
	err = room.AddPlayer(ctx, p)
	room.Mu.Unlock()
	h.release(room)
	if err != nil {
		h.evictIfIdle(roomID, room)
		return
	}

	log := logrus.WithFields(logrus.Fields{"room": roomID, "player": user.ID})
	for {
		var action models.GameAction
		if err := wsjson.Read(ctx, c, &action); err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			default:
				log.WithError(err).Debug("websocket read ended")
			}
			break
		}
		room.Mu.Lock()
		room.HandlePlayerAction(ctx, user.ID, action)
		room.Mu.Unlock()
	}

	room.Mu.Lock()
	if room.Attached(user.ID, c) {
		room.HandleDisconnect(ctx, user.ID)
	}
	room.Mu.Unlock()
	c.Close(websocket.StatusNormalClosure, "")
	h.evictIfIdle(roomID, room)
}

// originHosts reduces configured origins to the host patterns the websocket handshake checks.
func originHosts(origins []string) []string {
	hosts := make([]string, 0, len(origins))
	for _, o := range origins {
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			hosts = append(hosts, u.Host)
			continue
		}
		hosts = append(hosts, o)
	}
	return hosts
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logrus.WithError(err).Debug("writing response")
	}
}
