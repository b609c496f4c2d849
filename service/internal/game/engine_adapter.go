// internal/game/engine_adapter.go
package game

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/jason-s-yu/equilibrium/engine"
	"github.com/jason-s-yu/equilibrium/service/internal/cache"
	"github.com/jason-s-yu/equilibrium/service/internal/models"
)

// Client action types.
const (
	ActionDraftTokens = "action_draft_tokens"
	ActionDraftAnimal = "action_draft_animal"
	ActionPlaceToken  = "action_place_token"
	ActionPlaceAnimal = "action_place_animal"
	ActionDiscard     = "action_discard"
	ActionEndTurn     = "action_end_turn"
	ActionLobbyStart  = "lobby_start"
	ActionLobbyKick   = "lobby_kick"
	ActionLobbyReturn = "lobby_return"
	ActionLobbyLeave  = "lobby_leave"
)

var (
	ErrUnknownAction = errors.New("unknown action type")
	ErrBadPayload    = errors.New("malformed payload")
)

// decodeAction maps a client action onto the engine operation it requests.
func decodeAction(pid string, a models.GameAction) (cache.UpdateFunc, error) {
	p := a.Payload
	switch a.ActionType {
	case ActionDraftTokens:
		slot, err := intField(p, "slot")
		if err != nil {
			return nil, err
		}
		return func(s *engine.GameState) (*engine.GameState, error) {
			return engine.ApplyDraftTokens(s, pid, slot)
		}, nil

	case ActionDraftAnimal:
		idx, err := intField(p, "index")
		if err != nil {
			return nil, err
		}
		return func(s *engine.GameState) (*engine.GameState, error) {
			return engine.ApplyDraftAnimal(s, pid, idx)
		}, nil

	case ActionPlaceToken:
		idx, err := intField(p, "holdingIdx")
		if err != nil {
			return nil, err
		}
		at, err := coordField(p)
		if err != nil {
			return nil, err
		}
		return func(s *engine.GameState) (*engine.GameState, error) {
			return engine.ApplyPlaceToken(s, pid, idx, at)
		}, nil

	case ActionPlaceAnimal:
		idx, err := intField(p, "cardIdx")
		if err != nil {
			return nil, err
		}
		at, err := coordField(p)
		if err != nil {
			return nil, err
		}
		return func(s *engine.GameState) (*engine.GameState, error) {
			return engine.ApplyPlaceAnimal(s, pid, idx, at)
		}, nil

	case ActionDiscard:
		idx, err := intField(p, "holdingIdx")
		if err != nil {
			return nil, err
		}
		return func(s *engine.GameState) (*engine.GameState, error) {
			return engine.ApplyDiscard(s, pid, idx)
		}, nil

	case ActionEndTurn:
		return func(s *engine.GameState) (*engine.GameState, error) {
			return engine.ApplyEndTurn(s, pid)
		}, nil

	case ActionLobbyStart:
		return func(s *engine.GameState) (*engine.GameState, error) {
			return engine.StartGame(s, pid)
		}, nil

	case ActionLobbyKick:
		target := stringField(p, "target")
		if target == "" {
			return nil, fmt.Errorf("%w: target is required", ErrBadPayload)
		}
		return func(s *engine.GameState) (*engine.GameState, error) {
			return engine.KickPlayer(s, pid, target)
		}, nil

	case ActionLobbyReturn:
		return func(s *engine.GameState) (*engine.GameState, error) {
			return engine.ReturnToLobby(s, pid)
		}, nil

	case ActionLobbyLeave:
		return func(s *engine.GameState) (*engine.GameState, error) {
			next, _, err := engine.LeaveRoom(s, pid)
			return next, err
		}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownAction, a.ActionType)
}

// intField reads an integral JSON number from payload.
func intField(payload map[string]interface{}, key string) (int, error) {
	v, ok := payload[key]
	if !ok {
		return 0, fmt.Errorf("%w: %s is required", ErrBadPayload, key)
	}
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) || math.Abs(n) > math.MaxInt32 {
			return 0, fmt.Errorf("%w: %s must be an integer", ErrBadPayload, key)
		}
		return int(n), nil
	case int:
		return n, nil
	case json.Number:
		i, err := n.Int64()
		if err != nil || i > math.MaxInt32 || i < math.MinInt32 {
			return 0, fmt.Errorf("%w: %s must be an integer", ErrBadPayload, key)
		}
		return int(i), nil
	}
	return 0, fmt.Errorf("%w: %s must be a number", ErrBadPayload, key)
}

func coordField(payload map[string]interface{}) (engine.Coord, error) {
	q, err := intField(payload, "q")
	if err != nil {
		return engine.Coord{}, err
	}
	r, err := intField(payload, "r")
	if err != nil {
		return engine.Coord{}, err
	}
	return engine.Coord{Q: q, R: r}, nil
}

func stringField(payload map[string]interface{}, key string) string {
	s, _ := payload[key].(string)
	return s
}
