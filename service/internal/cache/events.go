// internal/cache/events.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// GameActionRecord is one entry of the action history stream.
type GameActionRecord struct {
	GameID        uuid.UUID              `json:"gameId"`
	RoomID        string                 `json:"roomId"`
	ActionIndex   int                    `json:"actionIndex"`
	ActorUserID   uuid.UUID              `json:"actorUserId"`
	ActionType    string                 `json:"actionType"`
	ActionPayload map[string]interface{} `json:"actionPayload"`
	Timestamp     int64                  `json:"timestamp"`
}

// PublishGameAction appends rec to the action stream.
func PublishGameAction(ctx context.Context, rec GameActionRecord) error {
	if Rdb == nil {
		return nil
	}
	return publishGameAction(ctx, Rdb, rec)
}

func publishGameAction(ctx context.Context, rdb redis.Cmdable, rec GameActionRecord) error {
	payload, err := json.Marshal(rec.ActionPayload)
	if err != nil {
		return fmt.Errorf("encoding action payload: %w", err)
	}
	return rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: actionStream,
		MaxLen: actionStreamLen,
		Approx: true,
		Values: map[string]interface{}{
			"gameId":      rec.GameID.String(),
			"roomId":      rec.RoomID,
			"actionIndex": rec.ActionIndex,
			"actor":       rec.ActorUserID.String(),
			"type":        rec.ActionType,
			"payload":     string(payload),
			"ts":          rec.Timestamp,
		},
	}).Err()
}

// RoomEvent tells other server processes that a room changed.
type RoomEvent struct {
	Origin string `json:"origin"` // instance that made the change
	RoomID string `json:"roomId"`
	Kind   string `json:"kind"` // "sync" or "closed"
}

// PublishRoomEvent announces ev on the room's channel.
func PublishRoomEvent(ctx context.Context, ev RoomEvent) error {
	if Rdb == nil {
		return nil
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return Rdb.Publish(ctx, eventsChannel(ev.RoomID), data).Err()
}

// SubscribeRoomEvents delivers room events until ctx is done. Events whose origin is
// self are skipped.
func SubscribeRoomEvents(ctx context.Context, self string, handle func(RoomEvent)) error {
	if Rdb == nil {
		<-ctx.Done()
		return nil
	}
	sub := Rdb.PSubscribe(ctx, roomEventsPattern)
	defer sub.Close()
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			ev, err := decodeRoomEvent(msg.Channel, msg.Payload)
			if err != nil {
				logrus.WithError(err).WithField("channel", msg.Channel).Warn("dropping room event")
				continue
			}
			if ev.Origin == self {
				continue
			}
			handle(ev)
		}
	}
}

func decodeRoomEvent(channel, payload string) (RoomEvent, error) {
	var ev RoomEvent
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return ev, fmt.Errorf("decoding room event: %w", err)
	}
	if ev.RoomID == "" {
		ev.RoomID = strings.TrimSuffix(strings.TrimPrefix(channel, "room:"), ":events")
	}
	return ev, nil
}
