// internal/cache/redis.go
package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Rdb is the shared Redis client. It is nil until ConnectRedis succeeds.
var Rdb *redis.Client

// ConnectRedis dials Redis and verifies the connection.
func ConnectRedis(ctx context.Context, addr, password string, db int) error {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("redis ping %s: %w", addr, err)
	}
	Rdb = client
	logrus.WithField("addr", addr).Info("connected to redis")
	return nil
}

// CloseRedis releases the shared client.
func CloseRedis() {
	if Rdb != nil {
		_ = Rdb.Close()
		Rdb = nil
	}
}

func stateKey(roomID string) string { return "room:" + roomID + ":state" }
func eventsChannel(roomID string) string { return "room:" + roomID + ":events" }

const (
	actionStream      = "game:actions"
	actionStreamLen   = 100000
	roomEventsPattern = "room:*:events"
)
