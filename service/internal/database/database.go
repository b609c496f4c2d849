// internal/database/database.go
package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jason-s-yu/equilibrium/engine"
	"github.com/sirupsen/logrus"
)

// DB is the shared connection pool. It is nil when persistence is disabled.
var DB *pgxpool.Pool

// execer is the subset of pgxpool.Pool used for writes.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// ConnectDB opens the pool and applies the schema.
func ConnectDB(ctx context.Context, url string) error {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return fmt.Errorf("parsing DATABASE_URL: %w", err)
	}
	cfg.MaxConns = 8
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return fmt.Errorf("opening pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("pinging postgres: %w", err)
	}
	if err := migrate(ctx, pool); err != nil {
		pool.Close()
		return err
	}
	DB = pool
	logrus.Info("connected to postgres")
	return nil
}

// CloseDB releases the pool.
func CloseDB() {
	if DB != nil {
		DB.Close()
		DB = nil
	}
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS games (
		id            UUID PRIMARY KEY,
		room_id       TEXT NOT NULL,
		initial_state JSONB,
		final_state   JSONB,
		started_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		ended_at      TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS game_results (
		game_id        UUID NOT NULL,
		player_id      TEXT NOT NULL,
		name           TEXT NOT NULL,
		net_score      INT NOT NULL,
		animals_placed INT NOT NULL,
		rank           INT NOT NULL,
		PRIMARY KEY (game_id, player_id)
	)`,
	`CREATE INDEX IF NOT EXISTS games_room_id_idx ON games (room_id)`,
}

func migrate(ctx context.Context, db execer) error {
	for _, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("applying schema: %w", err)
		}
	}
	return nil
}

const upsertInitialSQL = `
INSERT INTO games (id, room_id, initial_state)
VALUES ($1, $2, $3)
ON CONFLICT (id) DO UPDATE SET initial_state = EXCLUDED.initial_state`

// UpsertInitialGameState records the snapshot a game started from. Errors are logged.
func UpsertInitialGameState(gameID uuid.UUID, roomID string, snapshot any) {
	if DB == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := upsertInitial(ctx, DB, gameID, roomID, snapshot); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{"game": gameID, "room": roomID}).Error("storing initial state")
	}
}

func upsertInitial(ctx context.Context, db execer, gameID uuid.UUID, roomID string, snapshot any) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encoding initial state: %w", err)
	}
	if _, err := db.Exec(ctx, upsertInitialSQL, gameID, roomID, string(data)); err != nil {
		return fmt.Errorf("upserting game %s: %w", gameID, err)
	}
	return nil
}

const storeFinalSQL = `
WITH g AS (
	INSERT INTO games (id, room_id, final_state, ended_at)
	VALUES ($1, $2, $3, now())
	ON CONFLICT (id) DO UPDATE SET final_state = EXCLUDED.final_state, ended_at = EXCLUDED.ended_at
	RETURNING id
)
INSERT INTO game_results (game_id, player_id, name, net_score, animals_placed, rank)
SELECT g.id, r."playerId", r.name, r.net, r."animalsPlaced", r.rank
FROM g, jsonb_to_recordset($4::jsonb) AS r("playerId" TEXT, name TEXT, net INT, "animalsPlaced" INT, rank INT)
ON CONFLICT (game_id, player_id) DO UPDATE SET
	net_score = EXCLUDED.net_score,
	animals_placed = EXCLUDED.animals_placed,
	rank = EXCLUDED.rank`

// StoreFinalGameStateInDB records the final snapshot and one result row per player.
func StoreFinalGameStateInDB(ctx context.Context, gameID uuid.UUID, roomID string, snapshot any, standings []engine.Standing) {
	if DB == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := storeFinal(ctx, DB, gameID, roomID, snapshot, standings); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{"game": gameID, "room": roomID}).Error("storing final state")
	}
}

func storeFinal(ctx context.Context, db execer, gameID uuid.UUID, roomID string, snapshot any, standings []engine.Standing) error {
	state, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encoding final state: %w", err)
	}
	if standings == nil {
		standings = []engine.Standing{}
	}
	rows, err := json.Marshal(standings)
	if err != nil {
		return fmt.Errorf("encoding standings: %w", err)
	}
	if _, err := db.Exec(ctx, storeFinalSQL, gameID, roomID, string(state), string(rows)); err != nil {
		return fmt.Errorf("storing final state of game %s: %w", gameID, err)
	}
	return nil
}
