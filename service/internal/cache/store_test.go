// internal/cache/store_test.go
package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/jason-s-yu/equilibrium/engine"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRoom(id string) *engine.GameState {
	return engine.NewRoom(id, "host", "Host", 7, engine.DefaultHouseRules())
}

func TestMemoryStoreCreateLoad(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	room := newTestRoom("AAA111")

	require.NoError(t, m.Create(ctx, room))
	assert.ErrorIs(t, m.Create(ctx, room), ErrRoomExists)

	got, err := m.Load(ctx, "AAA111")
	require.NoError(t, err)
	assert.Equal(t, room.Market, got.Market)
	assert.Equal(t, room.RNG, got.RNG)
	assert.Equal(t, room.Players[0].Board, got.Players[0].Board)

	_, err = m.Load(ctx, "nope")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestMemoryStoreUpdate(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	require.NoError(t, m.Create(ctx, newTestRoom("R")))

	next, err := m.Update(ctx, "R", func(cur *engine.GameState) (*engine.GameState, error) {
		return engine.JoinRoom(cur, "guest", "Guest")
	})
	require.NoError(t, err)
	assert.Len(t, next.Players, 2)

	stored, err := m.Load(ctx, "R")
	require.NoError(t, err)
	assert.Len(t, stored.Players, 2)
}

func TestMemoryStoreUpdateRejected(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	require.NoError(t, m.Create(ctx, newTestRoom("R")))

	cur, err := m.Update(ctx, "R", func(cur *engine.GameState) (*engine.GameState, error) {
		return engine.StartGame(cur, "guest")
	})
	assert.ErrorIs(t, err, engine.ErrNotHost)
	require.NotNil(t, cur)
	assert.Equal(t, engine.StatusLobby, cur.Status)

	stored, err := m.Load(ctx, "R")
	require.NoError(t, err)
	assert.Equal(t, engine.StatusLobby, stored.Status)
}

func TestMemoryStoreUpdateDeletes(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	require.NoError(t, m.Create(ctx, newTestRoom("R")))

	next, err := m.Update(ctx, "R", func(cur *engine.GameState) (*engine.GameState, error) {
		s, _, err := engine.LeaveRoom(cur, "host")
		return s, err
	})
	require.NoError(t, err)
	assert.Nil(t, next)

	_, err = m.Load(ctx, "R")
	assert.ErrorIs(t, err, ErrRoomNotFound)
	_, err = m.Update(ctx, "R", func(cur *engine.GameState) (*engine.GameState, error) { return cur, nil })
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestMemoryStoreDoesNotShareMemory(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	room := newTestRoom("R")
	require.NoError(t, m.Create(ctx, room))

	room.Players[0].Score = 99
	got, err := m.Load(ctx, "R")
	require.NoError(t, err)
	assert.Equal(t, 0, got.Players[0].Score)
}

func TestRetryOnConflict(t *testing.T) {
	calls := 0
	err := retryOnConflict(5, func() error {
		calls++
		if calls < 3 {
			return redis.TxFailedErr
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)

	calls = 0
	err = retryOnConflict(4, func() error {
		calls++
		return redis.TxFailedErr
	})
	assert.ErrorIs(t, err, ErrContention)
	assert.Equal(t, 4, calls)

	boom := errors.New("boom")
	calls = 0
	err = retryOnConflict(4, func() error {
		calls++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestDecodeRoomEvent(t *testing.T) {
	ev, err := decodeRoomEvent("room:ABC:events", `{"origin":"i1","kind":"sync"}`)
	require.NoError(t, err)
	assert.Equal(t, "ABC", ev.RoomID)
	assert.Equal(t, "i1", ev.Origin)

	_, err = decodeRoomEvent("room:ABC:events", "{")
	assert.Error(t, err)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "room:XYZ:state", stateKey("XYZ"))
	assert.Equal(t, "room:XYZ:events", eventsChannel("XYZ"))
}
