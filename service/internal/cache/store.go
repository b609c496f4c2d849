// internal/cache/store.go
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jason-s-yu/equilibrium/engine"
	"github.com/redis/go-redis/v9"
)

// RoomTTL is how long an idle room snapshot lives in Redis.
const RoomTTL = 24 * time.Hour

// MaxRetries bounds compare-and-set attempts on a contended room.
const MaxRetries = 8

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomExists   = errors.New("room already exists")
	ErrContention   = errors.New("room update lost too many races")
)

// UpdateFunc computes the next snapshot from the current one. Returning a nil snapshot
// and a nil error deletes the room. Returning an error leaves the stored snapshot as is.
type UpdateFunc func(cur *engine.GameState) (*engine.GameState, error)

// Store holds the authoritative snapshot of every room.
type Store interface {
	Create(ctx context.Context, s *engine.GameState) error
	Load(ctx context.Context, roomID string) (*engine.GameState, error)
	// Update applies fn atomically. It returns the stored snapshot after the call (nil when
	// the room was deleted) and fn's error, if any.
	Update(ctx context.Context, roomID string, fn UpdateFunc) (*engine.GameState, error)
	Delete(ctx context.Context, roomID string) error
}

func encodeState(s *engine.GameState) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encoding room %s: %w", s.RoomID, err)
	}
	return data, nil
}

func decodeState(roomID string, data []byte) (*engine.GameState, error) {
	var s engine.GameState
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decoding room %s: %w", roomID, err)
	}
	return &s, nil
}

// ---------------------------------------------------------------------------
// Redis
// ---------------------------------------------------------------------------

// RedisStore keeps snapshots as JSON strings and serializes writers with WATCH/MULTI.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore wraps client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{rdb: client}
}

func (s *RedisStore) Create(ctx context.Context, st *engine.GameState) error {
	data, err := encodeState(st)
	if err != nil {
		return err
	}
	ok, err := s.rdb.SetNX(ctx, stateKey(st.RoomID), data, RoomTTL).Result()
	if err != nil {
		return fmt.Errorf("creating room %s: %w", st.RoomID, err)
	}
	if !ok {
		return ErrRoomExists
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, roomID string) (*engine.GameState, error) {
	data, err := s.rdb.Get(ctx, stateKey(roomID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading room %s: %w", roomID, err)
	}
	return decodeState(roomID, data)
}

func (s *RedisStore) Update(ctx context.Context, roomID string, fn UpdateFunc) (*engine.GameState, error) {
	key := stateKey(roomID)
	var (
		result *engine.GameState
		fnErr  error
	)
	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrRoomNotFound
		}
		if err != nil {
			return err
		}
		cur, err := decodeState(roomID, data)
		if err != nil {
			return err
		}
		next, err := fn(cur)
		if err != nil {
			result, fnErr = cur, err
			return nil
		}
		var buf []byte
		if next != nil {
			if buf, err = encodeState(next); err != nil {
				return err
			}
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if next == nil {
				pipe.Del(ctx, key)
			} else {
				pipe.Set(ctx, key, buf, RoomTTL)
			}
			return nil
		})
		if err == nil {
			result, fnErr = next, nil
		}
		return err
	}

	err := retryOnConflict(MaxRetries, func() error {
		return s.rdb.Watch(ctx, txf, key)
	})
	if err != nil {
		if errors.Is(err, ErrRoomNotFound) || errors.Is(err, ErrContention) {
			return nil, err
		}
		return nil, fmt.Errorf("updating room %s: %w", roomID, err)
	}
	return result, fnErr
}

func (s *RedisStore) Delete(ctx context.Context, roomID string) error {
	if err := s.rdb.Del(ctx, stateKey(roomID)).Err(); err != nil {
		return fmt.Errorf("deleting room %s: %w", roomID, err)
	}
	return nil
}

// retryOnConflict runs attempt until it stops failing with redis.TxFailedErr.
func retryOnConflict(maxRetries int, attempt func() error) error {
	for i := 0; i < maxRetries; i++ {
		err := attempt()
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return ErrContention
}

// ---------------------------------------------------------------------------
// In-memory
// ---------------------------------------------------------------------------

// MemoryStore is a single-process Store. Snapshots are kept encoded so that callers
// never share memory with the stored copy.
type MemoryStore struct {
	mu    sync.Mutex
	rooms map[string][]byte
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rooms: make(map[string][]byte)}
}

func (m *MemoryStore) Create(_ context.Context, st *engine.GameState) error {
	data, err := encodeState(st)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rooms[st.RoomID]; ok {
		return ErrRoomExists
	}
	m.rooms[st.RoomID] = data
	return nil
}

func (m *MemoryStore) Load(_ context.Context, roomID string) (*engine.GameState, error) {
	m.mu.Lock()
	data, ok := m.rooms[roomID]
	m.mu.Unlock()
	if !ok {
		return nil, ErrRoomNotFound
	}
	return decodeState(roomID, data)
}

func (m *MemoryStore) Update(_ context.Context, roomID string, fn UpdateFunc) (*engine.GameState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.rooms[roomID]
	if !ok {
		return nil, ErrRoomNotFound
	}
	cur, err := decodeState(roomID, data)
	if err != nil {
		return nil, err
	}
	next, err := fn(cur)
	if err != nil {
		return cur, err
	}
	if next == nil {
		delete(m.rooms, roomID)
		return nil, nil
	}
	buf, err := encodeState(next)
	if err != nil {
		return nil, err
	}
	m.rooms[roomID] = buf
	return next, nil
}

func (m *MemoryStore) Delete(_ context.Context, roomID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rooms, roomID)
	return nil
}
