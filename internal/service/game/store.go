package game

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"domino-service/internal/domino"
	appErr "domino-service/pkg/errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Store keeps live match snapshots keyed by match id.
type Store interface {
	Get(ctx context.Context, id string) (*domino.MatchState, error)
	Put(ctx context.Context, id string, state *domino.MatchState) error
	Delete(ctx context.Context, id string) error
	// Lock serializes updates to one match. The returned func releases it.
	Lock(ctx context.Context, id string) (func(), error)
}

type MemoryStore struct {
	mu      sync.RWMutex
	matches map[string][]byte

	locksMu sync.Mutex
	locks   map[string]*matchLock
}

// matchLock is dropped from the store once nobody holds or waits for it.
type matchLock struct {
	mu   sync.Mutex
	refs int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		matches: make(map[string][]byte),
		locks:   make(map[string]*matchLock),
	}
}

func (s *MemoryStore) Get(_ context.Context, id string) (*domino.MatchState, error) {
	s.mu.RLock()
	data, ok := s.matches[id]
	s.mu.RUnlock()
	if !ok {
		return nil, appErr.ErrMatchNotFound
	}
	return decodeState(data)
}

// Put stores an encoded copy so later mutation of state is not visible.
func (s *MemoryStore) Put(_ context.Context, id string, state *domino.MatchState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.matches[id] = data
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.matches, id)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Lock(_ context.Context, id string) (func(), error) {
	s.locksMu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &matchLock{}
		s.locks[id] = l
	}
	l.refs++
	s.locksMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.locksMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, id)
		}
		s.locksMu.Unlock()
	}, nil
}

type RedisStore struct {
	rdb     *redis.Client
	ttl     time.Duration
	lockTTL time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl, lockTTL: 10 * time.Second}
}

func (s *RedisStore) Get(ctx context.Context, id string) (*domino.MatchState, error) {
	data, err := s.rdb.Get(ctx, buildMatchKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, appErr.ErrMatchNotFound
		}
		return nil, err
	}
	return decodeState(data)
}

func (s *RedisStore) Put(ctx context.Context, id string, state *domino.MatchState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, buildMatchKey(id), data, s.ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, buildMatchKey(id)).Err()
}

// Lock takes a short-lived SETNX lock. The token guards against releasing a
// lock that expired and was taken by another writer.
func (s *RedisStore) Lock(ctx context.Context, id string) (func(), error) {
	lockKey := buildMatchLockKey(id)
	token := uuid.NewString()
	gotLock, err := s.rdb.SetNX(ctx, lockKey, token, s.lockTTL).Result()
	if err != nil {
		return nil, err
	}
	if !gotLock {
		return nil, appErr.ErrMatchBusy
	}
	return func() {
		if cur, err := s.rdb.Get(context.Background(), lockKey).Result(); err == nil && cur == token {
			s.rdb.Del(context.Background(), lockKey)
		}
	}, nil
}

func decodeState(data []byte) (*domino.MatchState, error) {
	var state domino.MatchState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decode match state: %w", err)
	}
	return &state, nil
}

func buildMatchKey(id string) string {
	return fmt.Sprintf("domino:match:%s", id)
}

func buildMatchLockKey(id string) string {
	return fmt.Sprintf("domino:match:lock:%s", id)
}
