package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"ctfboard/internal/model"
)

const sessionKeyPrefix = "session:"

// ErrSessionNotFound is returned when a session id has no stored session.
var ErrSessionNotFound = errors.New("session not found")

// FlashLevel styles a flash message.
type FlashLevel string

const (
	FlashSuccess FlashLevel = "success"
	FlashError   FlashLevel = "error"
)

// Flash is a one-shot notice shown on the next rendered page.
type Flash struct {
	Level   FlashLevel `json:"level"`
	Message string     `json:"message"`
}

// Session is the server-side state of one login.
type Session struct {
	ID        string          `json:"id"`
	Identity  model.Identity  `json:"identity"`
	CreatedAt time.Time       `json:"created_at"`
	Solved    map[string]bool `json:"-"`
}

// IsSolved reports whether key is in the session's solved set.
func (s *Session) IsSolved(key string) bool {
	return s.Solved[key]
}

// SessionStore defines the interface for server-side session storage.
type SessionStore interface {
	Create(ctx context.Context, session *Session, ttl time.Duration) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	// MarkSolved adds key to the solved set. The set only ever grows.
	MarkSolved(ctx context.Context, id, key string) error
	AddFlash(ctx context.Context, id string, flash Flash) error
	PopFlashes(ctx context.Context, id string) ([]Flash, error)
}

// RedisSessionStore keeps sessions in redis. Unlike the cache it reports every redis error.
type RedisSessionStore struct {
	client *redis.Client
}

// Ensure RedisSessionStore implements SessionStore
var _ SessionStore = (*RedisSessionStore)(nil)

// NewRedisSessionStore creates a new session store.
func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func sessionKey(id string) string { return sessionKeyPrefix + id }
func solvedKey(id string) string  { return sessionKeyPrefix + id + ":solved" }
func flashKey(id string) string   { return sessionKeyPrefix + id + ":flashes" }

// Create stores a new session with TTL.
func (s *RedisSessionStore) Create(ctx context.Context, session *Session, ttl time.Duration) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(session.ID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

// Get loads a session together with its solved set.
func (s *RedisSessionStore) Get(ctx context.Context, id string) (*Session, error) {
	pipe := s.client.Pipeline()
	getCmd := pipe.Get(ctx, sessionKey(id))
	solvedCmd := pipe.SMembers(ctx, solvedKey(id))
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("load session: %w", err)
	}

	data, err := getCmd.Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}

	members, err := solvedCmd.Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("load solved set: %w", err)
	}
	session.Solved = make(map[string]bool, len(members))
	for _, key := range members {
		session.Solved[key] = true
	}
	return &session, nil
}

// Delete removes a session and everything attached to it.
func (s *RedisSessionStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, sessionKey(id), solvedKey(id), flashKey(id)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// MarkSolved adds key to the session's solved set and aligns its expiry with the session.
func (s *RedisSessionStore) MarkSolved(ctx context.Context, id, key string) error {
	ttl, err := s.client.TTL(ctx, sessionKey(id)).Result()
	if err != nil {
		return fmt.Errorf("read session ttl: %w", err)
	}
	// -2 means the session key does not exist
	if ttl == -2 {
		return ErrSessionNotFound
	}

	pipe := s.client.TxPipeline()
	pipe.SAdd(ctx, solvedKey(id), key)
	if ttl > 0 {
		pipe.Expire(ctx, solvedKey(id), ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("mark solved: %w", err)
	}
	return nil
}

// AddFlash queues a flash message for the session.
func (s *RedisSessionStore) AddFlash(ctx context.Context, id string, flash Flash) error {
	payload, err := json.Marshal(flash)
	if err != nil {
		return fmt.Errorf("marshal flash: %w", err)
	}
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, flashKey(id), payload)
	pipe.Expire(ctx, flashKey(id), SessionExpiry)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("add flash: %w", err)
	}
	return nil
}

// PopFlashes returns and clears the queued flash messages.
func (s *RedisSessionStore) PopFlashes(ctx context.Context, id string) ([]Flash, error) {
	pipe := s.client.TxPipeline()
	rangeCmd := pipe.LRange(ctx, flashKey(id), 0, -1)
	pipe.Del(ctx, flashKey(id))
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("pop flashes: %w", err)
	}

	raw, err := rangeCmd.Result()
	if err != nil {
		return nil, fmt.Errorf("pop flashes: %w", err)
	}
	flashes := make([]Flash, 0, len(raw))
	for _, item := range raw {
		var f Flash
		if err := json.Unmarshal([]byte(item), &f); err != nil {
			continue
		}
		flashes = append(flashes, f)
	}
	return flashes, nil
}
