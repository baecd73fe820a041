package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/coaching-portal/internal/models"
	appErrors "github.com/noah-isme/coaching-portal/pkg/errors"
)

const (
	sessionKeyPrefix = "portal:session:"
	lockKeyPrefix    = "portal:lock:"
)

// MemorySessionRepository keeps sessions in process memory. It suits a
// single-instance deployment and tests.
type MemorySessionRepository struct {
	mu       sync.Mutex
	sessions map[string][]byte
	expiry   map[string]time.Time
	locks    map[string]time.Time
	now      func() time.Time
}

// NewMemorySessionRepository constructs an empty in-memory store.
func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{
		sessions: make(map[string][]byte),
		expiry:   make(map[string]time.Time),
		locks:    make(map[string]time.Time),
		now:      time.Now,
	}
}

// Get returns a copy of the stored session or ErrNotFound.
func (r *MemorySessionRepository) Get(_ context.Context, id string) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	raw, ok := r.sessions[id]
	if !ok {
		return nil, appErrors.ErrNotFound
	}
	if exp := r.expiry[id]; !exp.IsZero() && !r.now().Before(exp) {
		delete(r.sessions, id)
		delete(r.expiry, id)
		return nil, appErrors.ErrNotFound
	}

	var sess models.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &sess, nil
}

// Save stores a snapshot of the session.
func (r *MemorySessionRepository) Save(_ context.Context, sess *models.Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sess.ID] = raw
	r.expiry[sess.ID] = sess.ExpiresAt
	return nil
}

// Delete forgets a session. Missing ids are not an error.
func (r *MemorySessionRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	delete(r.expiry, id)
	return nil
}

// AcquireLock takes key for ttl unless someone else holds it.
func (r *MemorySessionRepository) AcquireLock(_ context.Context, key string, ttl time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if until, held := r.locks[key]; held && now.Before(until) {
		return false, nil
	}
	r.locks[key] = now.Add(ttl)
	return true, nil
}

// ReleaseLock drops key.
func (r *MemorySessionRepository) ReleaseLock(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.locks, key)
	return nil
}

// RedisSessionRepository stores sessions as JSON documents with a TTL that
// tracks the session's own expiry.
type RedisSessionRepository struct {
	client *redis.Client
	now    func() time.Time
}

// NewRedisSessionRepository constructs a Redis-backed store.
func NewRedisSessionRepository(client *redis.Client) *RedisSessionRepository {
	return &RedisSessionRepository{client: client, now: time.Now}
}

func (r *RedisSessionRepository) Get(ctx context.Context, id string) (*models.Session, error) {
	raw, err := r.client.Get(ctx, sessionKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, appErrors.ErrNotFound
		}
		return nil, fmt.Errorf("redis get session: %w", err)
	}

	var sess models.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &sess, nil
}

func (r *RedisSessionRepository) Save(ctx context.Context, sess *models.Session) error {
	ttl := sess.ExpiresAt.Sub(r.now())
	if ttl <= 0 {
		return r.Delete(ctx, sess.ID)
	}

	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := r.client.Set(ctx, sessionKeyPrefix+sess.ID, raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

func (r *RedisSessionRepository) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, sessionKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("redis delete session: %w", err)
	}
	return nil
}

// AcquireLock uses SETNX so that only one holder exists across instances.
func (r *RedisSessionRepository) AcquireLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, lockKeyPrefix+key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx %s: %w", key, err)
	}
	return ok, nil
}

func (r *RedisSessionRepository) ReleaseLock(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, lockKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("redis release %s: %w", key, err)
	}
	return nil
}
