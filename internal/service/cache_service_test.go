package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coaching-portal/internal/models"
	appErrors "github.com/noah-isme/coaching-portal/pkg/errors"
)

// memoryCache is a CacheRepository honouring trailing-* patterns.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	deleted []string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (m *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = raw
	return nil
}

func (m *memoryCache) DeleteByPattern(ctx context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, pattern)
	for key := range m.entries {
		if key == pattern || (strings.HasSuffix(pattern, "*") && strings.HasPrefix(key, strings.TrimSuffix(pattern, "*"))) {
			delete(m.entries, key)
		}
	}
	return nil
}

func (m *memoryCache) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[key]
	return ok
}

func TestCachedFetchReadsThrough(t *testing.T) {
	cache := NewCacheService(newMemoryCache(), NewMetricsService(), time.Minute, nil, true)
	calls := 0
	load := func() ([]string, error) {
		calls++
		return []string{"a", "b"}, nil
	}

	first, err := cachedFetch(context.Background(), cache, "letters", load)
	require.NoError(t, err)
	second, err := cachedFetch(context.Background(), cache, "letters", load)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)
}

func TestCachedFetchDisabledAlwaysLoads(t *testing.T) {
	cache := NewCacheService(newMemoryCache(), nil, time.Minute, nil, false)
	calls := 0
	load := func() (int, error) {
		calls++
		return calls, nil
	}

	_, _ = cachedFetch(context.Background(), cache, "n", load)
	value, err := cachedFetch(context.Background(), cache, "n", load)
	require.NoError(t, err)
	assert.Equal(t, 2, value)

	var nilCache *CacheService
	value, err = cachedFetch(context.Background(), nilCache, "n", load)
	require.NoError(t, err)
	assert.Equal(t, 3, value)
}

func TestInvalidateCollectionsDropsScopedVariants(t *testing.T) {
	repo := newMemoryCache()
	cache := NewCacheService(repo, nil, time.Minute, nil, true)
	ctx := context.Background()

	for _, key := range []string{"leads", "stats", "enrolled:1", "enrolled:2", "courses"} {
		require.NoError(t, cache.Set(ctx, key, 1, 0))
	}

	cache.InvalidateCollections(ctx, CollectionLeads, "enrolled")

	assert.False(t, repo.has("leads"))
	assert.False(t, repo.has("enrolled:1"))
	assert.False(t, repo.has("enrolled:2"))
	assert.True(t, repo.has("stats"))
	assert.True(t, repo.has("courses"))
}

func TestMutationsInvalidateDeclaredCollections(t *testing.T) {
	repo := newMemoryCache()
	cache := NewCacheService(repo, nil, time.Minute, nil, true)
	leads := &fakeLeadRepo{leads: sampleLeads()}
	svc := NewLeadService(leads, nil, cache, nil, testOutreach(), nil, nil)
	ctx := context.Background()
	sess := &models.Session{ID: "fixture", Token: "tok"}

	_, err := svc.List(ctx, sess)
	require.NoError(t, err)
	require.NoError(t, cache.Set(ctx, CollectionStats, 1, 0))
	require.NoError(t, cache.Set(ctx, CollectionCourses, 1, 0))

	require.NoError(t, svc.Delete(ctx, sess, 1))

	assert.False(t, repo.has(CollectionLeads))
	assert.False(t, repo.has(CollectionStats))
	assert.True(t, repo.has(CollectionCourses))

	_, err = svc.List(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, 2, leads.listCalls, "the lead list is re-fetched after invalidation")
}
