package application

import (
	"context"
	"sync"
	"testing"

	"github.com/Richardson-Media-House/kirbi-discord-antiraid/antiraid/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsCache_CreatesDefaultOnce(t *testing.T) {
	communities := newFakeResolver("guild-1")
	cache := NewSettingsCache(communities)
	ctx := context.Background()

	first, err := cache.GetOrCreate(ctx, "guild-1")
	require.NoError(t, err)
	assert.Equal(t, "guild-1", first.Get(domain.ParamChannelID))

	second, err := cache.GetOrCreate(ctx, "guild-1")
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, cache.Len())
	assert.Equal(t, 1, communities.calls, "cached handles skip the platform lookup")
}

func TestSettingsCache_UnknownCommunityNotCached(t *testing.T) {
	cache := NewSettingsCache(newFakeResolver())

	h, err := cache.GetOrCreate(context.Background(), "ghost")
	assert.Nil(t, h)
	assert.ErrorIs(t, err, domain.ErrCommunityNotFound)
	assert.Equal(t, 0, cache.Len())
}

func TestSettingsCache_ConcurrentCreateSharesHandle(t *testing.T) {
	cache := NewSettingsCache(newFakeResolver("guild-1"))

	const n = 16
	handles := make([]*domain.Handle, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			h, err := cache.GetOrCreate(context.Background(), "guild-1")
			if err == nil {
				handles[i] = h
			}
		}(i)
	}
	wg.Wait()

	for _, h := range handles {
		assert.Same(t, handles[0], h)
	}
	assert.Equal(t, 1, cache.Len())
}

func TestSettingsCache_Preload(t *testing.T) {
	repo := newMemoryRepo()
	require.NoError(t, repo.Upsert(context.Background(), domain.Document{
		CommunityID: "guild-1",
		ChannelID:   "alerts",
		Values:      map[string]any{domain.ParamJoinLimit: float64(4)},
	}))

	communities := newFakeResolver()
	cache := NewSettingsCache(communities)
	n, err := cache.Preload(context.Background(), repo)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	h, err := cache.GetOrCreate(context.Background(), "guild-1")
	require.NoError(t, err)
	assert.Equal(t, "alerts", h.Get(domain.ParamChannelID))
	assert.Equal(t, 4, h.Get(domain.ParamJoinLimit))
	assert.Equal(t, 0, communities.calls)
}

func TestSettingsCache_PreloadError(t *testing.T) {
	repo := newMemoryRepo()
	repo.fail = errStoreDown

	_, err := NewSettingsCache(newFakeResolver()).Preload(context.Background(), repo)
	assert.ErrorIs(t, err, errStoreDown)
}
