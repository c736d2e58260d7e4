package application

import (
	"context"
	"fmt"
	"sync"

	"github.com/Richardson-Media-House/kirbi-discord-antiraid/antiraid/domain"
	"github.com/sirupsen/logrus"
)

// SettingsCache maps community IDs to their settings handle for the life of
// the process. Entries are created on first access and never evicted.
type SettingsCache struct {
	resolver domain.CommunityResolver
	handles  sync.Map // communityID -> *domain.Handle
}

func NewSettingsCache(resolver domain.CommunityResolver) *SettingsCache {
	return &SettingsCache{resolver: resolver}
}

// GetOrCreate returns the cached handle of a community, building a default
// one when the community is seen for the first time. Nothing is cached when
// the community cannot be resolved.
func (c *SettingsCache) GetOrCreate(ctx context.Context, communityID string) (*domain.Handle, error) {
	if h, ok := c.Lookup(communityID); ok {
		return h, nil
	}

	community, err := c.resolver.ResolveCommunity(ctx, communityID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrCommunityNotFound, communityID, err)
	}
	if community == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrCommunityNotFound, communityID)
	}

	h := domain.NewHandle(domain.NewRecord(communityID))
	actual, loaded := c.handles.LoadOrStore(communityID, h)
	if !loaded {
		logrus.Debugf("[ANTIRAID] Created settings for community %s (%s)", communityID, community.Name)
	}
	return actual.(*domain.Handle), nil
}

// Lookup returns the handle of a community without creating it.
func (c *SettingsCache) Lookup(communityID string) (*domain.Handle, bool) {
	v, ok := c.handles.Load(communityID)
	if !ok {
		return nil, false
	}
	return v.(*domain.Handle), true
}

// Preload fills the cache with every persisted document. Communities that
// already have a handle keep it.
func (c *SettingsCache) Preload(ctx context.Context, repo domain.ISettingsRepository) (int, error) {
	docs, err := repo.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list antiraid settings: %w", err)
	}

	loaded := 0
	for _, doc := range docs {
		if _, exists := c.handles.LoadOrStore(doc.CommunityID, domain.NewHandle(doc.Record())); !exists {
			loaded++
		}
	}
	logrus.Infof("[ANTIRAID] Preloaded settings for %d communities", loaded)
	return loaded, nil
}

func (c *SettingsCache) Len() int {
	n := 0
	c.handles.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
