package application

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Richardson-Media-House/kirbi-discord-antiraid/antiraid/domain"
	"github.com/Richardson-Media-House/kirbi-discord-antiraid/pkg/persistworker"
)

type fakeResolver struct {
	mu    sync.Mutex
	known map[string]bool
	calls int
}

func newFakeResolver(ids ...string) *fakeResolver {
	r := &fakeResolver{known: map[string]bool{}}
	for _, id := range ids {
		r.known[id] = true
	}
	return r
}

func (r *fakeResolver) ResolveCommunity(ctx context.Context, id string) (*domain.Community, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if !r.known[id] {
		return nil, domain.ErrCommunityNotFound
	}
	return &domain.Community{ID: id, Name: "guild " + id}, nil
}

type memoryRepo struct {
	mu      sync.Mutex
	docs    map[string]domain.Document
	upserts int
	fail    error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{docs: map[string]domain.Document{}}
}

func (m *memoryRepo) Upsert(ctx context.Context, doc domain.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upserts++
	if m.fail != nil {
		return m.fail
	}
	m.docs[doc.CommunityID] = doc
	return nil
}

func (m *memoryRepo) Get(ctx context.Context, id string) (*domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok {
		return nil, nil
	}
	return &doc, nil
}

func (m *memoryRepo) List(ctx context.Context) ([]domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	out := make([]domain.Document, 0, len(m.docs))
	for _, d := range m.docs {
		out = append(out, d)
	}
	return out, nil
}

func (m *memoryRepo) InitSchema(ctx context.Context) error { return nil }

func (m *memoryRepo) upsertCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.upserts
}

type recordingReplier struct {
	mu      sync.Mutex
	replies []string
}

func (r *recordingReplier) Reply(ctx context.Context, origin domain.Origin, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.replies = append(r.replies, text)
	return nil
}

func (r *recordingReplier) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.replies...)
}

type refusingDispatcher struct{}

func (refusingDispatcher) TryDispatch(persistworker.Job) bool { return false }

var errStoreDown = errors.New("store unavailable")

type testEnv struct {
	communities *fakeResolver
	cache       *SettingsCache
	repo        *memoryRepo
	notifier    *recordingReplier
	resolver    *SettingsResolver
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	pool := persistworker.NewPool(2, 16)
	pool.Start(context.Background())
	t.Cleanup(pool.Stop)

	env := &testEnv{
		communities: newFakeResolver("guild-1", "guild-2"),
		repo:        newMemoryRepo(),
		notifier:    &recordingReplier{},
	}
	env.cache = NewSettingsCache(env.communities)
	env.resolver = NewSettingsResolver(env.cache, env.repo, pool, env.notifier)
	return env
}

func invoke(guild, payload string) domain.Invocation {
	return domain.Invocation{
		Origin:  domain.Origin{CommunityID: guild, ChannelID: "chan-1", MessageID: "msg-1"},
		Payload: payload,
	}
}
