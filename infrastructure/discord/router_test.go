package discord

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Richardson-Media-House/kirbi-discord-antiraid/antiraid/application"
	"github.com/Richardson-Media-House/kirbi-discord-antiraid/antiraid/domain"
	"github.com/Richardson-Media-House/kirbi-discord-antiraid/pkg/persistworker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentReply struct {
	origin domain.Origin
	text   string
}

type fakeReplier struct {
	mu   sync.Mutex
	sent []sentReply
}

func (f *fakeReplier) Reply(ctx context.Context, origin domain.Origin, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentReply{origin: origin, text: text})
	return nil
}

type knownGuild string

func (k knownGuild) ResolveCommunity(ctx context.Context, id string) (*domain.Community, error) {
	if id != string(k) {
		return nil, domain.ErrCommunityNotFound
	}
	return &domain.Community{ID: id}, nil
}

type nopRepo struct{}

func (nopRepo) Upsert(ctx context.Context, doc domain.Document) error        { return nil }
func (nopRepo) Get(ctx context.Context, id string) (*domain.Document, error) { return nil, nil }
func (nopRepo) List(ctx context.Context) ([]domain.Document, error)          { return nil, nil }
func (nopRepo) InitSchema(ctx context.Context) error                         { return nil }

func newTestRouter(t *testing.T) (*Router, *fakeReplier, *application.SettingsCache) {
	t.Helper()
	pool := persistworker.NewPool(1, 8)
	pool.Start(context.Background())
	t.Cleanup(pool.Stop)

	replier := &fakeReplier{}
	cache := application.NewSettingsCache(knownGuild("g1"))
	resolver := application.NewSettingsResolver(cache, nopRepo{}, pool, replier)

	r := NewRouter("!", replier)
	r.Register(AntiraidCommand(resolver))
	return r, replier, cache
}

func TestRouter_AntiraidWriteAndRead(t *testing.T) {
	r, replier, cache := newTestRouter(t)
	ctx := context.Background()

	require.True(t, r.Handle(ctx, Message{GuildID: "g1", ChannelID: "c1", MessageID: "m1", Content: "!antiraid joinLimit 4"}))
	require.True(t, r.Handle(ctx, Message{GuildID: "g1", ChannelID: "c1", MessageID: "m2", Content: "!ANTIRAID joinLimit"}))

	require.Len(t, replier.sent, 2)
	assert.Equal(t, "The joinLimit antiraid setting has been set to '4'.", replier.sent[0].text)
	assert.Equal(t, "That joinLimit antiraid setting is currently set to '4'.", replier.sent[1].text)
	assert.Equal(t, domain.Origin{CommunityID: "g1", ChannelID: "c1", MessageID: "m2"}, replier.sent[1].origin)

	h, ok := cache.Lookup("g1")
	require.True(t, ok)
	assert.Equal(t, 4, h.Get(domain.ParamJoinLimit))
}

func TestRouter_AntiraidWithoutParameter(t *testing.T) {
	r, replier, _ := newTestRouter(t)

	require.True(t, r.Handle(context.Background(), Message{GuildID: "g1", ChannelID: "c1", Content: "!antiraid"}))
	require.Len(t, replier.sent, 1)
	assert.Contains(t, replier.sent[0].text, "Available properties: channelId, joinLimit")
}

func TestRouter_IgnoresOtherMessages(t *testing.T) {
	r, replier, _ := newTestRouter(t)
	ctx := context.Background()

	assert.False(t, r.Handle(ctx, Message{GuildID: "g1", Content: "antiraid joinLimit"}), "missing prefix")
	assert.False(t, r.Handle(ctx, Message{GuildID: "g1", Content: "!unknown"}))
	assert.False(t, r.Handle(ctx, Message{GuildID: "g1", AuthorBot: true, Content: "!antiraid"}))
	assert.False(t, r.Handle(ctx, Message{Content: "!antiraid"}), "direct messages have no guild")
	assert.Empty(t, replier.sent)
}

func TestRouter_Help(t *testing.T) {
	r, replier, _ := newTestRouter(t)

	require.True(t, r.Handle(context.Background(), Message{GuildID: "g1", Content: "!help"}))
	require.Len(t, replier.sent, 1)
	assert.Equal(t,
		"!antiraid <parameter> <new value?> - Accesses the servers antiraid parameters. Adding a value will update the parameter.\n!help - Lists the available commands.",
		replier.sent[0].text)
}

func TestRouter_UnknownGuild(t *testing.T) {
	r, replier, cache := newTestRouter(t)

	require.True(t, r.Handle(context.Background(), Message{GuildID: "g2", Content: "!antiraid joinLimit 3"}))
	require.Eventually(t, func() bool { return len(replier.sent) == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, "Unable to set your guild settings for antiraid.", replier.sent[0].text)
	assert.Equal(t, 0, cache.Len())
}
