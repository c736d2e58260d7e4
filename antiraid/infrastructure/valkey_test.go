package infrastructure

import (
	"context"
	"testing"

	"github.com/Richardson-Media-House/kirbi-discord-antiraid/antiraid/domain"
	"github.com/Richardson-Media-House/kirbi-discord-antiraid/infrastructure/valkey"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsValkeyRepository_RoundTrip(t *testing.T) {
	vk, err := valkey.NewClient(valkey.Config{Address: "localhost:6379", KeyPrefix: "antiraid-test-" + uuid.NewString()})
	if err != nil {
		t.Skip("No valkey")
	}
	defer vk.Close()

	repo := NewSettingsValkeyRepository(vk)
	ctx := context.Background()
	require.NoError(t, repo.InitSchema(ctx))

	h := domain.NewHandle(domain.NewRecord("guild-1"))
	require.NoError(t, h.Set(domain.ParamJoinWindow, 20))
	require.NoError(t, repo.Upsert(ctx, h.Document()))
	require.NoError(t, h.Set(domain.ParamJoinWindow, 40))
	require.NoError(t, repo.Upsert(ctx, h.Document()))

	doc, err := repo.Get(ctx, "guild-1")
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, 40, doc.Values[domain.ParamJoinWindow])

	docs, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, docs, 1)

	missing, err := repo.Get(ctx, "guild-2")
	require.NoError(t, err)
	assert.Nil(t, missing)

	vk.Inner().Do(ctx, vk.Inner().B().Del().Key(repo.fullKey("guild-1")).Build())
}

func TestDecodeDocument(t *testing.T) {
	doc, err := decodeDocument([]byte(`{"communityId":"g","channelId":"c","joinLimit":3,"bogus":true,"notifyMessage":"a%20b"}`))
	require.NoError(t, err)
	assert.Equal(t, "g", doc.CommunityID)
	assert.Equal(t, "c", doc.ChannelID)
	assert.Equal(t, 3, doc.Values[domain.ParamJoinLimit])
	assert.Equal(t, "a%20b", doc.Values[domain.ParamNotifyMessage])
	assert.NotContains(t, doc.Values, "bogus")

	_, err = decodeDocument([]byte(`not json`))
	assert.Error(t, err)
}
