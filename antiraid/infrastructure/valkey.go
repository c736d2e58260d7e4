package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Richardson-Media-House/kirbi-discord-antiraid/antiraid/domain"
	"github.com/Richardson-Media-House/kirbi-discord-antiraid/infrastructure/valkey"
)

// SettingsValkeyRepository stores each community as a flat JSON document
// under <prefix>antiraid:<communityId>.
type SettingsValkeyRepository struct {
	client *valkey.Client
	prefix string
}

func NewSettingsValkeyRepository(client *valkey.Client) *SettingsValkeyRepository {
	return &SettingsValkeyRepository{
		client: client,
		prefix: client.Key("antiraid") + ":",
	}
}

func (r *SettingsValkeyRepository) fullKey(communityID string) string {
	return r.prefix + communityID
}

// InitSchema only checks connectivity; valkey needs no schema.
func (r *SettingsValkeyRepository) InitSchema(ctx context.Context) error {
	return r.client.Ping(ctx)
}

// Upsert replaces the whole document, SET creating it when absent.
func (r *SettingsValkeyRepository) Upsert(ctx context.Context, doc domain.Document) error {
	data, err := json.Marshal(doc.Fields())
	if err != nil {
		return fmt.Errorf("failed to marshal antiraid settings: %w", err)
	}

	cmd := r.client.Inner().B().Set().
		Key(r.fullKey(doc.CommunityID)).
		Value(string(data)).
		Build()

	if err := r.client.Inner().Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("failed to save antiraid settings to valkey: %w", err)
	}
	return nil
}

func (r *SettingsValkeyRepository) Get(ctx context.Context, communityID string) (*domain.Document, error) {
	cmd := r.client.Inner().B().Get().Key(r.fullKey(communityID)).Build()
	data, err := r.client.Inner().Do(ctx, cmd).AsBytes()
	if err != nil {
		if valkey.IsNil(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get antiraid settings from valkey: %w", err)
	}

	doc, err := decodeDocument(data)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *SettingsValkeyRepository) List(ctx context.Context) ([]domain.Document, error) {
	var docs []domain.Document
	var cursor uint64

	for {
		scanCmd := r.client.Inner().B().Scan().Cursor(cursor).Match(r.prefix + "*").Count(100).Build()
		result, err := r.client.Inner().Do(ctx, scanCmd).AsScanEntry()
		if err != nil {
			return nil, fmt.Errorf("failed to scan antiraid keys: %w", err)
		}

		if len(result.Elements) > 0 {
			mgetCmd := r.client.Inner().B().Mget().Key(result.Elements...).Build()
			values, err := r.client.Inner().Do(ctx, mgetCmd).AsStrSlice()
			if err != nil {
				return nil, fmt.Errorf("failed to mget antiraid settings: %w", err)
			}

			for _, val := range values {
				if val == "" {
					continue
				}
				if doc, err := decodeDocument([]byte(val)); err == nil {
					docs = append(docs, doc)
				}
			}
		}

		cursor = result.Cursor
		if cursor == 0 {
			break
		}
	}

	return docs, nil
}

func decodeDocument(data []byte) (domain.Document, error) {
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return domain.Document{}, fmt.Errorf("failed to unmarshal antiraid settings: %w", err)
	}
	return domain.DocumentFromFields(fields)
}
