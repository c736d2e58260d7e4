package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Richardson-Media-House/kirbi-discord-antiraid/antiraid/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GuildAntiraidSettingsModel struct {
	CommunityID string    `gorm:"primaryKey;column:community_id"`
	ChannelID   string    `gorm:"column:channel_id"`
	Settings    string    `gorm:"column:settings;type:text"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (GuildAntiraidSettingsModel) TableName() string {
	return "guild_antiraid_settings"
}

// SettingsGormRepository stores one row per community with the parameter
// values kept as a JSON document.
type SettingsGormRepository struct {
	db *gorm.DB
}

func NewSettingsGormRepository(db *gorm.DB) *SettingsGormRepository {
	return &SettingsGormRepository{db: db}
}

func (r *SettingsGormRepository) InitSchema(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&GuildAntiraidSettingsModel{})
}

func (r *SettingsGormRepository) Upsert(ctx context.Context, doc domain.Document) error {
	values, err := json.Marshal(doc.Values)
	if err != nil {
		return fmt.Errorf("failed to marshal antiraid settings: %w", err)
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "community_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"channel_id", "settings", "updated_at"}),
	}).Create(&GuildAntiraidSettingsModel{
		CommunityID: doc.CommunityID,
		ChannelID:   doc.ChannelID,
		Settings:    string(values),
	}).Error
}

func (r *SettingsGormRepository) Get(ctx context.Context, communityID string) (*domain.Document, error) {
	var m GuildAntiraidSettingsModel
	if err := r.db.WithContext(ctx).First(&m, "community_id = ?", communityID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	doc, err := m.toDocument()
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *SettingsGormRepository) List(ctx context.Context) ([]domain.Document, error) {
	var models []GuildAntiraidSettingsModel
	if err := r.db.WithContext(ctx).Order("community_id").Find(&models).Error; err != nil {
		return nil, err
	}

	docs := make([]domain.Document, 0, len(models))
	for _, m := range models {
		doc, err := m.toDocument()
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (m GuildAntiraidSettingsModel) toDocument() (domain.Document, error) {
	values := map[string]any{}
	if m.Settings != "" {
		if err := json.Unmarshal([]byte(m.Settings), &values); err != nil {
			return domain.Document{}, fmt.Errorf("failed to unmarshal antiraid settings for %s: %w", m.CommunityID, err)
		}
	}
	return domain.Document{
		CommunityID: m.CommunityID,
		ChannelID:   m.ChannelID,
		Values:      values,
	}, nil
}
