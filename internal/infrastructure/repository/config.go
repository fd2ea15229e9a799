package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/textdao/indexer/ident"
	"github.com/textdao/indexer/internal/domain"
	"github.com/textdao/indexer/internal/infrastructure/database/models"
)

type ConfigRepository struct {
	db *gorm.DB
}

func NewConfigRepository(db *gorm.DB) *ConfigRepository {
	return &ConfigRepository{db: db}
}

func (r *ConfigRepository) Get(ctx context.Context) (domain.DeliberationConfig, error) {
	var row models.DeliberationConfig
	err := r.db.WithContext(ctx).Where("id = ?", ident.DeliberationConfigID).Take(&row).Error
	if err != nil {
		return domain.DeliberationConfig{}, translate(err, "deliberation config")
	}
	return domain.DeliberationConfig{
		ID:             row.ID,
		ExpiryDuration: uint64(row.ExpiryDuration),
		SnapInterval:   uint64(row.SnapInterval),
		RepsNum:        uint64(row.RepsNum),
		QuorumScore:    uint64(row.QuorumScore),
		LastUpdated:    uint64(row.LastUpdated),
	}, nil
}

func (r *ConfigRepository) Put(ctx context.Context, config domain.DeliberationConfig) error {
	row := models.DeliberationConfig{
		ID:             config.ID,
		ExpiryDuration: int64(config.ExpiryDuration),
		SnapInterval:   int64(config.SnapInterval),
		RepsNum:        int64(config.RepsNum),
		QuorumScore:    int64(config.QuorumScore),
		LastUpdated:    int64(config.LastUpdated),
	}
	return translate(r.db.WithContext(ctx).Save(&row).Error, "deliberation config")
}
