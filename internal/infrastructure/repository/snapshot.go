package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/textdao/indexer/internal/domain"
	"github.com/textdao/indexer/internal/infrastructure/database/models"
)

type SnapshotRepository struct {
	db *gorm.DB
}

func NewSnapshotRepository(db *gorm.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

func (r *SnapshotRepository) PutTopHeader(ctx context.Context, slot domain.TopHeader) error {
	row := models.TopHeader{
		ID:         slot.ID,
		ProposalID: slot.ProposalID,
		Epoch:      int64(slot.Epoch),
		Rank:       slot.Rank,
		HeaderKey:  slot.HeaderKey,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&row).Error
	return translate(err, "top header")
}

func (r *SnapshotRepository) PutTopCommand(ctx context.Context, slot domain.TopCommand) error {
	row := models.TopCommand{
		ID:         slot.ID,
		ProposalID: slot.ProposalID,
		Epoch:      int64(slot.Epoch),
		Rank:       slot.Rank,
		CommandKey: slot.CommandKey,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&row).Error
	return translate(err, "top command")
}

func (r *SnapshotRepository) ListTopHeaders(ctx context.Context, proposalID string, epoch uint64) ([]domain.TopHeader, error) {
	var rows []models.TopHeader
	err := r.db.WithContext(ctx).
		Where("proposal_id = ? AND epoch = ?", proposalID, int64(epoch)).
		Order("rank").
		Find(&rows).Error
	if err != nil {
		return nil, translate(err, "top header")
	}
	out := make([]domain.TopHeader, len(rows))
	for i, row := range rows {
		out[i] = domain.TopHeader{
			ID:         row.ID,
			ProposalID: row.ProposalID,
			Epoch:      uint64(row.Epoch),
			Rank:       row.Rank,
			HeaderKey:  row.HeaderKey,
		}
	}
	return out, nil
}

func (r *SnapshotRepository) ListTopCommands(ctx context.Context, proposalID string, epoch uint64) ([]domain.TopCommand, error) {
	var rows []models.TopCommand
	err := r.db.WithContext(ctx).
		Where("proposal_id = ? AND epoch = ?", proposalID, int64(epoch)).
		Order("rank").
		Find(&rows).Error
	if err != nil {
		return nil, translate(err, "top command")
	}
	out := make([]domain.TopCommand, len(rows))
	for i, row := range rows {
		out[i] = domain.TopCommand{
			ID:         row.ID,
			ProposalID: row.ProposalID,
			Epoch:      uint64(row.Epoch),
			Rank:       row.Rank,
			CommandKey: row.CommandKey,
		}
	}
	return out, nil
}
