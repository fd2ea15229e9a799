package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/textdao/indexer/internal/domain"
	"github.com/textdao/indexer/internal/infrastructure/database/models"
)

type ProposalRepository struct {
	db *gorm.DB
}

func NewProposalRepository(db *gorm.DB) *ProposalRepository {
	return &ProposalRepository{db: db}
}

func (r *ProposalRepository) Get(ctx context.Context, id string) (domain.Proposal, error) {
	var row models.Proposal
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error
	if err != nil {
		return domain.Proposal{}, translate(err, "proposal")
	}
	return proposalFromModel(row), nil
}

func (r *ProposalRepository) Put(ctx context.Context, proposal domain.Proposal) error {
	row := proposalToModel(proposal)
	return translate(r.db.WithContext(ctx).Save(&row).Error, "proposal")
}

func (r *ProposalRepository) List(ctx context.Context) ([]domain.Proposal, error) {
	var rows []models.Proposal
	err := r.db.WithContext(ctx).Order("id").Find(&rows).Error
	if err != nil {
		return nil, translate(err, "proposal")
	}
	out := make([]domain.Proposal, len(rows))
	for i, row := range rows {
		out[i] = proposalFromModel(row)
	}
	return out, nil
}

func proposalToModel(p domain.Proposal) models.Proposal {
	return models.Proposal{
		ID:                p.ID,
		Proposer:          p.Proposer,
		CreatedAt:         optInt64(p.CreatedAt),
		ExpirationTime:    optInt64(p.ExpirationTime),
		SnapInterval:      optInt64(p.SnapInterval),
		Reps:              p.Reps,
		FullyExecuted:     p.FullyExecuted,
		VRFRequestID:      optInt64(p.VRFRequestID),
		ApprovedHeaderID:  optInt64(p.ApprovedHeaderID),
		ApprovedCommandID: optInt64(p.ApprovedCommandID),
		SnappedEpochs:     toInt64Array(p.SnappedEpochs),
		SnappedTimes:      toInt64Array(p.SnappedTimes),
		TopHeaders:        p.TopHeaders,
		TopCommands:       p.TopCommands,
	}
}

func proposalFromModel(row models.Proposal) domain.Proposal {
	return domain.Proposal{
		ID:                row.ID,
		Proposer:          row.Proposer,
		CreatedAt:         optUint64(row.CreatedAt),
		ExpirationTime:    optUint64(row.ExpirationTime),
		SnapInterval:      optUint64(row.SnapInterval),
		Reps:              row.Reps,
		FullyExecuted:     row.FullyExecuted,
		VRFRequestID:      optUint64(row.VRFRequestID),
		ApprovedHeaderID:  optUint64(row.ApprovedHeaderID),
		ApprovedCommandID: optUint64(row.ApprovedCommandID),
		SnappedEpochs:     toUint64Slice(row.SnappedEpochs),
		SnappedTimes:      toUint64Slice(row.SnappedTimes),
		TopHeaders:        row.TopHeaders,
		TopCommands:       row.TopCommands,
	}
}
