package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/textdao/indexer/internal/domain"
	"github.com/textdao/indexer/internal/infrastructure/database/models"
)

type VoteRepository struct {
	db *gorm.DB
}

func NewVoteRepository(db *gorm.DB) *VoteRepository {
	return &VoteRepository{db: db}
}

func (r *VoteRepository) Get(ctx context.Context, id string) (domain.Vote, error) {
	var row models.Vote
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error
	if err != nil {
		return domain.Vote{}, translate(err, "vote")
	}
	return voteFromModel(row), nil
}

func (r *VoteRepository) Put(ctx context.Context, vote domain.Vote) error {
	row := models.Vote{
		ID:               vote.ID,
		ProposalID:       vote.ProposalID,
		Rep:              vote.Rep,
		RankedHeaderIDs:  toInt64Array(vote.RankedHeaderIDs),
		RankedCommandIDs: toInt64Array(vote.RankedCommandIDs),
		CreatedAt:        int64(vote.CreatedAt),
		UpdatedAt:        int64(vote.UpdatedAt),
	}
	return translate(r.db.WithContext(ctx).Save(&row).Error, "vote")
}

func (r *VoteRepository) ListByProposal(ctx context.Context, proposalID string) ([]domain.Vote, error) {
	var rows []models.Vote
	err := r.db.WithContext(ctx).
		Where("proposal_id = ?", proposalID).
		Order("rep").
		Find(&rows).Error
	if err != nil {
		return nil, translate(err, "vote")
	}
	out := make([]domain.Vote, len(rows))
	for i, row := range rows {
		out[i] = voteFromModel(row)
	}
	return out, nil
}

func voteFromModel(row models.Vote) domain.Vote {
	return domain.Vote{
		ID:               row.ID,
		ProposalID:       row.ProposalID,
		Rep:              row.Rep,
		RankedHeaderIDs:  toUint64Slice(row.RankedHeaderIDs),
		RankedCommandIDs: toUint64Slice(row.RankedCommandIDs),
		CreatedAt:        uint64(row.CreatedAt),
		UpdatedAt:        uint64(row.UpdatedAt),
	}
}
