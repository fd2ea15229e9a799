package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/textdao/indexer/internal/domain"
	"github.com/textdao/indexer/internal/infrastructure/database/models"
)

type HeaderRepository struct {
	db *gorm.DB
}

func NewHeaderRepository(db *gorm.DB) *HeaderRepository {
	return &HeaderRepository{db: db}
}

func (r *HeaderRepository) Create(ctx context.Context, header domain.Header) error {
	row := headerToModel(header)
	return translate(r.db.WithContext(ctx).Create(&row).Error, "header")
}

func (r *HeaderRepository) Get(ctx context.Context, id string) (domain.Header, error) {
	var row models.Header
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error
	if err != nil {
		return domain.Header{}, translate(err, "header")
	}
	return headerFromModel(row), nil
}

// PutContent updates the resolved fields only while the row still carries
// the delivered content id. The guard makes late deliveries from the
// resolver goroutine lose against newer event-loop writes.
func (r *HeaderRepository) PutContent(ctx context.Context, id, cid string, title, body *string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Header{}).
		Where("id = ? AND metadata_cid = ?", id, cid).
		Updates(map[string]any{"title": title, "body": body})
	if result.Error != nil {
		return false, translate(result.Error, "header")
	}
	return result.RowsAffected > 0, nil
}

func (r *HeaderRepository) ListByProposal(ctx context.Context, proposalID string) ([]domain.Header, error) {
	var rows []models.Header
	err := r.db.WithContext(ctx).
		Where("proposal_id = ?", proposalID).
		Order("header_id").
		Find(&rows).Error
	if err != nil {
		return nil, translate(err, "header")
	}
	out := make([]domain.Header, len(rows))
	for i, row := range rows {
		out[i] = headerFromModel(row)
	}
	return out, nil
}

type CommandRepository struct {
	db *gorm.DB
}

func NewCommandRepository(db *gorm.DB) *CommandRepository {
	return &CommandRepository{db: db}
}

func (r *CommandRepository) Create(ctx context.Context, command domain.Command) error {
	row := models.Command{
		ID:         command.ID,
		ProposalID: command.ProposalID,
		CommandID:  int64(command.CommandID),
		CreatedAt:  int64(command.CreatedAt),
	}
	return translate(r.db.WithContext(ctx).Create(&row).Error, "command")
}

func (r *CommandRepository) Get(ctx context.Context, id string) (domain.Command, error) {
	var row models.Command
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error
	if err != nil {
		return domain.Command{}, translate(err, "command")
	}
	return commandFromModel(row), nil
}

func (r *CommandRepository) ListByProposal(ctx context.Context, proposalID string) ([]domain.Command, error) {
	var rows []models.Command
	err := r.db.WithContext(ctx).
		Where("proposal_id = ?", proposalID).
		Order("command_id").
		Find(&rows).Error
	if err != nil {
		return nil, translate(err, "command")
	}
	out := make([]domain.Command, len(rows))
	for i, row := range rows {
		out[i] = commandFromModel(row)
	}
	return out, nil
}

type ActionRepository struct {
	db *gorm.DB
}

func NewActionRepository(db *gorm.DB) *ActionRepository {
	return &ActionRepository{db: db}
}

func (r *ActionRepository) Create(ctx context.Context, action domain.Action) error {
	row := actionToModel(action)
	return translate(r.db.WithContext(ctx).Create(&row).Error, "action")
}

func (r *ActionRepository) Get(ctx context.Context, id string) (domain.Action, error) {
	var row models.Action
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error
	if err != nil {
		return domain.Action{}, translate(err, "action")
	}
	return actionFromModel(row), nil
}

func (r *ActionRepository) Put(ctx context.Context, action domain.Action) error {
	row := actionToModel(action)
	return translate(r.db.WithContext(ctx).Save(&row).Error, "action")
}

func (r *ActionRepository) ListByCommand(ctx context.Context, commandKey string) ([]domain.Action, error) {
	var rows []models.Action
	err := r.db.WithContext(ctx).
		Where("command_key = ?", commandKey).
		Order("action_index").
		Find(&rows).Error
	if err != nil {
		return nil, translate(err, "action")
	}
	out := make([]domain.Action, len(rows))
	for i, row := range rows {
		out[i] = actionFromModel(row)
	}
	return out, nil
}

func headerToModel(h domain.Header) models.Header {
	return models.Header{
		ID:          h.ID,
		ProposalID:  h.ProposalID,
		HeaderID:    int64(h.HeaderID),
		MetadataCID: h.MetadataCID,
		CreatedAt:   int64(h.CreatedAt),
		Title:       h.Title,
		Body:        h.Body,
	}
}

func headerFromModel(row models.Header) domain.Header {
	return domain.Header{
		ID:          row.ID,
		ProposalID:  row.ProposalID,
		HeaderID:    uint64(row.HeaderID),
		MetadataCID: row.MetadataCID,
		CreatedAt:   uint64(row.CreatedAt),
		Title:       row.Title,
		Body:        row.Body,
	}
}

func commandFromModel(row models.Command) domain.Command {
	return domain.Command{
		ID:         row.ID,
		ProposalID: row.ProposalID,
		CommandID:  uint64(row.CommandID),
		CreatedAt:  uint64(row.CreatedAt),
	}
}

func actionToModel(a domain.Action) models.Action {
	return models.Action{
		ID:          a.ID,
		CommandKey:  a.CommandKey,
		ActionIndex: a.ActionIndex,
		Func:        a.Func,
		ABIParams:   a.ABIParams,
		Status:      string(a.Status),
	}
}

func actionFromModel(row models.Action) domain.Action {
	return domain.Action{
		ID:          row.ID,
		CommandKey:  row.CommandKey,
		ActionIndex: row.ActionIndex,
		Func:        row.Func,
		ABIParams:   row.ABIParams,
		Status:      domain.ActionStatus(row.Status),
	}
}
