package usecase

import (
	"context"

	"github.com/pkg/errors"

	"github.com/textdao/indexer/internal/domain"
)

// ProposalDetail is a proposal together with its one-to-many relations,
// served by the query layer.
type ProposalDetail struct {
	domain.Proposal
	Headers  []domain.Header `json:"headers"`
	Commands []CommandDetail `json:"commands"`
	Votes    []domain.Vote   `json:"votes"`
}

type CommandDetail struct {
	domain.Command
	Actions []domain.Action `json:"actions"`
}

// SnapshotDetail is one epoch's ranked selection for a proposal.
type SnapshotDetail struct {
	Epoch       uint64              `json:"epoch"`
	TopHeaders  []domain.TopHeader  `json:"topHeaders"`
	TopCommands []domain.TopCommand `json:"topCommands"`
}

// QueryUsecase serves reads over the materialized projection.
type QueryUsecase struct {
	repos Repositories
}

func NewQueryUsecase(repos Repositories) *QueryUsecase {
	return &QueryUsecase{repos: repos}
}

func (q *QueryUsecase) ListProposals(ctx context.Context) ([]domain.Proposal, error) {
	return q.repos.Proposals.List(ctx)
}

func (q *QueryUsecase) GetProposal(ctx context.Context, id string) (ProposalDetail, error) {
	proposal, err := q.repos.Proposals.Get(ctx, id)
	if err != nil {
		return ProposalDetail{}, err
	}

	headers, err := q.repos.Headers.ListByProposal(ctx, id)
	if err != nil {
		return ProposalDetail{}, errors.Wrap(err, "list headers")
	}

	commands, err := q.repos.Commands.ListByProposal(ctx, id)
	if err != nil {
		return ProposalDetail{}, errors.Wrap(err, "list commands")
	}
	details := make([]CommandDetail, len(commands))
	for i, command := range commands {
		actions, err := q.repos.Actions.ListByCommand(ctx, command.ID)
		if err != nil {
			return ProposalDetail{}, errors.Wrap(err, "list actions")
		}
		details[i] = CommandDetail{Command: command, Actions: actions}
	}

	votes, err := q.repos.Votes.ListByProposal(ctx, id)
	if err != nil {
		return ProposalDetail{}, errors.Wrap(err, "list votes")
	}

	return ProposalDetail{
		Proposal: proposal,
		Headers:  headers,
		Commands: details,
		Votes:    votes,
	}, nil
}

func (q *QueryUsecase) GetSnapshot(ctx context.Context, proposalID string, epoch uint64) (SnapshotDetail, error) {
	topHeaders, err := q.repos.Snapshots.ListTopHeaders(ctx, proposalID, epoch)
	if err != nil {
		return SnapshotDetail{}, errors.Wrap(err, "list top headers")
	}
	topCommands, err := q.repos.Snapshots.ListTopCommands(ctx, proposalID, epoch)
	if err != nil {
		return SnapshotDetail{}, errors.Wrap(err, "list top commands")
	}
	if len(topHeaders) == 0 && len(topCommands) == 0 {
		return SnapshotDetail{}, domain.NotFoundError{Resource: "snapshot"}
	}
	return SnapshotDetail{
		Epoch:       epoch,
		TopHeaders:  topHeaders,
		TopCommands: topCommands,
	}, nil
}

func (q *QueryUsecase) GetText(ctx context.Context, id string) (domain.Text, error) {
	return q.repos.Texts.Get(ctx, id)
}

func (q *QueryUsecase) ListTexts(ctx context.Context) ([]domain.Text, error) {
	return q.repos.Texts.List(ctx)
}

func (q *QueryUsecase) GetMember(ctx context.Context, id string) (domain.Member, error) {
	return q.repos.Members.Get(ctx, id)
}

func (q *QueryUsecase) ListMembers(ctx context.Context) ([]domain.Member, error) {
	return q.repos.Members.List(ctx)
}

func (q *QueryUsecase) GetConfig(ctx context.Context) (domain.DeliberationConfig, error) {
	return q.repos.Config.Get(ctx)
}
