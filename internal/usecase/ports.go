package usecase

import (
	"context"

	"github.com/textdao/indexer/internal/domain"
)

// Repositories are keyed get/put/delete per entity type. There are no
// cross-entity transactions; the projection orders its writes so that a
// failure never leaves a dangling reference. Implementations return
// domain.ErrNotFound / domain.ErrAlreadyExists so handlers can make their
// existence policy explicit.

type ProposalRepository interface {
	Get(ctx context.Context, id string) (domain.Proposal, error)
	// Put is a full upsert of the proposal at its key.
	Put(ctx context.Context, proposal domain.Proposal) error
	List(ctx context.Context) ([]domain.Proposal, error)
}

type HeaderRepository interface {
	// Create fails with domain.ErrAlreadyExists if the key is occupied.
	Create(ctx context.Context, header domain.Header) error
	Get(ctx context.Context, id string) (domain.Header, error)
	// PutContent writes resolved content fields as a single conditional
	// update guarded by the content id. It reports false when the row is
	// gone or has moved on to a different content id, so a late delivery
	// can never overwrite newer state.
	PutContent(ctx context.Context, id, cid string, title, body *string) (bool, error)
	ListByProposal(ctx context.Context, proposalID string) ([]domain.Header, error)
}

type CommandRepository interface {
	Create(ctx context.Context, command domain.Command) error
	Get(ctx context.Context, id string) (domain.Command, error)
	ListByProposal(ctx context.Context, proposalID string) ([]domain.Command, error)
}

type ActionRepository interface {
	Create(ctx context.Context, action domain.Action) error
	Get(ctx context.Context, id string) (domain.Action, error)
	Put(ctx context.Context, action domain.Action) error
	ListByCommand(ctx context.Context, commandKey string) ([]domain.Action, error)
}

type VoteRepository interface {
	Get(ctx context.Context, id string) (domain.Vote, error)
	Put(ctx context.Context, vote domain.Vote) error
	ListByProposal(ctx context.Context, proposalID string) ([]domain.Vote, error)
}

type SnapshotRepository interface {
	// PutTopHeader and PutTopCommand upsert by slot key, so replaying a
	// snapshot for the same epoch never multiplies slots.
	PutTopHeader(ctx context.Context, slot domain.TopHeader) error
	PutTopCommand(ctx context.Context, slot domain.TopCommand) error
	ListTopHeaders(ctx context.Context, proposalID string, epoch uint64) ([]domain.TopHeader, error)
	ListTopCommands(ctx context.Context, proposalID string, epoch uint64) ([]domain.TopCommand, error)
}

type TextRepository interface {
	Create(ctx context.Context, text domain.Text) error
	Get(ctx context.Context, id string) (domain.Text, error)
	Put(ctx context.Context, text domain.Text) error
	// PutContent has the same cid-guarded semantics as HeaderRepository.
	PutContent(ctx context.Context, id, cid string, title, body *string) (bool, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.Text, error)
}

type MemberRepository interface {
	Create(ctx context.Context, member domain.Member) error
	Get(ctx context.Context, id string) (domain.Member, error)
	Put(ctx context.Context, member domain.Member) error
	PutContent(ctx context.Context, id, cid string, name, image, bio *string) (bool, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.Member, error)
}

type ConfigRepository interface {
	Get(ctx context.Context) (domain.DeliberationConfig, error)
	Put(ctx context.Context, config domain.DeliberationConfig) error
}

// ContentKind names the document shape expected behind a content id.
type ContentKind string

const (
	ContentHeader ContentKind = "header"
	ContentText   ContentKind = "text"
	ContentMember ContentKind = "member"
)

// ContentRegistrar registers interest in a content id. Resolution happens
// out of band; registration must never block event processing.
type ContentRegistrar interface {
	Register(cid string, kind ContentKind, entityID string)
}
