// Package usecase holds the deliberation projection: one handler per ledger
// event type, deriving keyed entities through the repositories. Handlers are
// invoked strictly sequentially in ledger order and never concurrently.
package usecase

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"github.com/textdao/indexer/ident"
	"github.com/textdao/indexer/internal/domain"
)

var tracer = otel.Tracer("projection")

// Repositories bundles the per-entity stores the projection writes to.
type Repositories struct {
	Proposals ProposalRepository
	Headers   HeaderRepository
	Commands  CommandRepository
	Actions   ActionRepository
	Votes     VoteRepository
	Snapshots SnapshotRepository
	Texts     TextRepository
	Members   MemberRepository
	Config    ConfigRepository
}

type Projection struct {
	repos   Repositories
	content ContentRegistrar
	logger  *slog.Logger
}

// NewProjection wires the projection. content may be nil when no resolver is
// attached (replays, tests); registrations are then skipped.
func NewProjection(repos Repositories, content ContentRegistrar, logger *slog.Logger) *Projection {
	if logger == nil {
		logger = slog.Default()
	}
	return &Projection{
		repos:   repos,
		content: content,
		logger:  logger,
	}
}

// loadOrCreateProposal is the permissive load path used by events that can
// legitimately arrive before Proposed.
func (p *Projection) loadOrCreateProposal(ctx context.Context, pid uint64) (domain.Proposal, error) {
	id := ident.Proposal(pid)
	proposal, err := p.repos.Proposals.Get(ctx, id)
	if err == nil {
		return proposal, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.Proposal{}, errors.Wrap(err, "load proposal")
	}
	proposal = domain.Proposal{ID: id}
	if err := p.repos.Proposals.Put(ctx, proposal); err != nil {
		return domain.Proposal{}, errors.Wrap(err, "create proposal")
	}
	return proposal, nil
}

// loadProposal is the strict load path for events that cannot precede the
// proposal's own creation.
func (p *Projection) loadProposal(ctx context.Context, pid uint64) (domain.Proposal, error) {
	proposal, err := p.repos.Proposals.Get(ctx, ident.Proposal(pid))
	if err != nil {
		return domain.Proposal{}, err
	}
	return proposal, nil
}

func (p *Projection) registerContent(cid string, kind ContentKind, entityID string) {
	if p.content == nil || cid == "" {
		return
	}
	p.content.Register(cid, kind, entityID)
}
