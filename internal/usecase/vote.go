package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"

	"github.com/textdao/indexer"
	"github.com/textdao/indexer/ident"
	"github.com/textdao/indexer/internal/domain"
)

// HandleVoted upserts the representative's vote. The rankings are replaced
// wholesale by the latest event; CreatedAt is set only once. Candidate ids
// that do not resolve to a known header/command, or appear twice in a
// ranking, are recorded anyway: the ledger is the source of truth for
// validity, so they only produce warnings.
func (p *Projection) HandleVoted(ctx context.Context, ev textdao.Voted, at time.Time) error {
	ctx, span := tracer.Start(ctx, "Projection.Voted")
	defer span.End()

	if _, err := p.loadOrCreateProposal(ctx, ev.ProposalID); err != nil {
		span.RecordError(err)
		return err
	}

	p.warnUnknownHeaders(ctx, ev.ProposalID, ev.RankedHeaderIDs, "vote")
	p.warnUnknownCommands(ctx, ev.ProposalID, ev.RankedCommandIDs, "vote")
	p.warnDuplicates(ctx, ev.RankedHeaderIDs, "rankedHeaderIds")
	p.warnDuplicates(ctx, ev.RankedCommandIDs, "rankedCommandIds")

	id := ident.Vote(ev.ProposalID, ev.Rep)
	now := uint64(at.Unix())

	vote, err := p.repos.Votes.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			span.RecordError(err)
			return errors.Wrap(err, "load vote")
		}
		vote = domain.Vote{
			ID:         id,
			ProposalID: ident.Proposal(ev.ProposalID),
			Rep:        ident.Rep(ev.Rep),
			CreatedAt:  now,
		}
	}

	vote.RankedHeaderIDs = ev.RankedHeaderIDs
	vote.RankedCommandIDs = ev.RankedCommandIDs
	vote.UpdatedAt = now

	if err := p.repos.Votes.Put(ctx, vote); err != nil {
		span.RecordError(err)
		return errors.Wrap(err, "store vote")
	}
	return nil
}

func (p *Projection) warnUnknownHeaders(ctx context.Context, pid uint64, ids []uint64, origin string) {
	for _, id := range ids {
		if _, err := p.repos.Headers.Get(ctx, ident.Header(pid, id)); errors.Is(err, domain.ErrNotFound) {
			p.logger.WarnContext(ctx, "unknown header referenced",
				slog.String("origin", origin),
				slog.Uint64("pid", pid),
				slog.Uint64("headerId", id),
			)
		}
	}
}

func (p *Projection) warnUnknownCommands(ctx context.Context, pid uint64, ids []uint64, origin string) {
	for _, id := range ids {
		if _, err := p.repos.Commands.Get(ctx, ident.Command(pid, id)); errors.Is(err, domain.ErrNotFound) {
			p.logger.WarnContext(ctx, "unknown command referenced",
				slog.String("origin", origin),
				slog.Uint64("pid", pid),
				slog.Uint64("commandId", id),
			)
		}
	}
}

func (p *Projection) warnDuplicates(ctx context.Context, ids []uint64, field string) {
	seen := make(map[uint64]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			p.logger.WarnContext(ctx, "duplicate ranked selection",
				slog.String("field", field),
				slog.Uint64("id", id),
			)
		}
		seen[id] = true
	}
}
