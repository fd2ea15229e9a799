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

// HandleRepresentativesAssigned replaces the proposal's representative set
// wholesale. A later assignment fully supersedes an earlier one; there is no
// merge. The proposal is created on demand because representative selection
// can land before the Proposed event.
func (p *Projection) HandleRepresentativesAssigned(ctx context.Context, ev textdao.RepresentativesAssigned) error {
	ctx, span := tracer.Start(ctx, "Projection.RepresentativesAssigned")
	defer span.End()

	proposal, err := p.loadOrCreateProposal(ctx, ev.ProposalID)
	if err != nil {
		span.RecordError(err)
		return err
	}

	reps := make([]string, len(ev.Reps))
	for i, rep := range ev.Reps {
		reps[i] = ident.Rep(rep)
	}
	proposal.Reps = reps

	if err := p.repos.Proposals.Put(ctx, proposal); err != nil {
		span.RecordError(err)
		return errors.Wrap(err, "store proposal")
	}

	p.logger.DebugContext(ctx, "representatives assigned",
		slog.String("proposal", proposal.ID),
		slog.Int("reps", len(reps)),
	)
	return nil
}

// HandleProposed fills in the proposal's metadata fields.
func (p *Projection) HandleProposed(ctx context.Context, ev textdao.Proposed) error {
	ctx, span := tracer.Start(ctx, "Projection.Proposed")
	defer span.End()

	proposal, err := p.loadOrCreateProposal(ctx, ev.ProposalID)
	if err != nil {
		span.RecordError(err)
		return err
	}

	proposer := ident.Rep(ev.Proposer)
	createdAt := ev.CreatedAt
	expirationTime := ev.ExpirationTime
	snapInterval := ev.SnapInterval
	proposal.Proposer = &proposer
	proposal.CreatedAt = &createdAt
	proposal.ExpirationTime = &expirationTime
	proposal.SnapInterval = &snapInterval

	if err := p.repos.Proposals.Put(ctx, proposal); err != nil {
		span.RecordError(err)
		return errors.Wrap(err, "store proposal")
	}
	return nil
}

// HandleVRFRequested records the randomness request that seeds representative
// selection. It can be the first event a proposal ever sees.
func (p *Projection) HandleVRFRequested(ctx context.Context, ev textdao.VRFRequested) error {
	ctx, span := tracer.Start(ctx, "Projection.VRFRequested")
	defer span.End()

	proposal, err := p.loadOrCreateProposal(ctx, ev.ProposalID)
	if err != nil {
		span.RecordError(err)
		return err
	}

	requestID := ev.RequestID
	proposal.VRFRequestID = &requestID

	if err := p.repos.Proposals.Put(ctx, proposal); err != nil {
		span.RecordError(err)
		return errors.Wrap(err, "store proposal")
	}
	return nil
}

// HandleDeliberationConfigUpdated upserts the singleton config entity.
func (p *Projection) HandleDeliberationConfigUpdated(ctx context.Context, ev textdao.DeliberationConfigUpdated, at time.Time) error {
	ctx, span := tracer.Start(ctx, "Projection.DeliberationConfigUpdated")
	defer span.End()

	config, err := p.repos.Config.Get(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			span.RecordError(err)
			return errors.Wrap(err, "load deliberation config")
		}
		config = domain.DeliberationConfig{ID: ident.DeliberationConfigID}
	}

	config.ExpiryDuration = ev.ExpiryDuration
	config.SnapInterval = ev.SnapInterval
	config.RepsNum = ev.RepsNum
	config.QuorumScore = ev.QuorumScore
	config.LastUpdated = uint64(at.Unix())

	if err := p.repos.Config.Put(ctx, config); err != nil {
		span.RecordError(err)
		return errors.Wrap(err, "store deliberation config")
	}
	return nil
}
