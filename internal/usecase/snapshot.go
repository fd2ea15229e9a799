package usecase

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/textdao/indexer"
	"github.com/textdao/indexer/ident"
	"github.com/textdao/indexer/internal/domain"
)

// HandleProposalSnapped materializes the ranked top-k snapshot for an epoch.
// Slot records are upserted by (proposal, epoch, rank), the proposal's
// currentTop lists are replaced wholesale, and the epoch/time history arrays
// are appended. A snapshot cannot create history for a proposal that was
// never proposed, so a missing proposal is a hard failure.
func (p *Projection) HandleProposalSnapped(ctx context.Context, ev textdao.ProposalSnapped, at time.Time) error {
	ctx, span := tracer.Start(ctx, "Projection.ProposalSnapped")
	defer span.End()

	proposal, err := p.loadProposal(ctx, ev.ProposalID)
	if err != nil {
		span.RecordError(err)
		return err
	}

	topHeaders, topCommands, err := p.storeTopSlots(ctx, ev.ProposalID, ev.Epoch, ev.TopHeaderIDs, ev.TopCommandIDs)
	if err != nil {
		span.RecordError(err)
		return err
	}

	proposal.SnappedEpochs = append(proposal.SnappedEpochs, ev.Epoch)
	proposal.SnappedTimes = append(proposal.SnappedTimes, uint64(at.Unix()))
	proposal.TopHeaders = topHeaders
	proposal.TopCommands = topCommands

	if err := p.repos.Proposals.Put(ctx, proposal); err != nil {
		span.RecordError(err)
		return errors.Wrap(err, "store proposal")
	}
	return nil
}

// HandleProposalTallied records the winning header and command.
func (p *Projection) HandleProposalTallied(ctx context.Context, ev textdao.ProposalTallied) error {
	ctx, span := tracer.Start(ctx, "Projection.ProposalTallied")
	defer span.End()

	proposal, err := p.loadProposal(ctx, ev.ProposalID)
	if err != nil {
		span.RecordError(err)
		return err
	}

	p.warnUnknownHeaders(ctx, ev.ProposalID, []uint64{ev.ApprovedHeaderID}, "tally")
	p.warnUnknownCommands(ctx, ev.ProposalID, []uint64{ev.ApprovedCommandID}, "tally")

	approvedHeaderID := ev.ApprovedHeaderID
	approvedCommandID := ev.ApprovedCommandID
	proposal.ApprovedHeaderID = &approvedHeaderID
	proposal.ApprovedCommandID = &approvedCommandID

	if err := p.repos.Proposals.Put(ctx, proposal); err != nil {
		span.RecordError(err)
		return errors.Wrap(err, "store proposal")
	}
	return nil
}

// HandleProposalTalliedWithTie reopens voting: the expiration moves to the
// extended deadline and the tie's candidate set is stored as a fresh top-k
// snapshot with the same upsert semantics as ProposalSnapped.
func (p *Projection) HandleProposalTalliedWithTie(ctx context.Context, ev textdao.ProposalTalliedWithTie) error {
	ctx, span := tracer.Start(ctx, "Projection.ProposalTalliedWithTie")
	defer span.End()

	proposal, err := p.loadProposal(ctx, ev.ProposalID)
	if err != nil {
		span.RecordError(err)
		return err
	}

	topHeaders, topCommands, err := p.storeTopSlots(ctx, ev.ProposalID, ev.Epoch, ev.TopHeaderIDs, ev.TopCommandIDs)
	if err != nil {
		span.RecordError(err)
		return err
	}

	extended := ev.ExtendedExpirationTime
	proposal.ExpirationTime = &extended
	proposal.TopHeaders = topHeaders
	proposal.TopCommands = topCommands

	if err := p.repos.Proposals.Put(ctx, proposal); err != nil {
		span.RecordError(err)
		return errors.Wrap(err, "store proposal")
	}
	return nil
}

// storeTopSlots upserts one TopHeader/TopCommand slot per rank position and
// returns the slot keys in rank order.
func (p *Projection) storeTopSlots(ctx context.Context, pid, epoch uint64, headerIDs, commandIDs []uint64) ([]string, []string, error) {
	p.warnUnknownHeaders(ctx, pid, headerIDs, "snapshot")
	p.warnUnknownCommands(ctx, pid, commandIDs, "snapshot")

	proposalID := ident.Proposal(pid)

	topHeaders := make([]string, len(headerIDs))
	for rank, headerID := range headerIDs {
		slot := domain.TopHeader{
			ID:         ident.TopHeader(pid, epoch, rank),
			ProposalID: proposalID,
			Epoch:      epoch,
			Rank:       rank,
			HeaderKey:  ident.Header(pid, headerID),
		}
		if err := p.repos.Snapshots.PutTopHeader(ctx, slot); err != nil {
			return nil, nil, errors.Wrapf(err, "store top header rank %d", rank)
		}
		topHeaders[rank] = slot.ID
	}

	topCommands := make([]string, len(commandIDs))
	for rank, commandID := range commandIDs {
		slot := domain.TopCommand{
			ID:         ident.TopCommand(pid, epoch, rank),
			ProposalID: proposalID,
			Epoch:      epoch,
			Rank:       rank,
			CommandKey: ident.Command(pid, commandID),
		}
		if err := p.repos.Snapshots.PutTopCommand(ctx, slot); err != nil {
			return nil, nil, errors.Wrapf(err, "store top command rank %d", rank)
		}
		topCommands[rank] = slot.ID
	}

	return topHeaders, topCommands, nil
}
