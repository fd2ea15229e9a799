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

// HandleHeaderCreated creates the header fork and links it to its proposal,
// creating the proposal on demand. Headers are immutable: a second create at
// the same key fails with domain.ErrAlreadyExists and leaves the original
// untouched.
func (p *Projection) HandleHeaderCreated(ctx context.Context, ev textdao.HeaderCreated, at time.Time) error {
	ctx, span := tracer.Start(ctx, "Projection.HeaderCreated")
	defer span.End()

	proposal, err := p.loadOrCreateProposal(ctx, ev.ProposalID)
	if err != nil {
		span.RecordError(err)
		return err
	}

	header := domain.Header{
		ID:          ident.Header(ev.ProposalID, ev.HeaderID),
		ProposalID:  proposal.ID,
		HeaderID:    ev.HeaderID,
		MetadataCID: ev.MetadataCID,
		CreatedAt:   uint64(at.Unix()),
	}
	if err := p.repos.Headers.Create(ctx, header); err != nil {
		span.RecordError(err)
		return errors.Wrap(err, "create header")
	}

	p.registerContent(ev.MetadataCID, ContentHeader, header.ID)

	p.logger.DebugContext(ctx, "header created",
		slog.String("header", header.ID),
		slog.String("cid", ev.MetadataCID),
	)
	return nil
}

// HandleCommandCreated creates the command fork together with its actions.
// The command and each action are create-or-skip: a replay leaves existing
// rows untouched but still creates whatever a previous partial delivery
// failed to persist, so the handler converges to the full write set.
func (p *Projection) HandleCommandCreated(ctx context.Context, ev textdao.CommandCreated, at time.Time) error {
	ctx, span := tracer.Start(ctx, "Projection.CommandCreated")
	defer span.End()

	proposal, err := p.loadOrCreateProposal(ctx, ev.ProposalID)
	if err != nil {
		span.RecordError(err)
		return err
	}

	command := domain.Command{
		ID:         ident.Command(ev.ProposalID, ev.CommandID),
		ProposalID: proposal.ID,
		CommandID:  ev.CommandID,
		CreatedAt:  uint64(at.Unix()),
	}
	if err := p.repos.Commands.Create(ctx, command); err != nil {
		if !errors.Is(err, domain.ErrAlreadyExists) {
			span.RecordError(err)
			return errors.Wrap(err, "create command")
		}
		p.logger.DebugContext(ctx, "command replayed",
			slog.String("command", command.ID),
		)
	}

	for i, act := range ev.Actions {
		action := domain.Action{
			ID:          ident.Action(ev.ProposalID, ev.CommandID, i),
			CommandKey:  command.ID,
			ActionIndex: i,
			Func:        act.FuncSig,
			ABIParams:   act.ABIParams,
			Status:      domain.ActionProposed,
		}
		if err := p.repos.Actions.Create(ctx, action); err != nil {
			if errors.Is(err, domain.ErrAlreadyExists) {
				continue
			}
			span.RecordError(err)
			return errors.Wrapf(err, "create action %d", i)
		}
	}
	return nil
}
