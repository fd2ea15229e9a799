package usecase

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/textdao/indexer"
	"github.com/textdao/indexer/ident"
	"github.com/textdao/indexer/internal/domain"
)

// HandleProposalExecuted marks the proposal fully executed and transitions
// every action under the approved command to Executed. The approval decision
// is authoritative: if the command was never materialized the proposal is
// still marked executed and only a warning is logged.
func (p *Projection) HandleProposalExecuted(ctx context.Context, ev textdao.ProposalExecuted) error {
	ctx, span := tracer.Start(ctx, "Projection.ProposalExecuted")
	defer span.End()

	proposal, err := p.loadProposal(ctx, ev.ProposalID)
	if err != nil {
		span.RecordError(err)
		return err
	}

	commandKey := ident.Command(ev.ProposalID, ev.ApprovedCommandID)
	if _, err := p.repos.Commands.Get(ctx, commandKey); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			span.RecordError(err)
			return errors.Wrap(err, "load command")
		}
		p.logger.WarnContext(ctx, "approved command not materialized, marking proposal executed anyway",
			slog.String("command", commandKey),
		)
	} else {
		actions, err := p.repos.Actions.ListByCommand(ctx, commandKey)
		if err != nil {
			span.RecordError(err)
			return errors.Wrap(err, "list actions")
		}
		for _, action := range actions {
			action.Status = domain.ActionExecuted
			if err := p.repos.Actions.Put(ctx, action); err != nil {
				span.RecordError(err)
				return errors.Wrapf(err, "store action %s", action.ID)
			}
		}
	}

	proposal.FullyExecuted = true
	if err := p.repos.Proposals.Put(ctx, proposal); err != nil {
		span.RecordError(err)
		return errors.Wrap(err, "store proposal")
	}
	return nil
}
