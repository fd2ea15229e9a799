// Package dispatch routes decoded ledger events into the projection, one at
// a time, in the order they were emitted. Any handler failure is an
// integrity violation: the error propagates to the feed, which stops
// advancing its checkpoint, so the bad event is retried instead of skipped.
package dispatch

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/textdao/indexer"
	"github.com/textdao/indexer/internal/usecase"
)

var tracer = otel.Tracer("dispatch")

// Notifier is told about every successfully applied event. Used to fan
// updates out to realtime subscribers; delivery is best effort.
type Notifier interface {
	Notify(ctx context.Context, ev textdao.Event)
}

type Dispatcher struct {
	projection *usecase.Projection
	metrics    *Metrics
	notifier   Notifier
	logger     *slog.Logger
}

func NewDispatcher(projection *usecase.Projection, metrics *Metrics, notifier Notifier, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		projection: projection,
		metrics:    metrics,
		notifier:   notifier,
		logger:     logger,
	}
}

// Apply applies one event. The caller must not call Apply concurrently or
// out of ledger order.
func (d *Dispatcher) Apply(ctx context.Context, ev textdao.Event) error {
	ctx, span := tracer.Start(ctx, "Dispatcher.Apply")
	defer span.End()
	span.SetAttributes(
		attribute.String("event.type", string(ev.Type)),
		attribute.Int64("event.block", int64(ev.BlockNumber)),
	)

	if err := d.apply(ctx, ev); err != nil {
		d.metrics.observeFailure(string(ev.Type))
		span.RecordError(err)
		d.logger.ErrorContext(ctx, "event application failed",
			slog.String("type", string(ev.Type)),
			slog.Uint64("block", ev.BlockNumber),
			slog.String("tx", ev.TxHash.Hex()),
			slog.String("error", err.Error()),
		)
		return err
	}

	d.metrics.observeProcessed(string(ev.Type), ev.BlockNumber)
	if d.notifier != nil {
		d.notifier.Notify(ctx, ev)
	}
	return nil
}

func (d *Dispatcher) apply(ctx context.Context, ev textdao.Event) error {
	switch ev.Type {
	case textdao.TypeRepresentativesAssigned:
		payload, err := payloadAs[textdao.RepresentativesAssigned](ev)
		if err != nil {
			return err
		}
		return d.projection.HandleRepresentativesAssigned(ctx, payload)

	case textdao.TypeProposed:
		payload, err := payloadAs[textdao.Proposed](ev)
		if err != nil {
			return err
		}
		return d.projection.HandleProposed(ctx, payload)

	case textdao.TypeHeaderCreated:
		payload, err := payloadAs[textdao.HeaderCreated](ev)
		if err != nil {
			return err
		}
		return d.projection.HandleHeaderCreated(ctx, payload, ev.Timestamp)

	case textdao.TypeCommandCreated:
		payload, err := payloadAs[textdao.CommandCreated](ev)
		if err != nil {
			return err
		}
		return d.projection.HandleCommandCreated(ctx, payload, ev.Timestamp)

	case textdao.TypeVoted:
		payload, err := payloadAs[textdao.Voted](ev)
		if err != nil {
			return err
		}
		return d.projection.HandleVoted(ctx, payload, ev.Timestamp)

	case textdao.TypeProposalSnapped:
		payload, err := payloadAs[textdao.ProposalSnapped](ev)
		if err != nil {
			return err
		}
		return d.projection.HandleProposalSnapped(ctx, payload, ev.Timestamp)

	case textdao.TypeProposalTallied:
		payload, err := payloadAs[textdao.ProposalTallied](ev)
		if err != nil {
			return err
		}
		return d.projection.HandleProposalTallied(ctx, payload)

	case textdao.TypeProposalTalliedWithTie:
		payload, err := payloadAs[textdao.ProposalTalliedWithTie](ev)
		if err != nil {
			return err
		}
		return d.projection.HandleProposalTalliedWithTie(ctx, payload)

	case textdao.TypeProposalExecuted:
		payload, err := payloadAs[textdao.ProposalExecuted](ev)
		if err != nil {
			return err
		}
		return d.projection.HandleProposalExecuted(ctx, payload)

	case textdao.TypeVRFRequested:
		payload, err := payloadAs[textdao.VRFRequested](ev)
		if err != nil {
			return err
		}
		return d.projection.HandleVRFRequested(ctx, payload)

	case textdao.TypeDeliberationConfigUpdated:
		payload, err := payloadAs[textdao.DeliberationConfigUpdated](ev)
		if err != nil {
			return err
		}
		return d.projection.HandleDeliberationConfigUpdated(ctx, payload, ev.Timestamp)

	case textdao.TypeTextCreated:
		payload, err := payloadAs[textdao.TextCreated](ev)
		if err != nil {
			return err
		}
		return d.projection.HandleTextCreated(ctx, payload)

	case textdao.TypeTextUpdated:
		payload, err := payloadAs[textdao.TextUpdated](ev)
		if err != nil {
			return err
		}
		return d.projection.HandleTextUpdated(ctx, payload)

	case textdao.TypeTextDeleted:
		payload, err := payloadAs[textdao.TextDeleted](ev)
		if err != nil {
			return err
		}
		return d.projection.HandleTextDeleted(ctx, payload)

	case textdao.TypeMemberAdded:
		payload, err := payloadAs[textdao.MemberAdded](ev)
		if err != nil {
			return err
		}
		return d.projection.HandleMemberAdded(ctx, payload)

	case textdao.TypeMemberUpdated:
		payload, err := payloadAs[textdao.MemberUpdated](ev)
		if err != nil {
			return err
		}
		return d.projection.HandleMemberUpdated(ctx, payload)

	case textdao.TypeMemberRemoved:
		payload, err := payloadAs[textdao.MemberRemoved](ev)
		if err != nil {
			return err
		}
		return d.projection.HandleMemberRemoved(ctx, payload)
	}

	return errors.Errorf("unhandled event type %q", ev.Type)
}

func payloadAs[T any](ev textdao.Event) (T, error) {
	payload, ok := ev.Payload.(T)
	if !ok {
		var zero T
		return zero, errors.Errorf("event %s carries payload %T", ev.Type, ev.Payload)
	}
	return payload, nil
}
