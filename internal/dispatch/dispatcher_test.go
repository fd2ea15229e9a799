package dispatch

import (
	"context"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/textdao/indexer"
	"github.com/textdao/indexer/internal/infrastructure/repository"
	"github.com/textdao/indexer/internal/usecase"
)

type countingNotifier struct {
	events []textdao.Event
}

func (n *countingNotifier) Notify(ctx context.Context, ev textdao.Event) {
	n.events = append(n.events, ev)
}

func newTestDispatcher(t *testing.T) (*Dispatcher, *repository.Memory, *countingNotifier) {
	t.Helper()
	mem := repository.NewMemory()
	projection := usecase.NewProjection(usecase.Repositories{
		Proposals: mem.Proposals(),
		Headers:   mem.Headers(),
		Commands:  mem.Commands(),
		Actions:   mem.Actions(),
		Votes:     mem.Votes(),
		Snapshots: mem.Snapshots(),
		Texts:     mem.Texts(),
		Members:   mem.Members(),
		Config:    mem.Config(),
	}, nil, nil)
	notifier := &countingNotifier{}
	dispatcher := NewDispatcher(projection, NewMetrics(prometheus.NewRegistry()), notifier, nil)
	return dispatcher, mem, notifier
}

func TestApplyRoutesByEventType(t *testing.T) {
	dispatcher, mem, notifier := newTestDispatcher(t)
	ctx := context.Background()

	events := []textdao.Event{
		{
			Type:        textdao.TypeProposed,
			BlockNumber: 10,
			LogIndex:    0,
			Timestamp:   time.Unix(1700000000, 0),
			Payload: textdao.Proposed{
				ProposalID: 1,
				Proposer:   common.HexToAddress("0x1"),
				CreatedAt:  1700000000,
			},
		},
		{
			Type:        textdao.TypeHeaderCreated,
			BlockNumber: 11,
			LogIndex:    0,
			Timestamp:   time.Unix(1700000060, 0),
			Payload: textdao.HeaderCreated{
				ProposalID: 1, HeaderID: 1, MetadataCID: "QmX",
			},
		},
	}
	for _, ev := range events {
		if err := dispatcher.Apply(ctx, ev); err != nil {
			t.Fatalf("apply %s: %v", ev.Type, err)
		}
	}

	if _, err := mem.Proposals().Get(ctx, "1"); err != nil {
		t.Fatalf("proposal not materialized: %v", err)
	}
	header, err := mem.Headers().Get(ctx, "header-1-1")
	if err != nil {
		t.Fatalf("header not materialized: %v", err)
	}
	if header.CreatedAt != 1700000060 {
		t.Fatalf("event timestamp not threaded through: %d", header.CreatedAt)
	}
	if len(notifier.events) != 2 {
		t.Fatalf("notifier must see every applied event, got %d", len(notifier.events))
	}
}

func TestApplyRejectsUnknownEventType(t *testing.T) {
	dispatcher, _, notifier := newTestDispatcher(t)

	err := dispatcher.Apply(context.Background(), textdao.Event{Type: "Bogus"})
	if err == nil {
		t.Fatalf("unknown event type must fail")
	}
	if len(notifier.events) != 0 {
		t.Fatalf("failed event must not be notified")
	}
}

func TestApplyRejectsMismatchedPayload(t *testing.T) {
	dispatcher, _, _ := newTestDispatcher(t)

	err := dispatcher.Apply(context.Background(), textdao.Event{
		Type:    textdao.TypeProposed,
		Payload: textdao.Voted{ProposalID: 1},
	})
	if err == nil {
		t.Fatalf("mismatched payload must fail")
	}
}

func TestApplyPropagatesIntegrityViolations(t *testing.T) {
	dispatcher, _, notifier := newTestDispatcher(t)

	// Snapshot for a proposal that was never seen.
	err := dispatcher.Apply(context.Background(), textdao.Event{
		Type:      textdao.TypeProposalSnapped,
		Timestamp: time.Unix(1700000000, 0),
		Payload:   textdao.ProposalSnapped{ProposalID: 9, Epoch: 1},
	})
	if err == nil {
		t.Fatalf("integrity violation must propagate so the feed halts")
	}
	if len(notifier.events) != 0 {
		t.Fatalf("failed event must not be notified")
	}
}
