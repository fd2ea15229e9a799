package usecase

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/textdao/indexer"
	"github.com/textdao/indexer/internal/infrastructure/repository"
)

var (
	repA = common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	repB = common.HexToAddress("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
	repC = common.HexToAddress("0xcccccccccccccccccccccccccccccccccccccccc")

	t0 = time.Unix(1700000000, 0)
)

// --- mocks ---

type registration struct {
	cid      string
	kind     ContentKind
	entityID string
}

type recordingRegistrar struct {
	regs []registration
}

func (r *recordingRegistrar) Register(cid string, kind ContentKind, entityID string) {
	r.regs = append(r.regs, registration{cid: cid, kind: kind, entityID: entityID})
}

func newTestProjection(t *testing.T) (*Projection, *repository.Memory, *recordingRegistrar) {
	t.Helper()
	mem := repository.NewMemory()
	registrar := &recordingRegistrar{}
	projection := NewProjection(Repositories{
		Proposals: mem.Proposals(),
		Headers:   mem.Headers(),
		Commands:  mem.Commands(),
		Actions:   mem.Actions(),
		Votes:     mem.Votes(),
		Snapshots: mem.Snapshots(),
		Texts:     mem.Texts(),
		Members:   mem.Members(),
		Config:    mem.Config(),
	}, registrar, slog.Default())
	return projection, mem, registrar
}

func TestRepresentativesAssignedCreatesAndReplaces(t *testing.T) {
	projection, mem, _ := newTestProjection(t)
	ctx := context.Background()

	err := projection.HandleRepresentativesAssigned(ctx, textdao.RepresentativesAssigned{
		ProposalID: 100,
		Reps:       []common.Address{repA, repB},
	})
	if err != nil {
		t.Fatalf("assign reps: %v", err)
	}

	proposal, err := mem.Proposals().Get(ctx, "100")
	if err != nil {
		t.Fatalf("proposal not created: %v", err)
	}
	if len(proposal.Reps) != 2 {
		t.Fatalf("expected 2 reps, got %d", len(proposal.Reps))
	}

	// A later assignment replaces, never merges.
	err = projection.HandleRepresentativesAssigned(ctx, textdao.RepresentativesAssigned{
		ProposalID: 100,
		Reps:       []common.Address{repC},
	})
	if err != nil {
		t.Fatalf("reassign reps: %v", err)
	}
	proposal, _ = mem.Proposals().Get(ctx, "100")
	if len(proposal.Reps) != 1 {
		t.Fatalf("expected reps replaced wholesale, got %v", proposal.Reps)
	}
}

func TestProposedFillsMetadata(t *testing.T) {
	projection, mem, _ := newTestProjection(t)
	ctx := context.Background()

	err := projection.HandleProposed(ctx, textdao.Proposed{
		ProposalID:     100,
		Proposer:       repA,
		CreatedAt:      1700000000,
		ExpirationTime: 1700600000,
		SnapInterval:   3600,
	})
	if err != nil {
		t.Fatalf("proposed: %v", err)
	}

	proposal, err := mem.Proposals().Get(ctx, "100")
	if err != nil {
		t.Fatalf("proposal not created: %v", err)
	}
	if proposal.Proposer == nil || *proposal.Proposer != "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa" {
		t.Fatalf("proposer not set: %v", proposal.Proposer)
	}
	if proposal.ExpirationTime == nil || *proposal.ExpirationTime != 1700600000 {
		t.Fatalf("expirationTime not set")
	}
	if proposal.SnapInterval == nil || *proposal.SnapInterval != 3600 {
		t.Fatalf("snapInterval not set")
	}
}

func TestVRFRequestedRecordsRequestID(t *testing.T) {
	projection, mem, _ := newTestProjection(t)
	ctx := context.Background()

	if err := projection.HandleVRFRequested(ctx, textdao.VRFRequested{ProposalID: 5, RequestID: 42}); err != nil {
		t.Fatalf("vrf: %v", err)
	}
	proposal, err := mem.Proposals().Get(ctx, "5")
	if err != nil {
		t.Fatalf("proposal not created by vrf: %v", err)
	}
	if proposal.VRFRequestID == nil || *proposal.VRFRequestID != 42 {
		t.Fatalf("vrfRequestId not recorded")
	}
}

func TestDeliberationConfigUpserts(t *testing.T) {
	projection, mem, _ := newTestProjection(t)
	ctx := context.Background()

	err := projection.HandleDeliberationConfigUpdated(ctx, textdao.DeliberationConfigUpdated{
		ExpiryDuration: 100, SnapInterval: 10, RepsNum: 7, QuorumScore: 3,
	}, t0)
	if err != nil {
		t.Fatalf("config update: %v", err)
	}

	err = projection.HandleDeliberationConfigUpdated(ctx, textdao.DeliberationConfigUpdated{
		ExpiryDuration: 200, SnapInterval: 20, RepsNum: 9, QuorumScore: 5,
	}, t0.Add(time.Hour))
	if err != nil {
		t.Fatalf("second config update: %v", err)
	}

	config, err := mem.Config().Get(ctx)
	if err != nil {
		t.Fatalf("config missing: %v", err)
	}
	if config.ExpiryDuration != 200 || config.RepsNum != 9 {
		t.Fatalf("config not overwritten: %+v", config)
	}
	if config.LastUpdated != uint64(t0.Add(time.Hour).Unix()) {
		t.Fatalf("lastUpdated not tracking latest event")
	}
}
