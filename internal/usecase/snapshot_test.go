package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/textdao/indexer"
	"github.com/textdao/indexer/internal/domain"
)

func seedProposalWithForks(t *testing.T, projection *Projection) {
	t.Helper()
	ctx := context.Background()
	if err := projection.HandleProposed(ctx, textdao.Proposed{
		ProposalID: 100, Proposer: repA,
		CreatedAt: uint64(t0.Unix()), ExpirationTime: uint64(t0.Add(24 * time.Hour).Unix()),
		SnapInterval: 3600,
	}); err != nil {
		t.Fatalf("seed proposal: %v", err)
	}
	for headerID := uint64(1); headerID <= 3; headerID++ {
		if err := projection.HandleHeaderCreated(ctx, textdao.HeaderCreated{
			ProposalID: 100, HeaderID: headerID, MetadataCID: "QmHeader",
		}, t0); err != nil {
			t.Fatalf("seed header %d: %v", headerID, err)
		}
	}
	for commandID := uint64(1); commandID <= 2; commandID++ {
		if err := projection.HandleCommandCreated(ctx, textdao.CommandCreated{
			ProposalID: 100, CommandID: commandID,
			Actions: []textdao.EventAction{{FuncSig: "setText(uint256,string)"}},
		}, t0); err != nil {
			t.Fatalf("seed command %d: %v", commandID, err)
		}
	}
}

func TestProposalSnappedRanksSlotsByPosition(t *testing.T) {
	projection, mem, _ := newTestProjection(t)
	ctx := context.Background()
	seedProposalWithForks(t, projection)

	err := projection.HandleProposalSnapped(ctx, textdao.ProposalSnapped{
		ProposalID:    100,
		Epoch:         1700003600,
		TopHeaderIDs:  []uint64{3, 1, 2},
		TopCommandIDs: []uint64{2, 1},
	}, t0.Add(time.Hour))
	if err != nil {
		t.Fatalf("snapped: %v", err)
	}

	slots, err := mem.Snapshots().ListTopHeaders(ctx, "100", 1700003600)
	if err != nil {
		t.Fatalf("list top headers: %v", err)
	}
	if len(slots) != 3 {
		t.Fatalf("expected 3 slots, got %d", len(slots))
	}
	wantHeaders := []string{"header-100-3", "header-100-1", "header-100-2"}
	for rank, slot := range slots {
		if slot.Rank != rank || slot.HeaderKey != wantHeaders[rank] {
			t.Fatalf("rank %d: got %+v, want header %s", rank, slot, wantHeaders[rank])
		}
	}

	proposal, _ := mem.Proposals().Get(ctx, "100")
	if len(proposal.TopHeaders) != 3 || proposal.TopHeaders[0] != "top-header-100-1700003600-0" {
		t.Fatalf("currentTop headers wrong: %v", proposal.TopHeaders)
	}
	if len(proposal.TopCommands) != 2 || proposal.TopCommands[0] != "top-command-100-1700003600-0" {
		t.Fatalf("currentTop commands wrong: %v", proposal.TopCommands)
	}
	if len(proposal.SnappedEpochs) != 1 || proposal.SnappedEpochs[0] != 1700003600 {
		t.Fatalf("snapped epochs wrong: %v", proposal.SnappedEpochs)
	}
	if len(proposal.SnappedTimes) != 1 || proposal.SnappedTimes[0] != uint64(t0.Add(time.Hour).Unix()) {
		t.Fatalf("snapped times wrong: %v", proposal.SnappedTimes)
	}
}

func TestProposalSnappedHistoryGrowsInLockstep(t *testing.T) {
	projection, mem, _ := newTestProjection(t)
	ctx := context.Background()
	seedProposalWithForks(t, projection)

	epochs := []uint64{1700003600, 1700007200, 1700010800}
	for i, epoch := range epochs {
		err := projection.HandleProposalSnapped(ctx, textdao.ProposalSnapped{
			ProposalID:   100,
			Epoch:        epoch,
			TopHeaderIDs: []uint64{1, 2},
		}, t0.Add(time.Duration(i+1)*time.Hour))
		if err != nil {
			t.Fatalf("snap %d: %v", i, err)
		}
	}

	proposal, _ := mem.Proposals().Get(ctx, "100")
	if len(proposal.SnappedEpochs) != 3 || len(proposal.SnappedTimes) != 3 {
		t.Fatalf("history must append one pair per snapshot: %v / %v",
			proposal.SnappedEpochs, proposal.SnappedTimes)
	}
	for i, epoch := range epochs {
		if proposal.SnappedEpochs[i] != epoch {
			t.Fatalf("history out of order: %v", proposal.SnappedEpochs)
		}
	}
	// currentTop points at the latest epoch only.
	if proposal.TopHeaders[0] != "top-header-100-1700010800-0" {
		t.Fatalf("currentTop not replaced: %v", proposal.TopHeaders)
	}
}

func TestProposalSnappedReplaySameEpochKeepsSlotCount(t *testing.T) {
	projection, mem, _ := newTestProjection(t)
	ctx := context.Background()
	seedProposalWithForks(t, projection)

	ev := textdao.ProposalSnapped{
		ProposalID: 100, Epoch: 1700003600, TopHeaderIDs: []uint64{1, 2, 3},
	}
	if err := projection.HandleProposalSnapped(ctx, ev, t0); err != nil {
		t.Fatalf("first snap: %v", err)
	}
	if err := projection.HandleProposalSnapped(ctx, ev, t0); err != nil {
		t.Fatalf("replayed snap: %v", err)
	}

	slots, _ := mem.Snapshots().ListTopHeaders(ctx, "100", 1700003600)
	if len(slots) != 3 {
		t.Fatalf("slot upsert must not multiply slots, got %d", len(slots))
	}
}

func TestProposalSnappedWithoutProposalFails(t *testing.T) {
	projection, _, _ := newTestProjection(t)

	err := projection.HandleProposalSnapped(context.Background(), textdao.ProposalSnapped{
		ProposalID: 999, Epoch: 1, TopHeaderIDs: []uint64{1},
	}, t0)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("snapshot of unknown proposal must fail, got %v", err)
	}
}

func TestProposalTalliedSetsApprovedIDs(t *testing.T) {
	projection, mem, _ := newTestProjection(t)
	ctx := context.Background()
	seedProposalWithForks(t, projection)

	err := projection.HandleProposalTallied(ctx, textdao.ProposalTallied{
		ProposalID: 100, ApprovedHeaderID: 1, ApprovedCommandID: 2,
	})
	if err != nil {
		t.Fatalf("tallied: %v", err)
	}

	proposal, _ := mem.Proposals().Get(ctx, "100")
	if proposal.ApprovedHeaderID == nil || *proposal.ApprovedHeaderID != 1 {
		t.Fatalf("approvedHeaderId not set")
	}
	if proposal.ApprovedCommandID == nil || *proposal.ApprovedCommandID != 2 {
		t.Fatalf("approvedCommandId not set")
	}
}

func TestProposalTalliedWithTieExtendsWithoutHistory(t *testing.T) {
	projection, mem, _ := newTestProjection(t)
	ctx := context.Background()
	seedProposalWithForks(t, projection)

	if err := projection.HandleProposalSnapped(ctx, textdao.ProposalSnapped{
		ProposalID: 100, Epoch: 1700003600, TopHeaderIDs: []uint64{1, 2},
	}, t0.Add(time.Hour)); err != nil {
		t.Fatalf("snap: %v", err)
	}

	extended := uint64(t0.Add(48 * time.Hour).Unix())
	err := projection.HandleProposalTalliedWithTie(ctx, textdao.ProposalTalliedWithTie{
		ProposalID:             100,
		Epoch:                  1700007200,
		TopHeaderIDs:           []uint64{2, 1},
		ExtendedExpirationTime: extended,
	})
	if err != nil {
		t.Fatalf("tie: %v", err)
	}

	proposal, _ := mem.Proposals().Get(ctx, "100")
	if proposal.ExpirationTime == nil || *proposal.ExpirationTime != extended {
		t.Fatalf("expirationTime not extended")
	}
	// The tie replaces the candidate set but never appends to the snapshot
	// history; only ProposalSnapped does that.
	if len(proposal.SnappedEpochs) != 1 || len(proposal.SnappedTimes) != 1 {
		t.Fatalf("tie must not append history: %v", proposal.SnappedEpochs)
	}
	if proposal.TopHeaders[0] != "top-header-100-1700007200-0" {
		t.Fatalf("tie must replace currentTop: %v", proposal.TopHeaders)
	}
	if proposal.ApprovedHeaderID != nil {
		t.Fatalf("tie must not approve anything")
	}

	slots, _ := mem.Snapshots().ListTopHeaders(ctx, "100", 1700007200)
	if len(slots) != 2 || slots[0].HeaderKey != "header-100-2" {
		t.Fatalf("tie slots wrong: %+v", slots)
	}
}
