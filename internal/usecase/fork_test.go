package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/textdao/indexer"
	"github.com/textdao/indexer/internal/domain"
)

func TestHeaderCreatedRegistersContent(t *testing.T) {
	projection, mem, registrar := newTestProjection(t)
	ctx := context.Background()

	err := projection.HandleHeaderCreated(ctx, textdao.HeaderCreated{
		ProposalID: 100, HeaderID: 1, MetadataCID: "QmHeader1",
	}, t0)
	if err != nil {
		t.Fatalf("header create: %v", err)
	}

	header, err := mem.Headers().Get(ctx, "header-100-1")
	if err != nil {
		t.Fatalf("header not stored: %v", err)
	}
	if header.MetadataCID != "QmHeader1" || header.CreatedAt != uint64(t0.Unix()) {
		t.Fatalf("header fields wrong: %+v", header)
	}
	if _, err := mem.Proposals().Get(ctx, "100"); err != nil {
		t.Fatalf("owning proposal not created: %v", err)
	}
	if len(registrar.regs) != 1 || registrar.regs[0].cid != "QmHeader1" || registrar.regs[0].kind != ContentHeader {
		t.Fatalf("content not registered: %+v", registrar.regs)
	}
}

func TestHeaderCreatedRejectsDuplicateKey(t *testing.T) {
	projection, mem, _ := newTestProjection(t)
	ctx := context.Background()

	if err := projection.HandleHeaderCreated(ctx, textdao.HeaderCreated{
		ProposalID: 100, HeaderID: 1, MetadataCID: "QmFirst",
	}, t0); err != nil {
		t.Fatalf("first header create: %v", err)
	}

	err := projection.HandleHeaderCreated(ctx, textdao.HeaderCreated{
		ProposalID: 100, HeaderID: 1, MetadataCID: "QmSecond",
	}, t0)
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}

	header, _ := mem.Headers().Get(ctx, "header-100-1")
	if header.MetadataCID != "QmFirst" {
		t.Fatalf("original header mutated by failed create: %+v", header)
	}
}

func TestCommandCreatedStoresActions(t *testing.T) {
	projection, mem, _ := newTestProjection(t)
	ctx := context.Background()

	err := projection.HandleCommandCreated(ctx, textdao.CommandCreated{
		ProposalID: 100, CommandID: 1,
		Actions: []textdao.EventAction{
			{FuncSig: "memberJoin(uint256,(address,string)[])", ABIParams: []byte{0x01}},
			{FuncSig: "setText(uint256,string)", ABIParams: []byte{0x02}},
		},
	}, t0)
	if err != nil {
		t.Fatalf("command create: %v", err)
	}

	actions, err := mem.Actions().ListByCommand(ctx, "command-100-1")
	if err != nil {
		t.Fatalf("list actions: %v", err)
	}
	if len(actions) != 2 {
		t.Fatalf("expected 2 actions, got %d", len(actions))
	}
	if actions[0].ID != "100-1-0" || actions[1].ID != "100-1-1" {
		t.Fatalf("action keys wrong: %s %s", actions[0].ID, actions[1].ID)
	}
	for _, action := range actions {
		if action.Status != domain.ActionProposed {
			t.Fatalf("new action not Proposed: %+v", action)
		}
	}
}

func TestCommandCreatedReplayIsNoop(t *testing.T) {
	projection, mem, _ := newTestProjection(t)
	ctx := context.Background()

	ev := textdao.CommandCreated{
		ProposalID: 100, CommandID: 1,
		Actions: []textdao.EventAction{{FuncSig: "setText(uint256,string)", ABIParams: []byte{0x0a}}},
	}
	if err := projection.HandleCommandCreated(ctx, ev, t0); err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	if err := projection.HandleCommandCreated(ctx, ev, t0); err != nil {
		t.Fatalf("replayed delivery must be a no-op, got %v", err)
	}

	actions, _ := mem.Actions().ListByCommand(ctx, "command-100-1")
	if len(actions) != 1 {
		t.Fatalf("replay duplicated actions: %d", len(actions))
	}
}

func TestCommandCreatedReplayBackfillsMissingActions(t *testing.T) {
	projection, mem, _ := newTestProjection(t)
	ctx := context.Background()

	// A command persisted without its actions, as after a crash between
	// the command write and the action writes.
	if err := mem.Commands().Create(ctx, domain.Command{
		ID: "command-100-1", ProposalID: "100", CommandID: 1, CreatedAt: uint64(t0.Unix()),
	}); err != nil {
		t.Fatalf("seed command: %v", err)
	}

	err := projection.HandleCommandCreated(ctx, textdao.CommandCreated{
		ProposalID: 100, CommandID: 1,
		Actions: []textdao.EventAction{
			{FuncSig: "memberJoin(uint256,(address,string)[])", ABIParams: []byte{0x01}},
			{FuncSig: "setText(uint256,string)", ABIParams: []byte{0x02}},
		},
	}, t0)
	if err != nil {
		t.Fatalf("replay over partial write: %v", err)
	}

	actions, _ := mem.Actions().ListByCommand(ctx, "command-100-1")
	if len(actions) != 2 {
		t.Fatalf("replay must backfill missing actions, got %d", len(actions))
	}
	if actions[0].ID != "100-1-0" || actions[1].ID != "100-1-1" {
		t.Fatalf("action keys wrong: %s %s", actions[0].ID, actions[1].ID)
	}
}
