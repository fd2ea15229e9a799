package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/textdao/indexer"
	"github.com/textdao/indexer/internal/domain"
)

func TestApplyContentFillsHeaderFields(t *testing.T) {
	projection, mem, _ := newTestProjection(t)
	ctx := context.Background()

	if err := projection.HandleHeaderCreated(ctx, textdao.HeaderCreated{
		ProposalID: 100, HeaderID: 1, MetadataCID: "QmHeader1",
	}, t0); err != nil {
		t.Fatalf("header create: %v", err)
	}

	err := projection.ApplyContent(ctx, ContentDelivery{
		Kind:     ContentHeader,
		EntityID: "header-100-1",
		CID:      "QmHeader1",
		Data:     []byte(`{"title":"Upgrade treasury policy","body":"Full text here."}`),
	})
	if err != nil {
		t.Fatalf("apply content: %v", err)
	}

	header, _ := mem.Headers().Get(ctx, "header-100-1")
	if header.Title == nil || *header.Title != "Upgrade treasury policy" {
		t.Fatalf("title not applied: %v", header.Title)
	}
	if header.Body == nil || *header.Body != "Full text here." {
		t.Fatalf("body not applied: %v", header.Body)
	}
}

func TestApplyContentMissingFieldsStayUnset(t *testing.T) {
	projection, mem, _ := newTestProjection(t)
	ctx := context.Background()

	if err := projection.HandleHeaderCreated(ctx, textdao.HeaderCreated{
		ProposalID: 100, HeaderID: 1, MetadataCID: "QmHeader1",
	}, t0); err != nil {
		t.Fatalf("header create: %v", err)
	}

	err := projection.ApplyContent(ctx, ContentDelivery{
		Kind:     ContentHeader,
		EntityID: "header-100-1",
		CID:      "QmHeader1",
		Data:     []byte(`{"title":"Only a title"}`),
	})
	if err != nil {
		t.Fatalf("apply content: %v", err)
	}

	header, _ := mem.Headers().Get(ctx, "header-100-1")
	if header.Title == nil {
		t.Fatalf("present field must be applied")
	}
	if header.Body != nil {
		t.Fatalf("absent field must stay unset, got %q", *header.Body)
	}
}

func TestApplyContentMalformedJSONIsNotFatal(t *testing.T) {
	projection, mem, _ := newTestProjection(t)
	ctx := context.Background()

	if err := projection.HandleTextCreated(ctx, textdao.TextCreated{
		TextID: 7, MetadataCID: "QmText7",
	}); err != nil {
		t.Fatalf("text create: %v", err)
	}

	err := projection.ApplyContent(ctx, ContentDelivery{
		Kind:     ContentText,
		EntityID: "7",
		CID:      "QmText7",
		Data:     []byte(`{not json`),
	})
	if err != nil {
		t.Fatalf("malformed content must only warn: %v", err)
	}

	text, _ := mem.Texts().Get(ctx, "7")
	if text.Title != nil || text.Body != nil {
		t.Fatalf("entity must be untouched by malformed content")
	}
}

func TestApplyContentStaleCIDIgnored(t *testing.T) {
	projection, mem, _ := newTestProjection(t)
	ctx := context.Background()

	if err := projection.HandleTextCreated(ctx, textdao.TextCreated{
		TextID: 7, MetadataCID: "QmOld",
	}); err != nil {
		t.Fatalf("text create: %v", err)
	}
	if err := projection.HandleTextUpdated(ctx, textdao.TextUpdated{
		TextID: 7, NewMetadataCID: "QmNew",
	}); err != nil {
		t.Fatalf("text update: %v", err)
	}

	// Resolution of the superseded document must not land.
	err := projection.ApplyContent(ctx, ContentDelivery{
		Kind:     ContentText,
		EntityID: "7",
		CID:      "QmOld",
		Data:     []byte(`{"title":"stale","body":"stale"}`),
	})
	if err != nil {
		t.Fatalf("stale delivery: %v", err)
	}

	text, _ := mem.Texts().Get(ctx, "7")
	if text.Title != nil {
		t.Fatalf("stale content must be ignored, got %q", *text.Title)
	}
	if text.MetadataCID != "QmNew" {
		t.Fatalf("cid regressed: %s", text.MetadataCID)
	}
}

func TestApplyContentLateDeliveryLosesToUpdate(t *testing.T) {
	projection, mem, _ := newTestProjection(t)
	ctx := context.Background()

	if err := projection.HandleTextCreated(ctx, textdao.TextCreated{
		TextID: 7, MetadataCID: "QmOld",
	}); err != nil {
		t.Fatalf("text create: %v", err)
	}
	if err := projection.HandleTextUpdated(ctx, textdao.TextUpdated{
		TextID: 7, NewMetadataCID: "QmNew",
	}); err != nil {
		t.Fatalf("text update: %v", err)
	}

	// A resolution for the old document arriving after the update must
	// not touch the row, and must not keep the new document from landing
	// afterwards.
	if err := projection.ApplyContent(ctx, ContentDelivery{
		Kind: ContentText, EntityID: "7", CID: "QmOld",
		Data: []byte(`{"title":"superseded","body":"superseded"}`),
	}); err != nil {
		t.Fatalf("late delivery: %v", err)
	}

	text, _ := mem.Texts().Get(ctx, "7")
	if text.MetadataCID != "QmNew" {
		t.Fatalf("cid regressed: %s", text.MetadataCID)
	}
	if text.Title != nil {
		t.Fatalf("late delivery must not land, got %q", *text.Title)
	}

	if err := projection.ApplyContent(ctx, ContentDelivery{
		Kind: ContentText, EntityID: "7", CID: "QmNew",
		Data: []byte(`{"title":"current","body":"current"}`),
	}); err != nil {
		t.Fatalf("current delivery: %v", err)
	}
	text, _ = mem.Texts().Get(ctx, "7")
	if text.Title == nil || *text.Title != "current" {
		t.Fatalf("current document must still apply: %v", text.Title)
	}
}

func TestApplyContentAfterDeleteIsNotFatal(t *testing.T) {
	projection, mem, _ := newTestProjection(t)
	ctx := context.Background()

	if err := projection.HandleMemberAdded(ctx, textdao.MemberAdded{
		MemberID: 1, Addr: repA, MetadataCID: "QmMember1",
	}); err != nil {
		t.Fatalf("member add: %v", err)
	}
	if err := projection.HandleMemberRemoved(ctx, textdao.MemberRemoved{MemberID: 1}); err != nil {
		t.Fatalf("member remove: %v", err)
	}

	// The resolver can still hold a delivery for the removed entity.
	if err := projection.ApplyContent(ctx, ContentDelivery{
		Kind: ContentMember, EntityID: "1", CID: "QmMember1",
		Data: []byte(`{"name":"alice"}`),
	}); err != nil {
		t.Fatalf("delivery for removed entity must only warn: %v", err)
	}
	if _, err := mem.Members().Get(ctx, "1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("delivery must not resurrect the entity, got %v", err)
	}
}

func TestTextUpdateDropsResolvedFields(t *testing.T) {
	projection, mem, registrar := newTestProjection(t)
	ctx := context.Background()

	if err := projection.HandleTextCreated(ctx, textdao.TextCreated{
		TextID: 7, MetadataCID: "QmOld",
	}); err != nil {
		t.Fatalf("text create: %v", err)
	}
	if err := projection.ApplyContent(ctx, ContentDelivery{
		Kind: ContentText, EntityID: "7", CID: "QmOld",
		Data: []byte(`{"title":"v1","body":"v1"}`),
	}); err != nil {
		t.Fatalf("apply content: %v", err)
	}

	if err := projection.HandleTextUpdated(ctx, textdao.TextUpdated{
		TextID: 7, NewMetadataCID: "QmNew",
	}); err != nil {
		t.Fatalf("text update: %v", err)
	}

	text, _ := mem.Texts().Get(ctx, "7")
	if text.Title != nil || text.Body != nil {
		t.Fatalf("resolved fields must be dropped on cid change")
	}
	last := registrar.regs[len(registrar.regs)-1]
	if last.cid != "QmNew" || last.kind != ContentText {
		t.Fatalf("new cid not registered: %+v", last)
	}
}

func TestMemberLifecycle(t *testing.T) {
	projection, mem, _ := newTestProjection(t)
	ctx := context.Background()

	if err := projection.HandleMemberAdded(ctx, textdao.MemberAdded{
		MemberID: 1, Addr: repA, MetadataCID: "QmMember1",
	}); err != nil {
		t.Fatalf("member add: %v", err)
	}
	if err := projection.ApplyContent(ctx, ContentDelivery{
		Kind: ContentMember, EntityID: "1", CID: "QmMember1",
		Data: []byte(`{"name":"alice","image":"ipfs://pic","bio":"hello"}`),
	}); err != nil {
		t.Fatalf("apply content: %v", err)
	}

	member, _ := mem.Members().Get(ctx, "1")
	if member.Name == nil || *member.Name != "alice" {
		t.Fatalf("member content not applied: %+v", member)
	}

	// Address change with unchanged cid keeps resolved fields.
	if err := projection.HandleMemberUpdated(ctx, textdao.MemberUpdated{
		MemberID: 1, Addr: repB, MetadataCID: "QmMember1",
	}); err != nil {
		t.Fatalf("member update: %v", err)
	}
	member, _ = mem.Members().Get(ctx, "1")
	if member.Addr != "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb" {
		t.Fatalf("address not updated: %s", member.Addr)
	}
	if member.Name == nil {
		t.Fatalf("unchanged cid must keep resolved fields")
	}

	if err := projection.HandleMemberRemoved(ctx, textdao.MemberRemoved{MemberID: 1}); err != nil {
		t.Fatalf("member remove: %v", err)
	}
	if _, err := mem.Members().Get(ctx, "1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("member must be gone, got %v", err)
	}

	// Removing again is an integrity violation.
	if err := projection.HandleMemberRemoved(ctx, textdao.MemberRemoved{MemberID: 1}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("second removal must fail, got %v", err)
	}
}
