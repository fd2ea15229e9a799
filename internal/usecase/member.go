package usecase

import (
	"context"

	"github.com/pkg/errors"

	"github.com/textdao/indexer"
	"github.com/textdao/indexer/ident"
	"github.com/textdao/indexer/internal/domain"
)

// HandleMemberAdded creates a member and registers its metadata document.
func (p *Projection) HandleMemberAdded(ctx context.Context, ev textdao.MemberAdded) error {
	ctx, span := tracer.Start(ctx, "Projection.MemberAdded")
	defer span.End()

	member := domain.Member{
		ID:          ident.Member(ev.MemberID),
		Addr:        ident.Rep(ev.Addr),
		MetadataCID: ev.MetadataCID,
	}
	if err := p.repos.Members.Create(ctx, member); err != nil {
		span.RecordError(err)
		return errors.Wrap(err, "create member")
	}

	p.registerContent(ev.MetadataCID, ContentMember, member.ID)
	return nil
}

// HandleMemberUpdated updates an existing member's address and re-registers
// the (possibly new) metadata document.
func (p *Projection) HandleMemberUpdated(ctx context.Context, ev textdao.MemberUpdated) error {
	ctx, span := tracer.Start(ctx, "Projection.MemberUpdated")
	defer span.End()

	member, err := p.repos.Members.Get(ctx, ident.Member(ev.MemberID))
	if err != nil {
		span.RecordError(err)
		return err
	}

	member.Addr = ident.Rep(ev.Addr)
	if member.MetadataCID != ev.MetadataCID {
		member.MetadataCID = ev.MetadataCID
		member.Name = nil
		member.Image = nil
		member.Bio = nil
	}

	if err := p.repos.Members.Put(ctx, member); err != nil {
		span.RecordError(err)
		return errors.Wrap(err, "store member")
	}

	p.registerContent(ev.MetadataCID, ContentMember, member.ID)
	return nil
}

// HandleMemberRemoved deletes the member; removing an unknown member fails.
func (p *Projection) HandleMemberRemoved(ctx context.Context, ev textdao.MemberRemoved) error {
	ctx, span := tracer.Start(ctx, "Projection.MemberRemoved")
	defer span.End()

	if err := p.repos.Members.Delete(ctx, ident.Member(ev.MemberID)); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}
