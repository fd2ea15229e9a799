package usecase

import (
	"context"

	"github.com/pkg/errors"

	"github.com/textdao/indexer"
	"github.com/textdao/indexer/ident"
	"github.com/textdao/indexer/internal/domain"
)

// HandleTextCreated creates a text document and registers its content id for
// resolution. Duplicate creation is an integrity violation.
func (p *Projection) HandleTextCreated(ctx context.Context, ev textdao.TextCreated) error {
	ctx, span := tracer.Start(ctx, "Projection.TextCreated")
	defer span.End()

	text := domain.Text{
		ID:          ident.Text(ev.TextID),
		MetadataCID: ev.MetadataCID,
	}
	if err := p.repos.Texts.Create(ctx, text); err != nil {
		span.RecordError(err)
		return errors.Wrap(err, "create text")
	}

	p.registerContent(ev.MetadataCID, ContentText, text.ID)
	return nil
}

// HandleTextUpdated points an existing text at a new content id. Resolved
// fields from the previous document are dropped so stale content cannot
// outlive its CID.
func (p *Projection) HandleTextUpdated(ctx context.Context, ev textdao.TextUpdated) error {
	ctx, span := tracer.Start(ctx, "Projection.TextUpdated")
	defer span.End()

	text, err := p.repos.Texts.Get(ctx, ident.Text(ev.TextID))
	if err != nil {
		span.RecordError(err)
		return err
	}

	text.MetadataCID = ev.NewMetadataCID
	text.Title = nil
	text.Body = nil

	if err := p.repos.Texts.Put(ctx, text); err != nil {
		span.RecordError(err)
		return errors.Wrap(err, "store text")
	}

	p.registerContent(ev.NewMetadataCID, ContentText, text.ID)
	return nil
}

// HandleTextDeleted removes the text; deleting an unknown text fails.
func (p *Projection) HandleTextDeleted(ctx context.Context, ev textdao.TextDeleted) error {
	ctx, span := tracer.Start(ctx, "Projection.TextDeleted")
	defer span.End()

	if err := p.repos.Texts.Delete(ctx, ident.Text(ev.TextID)); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}
