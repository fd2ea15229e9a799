package usecase

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/textdao/indexer/internal/domain"
)

// ContentDelivery carries the resolved bytes for a previously registered
// content id.
type ContentDelivery struct {
	Kind     ContentKind
	EntityID string
	CID      string
	Data     []byte
}

// ApplyContent copies the optional string fields of a resolved document onto
// its entity. It runs on the resolver goroutine, concurrent with event
// processing, so the write is a single cid-guarded update rather than a
// read-modify-write: if the entity moved to a different content id or was
// deleted in between, the delivery falls through without touching the row.
// Content problems are never fatal: a malformed document, a missing field,
// or a stale delivery only produce warnings, and absent fields stay unset.
func (p *Projection) ApplyContent(ctx context.Context, d ContentDelivery) error {
	ctx, span := tracer.Start(ctx, "Projection.ApplyContent")
	defer span.End()

	var obj map[string]any
	if err := json.Unmarshal(d.Data, &obj); err != nil {
		p.logger.WarnContext(ctx, "malformed content document",
			slog.String("cid", d.CID),
			slog.String("error", err.Error()),
		)
		return nil
	}

	var (
		updated bool
		err     error
	)
	switch d.Kind {
	case ContentHeader:
		title := p.stringField(ctx, obj, "title", d.CID)
		body := p.stringField(ctx, obj, "body", d.CID)
		updated, err = p.repos.Headers.PutContent(ctx, d.EntityID, d.CID, title, body)

	case ContentText:
		title := p.stringField(ctx, obj, "title", d.CID)
		body := p.stringField(ctx, obj, "body", d.CID)
		updated, err = p.repos.Texts.PutContent(ctx, d.EntityID, d.CID, title, body)

	case ContentMember:
		name := p.stringField(ctx, obj, "name", d.CID)
		image := p.stringField(ctx, obj, "image", d.CID)
		bio := p.stringField(ctx, obj, "bio", d.CID)
		updated, err = p.repos.Members.PutContent(ctx, d.EntityID, d.CID, name, image, bio)

	default:
		return domain.NotFoundError{Resource: "content kind " + string(d.Kind)}
	}

	if err != nil {
		return errors.Wrapf(err, "apply %s content", d.Kind)
	}
	if !updated {
		p.logger.DebugContext(ctx, "stale content delivery ignored",
			slog.String("entity", d.EntityID), slog.String("cid", d.CID))
	}
	return nil
}

func (p *Projection) stringField(ctx context.Context, obj map[string]any, field, cid string) *string {
	raw, ok := obj[field]
	if !ok {
		p.logger.WarnContext(ctx, "field not found in content document",
			slog.String("field", field),
			slog.String("cid", cid),
		)
		return nil
	}
	s, ok := raw.(string)
	if !ok {
		p.logger.WarnContext(ctx, "content field is not a string",
			slog.String("field", field),
			slog.String("cid", cid),
		)
		return nil
	}
	return &s
}
