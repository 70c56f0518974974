package editor

import (
	"context"
	"fmt"

	"github.com/hashicorp-forge/quipdoc/pkg/docerr"
	"github.com/hashicorp-forge/quipdoc/pkg/section"
	"github.com/hashicorp-forge/quipdoc/pkg/workspace"
)

// ApplyLocationEdit submits content at placement. The anchor is checked
// against the latest section parse first, fetching the body if needed. On
// success the document is rebuilt from the body the service returned.
func (d *Document) ApplyLocationEdit(ctx context.Context, content string, format workspace.Format, placement section.Placement) error {
	if placement == nil {
		return docerr.Invalid("location edit", "placement", nil, docerr.ErrInvalidLocationCombination)
	}
	if format == "" {
		format = workspace.FormatHTML
	}

	if err := d.ensureLoaded(ctx); err != nil {
		return err
	}
	if err := placement.Validate(d.sections); err != nil {
		return fmt.Errorf("location edit %s: %w", placement, err)
	}

	d.state = StatePending
	d.logger.Debug("submitting location edit", "placement", placement.String(), "format", format)

	body, err := d.collab.SubmitLocationEdit(ctx, &workspace.LocationEdit{
		DocumentID: d.id,
		Content:    content,
		Format:     format,
		Placement:  placement,
	})
	if err != nil {
		d.state = StateStale
		return fmt.Errorf("location edit %s: %w", placement, docerr.Remote("location edit", err))
	}

	if body == "" {
		// Nothing to rebuild from; read it again on next use.
		d.invalidate()
		return nil
	}
	d.install(body)
	return nil
}

// ApplyEdit is ApplyLocationEdit with the location and optional anchor given
// separately. An empty anchorID means no anchor.
func (d *Document) ApplyEdit(ctx context.Context, content string, format workspace.Format, anchorID string, location section.Location) error {
	placement, err := section.NewPlacement(location, anchorID)
	if err != nil {
		return err
	}
	return d.ApplyLocationEdit(ctx, content, format, placement)
}

// Append adds content to the end of the document.
func (d *Document) Append(ctx context.Context, content string, format workspace.Format) error {
	return d.ApplyLocationEdit(ctx, content, format, section.AtEnd())
}

// Prepend adds content to the start of the document.
func (d *Document) Prepend(ctx context.Context, content string, format workspace.Format) error {
	return d.ApplyLocationEdit(ctx, content, format, section.AtStart())
}

// InsertAfter adds content immediately after section id.
func (d *Document) InsertAfter(ctx context.Context, id, content string, format workspace.Format) error {
	return d.ApplyLocationEdit(ctx, content, format, section.After(id))
}

// InsertBefore adds content immediately before section id.
func (d *Document) InsertBefore(ctx context.Context, id, content string, format workspace.Format) error {
	return d.ApplyLocationEdit(ctx, content, format, section.Before(id))
}

// ReplaceSection replaces section id with content.
func (d *Document) ReplaceSection(ctx context.Context, id, content string, format workspace.Format) error {
	return d.ApplyLocationEdit(ctx, content, format, section.Replacing(id))
}

// DeleteSection removes section id.
func (d *Document) DeleteSection(ctx context.Context, id string) error {
	return d.ApplyLocationEdit(ctx, "", workspace.FormatHTML, section.Deleting(id))
}
