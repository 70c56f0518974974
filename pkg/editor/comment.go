package editor

import (
	"context"
	"fmt"

	"github.com/hashicorp-forge/quipdoc/pkg/docerr"
	"github.com/hashicorp-forge/quipdoc/pkg/section"
	"github.com/hashicorp-forge/quipdoc/pkg/workspace"
)

// CommentAnchor says where a comment attaches: nowhere in particular, to a
// section (opening a new annotation thread), or to an existing thread.
type CommentAnchor interface {
	SectionID() string
	AnnotationID() string
	commentAnchor()
}

type unanchoredComment struct{}

func (unanchoredComment) SectionID() string    { return "" }
func (unanchoredComment) AnnotationID() string { return "" }
func (unanchoredComment) commentAnchor()       {}

type sectionComment struct{ id string }

func (a sectionComment) SectionID() string  { return a.id }
func (sectionComment) AnnotationID() string { return "" }
func (sectionComment) commentAnchor()       {}

type threadComment struct{ id string }

func (threadComment) SectionID() string      { return "" }
func (a threadComment) AnnotationID() string { return a.id }
func (threadComment) commentAnchor()         {}

// Unanchored posts to the document conversation.
func Unanchored() CommentAnchor { return unanchoredComment{} }

// OnSection highlights section id and starts a new annotation thread there.
func OnSection(id string) CommentAnchor { return sectionComment{id: id} }

// InThread replies in the existing annotation thread id.
func InThread(id string) CommentAnchor { return threadComment{id: id} }

// NewCommentAnchor builds an anchor from optional ids, where "" means absent.
// Supplying both is an error.
func NewCommentAnchor(sectionID, annotationID string) (CommentAnchor, error) {
	switch {
	case sectionID != "" && annotationID != "":
		return nil, docerr.Invalid("comment", "anchor",
			fmt.Sprintf("section %q and annotation %q", sectionID, annotationID),
			docerr.ErrConflictingAnchor)
	case sectionID != "":
		return OnSection(sectionID), nil
	case annotationID != "":
		return InThread(annotationID), nil
	default:
		return Unanchored(), nil
	}
}

// CommentOption adjusts a posted message.
type CommentOption func(*workspace.MessageRequest)

// WithFrame sets the message frame.
func WithFrame(frame workspace.Frame) CommentOption {
	return func(r *workspace.MessageRequest) {
		r.Frame = frame
	}
}

// Silent suppresses notifications for the message.
func Silent() CommentOption {
	return func(r *workspace.MessageRequest) {
		r.Silent = true
	}
}

// AnnotatedComment posts text anchored by at most one of sectionID and
// annotationID. The returned message carries the annotation id the service
// assigned, which can be passed back to continue the thread.
func (d *Document) AnnotatedComment(ctx context.Context, text, sectionID, annotationID string, opts ...CommentOption) (*workspace.Message, error) {
	anchor, err := NewCommentAnchor(sectionID, annotationID)
	if err != nil {
		return nil, err
	}
	return d.Comment(ctx, text, anchor, opts...)
}

// Comment posts text at anchor.
func (d *Document) Comment(ctx context.Context, text string, anchor CommentAnchor, opts ...CommentOption) (*workspace.Message, error) {
	if anchor == nil {
		anchor = Unanchored()
	}

	req := &workspace.MessageRequest{
		DocumentID:   d.id,
		Content:      text,
		SectionID:    anchor.SectionID(),
		AnnotationID: anchor.AnnotationID(),
	}
	for _, opt := range opts {
		opt(req)
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid comment: %w", err)
	}

	if req.SectionID != "" {
		if err := d.ensureLoaded(ctx); err != nil {
			return nil, err
		}
		if _, err := section.Resolve(d.sections, req.SectionID); err != nil {
			return nil, fmt.Errorf("comment: %w", err)
		}
	}

	msg, err := d.collab.SubmitMessage(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("comment: %w", docerr.Remote("post message", err))
	}
	d.logger.Debug("comment posted",
		"message_id", msg.ID,
		"section_id", req.SectionID,
		"annotation_id", msg.AnnotationID,
	)
	return msg, nil
}
