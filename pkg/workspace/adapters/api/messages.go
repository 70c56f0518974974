package api

import (
	"context"
	"net/url"

	"github.com/hashicorp-forge/quipdoc/pkg/workspace"
)

// ===================================================================
// MessagePoster Implementation
// ===================================================================

// messageResponse is the message object returned by POST /1/messages/new.
type messageResponse struct {
	ID          string `json:"id"`
	AuthorID    string `json:"author_id"`
	AuthorName  string `json:"author_name"`
	Text        string `json:"text"`
	CreatedUsec int64  `json:"created_usec"`
	UpdatedUsec int64  `json:"updated_usec"`
	Visible     bool   `json:"visible"`

	Annotation *annotationRef `json:"annotation,omitempty"`
}

// annotationRef identifies the comment thread a message belongs to.
type annotationRef struct {
	ID                  string   `json:"id"`
	HighlightSectionIDs []string `json:"highlight_section_ids"`
}

func (m *messageResponse) toMessage() *workspace.Message {
	msg := &workspace.Message{
		ID:          m.ID,
		AuthorID:    m.AuthorID,
		AuthorName:  m.AuthorName,
		Text:        m.Text,
		CreatedUsec: m.CreatedUsec,
		Visible:     m.Visible,
	}
	if m.Annotation != nil {
		msg.AnnotationID = m.Annotation.ID
		msg.HighlightSectionIDs = m.Annotation.HighlightSectionIDs
	}
	return msg
}

// SubmitMessage posts a comment to a document.
func (p *Provider) SubmitMessage(ctx context.Context, req *workspace.MessageRequest) (*workspace.Message, error) {
	form := url.Values{}
	form.Set("thread_id", req.DocumentID)
	form.Set("content", req.Content)
	if req.Frame != workspace.FrameNone {
		form.Set("frame", string(req.Frame))
	}
	if req.SectionID != "" {
		form.Set("section_id", req.SectionID)
	}
	if req.AnnotationID != "" {
		form.Set("annotation_id", req.AnnotationID)
	}
	if req.Silent {
		form.Set("silent", "true")
	}

	var resp messageResponse
	if err := p.doRequest(ctx, "post message", "/1/messages/new", req.DocumentID, form, &resp); err != nil {
		return nil, err
	}
	return resp.toMessage(), nil
}
