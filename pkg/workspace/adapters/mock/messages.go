package mock

import (
	"context"
	"fmt"

	"github.com/hashicorp-forge/quipdoc/internal/htmlutil"
	"github.com/hashicorp-forge/quipdoc/pkg/docid"
	"github.com/hashicorp-forge/quipdoc/pkg/workspace"
)

// ===================================================================
// MessagePoster Implementation
// ===================================================================

// SubmitMessage records a message. The first comment on a section opens an
// annotation and later comments on the same section join it; passing an
// annotation id continues that thread.
func (f *FakeService) SubmitMessage(ctx context.Context, req *workspace.MessageRequest) (*workspace.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.begin(ctx, OpMessage, req.DocumentID, req.SectionID+req.AnnotationID)
	if err != nil {
		return nil, err
	}
	if req.SectionID != "" && req.AnnotationID != "" {
		return nil, f.reject("new-message", "section_id and annotation_id cannot both be set")
	}

	msg := &workspace.Message{
		ID:          f.ids.Next(docid.KindMessage),
		AuthorID:    f.userID,
		AuthorName:  f.userName,
		Text:        req.Content,
		CreatedUsec: f.now().UnixMicro(),
		Visible:     true,
	}

	switch {
	case req.SectionID != "":
		if htmlutil.FindElementByID(doc.body, req.SectionID) == nil {
			return nil, f.reject("new-message", fmt.Sprintf("Invalid section_id %q", req.SectionID))
		}
		key := doc.ID + "/" + req.SectionID
		annotationID, ok := f.sectionAnnotations[key]
		if !ok {
			annotationID = f.ids.Next(docid.KindAnnotation)
			f.sectionAnnotations[key] = annotationID
			f.annotations[annotationID] = &annotation{
				documentID: doc.ID,
				sectionIDs: []string{req.SectionID},
			}
		}
		msg.AnnotationID = annotationID
		msg.HighlightSectionIDs = []string{req.SectionID}

	case req.AnnotationID != "":
		a, ok := f.annotations[req.AnnotationID]
		if !ok || a.documentID != doc.ID {
			return nil, f.reject("new-message", fmt.Sprintf("Invalid annotation_id %q", req.AnnotationID))
		}
		msg.AnnotationID = req.AnnotationID
		msg.HighlightSectionIDs = append([]string(nil), a.sectionIDs...)
	}

	f.Messages[doc.ID] = append(f.Messages[doc.ID], msg)
	f.logger.Debug("message posted",
		"document_id", doc.ID,
		"message_id", msg.ID,
		"annotation_id", msg.AnnotationID,
		"frame", req.Frame,
		"silent", req.Silent,
	)

	out := *msg
	return &out, nil
}

// Thread returns the messages of one annotation, oldest first.
func (f *FakeService) Thread(annotationID string) []*workspace.Message {
	f.mu.RLock()
	defer f.mu.RUnlock()

	a, ok := f.annotations[annotationID]
	if !ok {
		return nil
	}
	var out []*workspace.Message
	for _, m := range f.Messages[a.documentID] {
		if m.AnnotationID == annotationID {
			out = append(out, m)
		}
	}
	return out
}
