package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/hashicorp-forge/quipdoc/pkg/section"
	"github.com/hashicorp-forge/quipdoc/pkg/workspace"
)

// ===================================================================
// BodyFetcher, LocationEditor and DocumentCreator Implementation
// ===================================================================
// All methods use the /1/threads/* endpoints

// threadResponse is returned by GET /1/threads/{id}, edit-document and
// new-document.
type threadResponse struct {
	Thread workspace.DocumentInfo `json:"thread"`
	HTML   string                 `json:"html"`
}

// FetchBody returns the current HTML body of a document.
func (p *Provider) FetchBody(ctx context.Context, documentID string) (string, error) {
	path := fmt.Sprintf("/1/threads/%s", url.PathEscape(documentID))

	var resp threadResponse
	if err := p.doRequest(ctx, "fetch body", path, documentID, nil, &resp); err != nil {
		return "", err
	}
	return resp.HTML, nil
}

// SubmitLocationEdit applies a fragment edit and returns the new body.
func (p *Provider) SubmitLocationEdit(ctx context.Context, edit *workspace.LocationEdit) (string, error) {
	if edit.Placement == nil {
		return "", fmt.Errorf("location edit of %q: missing placement", edit.DocumentID)
	}
	return p.editDocument(ctx, "location edit", edit.DocumentID, edit.Content, edit.Format, edit.Placement)
}

func (p *Provider) editDocument(ctx context.Context, op, documentID, content string, format workspace.Format, placement section.Placement) (string, error) {
	if format == "" {
		format = workspace.FormatHTML
	}

	form := url.Values{}
	form.Set("thread_id", documentID)
	form.Set("format", string(format))
	form.Set("location", strconv.Itoa(placement.Location().Code()))
	if placement.Location() != section.DeleteSection {
		form.Set("content", content)
	}
	if id := placement.AnchorID(); id != "" {
		form.Set("section_id", id)
	}

	var resp threadResponse
	if err := p.doRequest(ctx, op, "/1/threads/edit-document", documentID, form, &resp); err != nil {
		return "", err
	}
	p.logger.Debug("document edited",
		"document_id", documentID,
		"placement", placement.String(),
		"body_bytes", len(resp.HTML),
	)
	return resp.HTML, nil
}

// CreateDocument creates a document or spreadsheet.
func (p *Provider) CreateDocument(ctx context.Context, req *workspace.CreateRequest) (*workspace.DocumentInfo, error) {
	form := url.Values{}
	form.Set("content", req.Content)
	if req.Title != "" {
		form.Set("title", req.Title)
	}
	if req.Format != "" {
		form.Set("format", string(req.Format))
	}
	if req.Type != "" {
		form.Set("type", string(req.Type))
	}
	if len(req.MemberIDs) > 0 {
		form.Set("member_ids", strings.Join(req.MemberIDs, ","))
	}

	var resp threadResponse
	if err := p.doRequest(ctx, "create document", "/1/threads/new-document", "", form, &resp); err != nil {
		return nil, err
	}

	info := resp.Thread
	info.HTML = resp.HTML
	p.logger.Info("document created", "document_id", info.ID, "type", info.Type)
	return &info, nil
}
