package mock

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/hashicorp-forge/quipdoc/internal/htmlutil"
	"github.com/hashicorp-forge/quipdoc/pkg/docid"
	"github.com/hashicorp-forge/quipdoc/pkg/fragment"
	"github.com/hashicorp-forge/quipdoc/pkg/section"
	"github.com/hashicorp-forge/quipdoc/pkg/workspace"
)

// Dimensions of the table a spreadsheet starts with when created without one.
const (
	defaultSheetRows    = 3
	defaultSheetColumns = 3
)

// ===================================================================
// BodyFetcher Implementation
// ===================================================================

// FetchBody returns the current HTML of a document.
func (f *FakeService) FetchBody(ctx context.Context, documentID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.begin(ctx, OpFetchBody, documentID, "")
	if err != nil {
		return "", err
	}
	return doc.HTML(), nil
}

// ===================================================================
// LocationEditor Implementation
// ===================================================================

// SubmitLocationEdit applies a fragment at the edit's placement and returns
// the resulting body.
func (f *FakeService) SubmitLocationEdit(ctx context.Context, edit *workspace.LocationEdit) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if edit.Placement == nil {
		return "", f.reject("edit-document", "missing location")
	}
	doc, err := f.begin(ctx, OpLocationEdit, edit.DocumentID, edit.Placement.String())
	if err != nil {
		return "", err
	}

	loc := edit.Placement.Location()
	var anchor *html.Node
	if loc.RequiresAnchor() {
		anchor = htmlutil.FindElementByID(doc.body, edit.Placement.AnchorID())
		if anchor == nil || anchor == doc.body {
			return "", f.reject("edit-document", fmt.Sprintf("Invalid section_id %q", edit.Placement.AnchorID()))
		}
	}

	if loc == section.DeleteSection {
		if err := f.deleteSection(anchor); err != nil {
			return "", err
		}
		f.touch(doc)
		return doc.HTML(), nil
	}

	content, err := f.toHTML(edit.Content, edit.Format)
	if err != nil {
		return "", f.reject("edit-document", err.Error())
	}

	// Replacing a cell sets its text rather than inserting markup.
	if loc == section.ReplaceSection && (anchor.DataAtom == atom.Td || anchor.DataAtom == atom.Th) {
		text, err := textOf(content, anchor)
		if err != nil {
			return "", f.reject("edit-document", fmt.Sprintf("invalid content: %v", err))
		}
		setCellText(anchor, text)
		f.touch(doc)
		return doc.HTML(), nil
	}

	parent := doc.body
	if anchor != nil {
		parent = anchor.Parent
	}
	// Content placed after a header row opens the table body.
	afterHeader := false
	if loc == section.AfterSection && anchor.DataAtom == atom.Tr {
		if tbl := enclosingTable(anchor); tbl != nil && anchor == headerRow(tbl) {
			afterHeader = true
			parent = tbodyOf(tbl)
		}
	}
	nodes, err := htmlutil.ParseFragment(content, parent)
	if err != nil {
		return "", f.reject("edit-document", fmt.Sprintf("invalid content: %v", err))
	}
	f.assignFreshIDs(nodes)

	switch loc {
	case section.Append:
		insertAll(doc.body, nodes, nil)
	case section.Prepend:
		insertAll(doc.body, nodes, doc.body.FirstChild)
	case section.AfterSection:
		if afterHeader {
			insertAll(parent, nodes, parent.FirstChild)
		} else {
			insertAll(parent, nodes, anchor.NextSibling)
		}
	case section.BeforeSection:
		insertAll(parent, nodes, anchor)
	case section.ReplaceSection:
		insertAll(parent, nodes, anchor)
		parent.RemoveChild(anchor)
	default:
		return "", f.reject("edit-document", fmt.Sprintf("unsupported location %d", loc.Code()))
	}

	f.touch(doc)
	return doc.HTML(), nil
}

func (f *FakeService) deleteSection(anchor *html.Node) error {
	if anchor.DataAtom == atom.Tr {
		if rows := bodyRows(enclosingTable(anchor)); len(rows) <= 1 {
			return f.reject("edit-document", "cannot delete the last row of a table")
		}
	}
	if anchor.DataAtom == atom.Td || anchor.DataAtom == atom.Th {
		// Deleting a cell clears it; the grid shape is kept.
		setCellText(anchor, "")
		return nil
	}
	anchor.Parent.RemoveChild(anchor)
	return nil
}

func insertAll(parent *html.Node, nodes []*html.Node, before *html.Node) {
	for _, n := range nodes {
		parent.InsertBefore(n, before)
	}
}

// textOf returns the text content of an HTML fragment parsed as the content
// of cell. Whitespace is kept as submitted.
func textOf(content string, cell *html.Node) (string, error) {
	nodes, err := htmlutil.ParseFragment(content, cell)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, n := range nodes {
		b.WriteString(htmlutil.Text(n))
	}
	return b.String(), nil
}

// ===================================================================
// DocumentCreator Implementation
// ===================================================================

// CreateDocument creates a document or spreadsheet.
func (f *FakeService) CreateDocument(ctx context.Context, req *workspace.CreateRequest) (*workspace.DocumentInfo, error) {
	if err := req.Validate(); err != nil {
		return nil, f.reject("new-document", err.Error())
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, err := f.begin(ctx, OpCreate, "", req.Title); err != nil {
		return nil, err
	}

	content, err := f.toHTML(req.Content, req.Format)
	if err != nil {
		return nil, f.reject("new-document", err.Error())
	}

	docType := req.Type
	if docType == "" {
		docType = workspace.TypeDocument
	}

	if docType == workspace.TypeSpreadsheet && !strings.Contains(content, "<table") {
		grid, err := fragment.BuildTable(defaultSheetRows, defaultSheetColumns)
		if err != nil {
			return nil, err
		}
		content += grid
	}

	title := req.Title
	if title != "" && docType == workspace.TypeDocument {
		content = "<h1>" + fragment.EscapeText(title) + "</h1>" + content
	}

	body := htmlutil.ParseBody(content)
	if title == "" {
		title = firstLine(body)
	}

	now := f.now().UnixMicro()
	doc := &FakeDocument{
		ID:          f.ids.Next(docid.KindThread),
		Title:       title,
		Type:        docType,
		CreatedUsec: now,
		UpdatedUsec: now,
		body:        body,
	}
	f.assignMissingIDs(doc.body)
	f.Documents[doc.ID] = doc

	f.logger.Debug("document created", "document_id", doc.ID, "type", docType)

	return &workspace.DocumentInfo{
		ID:          doc.ID,
		Title:       doc.Title,
		Type:        doc.Type,
		Link:        "https://quip.test/" + doc.ID,
		CreatedUsec: doc.CreatedUsec,
		UpdatedUsec: doc.UpdatedUsec,
		HTML:        doc.HTML(),
	}, nil
}

func firstLine(body *html.Node) string {
	for _, el := range htmlutil.ChildElements(body) {
		if text := strings.TrimSpace(htmlutil.Text(el)); text != "" {
			return text
		}
	}
	return "Untitled"
}
