package mock

import (
	"context"
	"fmt"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/hashicorp-forge/quipdoc/internal/htmlutil"
	"github.com/hashicorp-forge/quipdoc/pkg/docerr"
	"github.com/hashicorp-forge/quipdoc/pkg/docid"
	"github.com/hashicorp-forge/quipdoc/pkg/workspace"
)

// ===================================================================
// TableEditor Implementation
// ===================================================================

// SubmitCellUpdate sets the text of one body cell.
func (f *FakeService) SubmitCellUpdate(ctx context.Context, update *workspace.CellUpdate) (*workspace.Ack, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.begin(ctx, OpCellUpdate, update.DocumentID,
		fmt.Sprintf("%s[%d][%d]", update.TableID, update.Row, update.Column))
	if err != nil {
		return nil, err
	}
	tbl, err := f.findTable(doc, update.TableID)
	if err != nil {
		return nil, err
	}

	rows := bodyRows(tbl)
	if update.Row < 0 || update.Row >= len(rows) {
		return nil, f.reject("update-cell", fmt.Sprintf("row %d out of range", update.Row))
	}
	cells := rowCells(rows[update.Row])
	if update.Column < 0 || update.Column >= len(cells) {
		return nil, f.reject("update-cell", fmt.Sprintf("column %d out of range", update.Column))
	}

	setCellText(cells[update.Column], update.Value)
	f.touch(doc)
	return f.ack(doc, tbl), nil
}

// SubmitRowInsert inserts a body row. Values are padded or truncated to the
// table width.
func (f *FakeService) SubmitRowInsert(ctx context.Context, insert *workspace.RowInsert) (*workspace.Ack, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	detail := insert.TableID + "[end]"
	if insert.BeforeRow != nil {
		detail = fmt.Sprintf("%s[%d]", insert.TableID, *insert.BeforeRow)
	}
	doc, err := f.begin(ctx, OpRowInsert, insert.DocumentID, detail)
	if err != nil {
		return nil, err
	}
	tbl, err := f.findTable(doc, insert.TableID)
	if err != nil {
		return nil, err
	}

	rows := bodyRows(tbl)
	at := len(rows)
	if insert.BeforeRow != nil {
		at = *insert.BeforeRow
	}
	if at < 0 || at > len(rows) {
		return nil, f.reject("insert-row", fmt.Sprintf("row %d out of range", at))
	}

	tr := f.newRow(insert.Values, columnCount(tbl))
	switch {
	case at < len(rows):
		rows[at].Parent.InsertBefore(tr, rows[at])
	case len(rows) > 0:
		last := rows[len(rows)-1]
		last.Parent.InsertBefore(tr, last.NextSibling)
	default:
		tbodyOf(tbl).AppendChild(tr)
	}

	f.touch(doc)
	return f.ack(doc, tbl), nil
}

// SubmitRowRemove deletes a body row. The last row cannot be removed.
func (f *FakeService) SubmitRowRemove(ctx context.Context, remove *workspace.RowRemove) (*workspace.Ack, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.begin(ctx, OpRowRemove, remove.DocumentID, fmt.Sprintf("%s[%d]", remove.TableID, remove.Row))
	if err != nil {
		return nil, err
	}
	tbl, err := f.findTable(doc, remove.TableID)
	if err != nil {
		return nil, err
	}

	rows := bodyRows(tbl)
	if remove.Row < 0 || remove.Row >= len(rows) {
		return nil, f.reject("remove-row", fmt.Sprintf("row %d out of range", remove.Row))
	}
	if len(rows) == 1 {
		return nil, f.reject("remove-row", "cannot delete the last row of a table")
	}

	rows[remove.Row].Parent.RemoveChild(rows[remove.Row])
	f.touch(doc)
	return f.ack(doc, tbl), nil
}

func (f *FakeService) findTable(doc *FakeDocument, id string) (*html.Node, error) {
	if id == "" {
		return nil, docerr.TableNotFound(id)
	}
	n := htmlutil.FindElementByID(doc.body, id)
	if n == nil || n.DataAtom != atom.Table {
		return nil, docerr.TableNotFound(id)
	}
	return n, nil
}

func (f *FakeService) ack(doc *FakeDocument, tbl *html.Node) *workspace.Ack {
	ack := &workspace.Ack{
		RowCount:    len(bodyRows(tbl)),
		ColumnCount: columnCount(tbl),
	}
	if f.ackBody {
		ack.Body = doc.HTML()
	}
	return ack
}

func (f *FakeService) newRow(values []string, columns int) *html.Node {
	tr := htmlutil.NewElement(atom.Tr, html.Attribute{Key: "id", Val: f.ids.Next(docid.KindSection)})
	for c := 0; c < columns; c++ {
		td := htmlutil.NewElement(atom.Td, html.Attribute{Key: "id", Val: f.ids.Next(docid.KindSection)})
		value := ""
		if c < len(values) {
			value = values[c]
		}
		setCellText(td, value)
		tr.AppendChild(td)
	}
	return tr
}

// ===================================================================
// DOM helpers
// ===================================================================

// headerRow returns the first row of the table's <thead>, if any.
func headerRow(tbl *html.Node) *html.Node {
	for _, sec := range htmlutil.ChildElements(tbl, "thead") {
		if rows := htmlutil.ChildElements(sec, "tr"); len(rows) > 0 {
			return rows[0]
		}
	}
	return nil
}

// bodyRows returns every row except the header row, in order.
func bodyRows(tbl *html.Node) []*html.Node {
	if tbl == nil {
		return nil
	}
	header := headerRow(tbl)
	var rows []*html.Node
	for _, sec := range htmlutil.ChildElements(tbl) {
		switch sec.Data {
		case "thead", "tbody", "tfoot":
			for _, tr := range htmlutil.ChildElements(sec, "tr") {
				if tr != header {
					rows = append(rows, tr)
				}
			}
		case "tr":
			rows = append(rows, sec)
		}
	}
	return rows
}

func rowCells(tr *html.Node) []*html.Node {
	return htmlutil.ChildElements(tr, "td", "th")
}

func columnCount(tbl *html.Node) int {
	n := 0
	if h := headerRow(tbl); h != nil {
		n = len(rowCells(h))
	}
	for _, tr := range bodyRows(tbl) {
		if c := len(rowCells(tr)); c > n {
			n = c
		}
	}
	return n
}

func tbodyOf(tbl *html.Node) *html.Node {
	if tb := htmlutil.ChildElements(tbl, "tbody"); len(tb) > 0 {
		return tb[0]
	}
	tb := htmlutil.NewElement(atom.Tbody)
	tbl.AppendChild(tb)
	return tb
}

func enclosingTable(n *html.Node) *html.Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.DataAtom == atom.Table {
			return p
		}
	}
	return nil
}

// setCellText replaces the content of a cell with value, using the markup the
// service produces for plain cell text.
func setCellText(cell *html.Node, value string) {
	htmlutil.RemoveChildren(cell)
	if value != "" {
		span := htmlutil.NewElement(atom.Span)
		span.AppendChild(htmlutil.NewText(value))
		cell.AppendChild(span)
	}
	cell.AppendChild(htmlutil.NewElement(atom.Br))
}
