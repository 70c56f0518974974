package api

import (
	"context"
	"fmt"

	"github.com/hashicorp-forge/quipdoc/pkg/docerr"
	"github.com/hashicorp-forge/quipdoc/pkg/fragment"
	"github.com/hashicorp-forge/quipdoc/pkg/section"
	"github.com/hashicorp-forge/quipdoc/pkg/table"
	"github.com/hashicorp-forge/quipdoc/pkg/workspace"
)

// ===================================================================
// TableEditor Implementation
// ===================================================================
// Table mutations resolve positions to element ids against a fresh body
// and are sent as section-anchored edit-document requests.

// SubmitCellUpdate replaces the text of one cell.
func (p *Provider) SubmitCellUpdate(ctx context.Context, u *workspace.CellUpdate) (*workspace.Ack, error) {
	const op = "update cell"
	tbl, err := p.locateTable(ctx, op, u.DocumentID, u.TableID)
	if err != nil {
		return nil, err
	}

	row, err := tbl.Row(u.Row)
	if err != nil {
		return nil, err
	}
	if u.Column < 0 || u.Column >= len(row.Cells) {
		return nil, docerr.Invalid(op, "column", u.Column, docerr.ErrIndexOutOfRange)
	}
	cellID := row.Cells[u.Column].ID
	if cellID == "" {
		return nil, fmt.Errorf("%s of table %q: %w", op, u.TableID, missingID("cell", fmt.Sprintf("%d,%d", u.Row, u.Column)))
	}

	body, err := p.editDocument(ctx, op, u.DocumentID, fragment.EscapeText(u.Value), workspace.FormatHTML, section.Replacing(cellID))
	if err != nil {
		return nil, err
	}
	return ackFrom(u.DocumentID, u.TableID, body), nil
}

// SubmitRowInsert inserts a row next to an existing one.
func (p *Provider) SubmitRowInsert(ctx context.Context, ins *workspace.RowInsert) (*workspace.Ack, error) {
	const op = "insert row"
	tbl, err := p.locateTable(ctx, op, ins.DocumentID, ins.TableID)
	if err != nil {
		return nil, err
	}

	n := tbl.RowCount()
	at := n
	if ins.BeforeRow != nil {
		at = *ins.BeforeRow
	}
	if at < 0 || at > n {
		return nil, docerr.Invalid(op, "index", at, docerr.ErrIndexOutOfRange)
	}

	// Rows go after their predecessor, before the first body row, or after
	// the header when the table has no body rows yet.
	var placement section.Placement
	switch {
	case at > 0:
		prev, _ := tbl.Row(at - 1)
		placement = section.After(prev.ID)
	case n > 0:
		first, _ := tbl.Row(0)
		placement = section.Before(first.ID)
	default:
		header, ok := tbl.Header()
		if !ok {
			return nil, &docerr.RemoteRejectedError{
				Op:      op,
				Message: fmt.Sprintf("table %q has no row to anchor an insert on", ins.TableID),
			}
		}
		placement = section.After(header.ID)
	}
	if placement.AnchorID() == "" {
		return nil, fmt.Errorf("%s at %d of table %q: %w", op, at, ins.TableID, missingID("row", fmt.Sprint(at)))
	}

	body, err := p.editDocument(ctx, op, ins.DocumentID, fragment.BuildRow(ins.Values), workspace.FormatHTML, placement)
	if err != nil {
		return nil, err
	}
	return ackFrom(ins.DocumentID, ins.TableID, body), nil
}

// SubmitRowRemove deletes one body row.
func (p *Provider) SubmitRowRemove(ctx context.Context, rm *workspace.RowRemove) (*workspace.Ack, error) {
	const op = "remove row"
	tbl, err := p.locateTable(ctx, op, rm.DocumentID, rm.TableID)
	if err != nil {
		return nil, err
	}

	row, err := tbl.Row(rm.Row)
	if err != nil {
		return nil, err
	}
	if tbl.RowCount() == 1 {
		return nil, docerr.Invalid(op, "index", rm.Row, docerr.ErrLastRowProtected)
	}
	if row.ID == "" {
		return nil, fmt.Errorf("%s of table %q: %w", op, rm.TableID, missingID("row", fmt.Sprint(rm.Row)))
	}

	body, err := p.editDocument(ctx, op, rm.DocumentID, "", workspace.FormatHTML, section.Deleting(row.ID))
	if err != nil {
		return nil, err
	}
	return ackFrom(rm.DocumentID, rm.TableID, body), nil
}

// locateTable fetches the current body and parses the addressed table.
func (p *Provider) locateTable(ctx context.Context, op, documentID, tableID string) (*table.Table, error) {
	body, err := p.FetchBody(ctx, documentID)
	if err != nil {
		return nil, err
	}
	tbl := table.ParseByID(documentID, body, tableID, nil)
	if tbl == nil {
		return nil, fmt.Errorf("%s: %w", op, docerr.TableNotFound(tableID))
	}
	return tbl, nil
}

// missingID reports a table element the body carries without an id, which
// leaves nothing to anchor the edit on.
func missingID(kind, position string) error {
	return &docerr.NotFoundError{Kind: kind + " at", ID: position, Err: docerr.ErrSectionNotFound}
}

// ackFrom builds an acknowledgement from the body returned by an edit.
func ackFrom(documentID, tableID, body string) *workspace.Ack {
	ack := &workspace.Ack{Body: body}
	if tbl := table.ParseByID(documentID, body, tableID, nil); tbl != nil {
		ack.RowCount = tbl.RowCount()
		ack.ColumnCount = tbl.ColumnCount()
	}
	return ack
}
