// Package table models the tables of a document body as rectangular grids of
// plain-text cells and performs positional edits on them through a
// workspace.TableEditor.
//
// A Table is the local source of truth for its grid until the caller reads
// tables again from the owning document. Every mutation follows the same
// sequence:
//
//  1. validate the request against the local grid
//  2. compute the grid the mutation would produce
//  3. submit the mutation to the remote editor
//  4. on success, reconcile with the remote acknowledgement and commit
//
// A failed submission leaves the grid exactly as it was and runs the failure
// hooks, since the remote document may or may not have applied the edit.
package table

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/hashicorp-forge/quipdoc/pkg/docerr"
	"github.com/hashicorp-forge/quipdoc/pkg/workspace"
)

// Cell is one cell of a row.
type Cell struct {
	// ID is the remote element id, empty until the cell has been read back
	// from a service body.
	ID    string
	Value string
}

// Row is one row of a table.
type Row struct {
	ID    string
	Cells []Cell
}

// Values returns the cell values of the row.
func (r Row) Values() []string {
	out := make([]string, len(r.Cells))
	for i, c := range r.Cells {
		out[i] = c.Value
	}
	return out
}

func (r Row) clone() Row {
	cells := make([]Cell, len(r.Cells))
	copy(cells, r.Cells)
	return Row{ID: r.ID, Cells: cells}
}

// grid is the mutable part of a Table. Mutations build a new grid and swap it
// in on commit.
type grid struct {
	header  *Row
	rows    []Row
	columns int
}

func (g grid) clone() grid {
	next := grid{columns: g.columns, rows: make([]Row, len(g.rows))}
	if g.header != nil {
		h := g.header.clone()
		next.header = &h
	}
	for i, r := range g.rows {
		next.rows[i] = r.clone()
	}
	return next
}

// Table is a parsed table bound to the editor that mutates it.
type Table struct {
	documentID string
	id         string
	grid       grid

	editor    workspace.TableEditor
	logger    hclog.Logger
	onCommit  []func()
	onFailure []func(error)
}

// Option configures a Table.
type Option func(*Table)

// WithLogger sets the logger used for reconciliation warnings.
func WithLogger(logger hclog.Logger) Option {
	return func(t *Table) {
		if logger != nil {
			t.logger = logger.Named("table")
		}
	}
}

func newTable(documentID, id string, g grid, editor workspace.TableEditor, opts ...Option) *Table {
	t := &Table{
		documentID: documentID,
		id:         id,
		grid:       g,
		editor:     editor,
		logger:     hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// ID returns the table's element id. It is empty for a table parsed from a
// fragment that was never submitted.
func (t *Table) ID() string {
	return t.id
}

// DocumentID returns the id of the document the table belongs to.
func (t *Table) DocumentID() string {
	return t.documentID
}

// RowCount returns the number of body rows. The header row is not counted.
func (t *Table) RowCount() int {
	return len(t.grid.rows)
}

// ColumnCount returns the number of columns.
func (t *Table) ColumnCount() int {
	return t.grid.columns
}

// HasHeader reports whether the table has a separate header row.
func (t *Table) HasHeader() bool {
	return t.grid.header != nil
}

// Header returns a copy of the header row.
func (t *Table) Header() (Row, bool) {
	if t.grid.header == nil {
		return Row{}, false
	}
	return t.grid.header.clone(), true
}

// Row returns a copy of body row i.
func (t *Table) Row(i int) (Row, error) {
	if err := t.checkRow("row", i); err != nil {
		return Row{}, err
	}
	return t.grid.rows[i].clone(), nil
}

// Values returns a copy of the body cell values.
func (t *Table) Values() [][]string {
	out := make([][]string, len(t.grid.rows))
	for i, r := range t.grid.rows {
		out[i] = r.Values()
	}
	return out
}

// CellValue returns the text of the cell at (row, col).
func (t *Table) CellValue(row, col int) (string, error) {
	if err := t.checkRow("cell value", row); err != nil {
		return "", err
	}
	if err := t.checkColumn("cell value", col); err != nil {
		return "", err
	}
	return t.grid.rows[row].Cells[col].Value, nil
}

// ColumnHeader returns the header text of column col. Without a header row,
// the first body row serves as the header.
func (t *Table) ColumnHeader(col int) (string, error) {
	if err := t.checkColumn("column header", col); err != nil {
		return "", err
	}
	if t.grid.header != nil {
		return t.grid.header.Cells[col].Value, nil
	}
	if len(t.grid.rows) == 0 {
		return "", docerr.Invalid("column header", "row", 0, docerr.ErrIndexOutOfRange)
	}
	return t.grid.rows[0].Cells[col].Value, nil
}

// OnCommit registers fn to run after every successful mutation.
func (t *Table) OnCommit(fn func()) {
	t.onCommit = append(t.onCommit, fn)
}

// OnFailure registers fn to run with the error of every mutation the remote
// editor did not acknowledge. Local validation failures do not trigger it.
func (t *Table) OnFailure(fn func(error)) {
	t.onFailure = append(t.onFailure, fn)
}

func (t *Table) fail(err error) error {
	for _, fn := range t.onFailure {
		fn(err)
	}
	return err
}

// UpdateCellValue sets the text of the cell at (row, col).
func (t *Table) UpdateCellValue(ctx context.Context, row, col int, value string) error {
	const op = "update cell"
	if err := t.checkRow(op, row); err != nil {
		return err
	}
	if err := t.checkColumn(op, col); err != nil {
		return err
	}

	next := t.grid.clone()
	next.rows[row].Cells[col].Value = value

	ack, err := t.editor.SubmitCellUpdate(ctx, &workspace.CellUpdate{
		DocumentID: t.documentID,
		TableID:    t.id,
		Row:        row,
		Column:     col,
		Value:      value,
	})
	if err != nil {
		return t.fail(fmt.Errorf("%s (%d, %d) of table %q: %w", op, row, col, t.id, docerr.Remote(op, err)))
	}

	t.commit(op, next, ack)
	return nil
}

// AddRow appends a row of empty cells.
func (t *Table) AddRow(ctx context.Context) error {
	return t.insert(ctx, "add row", nil, nil)
}

// AddRowValues appends a row holding values, one per column.
func (t *Table) AddRowValues(ctx context.Context, values []string) error {
	const op = "add row"
	if values == nil {
		values = []string{}
	}
	if err := t.checkWidth(op, values); err != nil {
		return err
	}
	return t.insert(ctx, op, nil, values)
}

// InsertRow inserts a row so that it ends up at index. Index may equal
// RowCount to append. Nil values produce empty cells.
func (t *Table) InsertRow(ctx context.Context, index int, values []string) error {
	const op = "insert row"
	if index < 0 || index > len(t.grid.rows) {
		return docerr.Invalid(op, "index", index, docerr.ErrIndexOutOfRange)
	}
	if values != nil {
		if err := t.checkWidth(op, values); err != nil {
			return err
		}
	}
	return t.insert(ctx, op, &index, values)
}

func (t *Table) insert(ctx context.Context, op string, before *int, values []string) error {
	if values == nil {
		values = make([]string, t.grid.columns)
	}

	newRow := Row{Cells: make([]Cell, len(values))}
	for i, v := range values {
		newRow.Cells[i].Value = v
	}

	next := t.grid.clone()
	at := len(next.rows)
	if before != nil {
		at = *before
	}
	next.rows = append(next.rows, Row{})
	copy(next.rows[at+1:], next.rows[at:])
	next.rows[at] = newRow

	ack, err := t.editor.SubmitRowInsert(ctx, &workspace.RowInsert{
		DocumentID: t.documentID,
		TableID:    t.id,
		BeforeRow:  before,
		Values:     values,
	})
	if err != nil {
		return t.fail(fmt.Errorf("%s at %d of table %q: %w", op, at, t.id, docerr.Remote(op, err)))
	}

	t.commit(op, next, ack)
	return nil
}

// RemoveRow deletes the body row at index. The last remaining row cannot be
// removed.
func (t *Table) RemoveRow(ctx context.Context, index int) error {
	const op = "remove row"
	if err := t.checkRow(op, index); err != nil {
		return err
	}
	if len(t.grid.rows) == 1 {
		return docerr.Invalid(op, "index", index, docerr.ErrLastRowProtected)
	}

	next := t.grid.clone()
	next.rows = append(next.rows[:index], next.rows[index+1:]...)

	ack, err := t.editor.SubmitRowRemove(ctx, &workspace.RowRemove{
		DocumentID: t.documentID,
		TableID:    t.id,
		Row:        index,
	})
	if err != nil {
		return t.fail(fmt.Errorf("%s %d of table %q: %w", op, index, t.id, docerr.Remote(op, err)))
	}

	t.commit(op, next, ack)
	return nil
}

func (t *Table) checkRow(op string, row int) error {
	if row < 0 || row >= len(t.grid.rows) {
		return docerr.Invalid(op, "row", row, docerr.ErrIndexOutOfRange)
	}
	return nil
}

func (t *Table) checkColumn(op string, col int) error {
	if col < 0 || col >= t.grid.columns {
		return docerr.Invalid(op, "column", col, docerr.ErrIndexOutOfRange)
	}
	return nil
}

func (t *Table) checkWidth(op string, values []string) error {
	if len(values) != t.grid.columns {
		return docerr.Invalid(op, "values", len(values), docerr.ErrRowWidthMismatch)
	}
	return nil
}
