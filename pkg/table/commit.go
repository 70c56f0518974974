package table

import (
	"github.com/hashicorp-forge/quipdoc/pkg/workspace"
)

// commit installs next as the table's grid after reconciling it with the
// remote acknowledgement, then runs the commit hooks.
func (t *Table) commit(op string, next grid, ack *workspace.Ack) {
	t.grid = t.reconcile(op, next, ack)
	for _, fn := range t.onCommit {
		fn()
	}
}

// reconcile keeps the locally computed cell values and adopts the shape the
// service reported. A fresh body in the ack supplies the dimensions and the
// element ids of rows and cells; otherwise the ack's counts are used.
func (t *Table) reconcile(op string, next grid, ack *workspace.Ack) grid {
	if ack == nil {
		return next
	}

	rows, columns := ack.RowCount, ack.ColumnCount
	var fresh *Table
	if ack.Body != "" && t.id != "" {
		if fresh = ParseByID(t.documentID, ack.Body, t.id, nil); fresh != nil {
			rows, columns = fresh.RowCount(), fresh.ColumnCount()
		} else {
			t.logger.Warn("table missing from acknowledged body",
				"op", op,
				"table_id", t.id,
			)
		}
	}

	if (rows != 0 || columns != 0) && (rows != len(next.rows) || columns != next.columns) {
		t.logger.Warn("acknowledged dimensions differ from local mutation, adopting remote",
			"op", op,
			"table_id", t.id,
			"local_rows", len(next.rows),
			"local_columns", next.columns,
			"remote_rows", rows,
			"remote_columns", columns,
		)
		next.resize(rows, columns)
	}
	if fresh != nil {
		next.adoptIDs(fresh.grid)
	}

	t.logger.Debug("table mutation committed",
		"op", op,
		"table_id", t.id,
		"rows", len(next.rows),
		"columns", next.columns,
	)
	return next
}

// adoptIDs copies row and cell ids from src onto the same positions of g.
func (g *grid) adoptIDs(src grid) {
	if g.header != nil && src.header != nil {
		g.header.adoptIDs(*src.header)
	}
	for i := range g.rows {
		if i < len(src.rows) {
			g.rows[i].adoptIDs(src.rows[i])
		}
	}
}

func (r *Row) adoptIDs(src Row) {
	r.ID = src.ID
	for i := range r.Cells {
		if i < len(src.Cells) {
			r.Cells[i].ID = src.Cells[i].ID
		}
	}
}
