package table

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashicorp-forge/quipdoc/pkg/docerr"
	"github.com/hashicorp-forge/quipdoc/pkg/fragment"
	"github.com/hashicorp-forge/quipdoc/pkg/workspace"
)

// stubEditor records submissions and answers with a canned ack or error.
type stubEditor struct {
	updates []workspace.CellUpdate
	inserts []workspace.RowInsert
	removes []workspace.RowRemove

	ack *workspace.Ack
	err error
}

var _ workspace.TableEditor = (*stubEditor)(nil)

func (s *stubEditor) SubmitCellUpdate(_ context.Context, u *workspace.CellUpdate) (*workspace.Ack, error) {
	s.updates = append(s.updates, *u)
	return s.ack, s.err
}

func (s *stubEditor) SubmitRowInsert(_ context.Context, i *workspace.RowInsert) (*workspace.Ack, error) {
	s.inserts = append(s.inserts, *i)
	return s.ack, s.err
}

func (s *stubEditor) SubmitRowRemove(_ context.Context, r *workspace.RowRemove) (*workspace.Ack, error) {
	s.removes = append(s.removes, *r)
	return s.ack, s.err
}

func (s *stubEditor) calls() int {
	return len(s.updates) + len(s.inserts) + len(s.removes)
}

func parseOne(t *testing.T, body string, editor workspace.TableEditor) *Table {
	t.Helper()
	tables := Parse("doc1", body, editor, WithLogger(hclog.NewNullLogger()))
	require.Len(t, tables, 1)
	return tables[0]
}

func headerTable(t *testing.T, editor workspace.TableEditor) *Table {
	t.Helper()
	body, err := fragment.BuildTableWithHeaders([]string{"列A", "列B"}, [][]string{{"1", "2"}, {"3", "4"}})
	require.NoError(t, err)
	return parseOne(t, body, editor)
}

func TestParseBuiltTable(t *testing.T) {
	for _, dims := range [][2]int{{1, 1}, {1, 5}, {3, 2}, {7, 7}, {20, 1}} {
		r, c := dims[0], dims[1]
		t.Run(fmt.Sprintf("%dx%d", r, c), func(t *testing.T) {
			body, err := fragment.BuildTable(r, c)
			require.NoError(t, err)

			tbl := parseOne(t, body, nil)
			assert.Equal(t, r, tbl.RowCount())
			assert.Equal(t, c, tbl.ColumnCount())
			assert.False(t, tbl.HasHeader())
			for i := 0; i < r; i++ {
				for j := 0; j < c; j++ {
					v, err := tbl.CellValue(i, j)
					require.NoError(t, err)
					assert.Empty(t, v)
				}
			}
		})
	}
}

func TestParseDocumentTables(t *testing.T) {
	body := `<h1 id="h">Intro</h1>` +
		`<table id="t1"><thead><tr><th id="x">A</th><th id="y">B</th></tr></thead>` +
		`<tbody><tr id="r1"><td id="c1"><span>a &amp; b</span><br/></td><td id="c2"> spaced </td></tr>` +
		`<tr id="r2"><td id="c3">short</td></tr></tbody></table>` +
		`<p>between</p>` +
		`<table id="t2"><tbody><tr><td>only</td></tr></tbody></table>`

	tables := Parse("doc1", body, nil)
	require.Len(t, tables, 2)

	t1 := tables[0]
	assert.Equal(t, "t1", t1.ID())
	assert.Equal(t, "doc1", t1.DocumentID())
	assert.True(t, t1.HasHeader())
	assert.Equal(t, 2, t1.RowCount())
	assert.Equal(t, 2, t1.ColumnCount())

	v, err := t1.CellValue(0, 0)
	require.NoError(t, err)
	assert.Equal(t, "a & b", v)

	v, err = t1.CellValue(0, 1)
	require.NoError(t, err)
	assert.Equal(t, " spaced ", v)

	v, err = t1.CellValue(1, 1)
	require.NoError(t, err)
	assert.Empty(t, v, "short rows are padded")

	row, err := t1.Row(0)
	require.NoError(t, err)
	assert.Equal(t, "r1", row.ID)
	assert.Equal(t, "c2", row.Cells[1].ID)

	h, err := t1.ColumnHeader(1)
	require.NoError(t, err)
	assert.Equal(t, "B", h)

	t2 := tables[1]
	assert.Equal(t, "t2", t2.ID())
	assert.Equal(t, [][]string{{"only"}}, t2.Values())

	assert.Empty(t, Parse("doc1", "<p>no tables</p>", nil))
	assert.Nil(t, ParseByID("doc1", body, "t3", nil))
	assert.NotNil(t, ParseByID("doc1", body, "t2", nil))
}

func TestHeaderSemantics(t *testing.T) {
	editor := &stubEditor{}
	tbl := headerTable(t, editor)

	assert.Equal(t, 2, tbl.RowCount())
	v, err := tbl.CellValue(1, 1)
	require.NoError(t, err)
	assert.Equal(t, "4", v)

	h, err := tbl.ColumnHeader(1)
	require.NoError(t, err)
	assert.Equal(t, "列B", h)

	require.NoError(t, tbl.AddRowValues(context.Background(), []string{"5", "6"}))
	assert.Equal(t, 3, tbl.RowCount())
	v, err = tbl.CellValue(2, 0)
	require.NoError(t, err)
	assert.Equal(t, "5", v)

	require.Len(t, editor.inserts, 1)
	assert.Nil(t, editor.inserts[0].BeforeRow)
	assert.Equal(t, []string{"5", "6"}, editor.inserts[0].Values)
}

func TestColumnHeaderWithoutHeaderRow(t *testing.T) {
	tbl := parseOne(t, `<table><tbody><tr><td>name</td><td>age</td></tr><tr><td>x</td><td>1</td></tr></tbody></table>`, nil)

	h, err := tbl.ColumnHeader(1)
	require.NoError(t, err)
	assert.Equal(t, "age", h)

	_, err = tbl.ColumnHeader(2)
	assert.ErrorIs(t, err, docerr.ErrIndexOutOfRange)
}

func TestCellValueBounds(t *testing.T) {
	tbl := headerTable(t, nil)

	for _, rc := range [][2]int{{-1, 0}, {2, 0}, {0, -1}, {0, 2}} {
		_, err := tbl.CellValue(rc[0], rc[1])
		assert.ErrorIs(t, err, docerr.ErrIndexOutOfRange, "cell %v", rc)
	}
}

func TestUpdateCellValue(t *testing.T) {
	values := []string{
		"plain",
		"a & b",
		"<script>alert(1)</script>",
		"x > y",
		"日本語テキスト",
		"🎉🎉",
		"",
	}

	for _, want := range values {
		t.Run(want, func(t *testing.T) {
			editor := &stubEditor{}
			tbl := headerTable(t, editor)
			commits := 0
			tbl.OnCommit(func() { commits++ })

			require.NoError(t, tbl.UpdateCellValue(context.Background(), 0, 1, want))

			got, err := tbl.CellValue(0, 1)
			require.NoError(t, err)
			assert.Equal(t, want, got)
			assert.Equal(t, 1, commits)

			require.Len(t, editor.updates, 1)
			assert.Equal(t, workspace.CellUpdate{DocumentID: "doc1", Row: 0, Column: 1, Value: want}, editor.updates[0])
		})
	}
}

func TestUpdateCellValueValidation(t *testing.T) {
	editor := &stubEditor{}
	tbl := headerTable(t, editor)

	err := tbl.UpdateCellValue(context.Background(), 5, 0, "x")
	assert.ErrorIs(t, err, docerr.ErrIndexOutOfRange)
	err = tbl.UpdateCellValue(context.Background(), 0, 9, "x")
	assert.ErrorIs(t, err, docerr.ErrIndexOutOfRange)
	assert.Zero(t, editor.calls())
}

func TestRemoteRejectionLeavesGridUntouched(t *testing.T) {
	ctx := context.Background()
	rejected := &docerr.RemoteRejectedError{Op: "edit", Code: 400, Message: "Invalid section_id"}
	editor := &stubEditor{err: rejected}
	tbl := headerTable(t, editor)
	before := tbl.Values()
	commits := 0
	tbl.OnCommit(func() { commits++ })
	var failures []error
	tbl.OnFailure(func(err error) { failures = append(failures, err) })

	err := tbl.UpdateCellValue(ctx, 0, 0, "changed")
	assert.ErrorIs(t, err, docerr.ErrRemoteRejected)
	var rr *docerr.RemoteRejectedError
	require.True(t, errors.As(err, &rr))
	assert.Equal(t, "Invalid section_id", rr.Message)

	assert.ErrorIs(t, tbl.AddRow(ctx), docerr.ErrRemoteRejected)
	assert.ErrorIs(t, tbl.InsertRow(ctx, 0, []string{"a", "b"}), docerr.ErrRemoteRejected)
	assert.ErrorIs(t, tbl.RemoveRow(ctx, 0), docerr.ErrRemoteRejected)

	assert.Equal(t, before, tbl.Values())
	assert.Equal(t, 2, tbl.RowCount())
	assert.Zero(t, commits)
	assert.Equal(t, 4, editor.calls())
	require.Len(t, failures, 4)
	for _, f := range failures {
		assert.ErrorIs(t, f, docerr.ErrRemoteRejected)
	}

	// Local validation failures never reach the failure hooks.
	assert.ErrorIs(t, tbl.UpdateCellValue(ctx, 9, 0, "x"), docerr.ErrIndexOutOfRange)
	assert.Len(t, failures, 4)
}

func TestTransportFailureIsClassified(t *testing.T) {
	editor := &stubEditor{err: context.DeadlineExceeded}
	tbl := headerTable(t, editor)

	err := tbl.AddRow(context.Background())
	assert.ErrorIs(t, err, docerr.ErrTransport)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 2, tbl.RowCount())
}

func TestInsertThenRemoveRestoresGrid(t *testing.T) {
	ctx := context.Background()
	body, err := fragment.BuildTableWithHeaders(
		[]string{"a", "b", "c"},
		[][]string{{"1", "2", "3"}, {"4", "5", "6"}, {"7", "8", "9"}},
	)
	require.NoError(t, err)

	for i := 0; i <= 3; i++ {
		t.Run(fmt.Sprintf("index %d", i), func(t *testing.T) {
			editor := &stubEditor{}
			tbl := parseOne(t, body, editor)
			before := tbl.Values()

			require.NoError(t, tbl.InsertRow(ctx, i, []string{"x", "y", "z"}))
			assert.Equal(t, 4, tbl.RowCount())
			v, err := tbl.CellValue(i, 2)
			require.NoError(t, err)
			assert.Equal(t, "z", v)

			require.NoError(t, tbl.RemoveRow(ctx, i))
			assert.Equal(t, before, tbl.Values())

			require.Len(t, editor.inserts, 1)
			require.NotNil(t, editor.inserts[0].BeforeRow)
			assert.Equal(t, i, *editor.inserts[0].BeforeRow)
			require.Len(t, editor.removes, 1)
			assert.Equal(t, i, editor.removes[0].Row)
		})
	}
}

func TestInsertRowValidation(t *testing.T) {
	ctx := context.Background()
	editor := &stubEditor{}
	tbl := headerTable(t, editor)

	assert.ErrorIs(t, tbl.InsertRow(ctx, 3, nil), docerr.ErrIndexOutOfRange)
	assert.ErrorIs(t, tbl.InsertRow(ctx, -1, nil), docerr.ErrIndexOutOfRange)
	assert.ErrorIs(t, tbl.InsertRow(ctx, 0, []string{"only one"}), docerr.ErrRowWidthMismatch)
	assert.ErrorIs(t, tbl.AddRowValues(ctx, []string{"1", "2", "3"}), docerr.ErrRowWidthMismatch)
	assert.ErrorIs(t, tbl.AddRowValues(ctx, nil), docerr.ErrRowWidthMismatch)
	assert.Zero(t, editor.calls())

	require.NoError(t, tbl.InsertRow(ctx, 1, nil))
	assert.Equal(t, [][]string{{"1", "2"}, {"", ""}, {"3", "4"}}, tbl.Values())
	assert.Equal(t, []string{"", ""}, editor.inserts[0].Values)

	require.NoError(t, tbl.AddRow(ctx))
	assert.Equal(t, 4, tbl.RowCount())
	assert.Nil(t, editor.inserts[1].BeforeRow)
}

func TestRemoveLastRowProtected(t *testing.T) {
	editor := &stubEditor{}
	tbl := parseOne(t, `<table id="t"><tbody><tr><td>keep</td></tr></tbody></table>`, editor)

	err := tbl.RemoveRow(context.Background(), 0)
	assert.ErrorIs(t, err, docerr.ErrLastRowProtected)
	assert.True(t, docerr.IsValidation(err))
	assert.Equal(t, 1, tbl.RowCount())
	assert.Zero(t, editor.calls())

	err = tbl.RemoveRow(context.Background(), 3)
	assert.ErrorIs(t, err, docerr.ErrIndexOutOfRange)
}

func TestReconcileWithAckBody(t *testing.T) {
	ctx := context.Background()
	editor := &stubEditor{}
	tbl := parseOne(t, `<table id="t"><tbody><tr id="r1"><td id="c1">a</td></tr></tbody></table>`, editor)

	editor.ack = &workspace.Ack{
		RowCount:    2,
		ColumnCount: 1,
		Body: `<table id="t"><tbody><tr id="r1"><td id="c1">a</td></tr>` +
			`<tr id="r2"><td id="c2"><span>b</span><br/></td></tr></tbody></table>`,
	}
	require.NoError(t, tbl.AddRowValues(ctx, []string{"b"}))

	row, err := tbl.Row(1)
	require.NoError(t, err)
	assert.Equal(t, "r2", row.ID, "row ids come from the acknowledged body")
	assert.Equal(t, "c2", row.Cells[0].ID)
	assert.Equal(t, "b", row.Cells[0].Value)
}

func TestReconcileKeepsLocalValues(t *testing.T) {
	const acked = `<table id="t"><tbody><tr id="r1"><td id="c1">a b</td></tr>` +
		`<tr id="r2"><td id="c2">x</td></tr></tbody></table>`

	tests := []struct {
		name  string
		value string
	}{
		{"padded", "  a  b  "},
		{"carriage return", "a\r\nb"},
		{"tab", "a\tb"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			editor := &stubEditor{}
			tbl := parseOne(t, `<table id="t"><tbody><tr><td>a</td></tr><tr><td>x</td></tr></tbody></table>`, editor)

			// The service normalizes the text it echoes back.
			editor.ack = &workspace.Ack{Body: acked}
			require.NoError(t, tbl.UpdateCellValue(context.Background(), 0, 0, tt.value))

			v, err := tbl.CellValue(0, 0)
			require.NoError(t, err)
			assert.Equal(t, tt.value, v)

			row, err := tbl.Row(0)
			require.NoError(t, err)
			assert.Equal(t, "r1", row.ID)
			assert.Equal(t, "c1", row.Cells[0].ID)
		})
	}
}

func TestReconcileBodyDimensions(t *testing.T) {
	ctx := context.Background()
	editor := &stubEditor{}
	tbl := parseOne(t, `<table id="t"><tbody><tr><td>a</td></tr></tbody></table>`, editor)

	// The body wins over the counts when both are present.
	editor.ack = &workspace.Ack{
		RowCount:    9,
		ColumnCount: 9,
		Body: `<table id="t"><tbody><tr id="r1"><td id="c1">a</td><td id="c2"></td></tr>` +
			`<tr id="r2"><td id="c3">b</td><td id="c4"></td></tr>` +
			`<tr id="r3"><td id="c5"></td><td id="c6"></td></tr></tbody></table>`,
	}
	require.NoError(t, tbl.AddRowValues(ctx, []string{"b"}))
	assert.Equal(t, [][]string{{"a", ""}, {"b", ""}, {"", ""}}, tbl.Values())

	row, err := tbl.Row(2)
	require.NoError(t, err)
	assert.Equal(t, "r3", row.ID)
	assert.Equal(t, "c6", row.Cells[1].ID)

	// A body without the table falls back to the counts.
	editor.ack = &workspace.Ack{RowCount: 2, ColumnCount: 2, Body: `<p>no tables</p>`}
	require.NoError(t, tbl.UpdateCellValue(ctx, 0, 1, "z"))
	assert.Equal(t, [][]string{{"a", "z"}, {"b", ""}}, tbl.Values())
}

func TestReconcileAdoptsAckCounts(t *testing.T) {
	ctx := context.Background()
	editor := &stubEditor{}
	tbl := headerTable(t, editor)

	// The service reports an extra row the local mutation did not produce.
	editor.ack = &workspace.Ack{RowCount: 4, ColumnCount: 2}
	require.NoError(t, tbl.AddRowValues(ctx, []string{"5", "6"}))
	assert.Equal(t, 4, tbl.RowCount())
	v, err := tbl.CellValue(3, 0)
	require.NoError(t, err)
	assert.Empty(t, v)

	// And now fewer columns than expected.
	editor.ack = &workspace.Ack{RowCount: 4, ColumnCount: 1}
	require.NoError(t, tbl.UpdateCellValue(ctx, 0, 0, "z"))
	assert.Equal(t, 1, tbl.ColumnCount())
	h, err := tbl.ColumnHeader(0)
	require.NoError(t, err)
	assert.Equal(t, "列A", h)
	_, err = tbl.ColumnHeader(1)
	assert.ErrorIs(t, err, docerr.ErrIndexOutOfRange)
}

func TestAccessorsReturnCopies(t *testing.T) {
	tbl := headerTable(t, nil)

	row, err := tbl.Row(0)
	require.NoError(t, err)
	row.Cells[0].Value = "mutated"

	vals := tbl.Values()
	vals[1][1] = "mutated"

	h, ok := tbl.Header()
	require.True(t, ok)
	h.Cells[0].Value = "mutated"

	assert.Equal(t, [][]string{{"1", "2"}, {"3", "4"}}, tbl.Values())
	hv, _ := tbl.ColumnHeader(0)
	assert.Equal(t, "列A", hv)
}
