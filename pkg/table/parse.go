package table

import (
	"golang.org/x/net/html"

	"github.com/hashicorp-forge/quipdoc/internal/htmlutil"
	"github.com/hashicorp-forge/quipdoc/pkg/workspace"
)

// Parse returns every top-level table in body, in document order. Nested
// tables are not modelled. Rows shorter than the widest row are padded with
// empty cells so the grid is always rectangular.
func Parse(documentID, body string, editor workspace.TableEditor, opts ...Option) []*Table {
	var tables []*Table
	htmlutil.IterNodes(htmlutil.ParseBody(body), func(n *html.Node) bool {
		if n.Type != html.ElementNode || n.Data != "table" {
			return false
		}
		tables = append(tables, newTable(documentID, htmlutil.Attr(n, "id"), parseGrid(n), editor, opts...))
		return true
	})
	return tables
}

// ParseByID returns the table with the given id, or nil.
func ParseByID(documentID, body, id string, editor workspace.TableEditor, opts ...Option) *Table {
	for _, t := range Parse(documentID, body, editor, opts...) {
		if t.id == id {
			return t
		}
	}
	return nil
}

func parseGrid(tableNode *html.Node) grid {
	var g grid

	for _, section := range htmlutil.ChildElements(tableNode) {
		switch section.Data {
		case "thead":
			for _, tr := range htmlutil.ChildElements(section, "tr") {
				if g.header == nil {
					h := parseRow(tr)
					g.header = &h
					continue
				}
				// Extra header rows are treated as data.
				g.rows = append(g.rows, parseRow(tr))
			}
		case "tbody", "tfoot":
			for _, tr := range htmlutil.ChildElements(section, "tr") {
				g.rows = append(g.rows, parseRow(tr))
			}
		case "tr":
			g.rows = append(g.rows, parseRow(section))
		}
	}

	if g.header != nil {
		g.columns = len(g.header.Cells)
	}
	for _, r := range g.rows {
		if len(r.Cells) > g.columns {
			g.columns = len(r.Cells)
		}
	}
	g.resize(len(g.rows), g.columns)
	return g
}

func parseRow(tr *html.Node) Row {
	row := Row{ID: htmlutil.Attr(tr, "id")}
	for _, cell := range htmlutil.ChildElements(tr, "td", "th") {
		row.Cells = append(row.Cells, Cell{
			ID:    htmlutil.Attr(cell, "id"),
			Value: htmlutil.Text(cell),
		})
	}
	return row
}

// resize pads or truncates the grid to rows x columns.
func (g *grid) resize(rows, columns int) {
	if g.header != nil {
		g.header.Cells = fitCells(g.header.Cells, columns)
	}
	if len(g.rows) > rows {
		g.rows = g.rows[:rows]
	}
	for len(g.rows) < rows {
		g.rows = append(g.rows, Row{})
	}
	for i := range g.rows {
		g.rows[i].Cells = fitCells(g.rows[i].Cells, columns)
	}
	g.columns = columns
}

func fitCells(cells []Cell, n int) []Cell {
	if len(cells) > n {
		return cells[:n]
	}
	for len(cells) < n {
		cells = append(cells, Cell{})
	}
	return cells
}
