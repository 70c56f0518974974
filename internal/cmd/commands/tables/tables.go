package tables

import (
	"flag"
	"fmt"
	"strings"
	"text/tabwriter"

	md "github.com/nao1215/markdown"

	"github.com/hashicorp-forge/quipdoc/internal/cmd/base"
	"github.com/hashicorp-forge/quipdoc/pkg/table"
)

type Command struct {
	*base.Command

	flagTable    string
	flagMarkdown bool
}

func (c *Command) Synopsis() string {
	return "List the tables of a document or print one"
}

func (c *Command) Help() string {
	return `Usage: quipdoc tables [options] <document-id>

  Without -table, lists every table of the document with its dimensions.
  With -table, prints the cells of that table.` + c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("tables", flag.ContinueOnError))

	f.StringVar(
		&c.flagTable, "table", "",
		"Id of the table to print",
	)
	f.BoolVar(
		&c.flagMarkdown, "markdown", false,
		"Print the table as a Markdown table",
	)

	return f
}

func (c *Command) Run(args []string) int {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if f.NArg() != 1 {
		c.UI.Error("expected exactly one document id")
		return 1
	}

	ctx := c.Context()
	doc, err := c.Document(f.Arg(0))
	if err != nil {
		return c.Fail("connecting to Quip", err)
	}

	if c.flagTable == "" {
		tables, err := doc.Tables(ctx)
		if err != nil {
			return c.Fail("reading tables", err)
		}
		var b strings.Builder
		w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tROWS\tCOLUMNS\tHEADER")
		for _, t := range tables {
			fmt.Fprintf(w, "%s\t%d\t%d\t%t\n", t.ID(), t.RowCount(), t.ColumnCount(), t.HasHeader())
		}
		w.Flush()
		c.UI.Output(strings.TrimRight(b.String(), "\n"))
		return 0
	}

	t, err := doc.TableByID(ctx, c.flagTable)
	if err != nil {
		return c.Fail("reading table", err)
	}
	out, err := render(t, c.flagMarkdown)
	if err != nil {
		return c.Fail("rendering table", err)
	}
	c.UI.Output(out)
	return 0
}

func render(t *table.Table, markdown bool) (string, error) {
	header := make([]string, t.ColumnCount())
	for i := range header {
		header[i], _ = t.ColumnHeader(i)
	}

	var b strings.Builder
	if markdown {
		if !t.HasHeader() {
			for i := range header {
				header[i] = columnName(i)
			}
		}
		err := md.NewMarkdown(&b).
			CustomTable(md.TableSet{
				Header: header,
				Rows:   t.Values(),
			}, md.TableOptions{
				AutoWrapText: false,
			}).Build()
		return strings.TrimRight(b.String(), "\n"), err
	}

	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	if t.HasHeader() {
		fmt.Fprintln(w, strings.Join(header, "\t"))
	}
	for _, row := range t.Values() {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	w.Flush()
	return strings.TrimRight(b.String(), "\n"), nil
}

// columnName returns the spreadsheet-style name of column i: A..Z, AA, AB...
func columnName(i int) string {
	name := ""
	for i++; i > 0; i = (i - 1) / 26 {
		name = string(rune('A'+(i-1)%26)) + name
	}
	return name
}
