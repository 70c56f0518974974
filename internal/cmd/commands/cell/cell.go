package cell

import (
	"flag"
	"fmt"
	"strings"

	"github.com/hashicorp-forge/quipdoc/internal/cmd/base"
)

type Command struct {
	*base.Command

	flagTable  string
	flagRow    int
	flagColumn int
}

func (c *Command) Synopsis() string {
	return "Set the value of a table cell"
}

func (c *Command) Help() string {
	return `Usage: quipdoc cell [options] <document-id> <value>

  Sets the text of the cell at (-row, -col) of a table. Rows and columns are
  counted from 0 and the header row is not counted. -table may be omitted
  when the document has a single table.` + c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("cell", flag.ContinueOnError))

	f.StringVar(
		&c.flagTable, "table", "",
		"Id of the table",
	)
	f.IntVar(
		&c.flagRow, "row", 0,
		"Row index, from 0",
	)
	f.IntVar(
		&c.flagColumn, "col", 0,
		"Column index, from 0",
	)

	return f
}

func (c *Command) Run(args []string) int {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if f.NArg() < 1 {
		c.UI.Error("expected a document id")
		return 1
	}
	value := strings.Join(f.Args()[1:], " ")

	ctx := c.Context()
	doc, err := c.Document(f.Arg(0))
	if err != nil {
		return c.Fail("connecting to Quip", err)
	}
	t, err := c.Table(ctx, doc, c.flagTable)
	if err != nil {
		return c.Fail("finding table", err)
	}
	if err := t.UpdateCellValue(ctx, c.flagRow, c.flagColumn, value); err != nil {
		return c.Fail("updating cell", err)
	}

	c.UI.Info(fmt.Sprintf("Updated cell (%d, %d) of table %s", c.flagRow, c.flagColumn, t.ID()))
	return 0
}
