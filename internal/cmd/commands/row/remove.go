package row

import (
	"flag"
	"fmt"

	"github.com/hashicorp-forge/quipdoc/internal/cmd/base"
)

type RemoveCommand struct {
	*base.Command

	flagTable string
	flagIndex int
}

func (c *RemoveCommand) Synopsis() string {
	return "Remove a row from a table"
}

func (c *RemoveCommand) Help() string {
	return `Usage: quipdoc row remove [options] <document-id>

  Removes the body row at -index. The last row of a table cannot be removed.` + c.Flags().Help()
}

func (c *RemoveCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("row remove", flag.ContinueOnError))

	f.StringVar(
		&c.flagTable, "table", "",
		"Id of the table",
	)
	f.IntVar(
		&c.flagIndex, "index", -1,
		"Index of the row to remove, from 0",
	)

	return f
}

func (c *RemoveCommand) Run(args []string) int {
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
	t, err := c.Table(ctx, doc, c.flagTable)
	if err != nil {
		return c.Fail("finding table", err)
	}
	if err := t.RemoveRow(ctx, c.flagIndex); err != nil {
		return c.Fail("removing row", err)
	}

	c.UI.Info(fmt.Sprintf("Table %s now has %d rows", t.ID(), t.RowCount()))
	return 0
}
