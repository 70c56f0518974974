package row

import (
	"flag"
	"fmt"

	"github.com/hashicorp-forge/quipdoc/internal/cmd/base"
)

type AddCommand struct {
	*base.Command

	flagTable string
	flagIndex int
}

func (c *AddCommand) Synopsis() string {
	return "Insert a row into a table"
}

func (c *AddCommand) Help() string {
	return `Usage: quipdoc row add [options] <document-id> [values...]

  Inserts a row holding one value per column, or empty cells when no values
  are given. Without -index the row is appended.` + c.Flags().Help()
}

func (c *AddCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("row add", flag.ContinueOnError))

	f.StringVar(
		&c.flagTable, "table", "",
		"Id of the table",
	)
	f.IntVar(
		&c.flagIndex, "index", -1,
		"Position the new row will occupy; -1 appends",
	)

	return f
}

func (c *AddCommand) Run(args []string) int {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if f.NArg() < 1 {
		c.UI.Error("expected a document id")
		return 1
	}

	var values []string
	if f.NArg() > 1 {
		values = f.Args()[1:]
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

	switch {
	case c.flagIndex >= 0:
		err = t.InsertRow(ctx, c.flagIndex, values)
	case values != nil:
		err = t.AddRowValues(ctx, values)
	default:
		err = t.AddRow(ctx)
	}
	if err != nil {
		return c.Fail("adding row", err)
	}

	c.UI.Info(fmt.Sprintf("Table %s now has %d rows", t.ID(), t.RowCount()))
	return 0
}
