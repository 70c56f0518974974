package row

import (
	"github.com/mitchellh/cli"

	"github.com/hashicorp-forge/quipdoc/internal/cmd/base"
)

type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "Add or remove table rows"
}

func (c *Command) Help() string {
	return `Usage: quipdoc row <subcommand> [options] [args]

  This command groups subcommands that add and remove table rows.`
}

func (c *Command) Run(args []string) int {
	return cli.RunResultHelp
}
