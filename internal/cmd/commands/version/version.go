package version

import (
	"github.com/hashicorp-forge/quipdoc/internal/cmd/base"
	"github.com/hashicorp-forge/quipdoc/internal/version"
)

type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "Print the version"
}

func (c *Command) Help() string {
	return "Usage: quipdoc version"
}

func (c *Command) Run(args []string) int {
	c.UI.Output("quipdoc " + version.Version)
	return 0
}
