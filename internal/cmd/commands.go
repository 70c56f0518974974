package cmd

import (
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"

	"github.com/hashicorp-forge/quipdoc/internal/cmd/base"
	"github.com/hashicorp-forge/quipdoc/internal/cmd/commands/cell"
	"github.com/hashicorp-forge/quipdoc/internal/cmd/commands/comment"
	"github.com/hashicorp-forge/quipdoc/internal/cmd/commands/create"
	"github.com/hashicorp-forge/quipdoc/internal/cmd/commands/edit"
	"github.com/hashicorp-forge/quipdoc/internal/cmd/commands/row"
	"github.com/hashicorp-forge/quipdoc/internal/cmd/commands/sections"
	"github.com/hashicorp-forge/quipdoc/internal/cmd/commands/tables"
	"github.com/hashicorp-forge/quipdoc/internal/cmd/commands/version"
	"github.com/hashicorp-forge/quipdoc/pkg/workspace"
)

// Commands is the mapping of all available quipdoc commands.
var Commands map[string]cli.CommandFactory

func initCommands(log hclog.Logger, ui cli.Ui, newService func() (workspace.Service, error)) {
	b := &base.Command{
		Log:        log,
		UI:         ui,
		NewService: newService,
	}

	Commands = map[string]cli.CommandFactory{
		"sections": func() (cli.Command, error) {
			return &sections.Command{Command: b}, nil
		},
		"tables": func() (cli.Command, error) {
			return &tables.Command{Command: b}, nil
		},
		"edit": func() (cli.Command, error) {
			return &edit.Command{Command: b, Stdin: os.Stdin}, nil
		},
		"cell": func() (cli.Command, error) {
			return &cell.Command{Command: b}, nil
		},
		"row": func() (cli.Command, error) {
			return &row.Command{Command: b}, nil
		},
		"row add": func() (cli.Command, error) {
			return &row.AddCommand{Command: b}, nil
		},
		"row remove": func() (cli.Command, error) {
			return &row.RemoveCommand{Command: b}, nil
		},
		"comment": func() (cli.Command, error) {
			return &comment.Command{Command: b}, nil
		},
		"create": func() (cli.Command, error) {
			return &create.Command{Command: b}, nil
		},
		"version": func() (cli.Command, error) {
			return &version.Command{Command: b}, nil
		},
	}
}
