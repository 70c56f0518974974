package cmd

import (
	"bufio"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
	"github.com/spf13/afero"

	"github.com/hashicorp-forge/quipdoc/internal/config"
	"github.com/hashicorp-forge/quipdoc/internal/version"
	"github.com/hashicorp-forge/quipdoc/pkg/workspace"
	"github.com/hashicorp-forge/quipdoc/pkg/workspace/adapters/api"
)

// Main runs the CLI with the given arguments and returns the exit code.
func Main(args []string) int {
	cliName := args[0]

	ui := &cli.BasicUi{
		Reader:      bufio.NewReader(os.Stdin),
		Writer:      os.Stdout,
		ErrorWriter: os.Stderr,
	}

	args, configPath := splitConfigFlag(args)
	fs := afero.NewOsFs()
	if configPath == "" {
		if p := config.DefaultPath(); p != "" {
			if ok, _ := afero.Exists(fs, p); ok {
				configPath = p
			}
		}
	}

	cfg, err := config.Load(fs, configPath)
	if err != nil {
		ui.Error(err.Error())
		return 1
	}

	log := hclog.New(&hclog.LoggerOptions{
		Name:   cliName,
		Level:  cfg.Level(),
		Output: os.Stderr,
	})

	if len(args) == 2 &&
		(args[1] == "-version" ||
			args[1] == "-v") {
		args = []string{cliName, "version"}
	}

	initCommands(log, ui, func() (workspace.Service, error) {
		apiCfg, err := cfg.API()
		if err != nil {
			return nil, err
		}
		return api.NewProvider(apiCfg, log)
	})

	c := &cli.CLI{
		Name:     cliName,
		Args:     args[1:],
		Version:  version.Version,
		Commands: Commands,
	}

	// Run the CLI
	exitCode, err := c.Run()
	if err != nil {
		ui.Error(err.Error())
		return 1
	}

	return exitCode
}

// splitConfigFlag removes a leading -config flag, which applies to every
// command, from args.
func splitConfigFlag(args []string) ([]string, string) {
	if len(args) < 2 {
		return args, ""
	}
	first := strings.TrimPrefix(args[1], "-")
	first = strings.TrimPrefix(first, "-")

	switch {
	case first == "config" && len(args) >= 3:
		return append([]string{args[0]}, args[3:]...), args[2]
	case strings.HasPrefix(first, "config="):
		return append([]string{args[0]}, args[2:]...), strings.TrimPrefix(first, "config=")
	}
	return args, ""
}
