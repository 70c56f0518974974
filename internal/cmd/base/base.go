// Package base holds what every quipdoc command shares.
package base

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"

	"github.com/hashicorp-forge/quipdoc/pkg/docerr"
	"github.com/hashicorp-forge/quipdoc/pkg/editor"
	"github.com/hashicorp-forge/quipdoc/pkg/table"
	"github.com/hashicorp-forge/quipdoc/pkg/workspace"
)

// Command is embedded by every command.
type Command struct {
	Log hclog.Logger
	UI  cli.Ui

	// NewService connects to the document service. It is called at most once
	// per run and only by commands that need the service.
	NewService func() (workspace.Service, error)
}

// Service connects to the document service.
func (c *Command) Service() (workspace.Service, error) {
	if c.NewService == nil {
		return nil, errors.New("no document service configured")
	}
	return c.NewService()
}

// Document connects to the service and opens the document with id.
func (c *Command) Document(id string) (*editor.Document, error) {
	svc, err := c.Service()
	if err != nil {
		return nil, err
	}
	return editor.New(id, svc, editor.WithLogger(c.Log)), nil
}

// Context returns the context commands run under.
func (c *Command) Context() context.Context {
	return context.Background()
}

// Fail reports err on the UI and logs it, returning exit code 1. Validation
// mistakes are reported without the log noise.
func (c *Command) Fail(action string, err error) int {
	if !docerr.IsValidation(err) {
		c.Log.Error(action, "error", err)
	}
	c.UI.Error(fmt.Sprintf("error %s: %v", action, err))
	return 1
}

// FlagSet wraps a flag.FlagSet with help rendering.
type FlagSet struct {
	*flag.FlagSet
}

// NewFlagSet wraps f. Parse errors are returned instead of printed.
func NewFlagSet(f *flag.FlagSet) *FlagSet {
	f.SetOutput(&bytes.Buffer{})
	return &FlagSet{FlagSet: f}
}

// Help renders the options of the flag set.
func (f *FlagSet) Help() string {
	var b strings.Builder
	b.WriteString("\n\nOptions:\n")
	f.VisitAll(func(fl *flag.Flag) {
		fmt.Fprintf(&b, "\n  -%s", fl.Name)
		if name, _ := flag.UnquoteUsage(fl); name != "" {
			fmt.Fprintf(&b, "=<%s>", name)
		}
		if fl.DefValue != "" && fl.DefValue != "false" {
			fmt.Fprintf(&b, " (default: %s)", fl.DefValue)
		}
		_, usage := flag.UnquoteUsage(fl)
		fmt.Fprintf(&b, "\n    %s\n", usage)
	})
	return b.String()
}

// Table resolves a table of doc by id. An empty id selects the only table of
// the document.
func (c *Command) Table(ctx context.Context, doc *editor.Document, id string) (*table.Table, error) {
	if id != "" {
		return doc.TableByID(ctx, id)
	}
	tables, err := doc.Tables(ctx)
	if err != nil {
		return nil, err
	}
	if len(tables) != 1 {
		return nil, fmt.Errorf("document %q has %d tables, select one with -table", doc.ID(), len(tables))
	}
	return tables[0], nil
}
