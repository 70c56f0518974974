package create

import (
	"flag"
	"fmt"
	"strings"

	"github.com/pkg/browser"

	"github.com/hashicorp-forge/quipdoc/internal/cmd/base"
	"github.com/hashicorp-forge/quipdoc/pkg/editor"
	"github.com/hashicorp-forge/quipdoc/pkg/workspace"
)

type Command struct {
	*base.Command

	// OpenURL opens the new document with -open. Defaults to the system
	// browser.
	OpenURL func(url string) error

	flagTitle       string
	flagFormat      string
	flagSpreadsheet bool
	flagMembers     string
	flagOpen        bool
}

func (c *Command) Synopsis() string {
	return "Create a document or spreadsheet"
}

func (c *Command) Help() string {
	return `Usage: quipdoc create [options] [content]

  Creates a new document. Content may be omitted when -title is given.` + c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("create", flag.ContinueOnError))

	f.StringVar(
		&c.flagTitle, "title", "",
		"Document title",
	)
	f.StringVar(
		&c.flagFormat, "format", "html",
		"Content format: html or markdown",
	)
	f.BoolVar(
		&c.flagSpreadsheet, "spreadsheet", false,
		"Create a spreadsheet instead of a document",
	)
	f.StringVar(
		&c.flagMembers, "members", "",
		"Comma-separated folder or user ids to share the document with",
	)
	f.BoolVar(
		&c.flagOpen, "open", false,
		"Open the new document in a browser",
	)

	return f
}

func (c *Command) Run(args []string) int {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	format, err := workspace.ParseFormat(c.flagFormat)
	if err != nil {
		return c.Fail("parsing -format", err)
	}
	req := &workspace.CreateRequest{
		Title:   c.flagTitle,
		Content: strings.Join(f.Args(), " "),
		Format:  format,
		Type:    workspace.TypeDocument,
	}
	if c.flagSpreadsheet {
		req.Type = workspace.TypeSpreadsheet
	}
	if c.flagMembers != "" {
		req.MemberIDs = strings.Split(c.flagMembers, ",")
	}

	svc, err := c.Service()
	if err != nil {
		return c.Fail("connecting to Quip", err)
	}
	doc, err := editor.Create(c.Context(), svc, req, editor.WithLogger(c.Log))
	if err != nil {
		return c.Fail("creating document", err)
	}

	c.UI.Output(doc.ID())

	if c.flagOpen && doc.Link() != "" {
		open := c.OpenURL
		if open == nil {
			open = browser.OpenURL
		}
		if err := open(doc.Link()); err != nil {
			c.UI.Warn(fmt.Sprintf("unable to open %s: %v", doc.Link(), err))
		}
	}
	return 0
}
