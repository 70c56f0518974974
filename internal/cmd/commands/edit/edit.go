package edit

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/hashicorp-forge/quipdoc/internal/cmd/base"
	"github.com/hashicorp-forge/quipdoc/pkg/section"
	"github.com/hashicorp-forge/quipdoc/pkg/workspace"
)

type Command struct {
	*base.Command

	// Stdin is read when the content argument is "-".
	Stdin io.Reader

	flagLocation string
	flagAnchor   string
	flagFormat   string
}

func (c *Command) Synopsis() string {
	return "Insert, replace or delete content at a location in a document"
}

func (c *Command) Help() string {
	return `Usage: quipdoc edit [options] <document-id> [content]

  Applies a location edit to the document. Content is HTML unless -format is
  markdown; pass "-" to read it from standard input.

  Locations:
    append            add content at the end of the document
    prepend           add content at the start of the document
    after_section     insert content after the -anchor section
    before_section    insert content before the -anchor section
    replace_section   replace the -anchor section with content
    delete_section    delete the -anchor section (no content)` + c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("edit", flag.ContinueOnError))

	f.StringVar(
		&c.flagLocation, "location", "append",
		"Where the content goes, by name or wire code",
	)
	f.StringVar(
		&c.flagAnchor, "anchor", "",
		"Section id the location is relative to",
	)
	f.StringVar(
		&c.flagFormat, "format", "html",
		"Content format: html or markdown",
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

	loc, err := section.ParseLocation(c.flagLocation)
	if err != nil {
		return c.Fail("parsing -location", err)
	}
	format, err := workspace.ParseFormat(c.flagFormat)
	if err != nil {
		return c.Fail("parsing -format", err)
	}
	placement, err := section.NewPlacement(loc, c.flagAnchor)
	if err != nil {
		return c.Fail("building placement", err)
	}

	content := strings.Join(f.Args()[1:], " ")
	if content == "-" && c.Stdin != nil {
		b, err := io.ReadAll(c.Stdin)
		if err != nil {
			return c.Fail("reading standard input", err)
		}
		content = string(b)
	}
	if content == "" && loc != section.DeleteSection {
		c.UI.Error(fmt.Sprintf("%s requires content", loc))
		return 1
	}

	doc, err := c.Document(f.Arg(0))
	if err != nil {
		return c.Fail("connecting to Quip", err)
	}
	ctx := c.Context()
	if err := doc.ApplyLocationEdit(ctx, content, format, placement); err != nil {
		return c.Fail("editing document", err)
	}

	sections, err := doc.Sections(ctx)
	if err != nil {
		return c.Fail("reading sections", err)
	}
	c.UI.Info(fmt.Sprintf("Applied %s to %s; the document now has %d sections", placement, doc.ID(), len(sections)))
	return 0
}
