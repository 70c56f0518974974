package sections

import (
	"flag"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/hashicorp-forge/quipdoc/internal/cmd/base"
)

// maxText is how much of a section's text is shown.
const maxText = 60

type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "List the addressable sections of a document"
}

func (c *Command) Help() string {
	return `Usage: quipdoc sections <document-id>

  Lists every section of the document in order, with its id, element and
  leading text. Section ids are the anchors accepted by "quipdoc edit" and
  "quipdoc comment".` + c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	return base.NewFlagSet(flag.NewFlagSet("sections", flag.ContinueOnError))
}

func (c *Command) Run(args []string) int {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if f.NArg() != 1 {
		c.UI.Error("expected exactly one document id")
		return 1
	}

	doc, err := c.Document(f.Arg(0))
	if err != nil {
		return c.Fail("connecting to Quip", err)
	}
	sections, err := doc.Sections(c.Context())
	if err != nil {
		return c.Fail("reading sections", err)
	}

	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTAG\tTEXT")
	for _, s := range sections {
		fmt.Fprintf(w, "%s\t%s\t%s\n", s.ID, s.Tag, truncate(s.Text, maxText))
	}
	w.Flush()
	c.UI.Output(strings.TrimRight(b.String(), "\n"))
	return 0
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
