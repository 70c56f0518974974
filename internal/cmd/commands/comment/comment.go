package comment

import (
	"flag"
	"fmt"
	"strings"

	"github.com/hashicorp-forge/quipdoc/internal/cmd/base"
	"github.com/hashicorp-forge/quipdoc/pkg/editor"
	"github.com/hashicorp-forge/quipdoc/pkg/workspace"
)

type Command struct {
	*base.Command

	flagSection    string
	flagAnnotation string
	flagFrame      string
	flagSilent     bool
}

func (c *Command) Synopsis() string {
	return "Post a comment on a document"
}

func (c *Command) Help() string {
	return `Usage: quipdoc comment [options] <document-id> <text>

  Posts a message to the document. With -section the message opens (or
  joins) the comment thread on that section; with -annotation it replies in
  an existing thread. The two cannot be combined.` + c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("comment", flag.ContinueOnError))

	f.StringVar(
		&c.flagSection, "section", "",
		"Section id to comment on",
	)
	f.StringVar(
		&c.flagAnnotation, "annotation", "",
		"Annotation id of the thread to reply in",
	)
	f.StringVar(
		&c.flagFrame, "frame", "",
		"Message frame: bubble, card or line",
	)
	f.BoolVar(
		&c.flagSilent, "silent", false,
		"Do not notify document members",
	)

	return f
}

func (c *Command) Run(args []string) int {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if f.NArg() < 2 {
		c.UI.Error("expected a document id and the comment text")
		return 1
	}

	anchor, err := editor.NewCommentAnchor(c.flagSection, c.flagAnnotation)
	if err != nil {
		return c.Fail("parsing anchor", err)
	}
	frame, err := workspace.ParseFrame(c.flagFrame)
	if err != nil {
		return c.Fail("parsing -frame", err)
	}
	opts := []editor.CommentOption{editor.WithFrame(frame)}
	if c.flagSilent {
		opts = append(opts, editor.Silent())
	}

	doc, err := c.Document(f.Arg(0))
	if err != nil {
		return c.Fail("connecting to Quip", err)
	}
	msg, err := doc.Comment(c.Context(), strings.Join(f.Args()[1:], " "), anchor, opts...)
	if err != nil {
		return c.Fail("posting comment", err)
	}

	if msg.AnnotationID != "" {
		c.UI.Info(fmt.Sprintf("Posted message %s in thread %s", msg.ID, msg.AnnotationID))
	} else {
		c.UI.Info(fmt.Sprintf("Posted message %s", msg.ID))
	}
	return 0
}
