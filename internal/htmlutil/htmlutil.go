// Package htmlutil holds the small DOM helpers shared by the section and
// table parsers and by the fake document service.
package htmlutil

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ParseBody parses s as a full HTML document and returns its <body> element.
// The tokenizer is lenient, so malformed input still yields a (possibly
// empty) body.
func ParseBody(s string) *html.Node {
	root, err := html.Parse(strings.NewReader(s))
	if err != nil {
		// html.Parse only fails on reader errors, which strings.Reader never
		// returns.
		return NewElement(atom.Body)
	}
	if body := FindElementByTagName(root, "body"); body != nil {
		return body
	}
	return NewElement(atom.Body)
}

// NewElement returns a detached element node for a.
func NewElement(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     a.String(),
		DataAtom: a,
		Attr:     attrs,
	}
}

// NewText returns a detached text node.
func NewText(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// RemoveChildren detaches every child of n.
func RemoveChildren(n *html.Node) {
	for c := n.FirstChild; c != nil; c = n.FirstChild {
		n.RemoveChild(c)
	}
}

// ParseFragment parses s in the context of context (for example a <body> or
// <tbody> element) and returns the top-level nodes.
func ParseFragment(s string, context *html.Node) ([]*html.Node, error) {
	return html.ParseFragment(strings.NewReader(s), context)
}

// IterNodes walks node in pre-order. When f returns true the children of the
// current node are skipped.
func IterNodes(node *html.Node, f func(child *html.Node) bool) {
	if f(node) {
		return
	}
	for p := node.FirstChild; p != nil; p = p.NextSibling {
		IterNodes(p, f)
	}
}

// FindElementByTagName returns the first element named tagName under
// rootNode, rootNode included.
func FindElementByTagName(rootNode *html.Node, tagName string) *html.Node {
	var el *html.Node
	IterNodes(rootNode, func(child *html.Node) bool {
		if el != nil {
			return true
		}
		if child.Type == html.ElementNode && child.Data == tagName {
			el = child
			return true
		}
		return false
	})
	return el
}

// FindElementByID returns the first element under rootNode whose id
// attribute equals id.
func FindElementByID(rootNode *html.Node, id string) *html.Node {
	var el *html.Node
	IterNodes(rootNode, func(child *html.Node) bool {
		if el != nil {
			return true
		}
		if child.Type == html.ElementNode && Attr(child, "id") == id {
			el = child
			return true
		}
		return false
	})
	return el
}

// ChildElements returns the element children of n, optionally restricted to
// the given tag names.
func ChildElements(n *html.Node, tags ...string) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if len(tags) > 0 && !containsTag(tags, c.Data) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func containsTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Attr returns the value of the attribute key on n, or "".
func Attr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// SetAttr sets or replaces the attribute key on n.
func SetAttr(n *html.Node, key, val string) {
	for i, attr := range n.Attr {
		if attr.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// Text concatenates every text node under n in document order. Entities are
// already decoded by the parser. Nothing is trimmed.
func Text(n *html.Node) string {
	var b strings.Builder
	IterNodes(n, func(child *html.Node) bool {
		if child.Type == html.TextNode {
			b.WriteString(child.Data)
		}
		return false
	})
	return b.String()
}

// InnerHTML renders the children of n.
func InnerHTML(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		_ = html.Render(&b, c)
	}
	return b.String()
}

// Render renders n including its own tag.
func Render(n *html.Node) string {
	var b strings.Builder
	_ = html.Render(&b, n)
	return b.String()
}
