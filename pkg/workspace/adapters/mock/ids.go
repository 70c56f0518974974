package mock

import (
	"golang.org/x/net/html"

	"github.com/hashicorp-forge/quipdoc/internal/htmlutil"
	"github.com/hashicorp-forge/quipdoc/pkg/docid"
)

// addressable lists the elements that receive an id wherever they appear.
// Every top-level block receives one as well.
var addressable = map[string]bool{
	"table": true,
	"tr":    true,
	"td":    true,
	"th":    true,
	"li":    true,
}

// assignMissingIDs gives an id to every addressable element under body that
// does not have one yet.
func (f *FakeService) assignMissingIDs(body *html.Node) {
	for _, top := range htmlutil.ChildElements(body) {
		htmlutil.IterNodes(top, func(n *html.Node) bool {
			if n.Type != html.ElementNode {
				return false
			}
			if (n == top || addressable[n.Data]) && htmlutil.Attr(n, "id") == "" {
				htmlutil.SetAttr(n, "id", f.ids.Next(docid.KindSection))
			}
			return false
		})
	}
}

// assignFreshIDs replaces any id on the inserted nodes with a new one, so
// submitted markup can never collide with existing sections.
func (f *FakeService) assignFreshIDs(nodes []*html.Node) {
	for _, top := range nodes {
		if top.Type != html.ElementNode {
			continue
		}
		htmlutil.IterNodes(top, func(n *html.Node) bool {
			if n.Type != html.ElementNode {
				return false
			}
			stripAttr(n, "id")
			if n == top || addressable[n.Data] {
				htmlutil.SetAttr(n, "id", f.ids.Next(docid.KindSection))
			}
			return false
		})
	}
}

func stripAttr(n *html.Node, key string) {
	attrs := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Key != key {
			attrs = append(attrs, a)
		}
	}
	n.Attr = attrs
}
