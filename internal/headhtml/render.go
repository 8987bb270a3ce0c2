// Package headhtml turns a metatags.Model into HTML head markup and keeps
// the head of existing documents in line with a model.
package headhtml

import (
	"io"

	"github.com/kovi/metahead/internal/metatags"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

func newElement(name string) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     name,
		DataAtom: atom.Lookup([]byte(name)),
	}
}

func toHTMLAttrs(attrs metatags.Attributes) []html.Attribute {
	out := make([]html.Attribute, 0, len(attrs))
	for _, a := range attrs {
		out = append(out, html.Attribute{Key: a.Name, Val: a.Value})
	}
	return out
}

func newTagElement(tag metatags.InternalTag) *html.Node {
	n := newElement(string(tag.Tag))
	n.Attr = toHTMLAttrs(tag.Attributes)
	return n
}

func newTitle(text string) *html.Node {
	n := newElement("title")
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	return n
}

// Render writes the head fragment of m: the title, when set, followed by
// one element per tag in model order. Each element is on its own line.
func Render(w io.Writer, m metatags.Model) error {
	var nodes []*html.Node
	if m.Title != nil {
		nodes = append(nodes, newTitle(*m.Title))
	}
	for _, tag := range m.Tags.All() {
		nodes = append(nodes, newTagElement(tag))
	}

	for _, n := range nodes {
		if err := html.Render(w, n); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}
	return nil
}
