package headhtml

import (
	"errors"
	"io"
	"strings"

	"github.com/kovi/metahead/internal/metatags"
	"golang.org/x/net/html"
)

var ErrNoDocument = errors.New("headhtml: node has no <html> element")

func findElement(n *html.Node, name string) *html.Node {
	if n.Type == html.ElementNode && n.Data == name {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, name); found != nil {
			return found
		}
	}
	return nil
}

func getAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, key) {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, key) {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// matches reports whether n is an element of the tag's kind carrying every
// query attribute. A query key without value only requires presence.
func matches(n *html.Node, tag metatags.InternalTag) bool {
	if n.Type != html.ElementNode || n.Data != string(tag.Tag) {
		return false
	}
	for _, q := range tag.Query {
		v, ok := getAttr(n, q.Key)
		if !ok {
			return false
		}
		if q.Value != nil && v != *q.Value {
			return false
		}
	}
	return true
}

// Find returns the first element below head matching tag, or nil.
func Find(head *html.Node, tag metatags.InternalTag) *html.Node {
	var found *html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil && found == nil; c = c.NextSibling {
			if matches(c, tag) {
				found = c
				return
			}
			walk(c)
		}
	}
	walk(head)
	return found
}

func documentHead(doc *html.Node) (root, head *html.Node, err error) {
	root = findElement(doc, "html")
	if root == nil {
		return nil, nil, ErrNoDocument
	}
	head = findElement(root, "head")
	if head == nil {
		head = newElement("head")
		root.InsertBefore(head, root.FirstChild)
	}
	return root, head, nil
}

// Sync updates the head of doc from prev to next. Tags that only prev
// knows about are removed, tags of next update their matching element or
// are appended to the head.
func Sync(doc *html.Node, prev, next metatags.Model) error {
	root, head, err := documentHead(doc)
	if err != nil {
		return err
	}

	if next.Lang != nil {
		setAttr(root, "lang", *next.Lang)
	}
	if next.Title != nil {
		if title := findElement(head, "title"); title != nil {
			for title.FirstChild != nil {
				title.RemoveChild(title.FirstChild)
			}
			title.AppendChild(&html.Node{Type: html.TextNode, Data: *next.Title})
		} else {
			head.AppendChild(newTitle(*next.Title))
		}
	}

	for id, tag := range prev.Tags.All() {
		if next.Tags.Has(id) {
			continue
		}
		if n := Find(head, tag); n != nil {
			n.Parent.RemoveChild(n)
		}
	}

	for _, tag := range next.Tags.All() {
		if n := Find(head, tag); n != nil {
			n.Attr = toHTMLAttrs(tag.Attributes)
			continue
		}
		head.AppendChild(newTagElement(tag))
	}
	return nil
}

// SyncDocument parses a full HTML document from r, syncs its head and
// writes the result to w.
func SyncDocument(r io.Reader, w io.Writer, prev, next metatags.Model) error {
	doc, err := html.Parse(r)
	if err != nil {
		return err
	}
	if err := Sync(doc, prev, next); err != nil {
		return err
	}
	return html.Render(w, doc)
}
