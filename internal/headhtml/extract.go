package headhtml

import (
	"io"
	"strings"

	"github.com/kovi/metahead/internal/metatags"
	"golang.org/x/net/html"
)

// Extract reads the head of an HTML document into a Config: the title and
// lang become their fields, every meta and link element becomes an entry of
// Metas or Links with its attributes in document order. Tags that Parse
// produces from a dedicated field (charset, description, og: and twitter:
// properties) go back into that field so the page parses to the same ids.
func Extract(r io.Reader) (metatags.Config, error) {
	var cfg metatags.Config

	doc, err := html.Parse(r)
	if err != nil {
		return cfg, err
	}
	root, head, err := documentHead(doc)
	if err != nil {
		return cfg, err
	}

	if lang, ok := getAttr(root, "lang"); ok {
		cfg.Lang = &lang
	}

	for c := head.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.Data {
		case "title":
			var sb strings.Builder
			for t := c.FirstChild; t != nil; t = t.NextSibling {
				if t.Type == html.TextNode {
					sb.WriteString(t.Data)
				}
			}
			title := strings.TrimSpace(sb.String())
			cfg.Title = &title
		case "meta":
			attrs := fromHTMLAttrs(c.Attr)
			if !extractField(&cfg, attrs) {
				cfg.Metas = append(cfg.Metas, attrs)
			}
		case "link":
			cfg.Links = append(cfg.Links, fromHTMLAttrs(c.Attr))
		}
	}
	return cfg, nil
}

func fromHTMLAttrs(attrs []html.Attribute) metatags.Attributes {
	out := make(metatags.Attributes, 0, len(attrs))
	for _, a := range attrs {
		out.Set(a.Key, a.Val)
	}
	return out
}

// extractField stores a meta tag in its dedicated Config field and reports
// whether it did.
func extractField(cfg *metatags.Config, attrs metatags.Attributes) bool {
	names := attrs.Names()
	// empty values stay in Metas, the dedicated fields treat "" as absent
	if len(names) == 1 && names[0] == "charset" {
		charset, _ := attrs.Get("charset")
		if charset == "" {
			return false
		}
		cfg.Charset = charset
		return true
	}
	if len(names) != 2 {
		return false
	}
	content, ok := attrs.Get("content")
	if !ok || content == "" {
		return false
	}

	if name, _ := attrs.Get("name"); name == "description" {
		cfg.Description = content
		return true
	}
	prop, ok := attrs.Get("property")
	if !ok {
		return false
	}
	switch {
	case strings.HasPrefix(prop, "og:"):
		cfg.OpenGraph.Set(strings.TrimPrefix(prop, "og:"), content)
	case strings.HasPrefix(prop, "twitter:"):
		cfg.Twitter.Set(strings.TrimPrefix(prop, "twitter:"), content)
	default:
		return false
	}
	return true
}
