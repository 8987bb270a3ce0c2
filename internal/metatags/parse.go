package metatags

type Kind string

const (
	KindMeta Kind = "meta"
	KindLink Kind = "link"
)

// Attribute names that identify a tag of the given kind.
var queryableKeys = map[Kind][]string{
	KindMeta: {"charset", "name", "property", "http-equiv"},
	KindLink: {"rel", "sizes"},
}

// QueryKey is one attribute used to find a tag instance. Value is nil when
// only the presence of the attribute matters.
type QueryKey struct {
	Key   string  `json:"key" yaml:"key"`
	Value *string `json:"value,omitempty" yaml:"value,omitempty"`
}

type InternalTag struct {
	Tag        Kind       `json:"tag" yaml:"tag"`
	Query      []QueryKey `json:"query" yaml:"query"`
	Attributes Attributes `json:"attributes" yaml:"attributes"`
}

// Config is the declarative input of Parse.
type Config struct {
	Title       *string      `json:"title,omitempty" yaml:"title,omitempty"`
	Description string       `json:"description,omitempty" yaml:"description,omitempty"`
	Lang        *string      `json:"lang,omitempty" yaml:"lang,omitempty"`
	Charset     string       `json:"charset,omitempty" yaml:"charset,omitempty"`
	Metas       []Attributes `json:"metas,omitempty" yaml:"metas,omitempty"`
	Links       []Attributes `json:"links,omitempty" yaml:"links,omitempty"`
	OpenGraph   Attributes   `json:"openGraph,omitempty" yaml:"openGraph,omitempty"`
	Twitter     Attributes   `json:"twitter,omitempty" yaml:"twitter,omitempty"`
}

type Model struct {
	Title *string `json:"title,omitempty"`
	Lang  *string `json:"lang,omitempty"`
	Tags  TagSet  `json:"tags"`
}

func newInternalTag(kind Kind, attrs Attributes) InternalTag {
	var query []QueryKey
	for _, key := range queryableKeys[kind] {
		if v, ok := attrs.Get(key); ok {
			query = append(query, QueryKey{Key: key, Value: &v})
		}
	}

	// no identifying attribute: the whole attribute set becomes the identity
	if len(query) == 0 {
		for _, attr := range attrs {
			v := attr.Value
			query = append(query, QueryKey{Key: attr.Name, Value: &v})
		}
	}

	return InternalTag{
		Tag:        kind,
		Query:      query,
		Attributes: attrs,
	}
}

func NewMeta(attrs Attributes) InternalTag { return newInternalTag(KindMeta, attrs) }

func NewLink(attrs Attributes) InternalTag { return newInternalTag(KindLink, attrs) }

// Parse converts a Config into its Model. It never fails: absent fields
// simply produce no tags.
func Parse(cfg Config) Model {
	var all []InternalTag

	if cfg.Description != "" {
		v := "description"
		all = append(all, InternalTag{
			Tag:        KindMeta,
			Query:      []QueryKey{{Key: "name", Value: &v}},
			Attributes: NewAttributes("name", "description", "content", cfg.Description),
		})
	}
	if cfg.Charset != "" {
		// TagID of this tag is "charset=", existing documents are keyed on it
		all = append(all, InternalTag{
			Tag:        KindMeta,
			Query:      []QueryKey{{Key: "charset"}},
			Attributes: NewAttributes("charset", cfg.Charset),
		})
	}

	for _, m := range cfg.Metas {
		all = append(all, NewMeta(m))
	}
	for _, l := range cfg.Links {
		all = append(all, NewLink(l))
	}
	for _, og := range cfg.OpenGraph {
		all = append(all, NewMeta(NewAttributes("property", "og:"+og.Name, "content", og.Value)))
	}
	for _, tw := range cfg.Twitter {
		all = append(all, NewMeta(NewAttributes("property", "twitter:"+tw.Name, "content", tw.Value)))
	}

	var tags TagSet
	for _, t := range all {
		if len(t.Query) == 0 {
			continue
		}
		tags.Put(t)
	}

	return Model{
		Title: cfg.Title,
		Lang:  cfg.Lang,
		Tags:  tags,
	}
}
