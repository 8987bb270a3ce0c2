package metatags

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestParse_TitleAndLangPassThrough(t *testing.T) {
	m := Parse(Config{})
	assert.Nil(t, m.Title)
	assert.Nil(t, m.Lang)
	assert.Equal(t, 0, m.Tags.Len())

	title, lang := "Home", "en"
	m = Parse(Config{Title: &title, Lang: &lang})
	assert.Same(t, &title, m.Title)
	assert.Same(t, &lang, m.Lang)

	empty := ""
	m = Parse(Config{Title: &empty})
	require.NotNil(t, m.Title)
	assert.Equal(t, "", *m.Title)
}

func TestParse_QueryableKeys(t *testing.T) {
	tests := []struct {
		name  string
		kind  Kind
		attrs Attributes
		keys  []string
	}{
		{"meta name", KindMeta, NewAttributes("content", "x", "name", "robots"), []string{"name"}},
		{"meta fixed order", KindMeta, NewAttributes("http-equiv", "refresh", "property", "p", "name", "n"), []string{"name", "property", "http-equiv"}},
		{"meta charset", KindMeta, NewAttributes("charset", "utf-8"), []string{"charset"}},
		{"link rel sizes", KindLink, NewAttributes("href", "/i.png", "sizes", "16x16", "rel", "icon"), []string{"rel", "sizes"}},
		{"link ignores meta keys", KindLink, NewAttributes("name", "n", "rel", "canonical"), []string{"rel"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tag := newInternalTag(tt.kind, tt.attrs)
			var keys []string
			for _, q := range tag.Query {
				keys = append(keys, q.Key)
				want, _ := tt.attrs.Get(q.Key)
				require.NotNil(t, q.Value)
				assert.Equal(t, want, *q.Value)
			}
			assert.Equal(t, tt.keys, keys)
			assert.Equal(t, tt.kind, tag.Tag)
			assert.Equal(t, tt.attrs, tag.Attributes)
		})
	}
}

func TestParse_FallbackQuery(t *testing.T) {
	attrs := NewAttributes("itemprop", "image", "content", "/a.png")
	tag := NewMeta(attrs)
	assert.Equal(t, "itemprop=image~content=/a.png", tag.ID())

	link := NewLink(NewAttributes("href", "/feed.xml", "type", "application/rss+xml"))
	assert.Equal(t, "href=/feed.xml~type=application/rss+xml", link.ID())

	// unknown kind has no queryable keys
	other := newInternalTag("script", NewAttributes("src", "/a.js"))
	assert.Equal(t, "src=/a.js", other.ID())
}

func TestParse_OpenGraphAndTwitter(t *testing.T) {
	m := Parse(Config{
		OpenGraph: NewAttributes("title", "T", "image", "I"),
		Twitter:   NewAttributes("card", "summary"),
	})

	assert.Equal(t, []string{"property=og:title", "property=og:image", "property=twitter:card"}, m.Tags.IDs())
	tag, _ := m.Tags.Get("property=og:image")
	assert.Equal(t, NewAttributes("property", "og:image", "content", "I"), tag.Attributes)
	assert.Equal(t, KindMeta, tag.Tag)

	m = Parse(Config{OpenGraph: NewAttributes("title", "T", "image", "I")})
	assert.Equal(t, 2, m.Tags.Len())
}

func TestParse_DescriptionAndCharset(t *testing.T) {
	m := Parse(Config{Description: "D", Charset: "utf-8"})
	assert.Equal(t, []string{"name=description", "charset="}, m.Tags.IDs())

	desc, _ := m.Tags.Get("name=description")
	assert.Equal(t, NewAttributes("name", "description", "content", "D"), desc.Attributes)

	charset, _ := m.Tags.Get("charset=")
	assert.Equal(t, NewAttributes("charset", "utf-8"), charset.Attributes)
	require.Len(t, charset.Query, 1)
	assert.Nil(t, charset.Query[0].Value)
}

func TestParse_CollisionPrecedence(t *testing.T) {
	m := Parse(Config{
		Description: "from description",
		Metas: []Attributes{
			NewAttributes("name", "x", "content", "first"),
			NewAttributes("name", "description", "content", "from metas"),
			NewAttributes("name", "x", "content", "second"),
		},
		OpenGraph: NewAttributes("title", "og"),
		Links:     []Attributes{NewAttributes("rel", "icon", "href", "/a.ico")},
	})

	assert.Equal(t, []string{"name=description", "name=x", "rel=icon", "property=og:title"}, m.Tags.IDs())

	x, _ := m.Tags.Get("name=x")
	content, _ := x.Attributes.Get("content")
	assert.Equal(t, "second", content)

	d, _ := m.Tags.Get("name=description")
	content, _ = d.Attributes.Get("content")
	assert.Equal(t, "from metas", content)

	// an explicit meta property is overridden by the openGraph shorthand
	m = Parse(Config{
		Metas:     []Attributes{NewAttributes("property", "og:title", "content", "meta")},
		OpenGraph: NewAttributes("title", "shorthand"),
	})
	og, _ := m.Tags.Get("property=og:title")
	content, _ = og.Attributes.Get("content")
	assert.Equal(t, "shorthand", content)
}

func TestParse_CharsetMetaDoesNotCollideWithShorthand(t *testing.T) {
	m := Parse(Config{
		Charset: "utf-8",
		Metas:   []Attributes{NewAttributes("charset", "latin1")},
	})
	assert.Equal(t, []string{"charset=", "charset=latin1"}, m.Tags.IDs())
}

func TestParse_EmptyQueryDropped(t *testing.T) {
	m := Parse(Config{
		Metas: []Attributes{{}, nil, NewAttributes("name", "ok")},
		Links: []Attributes{{}},
	})
	assert.Equal(t, []string{"name=ok"}, m.Tags.IDs())
	assert.False(t, m.Tags.Has(""))
}

func TestParse_Idempotent(t *testing.T) {
	title := "T"
	cfg := Config{
		Title:       &title,
		Description: "D",
		Charset:     "utf-8",
		Metas:       []Attributes{NewAttributes("name", "a", "content", "1"), NewAttributes("foo", "bar")},
		Links:       []Attributes{NewAttributes("rel", "canonical", "href", "/")},
		OpenGraph:   NewAttributes("type", "website"),
		Twitter:     NewAttributes("site", "@me"),
	}
	assert.Equal(t, Parse(cfg), Parse(cfg))
}

func TestModel_JSON(t *testing.T) {
	title := "T"
	m := Parse(Config{Title: &title, Charset: "utf-8", OpenGraph: NewAttributes("title", "T")})

	b, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"title": "T",
		"tags": {
			"charset=": {"tag": "meta", "query": [{"key": "charset"}], "attributes": {"charset": "utf-8"}},
			"property=og:title": {
				"tag": "meta",
				"query": [{"key": "property", "value": "og:title"}],
				"attributes": {"property": "og:title", "content": "T"}
			}
		}
	}`, string(b))

	// key order of the tags object follows insertion order
	assert.Less(t, strings.Index(string(b), `"charset="`), strings.Index(string(b), `"property=og:title"`))
}

func TestTagID(t *testing.T) {
	assert.Equal(t, "", TagID(nil))
	assert.Equal(t, "rel=icon~sizes=16x16", TagID([]QueryKey{{"rel", strPtr("icon")}, {"sizes", strPtr("16x16")}}))
	assert.Equal(t, "charset=", TagID([]QueryKey{{Key: "charset"}}))
}
