package headhtml

import (
	"bytes"
	"strings"
	"testing"

	"github.com/kovi/metahead/internal/metatags"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestRender(t *testing.T) {
	m := metatags.Parse(metatags.Config{
		Title:       strPtr("Fish & Chips"),
		Description: `say "hi"`,
		Charset:     "utf-8",
		Links:       []metatags.Attributes{metatags.NewAttributes("rel", "icon", "href", "/favicon.ico")},
		OpenGraph:   metatags.NewAttributes("title", "T"),
	})

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, m))

	want := `<title>Fish &amp; Chips</title>
<meta name="description" content="say &#34;hi&#34;"/>
<meta charset="utf-8"/>
<link rel="icon" href="/favicon.ico"/>
<meta property="og:title" content="T"/>
`
	assert.Equal(t, want, buf.String())
}

func TestRender_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, metatags.Parse(metatags.Config{})))
	assert.Empty(t, buf.String())
}

const page = `<!DOCTYPE html>
<html><head>
<title>Old</title>
<meta charset="latin1">
<meta name="description" content="old description">
<meta name="robots" content="index">
<link rel="canonical" href="/old">
</head><body><p>hello</p></body></html>`

func TestSyncDocument(t *testing.T) {
	prev := metatags.Parse(metatags.Config{
		Metas: []metatags.Attributes{metatags.NewAttributes("name", "robots", "content", "index")},
		Links: []metatags.Attributes{metatags.NewAttributes("rel", "canonical", "href", "/old")},
	})
	next := metatags.Parse(metatags.Config{
		Title:       strPtr("New"),
		Lang:        strPtr("en"),
		Description: "new description",
		Charset:     "utf-8",
		Links:       []metatags.Attributes{metatags.NewAttributes("rel", "canonical", "href", "/new")},
		Twitter:     metatags.NewAttributes("card", "summary"),
	})

	var out bytes.Buffer
	require.NoError(t, SyncDocument(strings.NewReader(page), &out, prev, next))
	s := out.String()

	assert.Contains(t, s, `<html lang="en">`)
	assert.Contains(t, s, `<title>New</title>`)
	assert.NotContains(t, s, `Old`)
	assert.Contains(t, s, `<meta charset="utf-8"/>`)
	assert.NotContains(t, s, `latin1`)
	assert.Contains(t, s, `<meta name="description" content="new description"/>`)
	assert.NotContains(t, s, `robots`)
	assert.Contains(t, s, `<link rel="canonical" href="/new"/>`)
	assert.Equal(t, 1, strings.Count(s, `rel="canonical"`))
	assert.Contains(t, s, `<meta property="twitter:card" content="summary"/>`)
	assert.Contains(t, s, `<p>hello</p>`)
}

func TestSync_IsStable(t *testing.T) {
	next := metatags.Parse(metatags.Config{
		Description: "d",
		OpenGraph:   metatags.NewAttributes("title", "T"),
	})

	var once, twice bytes.Buffer
	require.NoError(t, SyncDocument(strings.NewReader(page), &once, next, next))
	require.NoError(t, SyncDocument(strings.NewReader(once.String()), &twice, next, next))
	assert.Equal(t, once.String(), twice.String())
	assert.Equal(t, 1, strings.Count(twice.String(), "og:title"))
}

func TestFind_PresenceOnlyQuery(t *testing.T) {
	charset := metatags.Parse(metatags.Config{Charset: "anything"})
	tag, ok := charset.Tags.Get("charset=")
	require.True(t, ok)

	var out bytes.Buffer
	require.NoError(t, SyncDocument(strings.NewReader(page), &out, metatags.Model{}, charset))
	assert.Contains(t, out.String(), `<meta charset="anything"/>`)
	assert.Equal(t, 1, strings.Count(out.String(), "charset="))
	assert.Equal(t, metatags.KindMeta, tag.Tag)
}

func TestExtract(t *testing.T) {
	cfg, err := Extract(strings.NewReader(`<html lang="fr"><head><title> Bonjour </title>
<meta name="viewport" content="width=device-width">
<link rel="stylesheet" href="/a.css"></head></html>`))
	require.NoError(t, err)

	require.NotNil(t, cfg.Title)
	assert.Equal(t, "Bonjour", *cfg.Title)
	require.NotNil(t, cfg.Lang)
	assert.Equal(t, "fr", *cfg.Lang)
	require.Len(t, cfg.Metas, 1)
	assert.Equal(t, []string{"name", "content"}, cfg.Metas[0].Names())
	require.Len(t, cfg.Links, 1)

	m := metatags.Parse(cfg)
	assert.Equal(t, []string{"name=viewport", "rel=stylesheet"}, m.Tags.IDs())
}

func TestExtract_DedicatedFields(t *testing.T) {
	cfg, err := Extract(strings.NewReader(`<html><head>
<meta charset="utf-8">
<meta name="description" content="About us">
<meta property="og:title" content="About">
<meta property="twitter:card" content="summary">
<meta property="article:author" content="kim">
</head></html>`))
	require.NoError(t, err)

	assert.Equal(t, "utf-8", cfg.Charset)
	assert.Equal(t, "About us", cfg.Description)
	og, _ := cfg.OpenGraph.Get("title")
	assert.Equal(t, "About", og)
	tw, _ := cfg.Twitter.Get("card")
	assert.Equal(t, "summary", tw)
	require.Len(t, cfg.Metas, 1)

	m := metatags.Parse(cfg)
	assert.Equal(t, []string{
		"name=description",
		"charset=",
		"property=article:author",
		"property=og:title",
		"property=twitter:card",
	}, m.Tags.IDs())
}

func TestExtract_EmptyValuesKeepTheirTags(t *testing.T) {
	cfg, err := Extract(strings.NewReader(`<html><head>
<meta name="description" content="">
<meta charset="">
</head></html>`))
	require.NoError(t, err)

	assert.Empty(t, cfg.Description)
	assert.Empty(t, cfg.Charset)
	assert.Len(t, cfg.Metas, 2)
	assert.Equal(t, []string{"name=description", "charset="}, metatags.Parse(cfg).Tags.IDs())
}
