package models

import (
	"testing"

	"github.com/kovi/metahead/internal/metatags"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeadConfig_ValueScanKeepsOrder(t *testing.T) {
	lang := "en"
	in := HeadConfig{
		Lang:      &lang,
		Charset:   "utf-8",
		Metas:     []metatags.Attributes{metatags.NewAttributes("property", "fb:app_id", "content", "1")},
		OpenGraph: metatags.NewAttributes("url", "https://example.com", "title", "T"),
	}

	v, err := in.Value()
	require.NoError(t, err)

	var out HeadConfig
	require.NoError(t, out.Scan([]byte(v.(string))))
	assert.Equal(t, in, out)
	assert.Equal(t, []string{"url", "title"}, out.OpenGraph.Names())

	require.NoError(t, out.Scan(nil))
	assert.Equal(t, HeadConfig{}, out)
	assert.Error(t, out.Scan(42))
}

func TestStringList(t *testing.T) {
	v, err := StringList(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	var l StringList
	require.NoError(t, l.Scan(`["/a","/b"]`))
	assert.Equal(t, StringList{"/a", "/b"}, l)
}

func TestParseRenderFormat(t *testing.T) {
	f, err := ParseRenderFormat("json")
	require.NoError(t, err)
	assert.Equal(t, RenderJSON, f)

	_, err = ParseRenderFormat("xml")
	assert.Error(t, err)
}

func TestUserPassword(t *testing.T) {
	u := User{Username: "editor"}
	require.NoError(t, u.SetPassword("s3cret"))
	assert.True(t, u.CheckPassword("s3cret"))
	assert.False(t, u.CheckPassword("wrong"))
}
