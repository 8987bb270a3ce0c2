package auth

import (
	"strings"
	"testing"

	"github.com/kovi/metahead/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "0123456789abcdef0123456789abcdef"

func TestIsInScope(t *testing.T) {
	tests := []struct {
		path, scope string
		in          bool
	}{
		{"/blog/post", "/", true},
		{"/blog/post", "", true},
		{"/blog/post", "/blog", true},
		{"/blog", "/blog/", true},
		{"/blogroll", "/blog", false},
		{"/docs/../blog/x", "/blog", true},
		{"/shop", "/blog", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.in, IsInScope(tt.path, tt.scope), "%s in %s", tt.path, tt.scope)
	}

	assert.False(t, IsInScopes("/blog", nil))
	assert.True(t, IsInScopes("/shop/cart", []string{"/blog", "/shop"}))
}

func TestTokenRoundTrip(t *testing.T) {
	user := models.User{ID: 7, Username: "editor", AllowedPaths: models.StringList{"/blog"}}
	token, err := GenerateToken(user, secret)
	require.NoError(t, err)

	claims, err := ValidateToken(token, secret)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "editor", claims.Username)
	assert.Equal(t, models.StringList{"/blog"}, claims.AllowedPaths)

	_, err = ValidateToken(token, strings.Repeat("x", 32))
	assert.Error(t, err)
}

func TestRandomToken(t *testing.T) {
	a, err := GenerateRandomToken()
	require.NoError(t, err)
	b, err := GenerateRandomToken()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(a, tokenPrefix))
	assert.NotEqual(t, a, b)
	assert.Len(t, HashToken(a), 64)
	assert.Equal(t, HashToken(a), HashToken(a))
}

func TestUserCache(t *testing.T) {
	c := NewUserCache()
	_, found := c.Get(1)
	assert.False(t, found)

	c.Set(1, true, true, []string{"/"})
	entry, found := c.Get(1)
	assert.True(t, found)
	assert.True(t, entry.exists)
	assert.True(t, entry.isAdmin)
	assert.Equal(t, []string{"/"}, entry.allowedPaths)

	c.Invalidate(1)
	_, found = c.Get(1)
	assert.False(t, found)
}
