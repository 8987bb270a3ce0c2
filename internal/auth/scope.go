package auth

import (
	"path"
	"strings"
)

// IsInScope reports whether a page path lies inside scope. Scopes are page
// path prefixes on segment boundaries: "/blog" covers "/blog/x" but not
// "/blogroll".
func IsInScope(pagePath, scope string) bool {
	if scope == "" || scope == "/" {
		return true
	}
	cleanPath := path.Clean("/" + pagePath)
	cleanScope := path.Clean("/" + scope)

	return cleanPath == cleanScope || strings.HasPrefix(cleanPath, cleanScope+"/")
}

func IsInScopes(pagePath string, scopes []string) bool {
	for _, scope := range scopes {
		if IsInScope(pagePath, scope) {
			return true
		}
	}
	return false
}
