package api

import (
	"github.com/kovi/metahead/internal/auth"
)

type ModifyOptions struct {
	IgnoreLock bool // lock changes themselves are allowed on locked pages
}

// CanModify checks if a page head may be changed by a caller with the given
// scopes, based on config protection and the page lock.
func (h *Handler) CanModify(pagePath string, allowedPaths []string, opts ModifyOptions) (bool, string) {
	if len(allowedPaths) == 0 {
		return false, "Your account has no write permissions configured."
	}
	if !auth.IsInScopes(pagePath, allowedPaths) {
		return false, "Path is outside of your authorized scopes."
	}

	if h.Config.IsProtected(pagePath) {
		return false, "Action prohibited: " + pagePath + " is managed by the site configuration."
	}

	if opts.IgnoreLock {
		return true, ""
	}
	head, err := h.GetPageHead(pagePath)
	if err != nil {
		h.Log.WithError(err).Error("policy lookup failed")
		return false, "Policy lookup failed."
	}
	if head != nil && head.IsLocked() {
		return false, "Action prohibited: " + pagePath + " is locked."
	}
	return true, ""
}
