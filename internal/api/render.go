package api

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kovi/metahead/internal/headhtml"
	"github.com/kovi/metahead/internal/metatags"
	"github.com/kovi/metahead/internal/models"
	"github.com/kovi/metahead/internal/utils"
)

// requestFormat picks the output format from ?format=, falling back to
// the configured default.
func (h *Handler) requestFormat(c *gin.Context) (models.RenderFormat, bool) {
	q := c.Query("format")
	if q == "" {
		return h.Config.Heads.DefaultFormat, true
	}
	f, err := models.ParseRenderFormat(q)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", false
	}
	return f, true
}

func (h *Handler) writeModel(c *gin.Context, m metatags.Model, format models.RenderFormat) {
	if format == models.RenderJSON {
		c.JSON(http.StatusOK, m)
		return
	}

	var buf bytes.Buffer
	if err := headhtml.Render(&buf, m); err != nil {
		h.logger(c).WithError(err).Error("render failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// ParseConfig handles POST /_/api/v1/parse
func (h *Handler) ParseConfig(c *gin.Context) {
	cfg, ok := h.bindConfig(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, metatags.Parse(cfg))
}

// RenderConfig handles POST /_/api/v1/render
func (h *Handler) RenderConfig(c *gin.Context) {
	format, ok := h.requestFormat(c)
	if !ok {
		return
	}
	cfg, ok := h.bindConfig(c)
	if !ok {
		return
	}
	h.writeModel(c, metatags.Parse(cfg), format)
}

// RenderPage handles GET /_/api/v1/render/*path
func (h *Handler) RenderPage(c *gin.Context) {
	format, ok := h.requestFormat(c)
	if !ok {
		return
	}
	h.renderPage(c, pagePath(c), format)
}

func (h *Handler) renderPage(c *gin.Context, path string, format models.RenderFormat) {
	m, err := h.Resolve(path)
	if err != nil {
		h.logger(c).WithError(err).Error("resolve failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	h.writeModel(c, m, format)
}

// SyncPage handles POST /_/api/v1/sync/*path. The body is a full HTML
// document; the response is the same document with its head brought in
// line with the page model. ?from= names the page the document was built
// for, whose tags are removed when the target page does not define them.
func (h *Handler) SyncPage(c *gin.Context) {
	if c.Request.Body == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing document"})
		return
	}

	next, err := h.Resolve(pagePath(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var prev metatags.Model
	if from := c.Query("from"); from != "" {
		if prev, err = h.Resolve(utils.CleanPagePath(from)); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}

	body := http.MaxBytesReader(c.Writer, c.Request.Body, maxDocumentSize)
	var out bytes.Buffer
	if err := headhtml.SyncDocument(body, &out, prev, next); err != nil {
		if !bodyTooLarge(c, err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid document: " + err.Error()})
		}
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", out.Bytes())
}
