package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kovi/metahead/internal/auth"
	"github.com/kovi/metahead/internal/models"
	"github.com/kovi/metahead/internal/utils"
)

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/_/api/v1")

	api.POST("/parse", h.ParseConfig)
	api.POST("/render", h.RenderConfig)
	api.GET("/render/*path", h.RenderPage)
	api.POST("/sync/*path", h.SyncPage)
	api.POST("/import/*path", auth.Protect(), h.ImportHead)

	api.GET("/pages", h.ListPages)
	heads := api.Group("/heads")
	{
		heads.GET("/*path", h.GetHead)
		heads.PUT("/*path", auth.Protect(), h.PutHead)
		heads.PATCH("/*path", auth.Protect(), h.PatchHead)
		heads.DELETE("/*path", auth.Protect(), h.DeleteHead)
	}

	api.GET("/settings", h.GetSettings)

	r.NoRoute(h.defaultHandler)
}

/*
defaultHandler is the NoRoute handler serving page heads directly:
GET /blog/post returns the head of page /blog/post, as HTML fragment or,
when the client prefers it, as JSON model. Unknown API paths are 404.
*/
func (h *Handler) defaultHandler(c *gin.Context) {
	if strings.HasPrefix(c.Request.URL.Path, "/_/") {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}

	switch c.Request.Method {
	case http.MethodGet, http.MethodHead:
		format := models.RenderHTML
		accept := c.GetHeader("Accept")
		if getScore(accept, "application/json") > getScore(accept, "text/html") {
			format = models.RenderJSON
		}
		h.renderPage(c, utils.CleanPagePath(c.Request.URL.Path), format)
		return
	}

	c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
}

func getScore(header, target string) float64 {
	for _, part := range strings.Split(header, ",") {
		pair := strings.Split(strings.TrimSpace(part), ";")
		if pair[0] == target {
			if len(pair) > 1 && strings.HasPrefix(strings.TrimSpace(pair[1]), "q=") {
				score, _ := strconv.ParseFloat(strings.TrimSpace(pair[1])[2:], 64)
				return score
			}
			return 1.0 // No q means 1.0 (max)
		}
	}
	return 0.0
}
