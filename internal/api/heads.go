package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kovi/metahead/internal/audit"
	"github.com/kovi/metahead/internal/headhtml"
	"github.com/kovi/metahead/internal/metatags"
	"github.com/kovi/metahead/internal/models"
	"github.com/kovi/metahead/internal/utils"
	"gorm.io/gorm"
)

// maxDocumentSize bounds HTML documents posted for import or sync.
const maxDocumentSize = 8 << 20

func pagePath(c *gin.Context) string {
	return utils.CleanPagePath(c.Param("path"))
}

func bodyTooLarge(c *gin.Context, err error) bool {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Request body too large"})
		return true
	}
	return false
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// bindConfig decodes a metatags.Config from the JSON body.
func (h *Handler) bindConfig(c *gin.Context) (metatags.Config, bool) {
	var cfg metatags.Config
	if c.Request.Body == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing head config"})
		return cfg, false
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.Config.Heads.MaxConfigSizeBytes)
	if err := c.ShouldBindJSON(&cfg); err != nil {
		if !bodyTooLarge(c, err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid head config: " + err.Error()})
		}
		return cfg, false
	}
	return cfg, true
}

// ListPages handles GET /_/api/v1/pages
func (h *Handler) ListPages(c *gin.Context) {
	q := h.DB.Order("path")
	if prefix := c.Query("prefix"); prefix != "" {
		p := utils.CleanPagePath(prefix)
		q = q.Where(`path = ? OR path LIKE ? ESCAPE '\'`, p, likeEscaper.Replace(strings.TrimSuffix(p, "/"))+"/%")
	}

	var heads []PageHead
	if err := q.Find(&heads).Error; err != nil {
		h.logger(c).WithError(err).Error("list pages failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list pages"})
		return
	}

	out := make([]PageSummary, 0, len(heads))
	for _, head := range heads {
		out = append(out, PageSummary{
			Path:      head.Path,
			Locked:    head.IsLocked(),
			Tags:      metatags.Parse(metatags.Config(head.Config)).Tags.Len(),
			UpdatedBy: head.UpdatedBy,
			UpdatedAt: head.UpdatedAt,
		})
	}
	c.JSON(http.StatusOK, out)
}

// GetHead handles GET /_/api/v1/heads/*path
func (h *Handler) GetHead(c *gin.Context) {
	path := pagePath(c)

	head, err := h.GetPageHead(path)
	if err != nil {
		h.logger(c).WithError(err).Error("get head failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if head == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No head stored for " + path})
		return
	}

	m, err := h.Resolve(path)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, HeadResponse{PageHead: *head, Model: m})
}

// PutHead handles PUT /_/api/v1/heads/*path
func (h *Handler) PutHead(c *gin.Context) {
	cfg, ok := h.bindConfig(c)
	if !ok {
		return
	}
	h.storeHead(c, pagePath(c), cfg, audit.ActionHeadPut)
}

// ImportHead handles POST /_/api/v1/import/*path. The body is an HTML
// document whose head becomes the stored config of the page.
func (h *Handler) ImportHead(c *gin.Context) {
	if c.Request.Body == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing document"})
		return
	}
	body := http.MaxBytesReader(c.Writer, c.Request.Body, maxDocumentSize)

	cfg, err := headhtml.Extract(body)
	if err != nil {
		if !bodyTooLarge(c, err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid document: " + err.Error()})
		}
		return
	}
	h.storeHead(c, pagePath(c), cfg, audit.ActionHeadImport)
}

func (h *Handler) storeHead(c *gin.Context, path string, cfg metatags.Config, action string) {
	log := h.logger(c).WithField("page", path)

	scopes := c.GetStringSlice("allowed_paths")
	if ok, msg := h.CanModify(path, scopes, ModifyOptions{IgnoreLock: true}); !ok {
		h.Audit.WithContext(c).Failure(action, path, errors.New(msg))
		c.JSON(http.StatusForbidden, gin.H{"error": msg})
		return
	}

	created := false
	var head PageHead
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("path = ?", path).Limit(1).Find(&head)
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			unlocked := false
			head = PageHead{Path: path, Locked: &unlocked}
			created = true
		} else if head.IsLocked() {
			return ErrLocked
		}

		head.Config = models.HeadConfig(cfg)
		head.UpdatedBy = c.GetString("username")
		return tx.Save(&head).Error
	})

	if errors.Is(err, ErrLocked) {
		h.Audit.WithContext(c).Failure(action, path, err)
		c.JSON(http.StatusForbidden, gin.H{"error": "This page head is locked and cannot be modified."})
		return
	}
	if err != nil {
		log.WithError(err).Error("store head failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.Invalidate(path)
	m, err := h.Resolve(path)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if created {
		log.Info("Initial creation of page head")
	}
	h.Audit.WithContext(c).Success(action, path, "tags", m.Tags.Len(), "created", created)

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, HeadResponse{PageHead: head, Model: m})
}

// PatchHead handles PATCH /_/api/v1/heads/*path
func (h *Handler) PatchHead(c *gin.Context) {
	path := pagePath(c)

	var req HeadPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.Locked == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to change"})
		return
	}

	scopes := c.GetStringSlice("allowed_paths")
	if ok, msg := h.CanModify(path, scopes, ModifyOptions{IgnoreLock: true}); !ok {
		h.Audit.WithContext(c).Failure(audit.ActionHeadLock, path, errors.New(msg))
		c.JSON(http.StatusForbidden, gin.H{"error": msg})
		return
	}

	head, err := h.GetPageHead(path)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if head == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No head stored for " + path})
		return
	}

	if err := h.DB.Model(head).Updates(map[string]any{
		"locked":     *req.Locked,
		"updated_by": c.GetString("username"),
	}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	head.Locked = req.Locked

	h.Audit.WithContext(c).Success(audit.ActionHeadLock, path, "locked", *req.Locked)
	c.JSON(http.StatusOK, head)
}

// DeleteHead handles DELETE /_/api/v1/heads/*path
func (h *Handler) DeleteHead(c *gin.Context) {
	path := pagePath(c)

	scopes := c.GetStringSlice("allowed_paths")
	if ok, msg := h.CanModify(path, scopes, ModifyOptions{}); !ok {
		h.Audit.WithContext(c).Failure(audit.ActionHeadDelete, path, errors.New(msg))
		c.JSON(http.StatusForbidden, gin.H{"error": msg})
		return
	}

	res := h.DB.Where("path = ?", path).Delete(&PageHead{})
	if res.Error != nil {
		h.Audit.WithContext(c).Failure(audit.ActionHeadDelete, path, res.Error)
		c.JSON(http.StatusInternalServerError, gin.H{"error": res.Error.Error()})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No head stored for " + path})
		return
	}

	h.Invalidate(path)
	h.Audit.WithContext(c).Success(audit.ActionHeadDelete, path)
	c.Status(http.StatusNoContent)
}
