package api

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/golang-lru/v2"
	"github.com/kovi/metahead/internal/audit"
	"github.com/kovi/metahead/internal/config"
	"github.com/kovi/metahead/internal/metatags"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var ErrLocked = errors.New("page head is locked")

type Handler struct {
	DB     *gorm.DB
	Config *config.Config
	Log    *logrus.Entry
	Audit  *audit.Auditor

	// mu guards defaults; Resolve holds it for reading so that a reload
	// cannot interleave with filling the cache
	mu       sync.RWMutex
	defaults metatags.Config

	// resolved models by page path, defaults already merged
	models *lru.Cache[string, metatags.Model]
}

func NewHandler(db *gorm.DB, cfg *config.Config, log *logrus.Entry, auditor *audit.Auditor) (*Handler, error) {
	cache, err := lru.New[string, metatags.Model](cfg.Heads.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("model cache: %w", err)
	}
	return &Handler{
		DB:       db,
		Config:   cfg,
		Log:      log,
		Audit:    auditor,
		defaults: cfg.Site.Defaults,
		models:   cache,
	}, nil
}

func (h *Handler) logger(c *gin.Context) *logrus.Entry {
	if l, ok := c.Get("logger"); ok {
		if entry, ok := l.(*logrus.Entry); ok {
			return entry
		}
	}
	return h.Log
}

// GetPageHead returns the stored head of a page, or nil if there is none.
func (h *Handler) GetPageHead(path string) (*PageHead, error) {
	var head PageHead
	r := h.DB.Where("path = ?", path).Limit(1).Find(&head)
	if r.Error != nil {
		return nil, r.Error
	}
	if r.RowsAffected != 1 {
		return nil, nil
	}
	return &head, nil
}

// Resolve returns the model of a page: the site defaults with the stored
// page config layered on top. Pages without stored config resolve to the
// defaults alone.
func (h *Handler) Resolve(path string) (metatags.Model, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if m, ok := h.models.Get(path); ok {
		return m, nil
	}

	head, err := h.GetPageHead(path)
	if err != nil {
		return metatags.Model{}, err
	}

	cfg := h.defaults
	if head != nil {
		cfg = metatags.Merge(cfg, metatags.Config(head.Config))
	}
	m := metatags.Parse(cfg)
	h.models.Add(path, m)
	return m, nil
}

// Invalidate drops the cached model of path. It waits for in-flight
// resolves so none of them can put back a model read before the write.
func (h *Handler) Invalidate(path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.models.Remove(path)
}

// ReloadDefaults replaces the site defaults and drops every cached model.
func (h *Handler) ReloadDefaults(defaults metatags.Config) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.defaults = defaults
	h.models.Purge()
}

func (h *Handler) Defaults() metatags.Config {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.defaults
}

func (h *Handler) CachedModels() int {
	return h.models.Len()
}
