package api

import (
	"errors"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kovi/metahead/internal/config"
	"github.com/sirupsen/logrus"
)

// Set at link time with -ldflags "-X github.com/kovi/metahead/internal/api.Version=..."
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
	IsDirty   = false
)

var build struct {
	goVersion string
	settings  map[string]string
	deps      map[string]string
}

type RuntimeInfo struct {
	OS       string `json:"os"`
	Arch     string `json:"arch"`
	CGO      bool   `json:"cgo"`
	Compiler string `json:"compiler"`
}

type CacheInfo struct {
	Models   int `json:"models"`
	Capacity int `json:"capacity"`
}

type Settings struct {
	Version      string            `json:"version"`
	Commit       string            `json:"commit"`
	BuildDate    string            `json:"build_date"`
	GoVersion    string            `json:"go_version"`
	IsDirty      bool              `json:"is_dirty"`
	Runtime      RuntimeInfo       `json:"runtime"`
	Dependencies map[string]string `json:"dependencies"`
	Cache        CacheInfo         `json:"cache"`
	Config       *config.Config    `json:"config"`
}

// InitializeVersionInfo fills the version variables from the embedded build
// info. Values set at link time win over VCS stamps.
func InitializeVersionInfo(log *logrus.Entry) error {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return errors.New("binary was built without build info")
	}

	build.goVersion = info.GoVersion
	build.settings = make(map[string]string, len(info.Settings))
	for _, s := range info.Settings {
		build.settings[s.Key] = s.Value
	}
	build.deps = make(map[string]string, len(info.Deps))
	for _, dep := range info.Deps {
		build.deps[dep.Path] = dep.Version
	}

	if rev, ok := build.settings["vcs.revision"]; ok {
		Commit = rev
		if Version == "dev" && len(rev) >= 7 {
			Version = rev[:7]
		}
	} else {
		log.Debug("no vcs.revision in build info")
	}
	if t, ok := build.settings["vcs.time"]; ok {
		BuildDate = t
	} else if BuildDate == "unknown" {
		BuildDate = time.Now().Format(time.RFC3339)
	}
	IsDirty = build.settings["vcs.modified"] == "true"

	log.WithFields(logrus.Fields{
		"version": Version,
		"commit":  Commit,
		"build":   BuildDate,
		"dirty":   IsDirty,
		"go":      build.goVersion,
	}).Info("metahead initialized")
	return nil
}

// GetSettings handles GET /_/api/v1/settings
func (h *Handler) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, Settings{
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
		GoVersion: build.goVersion,
		IsDirty:   IsDirty,
		Runtime: RuntimeInfo{
			OS:       build.settings["GOOS"],
			Arch:     build.settings["GOARCH"],
			CGO:      build.settings["CGO_ENABLED"] == "1",
			Compiler: build.settings["-compiler"],
		},
		Dependencies: build.deps,
		Cache: CacheInfo{
			Models:   h.CachedModels(),
			Capacity: h.Config.Heads.CacheSize,
		},
		Config: h.Config,
	})
}
