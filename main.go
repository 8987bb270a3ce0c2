package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/kovi/metahead/internal/api"
	"github.com/kovi/metahead/internal/audit"
	"github.com/kovi/metahead/internal/auth"
	"github.com/kovi/metahead/internal/config"
	"github.com/kovi/metahead/internal/headhtml"
	"github.com/kovi/metahead/internal/metatags"
	"github.com/kovi/metahead/middleware"
	log "github.com/sirupsen/logrus"
)

var (
	configFile = flag.String("config", "metahead.yaml", "config file")
	envFile    = flag.String("env", ".env", "dotenv file")
	port       = flag.Int("port", 0, "port to listen on (overrides config)")
	renderFile = flag.String("render", "", "print the head of a YAML/JSON meta config file and exit")
	debug      = flag.Bool("debug", false, "debug logging")
)

func main() {
	flag.Parse()

	if *debug {
		log.SetLevel(log.DebugLevel)
	}

	if *renderFile != "" {
		if err := renderConfigFile(*renderFile); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if err := serve(); err != nil {
		log.WithError(err).Fatal("metahead stopped")
	}
}

func renderConfigFile(path string) error {
	cfg, err := metatags.LoadFile(path)
	if err != nil {
		return err
	}
	return headhtml.Render(os.Stdout, metatags.Parse(cfg))
}

func serve() error {
	log.Info("Starting...")

	cfg, err := loadConfig(*configFile, *envFile)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}

	db, err := config.ConnectDB(cfg.Database.File)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := api.AutoMigrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if err := auth.BootstrapAdmin(db); err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}

	auditor, err := audit.NewAuditor(cfg.Audit.File)
	if err != nil {
		return fmt.Errorf("audit log: %w", err)
	}

	handler, err := api.NewHandler(db, cfg, log.WithField("module", "heads"), auditor)
	if err != nil {
		return err
	}
	if err := api.InitializeVersionInfo(handler.Log); err != nil {
		log.WithError(err).Warn("version info unavailable")
	}

	go reloadOnHangup(handler)

	authHandler := &auth.AuthHandler{
		DB:        db,
		Config:    cfg,
		Audit:     auditor,
		UserCache: auth.NewUserCache(),
		Log:       log.WithField("module", "auth"),
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.LogrusMiddleware(log.StandardLogger()))
	router.Use(auth.Identify(cfg.Server.JwtSecret, db, authHandler.UserCache))
	authHandler.RegisterRoutes(router)
	handler.RegisterRoutes(router)

	return router.Run(":" + strconv.Itoa(cfg.Server.Port))
}

// reloadOnHangup re-reads the config on SIGHUP and swaps in the new site
// defaults. Everything else requires a restart.
func reloadOnHangup(h *api.Handler) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP)
	for range sig {
		cfg, err := loadConfig(*configFile, *envFile)
		if err != nil {
			log.WithError(err).Error("reload failed, keeping current defaults")
			continue
		}
		h.ReloadDefaults(cfg.Site.Defaults)
		log.Info("site defaults reloaded")
	}
}
