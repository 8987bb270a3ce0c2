package main

import (
	"os"

	"github.com/kovi/metahead/internal/config"
	log "github.com/sirupsen/logrus"
)

// loadConfig layers factory defaults, the YAML file and the environment
// (including an optional .env file), then validates the result.
func loadConfig(path, envFile string) (*config.Config, error) {
	cfg := config.NewConfig()

	if err := config.LoadDotEnv(envFile); err != nil {
		return nil, err
	}

	err := cfg.LoadYAML(path)
	if os.IsNotExist(err) {
		log.Infof("%s does not exist, using defaults", path)
	} else if err != nil {
		return nil, err
	}

	if err := cfg.LoadEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}
