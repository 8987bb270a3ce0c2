package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kovi/metahead/internal/metatags"
	"github.com/kovi/metahead/internal/models"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port      int    `yaml:"port" env:"MH_PORT"`
		JwtSecret string `yaml:"jwt_secret" env:"JWT_SECRET" json:"-"`
	} `yaml:"server"`

	Database struct {
		File string `yaml:"file" env:"MH_DB_FILE"`
	} `yaml:"database"`

	Heads struct {
		CacheSize          int                 `yaml:"cache_size" env:"MH_CACHE_SIZE"`
		MaxConfigSize      string              `yaml:"max_config_size" env:"MH_MAX_CONFIG_SIZE"`
		MaxConfigSizeBytes int64               `yaml:"-"`
		ProtectedPaths     []string            `yaml:"protected_paths" env:"MH_PROTECTED_PATHS"`
		DefaultFormat      models.RenderFormat `yaml:"default_format" env:"MH_DEFAULT_FORMAT"`
	} `yaml:"heads"`

	// Site defaults are layered below every page config.
	Site struct {
		DefaultsFile string          `yaml:"defaults_file" env:"MH_DEFAULTS_FILE"`
		Defaults     metatags.Config `yaml:"defaults"`
	} `yaml:"site"`

	Audit struct {
		File string `yaml:"file" env:"MH_AUDIT_LOG"`
	} `yaml:"audit"`
}

// NewConfig sets the hardcoded "Factory Defaults"
func NewConfig() *Config {
	cfg := &Config{}

	cfg.Server.Port = 8080
	cfg.Database.File = "metahead.db"
	cfg.Heads.CacheSize = 1024
	cfg.Heads.MaxConfigSize = "64KB"
	cfg.Audit.File = "audit.log"

	return cfg
}

func (c *Config) LoadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	// Unmarshal will only overwrite fields present in the YAML
	return yaml.Unmarshal(data, c)
}

// LoadDotEnv exports the variables of a .env file into the process
// environment. A missing file is not an error.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func (c *Config) Finalize() error {
	if len(c.Server.JwtSecret) < 32 {
		return errors.New("Server.JwtSecret should be at least 32 characters")
	}

	bytes, err := ParseBytes(c.Heads.MaxConfigSize)
	if err != nil {
		return err
	}
	c.Heads.MaxConfigSizeBytes = bytes

	if c.Heads.CacheSize < 1 {
		return fmt.Errorf("heads.cache_size: must be positive, got %d", c.Heads.CacheSize)
	}

	if c.Heads.DefaultFormat == "" {
		c.Heads.DefaultFormat = models.RenderHTML
	} else if !c.Heads.DefaultFormat.IsValid() {
		return fmt.Errorf("heads.default_format: %w",
			fmt.Errorf("invalid value %q", c.Heads.DefaultFormat))
	}

	if c.Site.DefaultsFile != "" {
		fromFile, err := metatags.LoadFile(c.Site.DefaultsFile)
		if err != nil {
			return fmt.Errorf("site.defaults_file: %w", err)
		}
		c.Site.Defaults = metatags.Merge(fromFile, c.Site.Defaults)
	}

	// Normalize paths to ensure they start with / and don't end with /
	for i, p := range c.Heads.ProtectedPaths {
		c.Heads.ProtectedPaths[i] = "/" + strings.Trim(filepath.ToSlash(p), "/")
	}
	return nil
}

// IsProtected checks if the given page path is within a protected section
func (c *Config) IsProtected(pagePath string) bool {
	cleanPath := "/" + strings.Trim(filepath.ToSlash(pagePath), "/")
	for _, p := range c.Heads.ProtectedPaths {
		if p == "/" || cleanPath == p || strings.HasPrefix(cleanPath, p+"/") {
			return true
		}
	}
	return false
}

// ParseBytes converts strings like "10KB", "1MB" to int64 bytes
func ParseBytes(s string) (int64, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	re := regexp.MustCompile(`^(\d+)\s*([KMG]B|[B])$`)
	matches := re.FindStringSubmatch(s)
	if len(matches) != 3 {
		return 0, fmt.Errorf("invalid size format: %s", s)
	}

	value, _ := strconv.ParseInt(matches[1], 10, 64)
	switch matches[2] {
	case "KB":
		return value << 10, nil
	case "MB":
		return value << 20, nil
	case "GB":
		return value << 30, nil
	default:
		return value, nil
	}
}

// LoadEnv attempts to fill the struct from environment variables.
// It returns an error if a value exists but cannot be converted to the target type.
func (c *Config) LoadEnv() error {
	return loadRecursive(reflect.ValueOf(c).Elem())
}

func loadRecursive(v reflect.Value) error {
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		fieldV := v.Field(i)
		fieldT := t.Field(i)

		if fieldV.Kind() == reflect.Struct {
			if err := loadRecursive(fieldV); err != nil {
				return err
			}
			continue
		}

		tag := fieldT.Tag.Get("env")
		if tag == "" {
			continue
		}

		if val := os.Getenv(tag); val != "" {
			if err := setField(fieldV, tag, val); err != nil {
				return err
			}
		}
	}
	return nil
}

func setField(field reflect.Value, tagName, val string) error {
	if !field.CanSet() {
		return fmt.Errorf("field for %s is not settable (check exported fields)", tagName)
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(val)

	case reflect.Int:
		i, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("environment variable %s: expected integer, got %q", tagName, val)
		}
		field.SetInt(int64(i))

	case reflect.Bool:
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("environment variable %s: expected boolean (true/false/1/0), got %q", tagName, val)
		}
		field.SetBool(b)

	case reflect.Slice:
		// []string from CSV
		if field.Type().Elem().Kind() == reflect.String {
			parts := strings.Split(val, ",")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			field.Set(reflect.ValueOf(parts))
		} else {
			return fmt.Errorf("unsupported slice type for %s", tagName)
		}

	default:
		return fmt.Errorf("unsupported type %s for environment variable %s", field.Kind(), tagName)
	}

	return nil
}
