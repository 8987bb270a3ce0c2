package metatags

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Merge layers override on top of base. Set scalars of override win, lists
// are concatenated base first and OpenGraph/Twitter keys of override replace
// base keys in place. Since Parse keeps the last tag per TagID, override tags
// take precedence over base tags with the same identity.
func Merge(base, override Config) Config {
	out := Config{
		Title:       base.Title,
		Description: base.Description,
		Lang:        base.Lang,
		Charset:     base.Charset,
	}
	if override.Title != nil {
		out.Title = override.Title
	}
	if override.Description != "" {
		out.Description = override.Description
	}
	if override.Lang != nil {
		out.Lang = override.Lang
	}
	if override.Charset != "" {
		out.Charset = override.Charset
	}

	out.Metas = append(append([]Attributes(nil), base.Metas...), override.Metas...)
	out.Links = append(append([]Attributes(nil), base.Links...), override.Links...)
	out.OpenGraph = mergeAttributes(base.OpenGraph, override.OpenGraph)
	out.Twitter = mergeAttributes(base.Twitter, override.Twitter)
	return out
}

func mergeAttributes(base, override Attributes) Attributes {
	if len(base) == 0 && len(override) == 0 {
		return nil
	}
	out := base.Clone()
	for _, attr := range override {
		out.Set(attr.Name, attr.Value)
	}
	return out
}

// LoadFile reads a Config from a YAML or JSON file. YAML is a superset of
// JSON so both go through the same decoder.
func LoadFile(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml", ".json":
	default:
		return cfg, fmt.Errorf("%s: unsupported config extension %q", path, ext)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}
