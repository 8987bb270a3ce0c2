package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/kovi/metahead/internal/metatags"
)

// HeadConfig stores a metatags.Config as JSON text. Attribute order
// survives the round trip.
type HeadConfig metatags.Config

func (h HeadConfig) Value() (driver.Value, error) {
	b, err := json.Marshal(metatags.Config(h))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (h *HeadConfig) Scan(value interface{}) error {
	if value == nil {
		*h = HeadConfig{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("failed to unmarshal HeadConfig: expected string or []byte, got %T", value)
	}

	var cfg metatags.Config
	if err := json.Unmarshal(bytes, &cfg); err != nil {
		return err
	}
	*h = HeadConfig(cfg)
	return nil
}

func (h HeadConfig) MarshalJSON() ([]byte, error) {
	return json.Marshal(metatags.Config(h))
}

func (h *HeadConfig) UnmarshalJSON(data []byte) error {
	var cfg metatags.Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return err
	}
	*h = HeadConfig(cfg)
	return nil
}
