package models

import "fmt"

type RenderFormat string

const (
	RenderHTML RenderFormat = "html" // head fragment markup
	RenderJSON RenderFormat = "json" // normalized tag model
)

// IsValid checks if the format is one of the supported constants
func (f RenderFormat) IsValid() bool {
	return f == RenderHTML || f == RenderJSON
}

// ParseRenderFormat returns the enum or an error if the string is invalid
func ParseRenderFormat(s string) (RenderFormat, error) {
	f := RenderFormat(s)
	if f.IsValid() {
		return f, nil
	}
	return "", fmt.Errorf("invalid render format: %q. Supported: 'html', 'json'", s)
}
