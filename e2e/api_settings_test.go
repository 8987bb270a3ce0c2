package e2e

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSettingsAPI(t *testing.T) {

	t.Run("Get valid settings and config", func(t *testing.T) {
		w := Perform(t, router, "GET", "/_/api/v1/settings")
		assert.Equal(t, 200, w.Code)

		var resp map[string]any
		DecodeJSON(t, w, &resp)

		assert.NotEmpty(t, resp["version"])

		configMap := resp["config"].(map[string]any)
		heads := configMap["Heads"].(map[string]any)
		assert.Equal(t, "64KB", heads["MaxConfigSize"])
		assert.Equal(t, "html", heads["DefaultFormat"])

		cache := resp["cache"].(map[string]any)
		assert.Equal(t, float64(1024), cache["capacity"])
	})

	t.Run("Secrets are not exposed", func(t *testing.T) {
		w := Perform(t, router, "GET", "/_/api/v1/settings")
		assert.NotContains(t, w.Body.String(), testSecret)
	})
}
