package fetch

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/delta10/wpsd/internal/config"
)

func TestBackendFor(t *testing.T) {
	t.Parallel()

	c, err := NewClient(map[string]config.Backend{
		"local":  {BaseURL: "http://127.0.0.1:3935"},
		"geo":    {BaseURL: "https://backend.example/geo/"},
		"geoapi": {BaseURL: "https://backend.example/geo/api"},
	}, time.Second, 0)
	require.NoError(t, err)

	tests := []struct {
		href string
		slug string
	}{
		{"http://127.0.0.1:3935/x", "local"},
		{"http://127.0.0.1:3935", "local"},
		{"http://127.0.0.1:39353/x", ""},
		{"https://127.0.0.1:3935/x", ""},
		{"https://backend.example/geo/wfs", "geo"},
		{"https://BACKEND.example/geo/wfs", "geo"},
		{"https://backend.example/geo", "geo"},
		{"https://backend.example/geology", ""},
		{"https://backend.example/geo/api/items", "geoapi"},
		{"https://backend.example/geo/apix", "geo"},
		{"https://backend.example.attacker.org/geo/wfs", ""},
		{"https://backend.example:8443/geo/wfs", ""},
		{"http://backend.example/geo/wfs", ""},
	}
	for _, tt := range tests {
		u, err := url.Parse(tt.href)
		require.NoError(t, err)
		b := c.backendFor(u)
		if tt.slug == "" {
			assert.Nil(t, b, tt.href)
			continue
		}
		require.NotNil(t, b, tt.href)
		assert.Equal(t, tt.slug, b.slug, tt.href)
	}
}

func TestNewClientRejectsRelativeBaseURL(t *testing.T) {
	_, err := NewClient(map[string]config.Backend{"bad": {BaseURL: "/geo"}}, time.Second, 0)
	assert.ErrorContains(t, err, "backend bad")
}
