package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
listenAddress: ":9000"
baseUrl: "https://wps.example.com"
service:
  title: "Processing"
  keywords: ["wps"]
languages:
  default: "nl-NL"
  supported: ["nl-NL", "en-US"]
jwksUrl: "https://auth.example.com/jwks.json"
processes:
  - identifier: "jq:Filter"
  - identifier: "geo:BoundingBoxArea"
    allowedGroups: ["gis"]
limits:
  workers: 2
backends:
  wfs:
    baseUrl: "https://wfs.example.com"
    auth:
      basic:
        username: "wps"
        password: "secret"
logBackend: "loki"
logBackends:
  loki:
    baseUrl: "http://loki:3100"
    labels:
      app: "wpsd"
`

func TestParse(t *testing.T) {
	c, err := Parse([]byte(sample))
	require.NoError(t, err)
	require.NoError(t, c.Validate())

	assert.Equal(t, ":9000", c.ListenAddress)
	assert.Equal(t, "https://wps.example.com", c.BaseURL)
	assert.Equal(t, "Processing", c.Service.Title)
	assert.Equal(t, []string{"nl-NL", "en-US"}, c.Languages.Supported)
	assert.Equal(t, int64(2), c.Limits.Workers)
	assert.Equal(t, int64(50<<20), c.Limits.MaxReferenceBytes)
	assert.Equal(t, "wps", c.Backends["wfs"].Auth.Basic.Username)
	assert.Equal(t, "wpsd", c.LogBackends["loki"].Labels["app"])

	p, ok := c.Process("geo:BoundingBoxArea")
	require.True(t, ok)
	assert.Equal(t, []string{"gis"}, p.AllowedGroups)
	_, ok = c.Process("util:Wait")
	assert.False(t, ok)
}

func TestDefaults(t *testing.T) {
	c, err := Parse([]byte("{}"))
	require.NoError(t, err)
	require.NoError(t, c.Validate())

	assert.Equal(t, ":8080", c.ListenAddress)
	assert.Equal(t, "http://localhost:8080", c.BaseURL)
	assert.Equal(t, "en-US", c.Languages.Default)
	assert.Equal(t, []string{"en-US"}, c.Languages.Supported)
	assert.Equal(t, "wpsd.db", c.StoragePath)
	assert.Equal(t, int64(10<<20), c.Limits.MaxRequestBytes)
	assert.Equal(t, 25, c.Limits.ReferenceTimeout)
	assert.Equal(t, int64(4), c.Limits.Workers)
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte("listenAdress: \":80\"\n"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	c, err := Parse([]byte(`
baseUrl: "/relative"
listenTls:
  certificate: "cert.pem"
languages:
  default: "de-DE"
  supported: ["en-US"]
processes:
  - identifier: ""
  - identifier: "jq:Filter"
    allowedGroups: ["admins"]
  - identifier: "jq:Filter"
backends:
  files:
    baseUrl: "ftp://files.example.com"
logBackend: "missing"
`))
	require.NoError(t, err)

	err = c.Validate()
	require.Error(t, err)
	for _, want := range []string{
		"baseUrl",
		"listenTls",
		"default language de-DE",
		"process without identifier",
		"restricts groups",
		"configured twice",
		"backend files",
		"logBackend missing",
	} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestNewConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	c, err := NewConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", c.ListenAddress)

	_, err = NewConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
