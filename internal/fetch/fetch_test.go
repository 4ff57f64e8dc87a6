package fetch_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/delta10/wpsd/internal/config"
	"github.com/delta10/wpsd/internal/fetch"
	"github.com/delta10/wpsd/internal/ows"
	"github.com/delta10/wpsd/internal/wps"
)

func backendServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/secure/feature.json", func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "wps" || pass != "s3cret" || r.Header.Get("X-Api-Key") != "key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = io.WriteString(w, `{"type":"Feature"}`)
	})
	mux.HandleFunc("/secure/redirect", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, r.URL.Query().Get("to"), http.StatusFound)
	})
	mux.HandleFunc("/public/query", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", r.Header.Get("Content-Type"))
		_, _ = w.Write(append([]byte("echo:"), body...))
	})
	mux.HandleFunc("/public/body.xml", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "<GetFeature/>")
	})
	mux.HandleFunc("/public/large", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, strings.Repeat("x", 64))
	})
	mux.HandleFunc("/public/headers", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, r.Header.Get("Accept"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newClient(t *testing.T, srv *httptest.Server, maxBytes int64) *fetch.Client {
	t.Helper()
	t.Setenv("WPSD_FETCH_PASSWORD", "s3cret")

	secure := config.Backend{BaseURL: srv.URL + "/secure"}
	secure.Auth.Basic.Username = "wps"
	secure.Auth.Basic.Password = "${WPSD_FETCH_PASSWORD}"
	secure.Auth.Header = map[string]string{"X-Api-Key": "key"}

	c, err := fetch.NewClient(map[string]config.Backend{"secure": secure}, 5*time.Second, maxBytes)
	require.NoError(t, err)
	return c
}

func TestResolve(t *testing.T) {
	srv := backendServer(t)
	c := newClient(t, srv, 1024)
	ctx := context.Background()

	b, err := c.Resolve(ctx, wps.Reference{Href: srv.URL + "/secure/feature.json"})
	require.NoError(t, err)
	assert.Equal(t, `{"type":"Feature"}`, string(b))

	b, err = c.Resolve(ctx, wps.Reference{
		Href:   srv.URL + "/public/query",
		Method: wps.MethodPost,
		Body:   []byte("<q/>"),
		Format: wps.Format{MimeType: "text/xml"},
	})
	require.NoError(t, err)
	assert.Equal(t, "echo:<q/>", string(b))

	b, err = c.Resolve(ctx, wps.Reference{
		Href:          srv.URL + "/public/query",
		Method:        wps.MethodPost,
		BodyReference: srv.URL + "/public/body.xml",
	})
	require.NoError(t, err)
	assert.Equal(t, "echo:<GetFeature/>", string(b))

	b, err = c.Resolve(ctx, wps.Reference{
		Href:    srv.URL + "/public/headers",
		Headers: []wps.Header{{Key: "Accept", Value: "application/gml+xml"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "application/gml+xml", string(b))
}

func TestResolveErrors(t *testing.T) {
	srv := backendServer(t)
	c := newClient(t, srv, 16)
	ctx := context.Background()

	_, err := c.Resolve(ctx, wps.Reference{Href: srv.URL + "/public/large"})
	assert.ErrorIs(t, err, fetch.ErrTooLarge)

	_, err = c.Resolve(ctx, wps.Reference{Href: srv.URL + "/public/missing"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")

	_, err = c.Resolve(ctx, wps.Reference{Href: srv.URL + "/public/query", Method: wps.MethodPost, BodyReference: srv.URL + "/public/missing"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bodyReference")
}

func TestResolveKeepsCredentialsOnBackend(t *testing.T) {
	srv := backendServer(t)
	var (
		mu     sync.Mutex
		leaked []string
	)
	other := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		if auth := r.Header.Get("Authorization"); auth != "" {
			leaked = append(leaked, auth)
		}
		if key := r.Header.Get("X-Api-Key"); key != "" {
			leaked = append(leaked, key)
		}
		_, _ = io.WriteString(w, "other")
	}))
	t.Cleanup(other.Close)
	c := newClient(t, srv, 1024)
	ctx := context.Background()

	b, err := c.Resolve(ctx, wps.Reference{Href: other.URL + "/secure/feature.json"})
	require.NoError(t, err)
	assert.Equal(t, "other", string(b))

	_, err = c.Resolve(ctx, wps.Reference{Href: srv.URL + "/secureish/feature.json"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")

	_, err = c.Resolve(ctx, wps.Reference{Href: srv.URL + "/secure/redirect?to=" + other.URL + "/x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "leaves backend secure")

	mu.Lock()
	defer mu.Unlock()
	assert.Empty(t, leaked)
}

func TestResolveInputs(t *testing.T) {
	srv := backendServer(t)
	c := newClient(t, srv, 32)

	ref, err := wps.NewComplexReference(wps.Reference{Href: srv.URL + "/secure/feature.json", Format: wps.Format{MimeType: "application/json"}})
	require.NoError(t, err)
	literal := wps.LiteralData{Value: "1"}

	out, err := c.ResolveInputs(context.Background(), map[string][]wps.Data{
		"feature":  {ref},
		"distance": {literal},
	})
	require.NoError(t, err)
	resolved := out["feature"][0].(wps.ComplexData)
	_, isRef := resolved.Reference()
	assert.False(t, isRef)
	assert.Equal(t, []byte(`{"type":"Feature"}`), resolved.Payload())
	assert.Equal(t, "application/json", resolved.Format().MimeType)
	assert.Equal(t, []wps.Data{literal}, out["distance"])

	large, err := wps.NewComplexReference(wps.Reference{Href: srv.URL + "/public/large"})
	require.NoError(t, err)
	_, err = c.ResolveInputs(context.Background(), map[string][]wps.Data{"big": {large}})
	assert.ErrorIs(t, err, wps.ErrFileSizeExceeded)
	assert.Equal(t, ows.CodeFileSizeExceeded, wps.ExceptionCode(err))

	missing, err := wps.NewComplexReference(wps.Reference{Href: srv.URL + "/public/missing"})
	require.NoError(t, err)
	_, err = c.ResolveInputs(context.Background(), map[string][]wps.Data{"gone": {missing}})
	assert.ErrorIs(t, err, wps.ErrInvalidReference)
}
