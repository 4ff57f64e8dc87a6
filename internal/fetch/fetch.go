// Package fetch dereferences Reference inputs. Requests below a configured
// backend carry that backend's credentials.
package fetch

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/delta10/wpsd/internal/config"
	"github.com/delta10/wpsd/internal/utils"
	"github.com/delta10/wpsd/internal/wps"
)

var ErrTooLarge = errors.New("reference payload exceeds size limit")

type backend struct {
	slug   string
	base   *url.URL
	config config.Backend
	client *http.Client
}

// covers reports whether u lies below the backend's baseUrl: same scheme and
// host, and a path equal to or below the base path.
func (b *backend) covers(u *url.URL) bool {
	if !strings.EqualFold(u.Scheme, b.base.Scheme) || !strings.EqualFold(u.Host, b.base.Host) {
		return false
	}
	prefix := strings.TrimSuffix(b.base.Path, "/")
	return prefix == "" || u.Path == prefix || strings.HasPrefix(u.Path, prefix+"/")
}

type Client struct {
	backends []backend
	fallback *http.Client
	maxBytes int64
}

// NewClient builds one HTTP client per backend. A reference href is matched
// to the backend with the longest baseUrl it lies below.
func NewClient(backends map[string]config.Backend, timeout time.Duration, maxBytes int64) (*Client, error) {
	c := &Client{
		fallback: &http.Client{Timeout: timeout},
		maxBytes: maxBytes,
	}
	for slug, b := range backends {
		base, err := url.Parse(b.BaseURL)
		if err != nil || base.Scheme == "" || base.Host == "" {
			return nil, fmt.Errorf("backend %s: baseUrl %q is not an absolute url", slug, b.BaseURL)
		}
		tlsConfig, err := backendTLS(b)
		if err != nil {
			return nil, fmt.Errorf("backend %s: %w", slug, err)
		}
		be := backend{slug: slug, base: base, config: b}
		be.client = &http.Client{
			Timeout:   timeout,
			Transport: &http.Transport{TLSClientConfig: tlsConfig},
			// Credentials set for this backend must not follow a redirect elsewhere.
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return errors.New("stopped after 10 redirects")
				}
				if !be.covers(req.URL) {
					return fmt.Errorf("redirect to %s leaves backend %s", req.URL.Redacted(), slug)
				}
				return nil
			},
		}
		c.backends = append(c.backends, be)
	}
	sort.Slice(c.backends, func(i, j int) bool {
		return len(c.backends[i].base.Path) > len(c.backends[j].base.Path)
	})
	return c, nil
}

func backendTLS(b config.Backend) (*tls.Config, error) {
	tlsConfig := &tls.Config{}
	if b.Auth.TLS.RootCertificates != "" {
		rootCertificates, err := os.ReadFile(b.Auth.TLS.RootCertificates)
		if err != nil {
			return nil, fmt.Errorf("could not retrieve root certs: %w", err)
		}

		roots := x509.NewCertPool()
		if ok := roots.AppendCertsFromPEM(rootCertificates); !ok {
			return nil, errors.New("could not load root certs")
		}

		tlsConfig.RootCAs = roots
	}

	if b.Auth.TLS.Certificate != "" && b.Auth.TLS.Key != "" {
		cert, err := tls.LoadX509KeyPair(b.Auth.TLS.Certificate, b.Auth.TLS.Key)
		if err != nil {
			return nil, fmt.Errorf("could not load TLS keypair: %w", err)
		}

		tlsConfig.Certificates = []tls.Certificate{cert}
	}
	return tlsConfig, nil
}

func (c *Client) backendFor(u *url.URL) *backend {
	for i := range c.backends {
		if c.backends[i].covers(u) {
			return &c.backends[i]
		}
	}
	return nil
}

// Resolve fetches the value ref points at. A bodyReference is fetched first
// and sent as the POST body.
func (c *Client) Resolve(ctx context.Context, ref wps.Reference) ([]byte, error) {
	body := ref.Body
	if ref.BodyReference != "" {
		b, err := c.get(ctx, ref.BodyReference, nil)
		if err != nil {
			return nil, fmt.Errorf("bodyReference: %w", err)
		}
		body = b
	}

	var reader io.Reader
	if ref.EffectiveMethod() == wps.MethodPost {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, string(ref.EffectiveMethod()), ref.Href, reader)
	if err != nil {
		return nil, err
	}
	for _, h := range ref.Headers {
		req.Header.Add(h.Key, h.Value)
	}
	if ref.MimeType != "" && reader != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", ref.MimeType)
	}
	utils.DelHopHeaders(req.Header)
	return c.do(req)
}

func (c *Client) get(ctx context.Context, href string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, href, nil)
	if err != nil {
		return nil, err
	}
	utils.CopyHeader(req.Header, header)
	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	client := c.fallback
	if b := c.backendFor(req.URL); b != nil {
		client = b.client
		if b.config.Auth.Basic.Username != "" && b.config.Auth.Basic.Password != "" {
			req.Header.Set("Authorization", utils.GenerateBasicAuthHeader(b.config.Auth.Basic.Username, utils.EnvSubst(b.config.Auth.Basic.Password)))
		}
		for headerKey, headerValue := range b.config.Auth.Header {
			req.Header.Set(headerKey, utils.EnvSubst(headerValue))
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not fetch %s: %w", req.URL.Redacted(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetching %s: backend returned %d", req.URL.Redacted(), resp.StatusCode)
	}

	reader := io.Reader(resp.Body)
	if c.maxBytes > 0 {
		reader = io.LimitReader(resp.Body, c.maxBytes+1)
	}
	b, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	if c.maxBytes > 0 && int64(len(b)) > c.maxBytes {
		return nil, ErrTooLarge
	}
	return b, nil
}

// ResolveInputs replaces every complex reference in inputs with its fetched
// payload. Other values are returned unchanged.
func (c *Client) ResolveInputs(ctx context.Context, inputs map[string][]wps.Data) (map[string][]wps.Data, error) {
	out := make(map[string][]wps.Data, len(inputs))
	for id, values := range inputs {
		resolved := make([]wps.Data, len(values))
		for i, v := range values {
			resolved[i] = v
			cd, ok := v.(wps.ComplexData)
			if !ok {
				continue
			}
			ref, ok := cd.Reference()
			if !ok {
				continue
			}
			payload, err := c.Resolve(ctx, ref)
			if err != nil {
				if errors.Is(err, ErrTooLarge) {
					return nil, &wps.Error{Kind: wps.ErrFileSizeExceeded, Locator: id, Msg: err.Error()}
				}
				return nil, &wps.Error{Kind: wps.ErrInvalidReference, Locator: id, Msg: err.Error()}
			}
			resolved[i] = cd.WithPayload(payload)
		}
		out[id] = resolved
	}
	return out, nil
}
