// Package auth checks bearer tokens on Execute requests.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc"
	"github.com/golang-jwt/jwt/v4"

	"github.com/delta10/wpsd/internal/utils"
)

var (
	ErrNoToken      = errors.New("no bearer token")
	ErrInvalidToken = errors.New("invalid bearer token")
	ErrForbidden    = errors.New("caller is not in an allowed group")
)

type ClaimsWithGroups struct {
	jwt.RegisteredClaims
	Groups []string `json:"groups"`
}

type Authenticator struct {
	keyfunc jwt.Keyfunc
	jwks    *keyfunc.JWKS
}

// NewAuthenticator verifies tokens against the keys published at jwksURL.
// Keys are refreshed in the background until Close.
func NewAuthenticator(jwksURL string) (*Authenticator, error) {
	jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  5 * time.Minute,
		RefreshTimeout:    10 * time.Second,
		RefreshUnknownKID: true,
	})
	if err != nil {
		return nil, fmt.Errorf("could not load jwks from %s: %w", jwksURL, err)
	}
	return &Authenticator{keyfunc: jwks.Keyfunc, jwks: jwks}, nil
}

// NewStaticAuthenticator verifies tokens with a fixed key function.
func NewStaticAuthenticator(kf jwt.Keyfunc) *Authenticator {
	return &Authenticator{keyfunc: kf}
}

func (a *Authenticator) Close() {
	if a.jwks != nil {
		a.jwks.EndBackground()
	}
}

// Authenticate returns the verified claims of the request's bearer token.
func (a *Authenticator) Authenticate(r *http.Request) (*ClaimsWithGroups, error) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return nil, ErrNoToken
	}

	claims := &ClaimsWithGroups{}
	parsed, err := jwt.ParseWithClaims(token, claims, a.keyfunc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Authorize checks that the caller may use a resource restricted to
// allowedGroups. No groups means unrestricted and needs no token.
func (a *Authenticator) Authorize(r *http.Request, allowedGroups []string) (*ClaimsWithGroups, error) {
	if len(allowedGroups) == 0 {
		return nil, nil
	}
	if a == nil {
		return nil, ErrForbidden
	}
	claims, err := a.Authenticate(r)
	if err != nil {
		return nil, err
	}
	for _, g := range claims.Groups {
		if utils.StringInSlice(g, allowedGroups) {
			return claims, nil
		}
	}
	return claims, ErrForbidden
}

type contextKey struct{}

func WithClaims(ctx context.Context, c *ClaimsWithGroups) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

func FromContext(ctx context.Context) (*ClaimsWithGroups, bool) {
	c, ok := ctx.Value(contextKey{}).(*ClaimsWithGroups)
	return c, ok && c != nil
}
