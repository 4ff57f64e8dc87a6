package utils

import (
	"encoding/base64"
	"net"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"
)

// QueryParamsToLower returns the query with every key lowercased. KVP
// parameter names are case-insensitive.
func QueryParamsToLower(queryParams url.Values) url.Values {
	lowercaseParams := url.Values{}

	for key, values := range queryParams {
		lowercaseKey := strings.ToLower(key)
		lowercaseParams[lowercaseKey] = append(lowercaseParams[lowercaseKey], values...)
	}

	return lowercaseParams
}

// QueryParamsContainMultipleKeys returns the first key that occurs more than
// once, either repeated or in a different case.
func QueryParamsContainMultipleKeys(queryParams url.Values) (string, bool) {
	params := map[string]bool{}

	for key, values := range queryParams {
		lowercaseKey := strings.ToLower(key)
		if params[lowercaseKey] || len(values) > 1 {
			return key, true
		}

		params[lowercaseKey] = true
	}

	return "", false
}

// SplitList splits a comma separated KVP value, dropping empty items.
func SplitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// Unescape decodes a percent-encoded KVP token, returning it unchanged when
// it is not valid percent-encoding.
func Unescape(token string) string {
	if v, err := url.QueryUnescape(token); err == nil {
		return v
	}
	return token
}

func GenerateBasicAuthHeader(username, password string) string {
	auth := username + ":" + password
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(auth))
}

func CopyHeader(dst, src http.Header) {
	for k, vv := range src {
		for _, v := range vv {
			dst.Add(k, v)
		}
	}
}

func DelHopHeaders(header http.Header) {
	// Hop-by-hop headers. These are never forwarded to a reference backend.
	// http://www.w3.org/Protocols/rfc2616/rfc2616-sec13.html
	var hopHeaders = []string{
		"Connection",
		"Keep-Alive",
		"Proxy-Authenticate",
		"Proxy-Authorization",
		"Te", // canonicalized version of "TE"
		"Trailers",
		"Transfer-Encoding",
		"Upgrade",
	}

	for _, h := range hopHeaders {
		header.Del(h)
	}
}

var envVar = regexp.MustCompile(`\${([^}]+)}`)

// EnvSubst replaces ${NAME} with the value of the environment variable NAME.
// Unset variables become empty.
func EnvSubst(input string) string {
	return envVar.ReplaceAllStringFunc(input, func(match string) string {
		varName := match[2 : len(match)-1]
		if value, exists := os.LookupEnv(varName); exists {
			return value
		}

		return ""
	})
}

func ReadUserIP(r *http.Request) string {
	forwardedFor := r.Header.Get("X-Forwarded-For")
	if forwardedFor != "" {
		ips := strings.Split(forwardedFor, ",")
		return strings.TrimSpace(ips[0])
	}

	host, _, _ := net.SplitHostPort(r.RemoteAddr)
	return host
}

func StringInSlice(a string, list []string) bool {
	for _, b := range list {
		if b == a {
			return true
		}
	}
	return false
}
