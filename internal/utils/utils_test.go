package utils

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueryParams(t *testing.T) {
	q := url.Values{"SERVICE": {"WPS"}, "Request": {"Execute"}}
	lower := QueryParamsToLower(q)
	assert.Equal(t, "WPS", lower.Get("service"))
	assert.Equal(t, "Execute", lower.Get("request"))

	_, ok := QueryParamsContainMultipleKeys(q)
	assert.False(t, ok)

	key, ok := QueryParamsContainMultipleKeys(url.Values{"version": {"1.0.0", "2.0.0"}})
	assert.True(t, ok)
	assert.Equal(t, "version", key)

	_, ok = QueryParamsContainMultipleKeys(url.Values{"version": {"1.0.0"}, "VERSION": {"1.0.0"}})
	assert.True(t, ok)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, SplitList(" a, ,b,"))
	assert.Nil(t, SplitList(""))
}

func TestUnescape(t *testing.T) {
	assert.Equal(t, "a;b c", Unescape("a%3Bb+c"))
	assert.Equal(t, "100%", Unescape("100%"))
}

func TestEnvSubst(t *testing.T) {
	t.Setenv("WPSD_TEST_SECRET", "s3cret")
	assert.Equal(t, "password: s3cret, other: ", EnvSubst("password: ${WPSD_TEST_SECRET}, other: ${WPSD_TEST_UNSET}"))
}

func TestHeaders(t *testing.T) {
	assert.Equal(t, "Basic dXNlcjpwYXNz", GenerateBasicAuthHeader("user", "pass"))

	src := http.Header{"Connection": {"close"}, "Accept": {"text/xml", "application/json"}}
	dst := http.Header{}
	CopyHeader(dst, src)
	DelHopHeaders(dst)
	assert.Empty(t, dst.Get("Connection"))
	assert.Equal(t, []string{"text/xml", "application/json"}, dst.Values("Accept"))
}

func TestReadUserIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/wps", nil)
	r.RemoteAddr = "10.0.0.7:51234"
	assert.Equal(t, "10.0.0.7", ReadUserIP(r))

	r.Header.Set("X-Forwarded-For", "192.0.2.1, 10.0.0.1")
	assert.Equal(t, "192.0.2.1", ReadUserIP(r))

	assert.True(t, StringInSlice("b", []string{"a", "b"}))
	assert.False(t, StringInSlice("c", nil))
}
