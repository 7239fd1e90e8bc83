package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"veda-backend/internal/metrics"
	customMiddleware "veda-backend/internal/middleware"
	"veda-backend/internal/repository"
	"veda-backend/internal/storage"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type nopNotifier struct{}

func (nopNotifier) Publish(context.Context, string) error { return nil }

type stubText struct{}

func (stubText) GenerateContent(context.Context, string) (json.RawMessage, error) {
	return json.RawMessage(`{"candidates":[{"content":{"parts":[{"text":"Hi"}]}}]}`), nil
}

type stubSpeech struct{}

func (stubSpeech) Synthesize(context.Context, string) (json.RawMessage, error) {
	return json.RawMessage(`{"audioContent":"AAAA"}`), nil
}

func newTestServer(t *testing.T, mutate func(*Deps)) *httptest.Server {
	t.Helper()
	d := Deps{
		Repo:     repository.NewAnalyticsRepo(storage.NewMemoryBackend(), nil, zap.NewNop()),
		Text:     stubText{},
		Speech:   stubSpeech{},
		Notifier: nopNotifier{},
		Logger:   zap.NewNop(),
	}
	if mutate != nil {
		mutate(&d)
	}
	srv := httptest.NewServer(NewRouter(d))
	t.Cleanup(srv.Close)
	return srv
}

func send(t *testing.T, method, url, body string, headers map[string]string) *http.Response {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, rd)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestRouter_AnalyticsScenario(t *testing.T) {
	srv := newTestServer(t, nil)

	resp := send(t, http.MethodPost, srv.URL+"/api/analytics", `{"id":"a1","question":"Q","answer":"A","timestamp":"t","rating":null}`, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = send(t, http.MethodGet, srv.URL+"/api/analytics", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[{"id":"a1","question":"Q","answer":"A","timestamp":"t","rating":null}]`, readBody(t, resp))

	resp = send(t, http.MethodPost, srv.URL+"/api/analytics/rate", `{"id":"a1","rating":"up"}`, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = send(t, http.MethodPost, srv.URL+"/api/analytics/rate", `{"id":"zz","rating":"down"}`, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = send(t, http.MethodGet, srv.URL+"/api/analytics", "", nil)
	assert.JSONEq(t, `[{"id":"a1","question":"Q","answer":"A","timestamp":"t","rating":"up"}]`, readBody(t, resp))
}

func TestRouter_ProxyRoutes(t *testing.T) {
	srv := newTestServer(t, nil)

	resp := send(t, http.MethodPost, srv.URL+"/api/generate-content", `{"prompt":"hi"}`, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "candidates")

	for _, path := range []string{"/api/text-to-speech", "/api/synthesize-speech"} {
		resp := send(t, http.MethodPost, srv.URL+path, `{"text":"hi"}`, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode, path)
		assert.JSONEq(t, `{"audioContent":"AAAA"}`, readBody(t, resp))
	}
}

func TestRouter_UnsupportedMethodsAre501(t *testing.T) {
	srv := newTestServer(t, nil)

	cases := []struct{ method, path string }{
		{http.MethodGet, "/api/generate-content"},
		{http.MethodPut, "/api/text-to-speech"},
		{http.MethodDelete, "/api/analytics"},
		{http.MethodGet, "/api/analytics/rate"},
		{http.MethodPatch, "/api/analytics"},
	}
	for _, c := range cases {
		resp := send(t, c.method, srv.URL+c.path, "", nil)
		assert.Equal(t, http.StatusNotImplemented, resp.StatusCode, "%s %s", c.method, c.path)
		assert.JSONEq(t, `{"error":"Unsupported method."}`, readBody(t, resp))
	}
}

func TestRouter_OptionsAlways200(t *testing.T) {
	srv := newTestServer(t, nil)

	for _, path := range []string{"/api/analytics", "/api/generate-content", "/anything"} {
		resp := send(t, http.MethodOptions, srv.URL+path, "", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		assert.Empty(t, readBody(t, resp))
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	srv := newTestServer(t, nil)

	resp := send(t, http.MethodOptions, srv.URL+"/api/analytics/rate", "", map[string]string{
		"Origin":                         "https://anywhere.example",
		"Access-Control-Request-Method":  "POST",
		"Access-Control-Request-Headers": "Content-Type",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), "POST")

	resp = send(t, http.MethodGet, srv.URL+"/api/analytics", "", map[string]string{"Origin": "https://anywhere.example"})
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestRouter_CORSRestrictedOrigins(t *testing.T) {
	srv := newTestServer(t, func(d *Deps) {
		d.AllowedOrigins = []string{"https://veda.example"}
	})

	resp := send(t, http.MethodGet, srv.URL+"/api/analytics", "", map[string]string{"Origin": "https://veda.example"})
	assert.Equal(t, "https://veda.example", resp.Header.Get("Access-Control-Allow-Origin"))

	resp = send(t, http.MethodGet, srv.URL+"/api/analytics", "", map[string]string{"Origin": "https://evil.example"})
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestRouter_ReadSecretProtectsListOnly(t *testing.T) {
	const secret = "s3cret"
	srv := newTestServer(t, func(d *Deps) { d.ReadSecret = secret })

	resp := send(t, http.MethodPost, srv.URL+"/api/analytics", `{"id":"a1"}`, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = send(t, http.MethodGet, srv.URL+"/api/analytics", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "analyst",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(secret))
	require.NoError(t, err)

	resp = send(t, http.MethodGet, srv.URL+"/api/analytics", "", map[string]string{"Authorization": "Bearer " + token})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouter_RateLimitAppliesToProxyOnly(t *testing.T) {
	srv := newTestServer(t, func(d *Deps) {
		d.RateLimiter = customMiddleware.NewRateLimiter(0.001, 1)
	})

	first := send(t, http.MethodPost, srv.URL+"/api/generate-content", `{"prompt":"a"}`, nil)
	assert.Equal(t, http.StatusOK, first.StatusCode)
	second := send(t, http.MethodPost, srv.URL+"/api/text-to-speech", `{"text":"a"}`, nil)
	assert.Equal(t, http.StatusTooManyRequests, second.StatusCode)

	for i := 0; i < 3; i++ {
		resp := send(t, http.MethodGet, srv.URL+"/api/analytics", "", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	}
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	collector := metrics.NewCollector("veda")
	srv := newTestServer(t, func(d *Deps) { d.Metrics = collector })

	resp := send(t, http.MethodGet, srv.URL+"/health", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok","service":"veda-backend","storage":"memory"}`, readBody(t, resp))

	resp = send(t, http.MethodGet, srv.URL+"/metrics", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), `veda_http_requests_total{method="GET",route="/health",status="200"} 1`)
}

func TestRouter_ServesStaticClient(t *testing.T) {
	static := fstest.MapFS{
		"index.html":    {Data: []byte("<html>veda</html>")},
		"knowledge.txt": {Data: []byte("kb")},
	}
	srv := newTestServer(t, func(d *Deps) { d.Static = static })

	resp := send(t, http.MethodGet, srv.URL+"/", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "veda")

	resp = send(t, http.MethodGet, srv.URL+"/knowledge.txt", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "kb", readBody(t, resp))
}
