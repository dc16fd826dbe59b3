package httpclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientDoesNotRetry(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "storepay", r.Header.Get("User-Agent"))
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New().WithBaseURL(srv.URL).WithBearerToken("tok").WithHeader("User-Agent", "storepay")
	resp, err := c.Get(context.Background(), "/thing")
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.False(t, resp.OK())
	assert.Equal(t, 1, calls)
}

func TestClientPostJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_ = json.NewEncoder(w).Encode(map[string]string{"echo": body["name"]})
	}))
	defer srv.Close()

	resp, err := New().WithBaseURL(srv.URL).Post(context.Background(), "/echo", map[string]string{"name": "ada"})
	require.NoError(t, err)
	assert.True(t, resp.OK())
	assert.JSONEq(t, `{"echo":"ada"}`, string(resp.Body))
}

func TestClientHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New().WithBaseURL(srv.URL).Get(ctx, "/")
	assert.Error(t, err)
}
