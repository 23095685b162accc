package testutil

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/gameops/remoteconfig/internal/api"
	"github.com/gameops/remoteconfig/internal/store"
)

// NewTestServer creates a test server with in-memory store for testing.
// The debug evaluation instant is enabled so date-window tests can pin time.
func NewTestServer(t *testing.T, env, adminKey string) (*api.Server, *store.MemoryStore) {
	t.Helper()
	memStore := store.NewMemoryStore()
	server := api.NewServer(memStore, api.Options{
		Env:               env,
		AdminAPIKey:       adminKey,
		AllowDebugInstant: true,
		Logger:            zerolog.Nop(),
	})
	return server, memStore
}

// HTTPRequest is a helper for making test HTTP requests.
type HTTPRequest struct {
	Method  string
	Path    string
	Body    string
	Headers map[string]string
}

// Do executes the HTTP request and returns the response recorder.
func (r *HTTPRequest) Do(t *testing.T, handler http.Handler) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if r.Body != "" {
		body = bytes.NewBufferString(r.Body)
	}
	req := httptest.NewRequest(r.Method, r.Path, body)
	if r.Body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range r.Headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

// SeedConfigs populates the store with test configurations.
func SeedConfigs(ctx context.Context, st store.Store, configs []store.UpsertConfigParams) error {
	for _, c := range configs {
		if _, err := st.UpsertConfig(ctx, c); err != nil {
			return err
		}
	}
	return nil
}
