package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetdash/fleetdash-go/pkg/identity"
	"github.com/fleetdash/fleetdash-go/pkg/token"
)

func newTestIdentity(t *testing.T) *identity.Identity {
	t.Helper()
	id, err := identity.New(identity.Config{})
	require.NoError(t, err)
	return id
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *identity.Identity, *httptest.Server) {
	t.Helper()
	id := newTestIdentity(t)
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewClient(Config{BaseURL: srv.URL}, token.NewIssuer(id), id.DeviceID())
	return client, id, srv
}

func TestRequestCarriesFreshToken(t *testing.T) {
	var authHeaders []string
	client, id, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		authHeaders = append(authHeaders, r.Header.Get("Authorization"))
		w.Write([]byte(`{}`))
	})

	require.NoError(t, client.Get(context.Background(), "/devices", nil))
	require.NoError(t, client.Get(context.Background(), "/devices", nil))
	require.Len(t, authHeaders, 2)

	for _, header := range authHeaders {
		require.True(t, strings.HasPrefix(header, "Bearer "))
		claims, err := token.Verify(strings.TrimPrefix(header, "Bearer "), id.PublicKey())
		require.NoError(t, err)
		assert.Equal(t, id.DeviceID(), claims.DeviceID)
		assert.Equal(t, int64(300), claims.Exp-claims.Iat)
	}
}

func TestPostEncodesBodyAndDecodesResult(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}
	type reply struct {
		ID string `json:"id"`
	}

	client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/devices", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Contains(t, r.Header.Get("User-Agent"), "fleetdash-go/")

		var in payload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "sensor-1", in.Name)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(reply{ID: "dev-42"})
	})

	var out reply
	require.NoError(t, client.Post(context.Background(), "/devices", payload{Name: "sensor-1"}, &out))
	assert.Equal(t, "dev-42", out.ID)
}

func TestNonSuccessStatusReturnsError(t *testing.T) {
	client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "device not found", http.StatusNotFound)
	})

	err := client.Get(context.Background(), "/devices/missing", nil)
	require.Error(t, err)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "device not found", apiErr.Body)
	assert.Contains(t, apiErr.Error(), "404")
}

func TestDeleteWithoutResult(t *testing.T) {
	var method, path string
	client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, client.Delete(context.Background(), "/webhooks/wh-1", nil))
	assert.Equal(t, http.MethodDelete, method)
	assert.Equal(t, "/webhooks/wh-1", path)
}

func TestPutMergesBaseURL(t *testing.T) {
	id := newTestIdentity(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/devices/dev-1", r.URL.Path)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	// Trailing slash on the base URL must not double up.
	client := NewClient(Config{BaseURL: srv.URL + "/api/v1/"}, token.NewIssuer(id), id.DeviceID())
	require.NoError(t, client.Put(context.Background(), "/devices/dev-1", map[string]string{"name": "n"}, nil))
}

func TestContextCancellation(t *testing.T) {
	started := make(chan struct{})
	client, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	err := client.Get(ctx, "/devices", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTransportErrorIsWrapped(t *testing.T) {
	id := newTestIdentity(t)
	client := NewClient(Config{
		BaseURL:    "http://127.0.0.1:1",
		HTTPClient: &http.Client{Timeout: time.Second},
	}, token.NewIssuer(id), id.DeviceID())

	err := client.Get(context.Background(), "/devices", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GET /devices failed")
}
