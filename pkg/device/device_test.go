package device

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetdash/fleetdash-go/pkg/api"
	"github.com/fleetdash/fleetdash-go/pkg/identity"
	"github.com/fleetdash/fleetdash-go/pkg/model"
	"github.com/fleetdash/fleetdash-go/pkg/token"
)

func newTestManager(t *testing.T, handler http.HandlerFunc) *Manager {
	t.Helper()
	id, err := identity.New(identity.Config{})
	require.NoError(t, err)

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewManager(api.NewClient(api.Config{BaseURL: srv.URL}, token.NewIssuer(id), id.DeviceID()))
}

func TestRegister(t *testing.T) {
	m := newTestManager(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/devices", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "device-abc", body["device_id"])
		assert.Equal(t, "temperature-sensor", body["device_type"])
		assert.Equal(t, "Greenhouse 1", body["name"])

		json.NewEncoder(w).Encode(RegistrationResponse{
			DeviceID: "device-abc",
			Status:   "registered",
			APIKey:   "key-1",
		})
	})

	resp, err := m.Register(context.Background(), "device-abc", &model.DeviceInfo{
		DeviceType:      "temperature-sensor",
		Name:            "Greenhouse 1",
		FirmwareVersion: "1.2.0",
	})
	require.NoError(t, err)
	assert.Equal(t, "device-abc", resp.DeviceID)
	assert.Equal(t, "registered", resp.Status)
	assert.Equal(t, "key-1", resp.APIKey)
}

func TestRegisterFailure(t *testing.T) {
	m := newTestManager(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "duplicate device", http.StatusConflict)
	})

	_, err := m.Register(context.Background(), "device-abc", &model.DeviceInfo{})
	require.Error(t, err)

	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
}

func TestUpdateSendsOnlySetFields(t *testing.T) {
	m := newTestManager(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/devices/device-abc", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Greenhouse 2", body["name"])
		assert.NotContains(t, body, "metadata")
		assert.NotContains(t, body, "firmware_version")

		json.NewEncoder(w).Encode(model.DeviceInfo{Name: "Greenhouse 2"})
	})

	name := "Greenhouse 2"
	info, err := m.Update(context.Background(), "device-abc", &UpdateRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Greenhouse 2", info.Name)
}

func TestSendStatus(t *testing.T) {
	m := newTestManager(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/devices/device-abc/status", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "online", body["status"])
		assert.NotZero(t, body["timestamp"])

		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, m.SendStatus(context.Background(), "device-abc", model.StatusOnline))
}

func TestListPagination(t *testing.T) {
	tests := []struct {
		name     string
		limit    int
		offset   int
		rawQuery string
	}{
		{"Defaults", 0, 0, ""},
		{"LimitOnly", 5, 0, "limit=5"},
		{"OffsetOnly", 0, 10, "offset=10"},
		{"Both", 5, 10, "limit=5&offset=10"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := newTestManager(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/devices", r.URL.Path)
				assert.Equal(t, tc.rawQuery, r.URL.RawQuery)
				json.NewEncoder(w).Encode([]model.DeviceInfo{{Name: "a"}, {Name: "b"}})
			})

			devices, err := m.List(context.Background(), tc.limit, tc.offset)
			require.NoError(t, err)
			assert.Len(t, devices, 2)
		})
	}
}
