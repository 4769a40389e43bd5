// Package device manages device registration and metadata through
// the dashboard API.
package device

import (
	"context"
	"fmt"
	"time"

	"github.com/fleetdash/fleetdash-go/pkg/api"
	"github.com/fleetdash/fleetdash-go/pkg/model"
)

// RegistrationResponse is the service's answer to a device
// registration.
type RegistrationResponse struct {
	DeviceID string `json:"device_id"`
	Status   string `json:"status"`
	APIKey   string `json:"api_key,omitempty"`
}

// UpdateRequest is a partial device update. Nil fields are left
// unchanged.
type UpdateRequest struct {
	Name            *string            `json:"name,omitempty"`
	Metadata        *map[string]string `json:"metadata,omitempty"`
	FirmwareVersion *string            `json:"firmware_version,omitempty"`
}

// Manager handles device CRUD operations.
type Manager struct {
	client *api.Client
}

// NewManager creates a device manager on top of the API client.
func NewManager(client *api.Client) *Manager {
	return &Manager{client: client}
}

// Register registers a new device.
func (m *Manager) Register(ctx context.Context, deviceID string, info *model.DeviceInfo) (*RegistrationResponse, error) {
	payload := map[string]any{
		"device_id":        deviceID,
		"device_type":      info.DeviceType,
		"name":             info.Name,
		"firmware_version": info.FirmwareVersion,
		"metadata":         info.Metadata,
	}

	var resp RegistrationResponse
	if err := m.client.Post(ctx, "/devices", payload, &resp); err != nil {
		return nil, fmt.Errorf("failed to register device %s: %w", deviceID, err)
	}
	return &resp, nil
}

// Update updates device information and returns the new state.
func (m *Manager) Update(ctx context.Context, deviceID string, update *UpdateRequest) (*model.DeviceInfo, error) {
	var info model.DeviceInfo
	path := "/devices/" + deviceID
	if err := m.client.Put(ctx, path, update, &info); err != nil {
		return nil, fmt.Errorf("failed to update device %s: %w", deviceID, err)
	}
	return &info, nil
}

// SendStatus reports the device status with the current timestamp.
func (m *Manager) SendStatus(ctx context.Context, deviceID string, status model.DeviceStatus) error {
	payload := map[string]any{
		"status":    status,
		"timestamp": time.Now().Unix(),
	}
	path := fmt.Sprintf("/devices/%s/status", deviceID)
	if err := m.client.Put(ctx, path, payload, nil); err != nil {
		return fmt.Errorf("failed to send status for device %s: %w", deviceID, err)
	}
	return nil
}

// List fetches registered devices. Zero limit and offset fetch the
// service defaults.
func (m *Manager) List(ctx context.Context, limit, offset int) ([]model.DeviceInfo, error) {
	path := "/devices"
	switch {
	case limit > 0 && offset > 0:
		path = fmt.Sprintf("/devices?limit=%d&offset=%d", limit, offset)
	case limit > 0:
		path = fmt.Sprintf("/devices?limit=%d", limit)
	case offset > 0:
		path = fmt.Sprintf("/devices?offset=%d", offset)
	}

	var devices []model.DeviceInfo
	if err := m.client.Get(ctx, path, &devices); err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}
	return devices, nil
}
