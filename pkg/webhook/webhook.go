// Package webhook manages webhook registrations and payload
// signatures.
package webhook

import (
	"context"
	"fmt"
	"net/url"
)

// EventType selects which device events a webhook receives.
type EventType string

// Webhook event types. The string tags are fixed by the API.
const (
	EventDataUpdate   EventType = "data_update"
	EventStatusChange EventType = "status_change"
	EventAlert        EventType = "alert"
	EventConfigChange EventType = "config_change"
)

// Webhook is a registered webhook.
type Webhook struct {
	// ID uniquely identifies the webhook.
	ID string `json:"id"`

	// URL is called when events occur.
	URL string `json:"url"`

	// DeviceID is the device this webhook is for.
	DeviceID string `json:"device_id"`

	// Secret signs webhook payloads; see Signature.
	Secret string `json:"secret"`

	// Events this webhook receives.
	Events []EventType `json:"events"`
}

// Client is the API surface the manager needs; pkg/api.Client
// implements it.
type Client interface {
	Get(ctx context.Context, path string, result any) error
	Post(ctx context.Context, path string, body, result any) error
	Delete(ctx context.Context, path string, result any) error
}

// Manager handles webhook CRUD operations.
type Manager struct {
	client Client
}

// NewManager creates a webhook manager on top of the API client.
func NewManager(client Client) *Manager {
	return &Manager{client: client}
}

// Register registers a new webhook for a device. The service
// generates the webhook ID and signing secret.
func (m *Manager) Register(ctx context.Context, callbackURL, deviceID string, events []EventType) (*Webhook, error) {
	payload := map[string]any{
		"url":       callbackURL,
		"device_id": deviceID,
		"events":    events,
	}

	var hook Webhook
	if err := m.client.Post(ctx, "/webhooks", payload, &hook); err != nil {
		return nil, fmt.Errorf("failed to register webhook for device %s: %w", deviceID, err)
	}
	return &hook, nil
}

// List fetches all webhooks registered for a device.
func (m *Manager) List(ctx context.Context, deviceID string) ([]Webhook, error) {
	path := "/webhooks?device_id=" + url.QueryEscape(deviceID)

	var hooks []Webhook
	if err := m.client.Get(ctx, path, &hooks); err != nil {
		return nil, fmt.Errorf("failed to list webhooks: %w", err)
	}
	return hooks, nil
}

// Delete removes a webhook.
func (m *Manager) Delete(ctx context.Context, webhookID string) error {
	if err := m.client.Delete(ctx, "/webhooks/"+webhookID, nil); err != nil {
		return fmt.Errorf("failed to delete webhook %s: %w", webhookID, err)
	}
	return nil
}

// Test asks the service to deliver a test event to a webhook.
func (m *Manager) Test(ctx context.Context, webhookID string) error {
	path := fmt.Sprintf("/webhooks/%s/test", webhookID)
	if err := m.client.Post(ctx, path, map[string]any{}, nil); err != nil {
		return fmt.Errorf("failed to test webhook %s: %w", webhookID, err)
	}
	return nil
}
