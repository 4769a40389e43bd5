package webhook

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI records calls and replays canned results.
type fakeAPI struct {
	method string
	path   string
	body   any
	result any
	err    error
}

func (f *fakeAPI) Get(ctx context.Context, path string, result any) error {
	f.method, f.path = "GET", path
	return f.respond(result)
}

func (f *fakeAPI) Post(ctx context.Context, path string, body, result any) error {
	f.method, f.path, f.body = "POST", path, body
	return f.respond(result)
}

func (f *fakeAPI) Delete(ctx context.Context, path string, result any) error {
	f.method, f.path = "DELETE", path
	return f.respond(result)
}

func (f *fakeAPI) respond(result any) error {
	if f.err != nil {
		return f.err
	}
	switch out := result.(type) {
	case *Webhook:
		if hook, ok := f.result.(Webhook); ok {
			*out = hook
		}
	case *[]Webhook:
		if hooks, ok := f.result.([]Webhook); ok {
			*out = hooks
		}
	}
	return nil
}

func TestRegister(t *testing.T) {
	api := &fakeAPI{result: Webhook{
		ID:       "wh-1",
		URL:      "https://example.com/hook",
		DeviceID: "device-abc",
		Secret:   "s3cret",
		Events:   []EventType{EventAlert},
	}}
	m := NewManager(api)

	hook, err := m.Register(context.Background(), "https://example.com/hook", "device-abc",
		[]EventType{EventAlert})
	require.NoError(t, err)

	assert.Equal(t, "POST", api.method)
	assert.Equal(t, "/webhooks", api.path)
	payload, ok := api.body.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "https://example.com/hook", payload["url"])
	assert.Equal(t, "device-abc", payload["device_id"])

	assert.Equal(t, "wh-1", hook.ID)
	assert.Equal(t, "s3cret", hook.Secret)
}

func TestRegisterFailure(t *testing.T) {
	api := &fakeAPI{err: errors.New("boom")}
	m := NewManager(api)

	_, err := m.Register(context.Background(), "https://example.com/hook", "device-abc", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "device-abc")
}

func TestListEscapesDeviceID(t *testing.T) {
	api := &fakeAPI{result: []Webhook{{ID: "wh-1"}, {ID: "wh-2"}}}
	m := NewManager(api)

	hooks, err := m.List(context.Background(), "device a&b")
	require.NoError(t, err)
	assert.Equal(t, "GET", api.method)
	assert.Equal(t, "/webhooks?device_id=device+a%26b", api.path)
	assert.Len(t, hooks, 2)
}

func TestDelete(t *testing.T) {
	api := &fakeAPI{}
	m := NewManager(api)

	require.NoError(t, m.Delete(context.Background(), "wh-1"))
	assert.Equal(t, "DELETE", api.method)
	assert.Equal(t, "/webhooks/wh-1", api.path)
}

func TestTest(t *testing.T) {
	api := &fakeAPI{}
	m := NewManager(api)

	require.NoError(t, m.Test(context.Background(), "wh-1"))
	assert.Equal(t, "POST", api.method)
	assert.Equal(t, "/webhooks/wh-1/test", api.path)
}
