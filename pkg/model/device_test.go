package model

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeviceStatusIsValid(t *testing.T) {
	for _, s := range []DeviceStatus{StatusOnline, StatusOffline, StatusMaintenance, StatusError} {
		assert.True(t, s.IsValid(), "status %q", s)
	}
	assert.False(t, DeviceStatus("rebooting").IsValid())
	assert.False(t, DeviceStatus("").IsValid())
}

func TestNewDeviceData(t *testing.T) {
	d := NewDeviceData(StatusOnline)
	assert.Equal(t, StatusOnline, d.Status)
	assert.NotZero(t, d.Timestamp)
	assert.NotNil(t, d.Readings)
	assert.Empty(t, d.AlertLevel)
}

func TestAddReading(t *testing.T) {
	d := NewDeviceData(StatusOnline)
	require.NoError(t, d.AddReading("temperature", 21.5))
	require.NoError(t, d.AddReading("door_open", true))

	assert.JSONEq(t, "21.5", string(d.Readings["temperature"]))
	assert.JSONEq(t, "true", string(d.Readings["door_open"]))
}

func TestAddReadingNilMap(t *testing.T) {
	var d DeviceData
	require.NoError(t, d.AddReading("humidity", 55))
	assert.Len(t, d.Readings, 1)
}

func TestDeviceDataJSON(t *testing.T) {
	d := NewDeviceData(StatusError).WithAlertLevel(AlertCritical)
	require.NoError(t, d.AddReading("temperature", 99))

	data, err := json.Marshal(d)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "error", decoded["status"])
	assert.Equal(t, "critical", decoded["alert_level"])

	readings, ok := decoded["readings"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(99), readings["temperature"])
}

func TestAlertLevelOmittedWhenEmpty(t *testing.T) {
	data, err := json.Marshal(NewDeviceData(StatusOnline))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "alert_level")
}
