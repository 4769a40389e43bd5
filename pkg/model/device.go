package model

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// DeviceInfo describes an IoT device to the dashboard service.
type DeviceInfo struct {
	// DeviceType is the type of device, e.g. "sensor" or "gateway".
	DeviceType string `json:"device_type"`

	// Name is the human-readable device name.
	Name string `json:"name"`

	// FirmwareVersion is the device firmware version.
	FirmwareVersion string `json:"firmware_version"`

	// Metadata holds additional key-value pairs.
	Metadata map[string]string `json:"metadata"`
}

// DeviceStatus is the operational state of a device.
type DeviceStatus string

// Device status values. The string tags are fixed by the API.
const (
	StatusOnline      DeviceStatus = "online"
	StatusOffline     DeviceStatus = "offline"
	StatusMaintenance DeviceStatus = "maintenance"
	StatusError       DeviceStatus = "error"
)

// IsValid reports whether the status is a known value.
func (s DeviceStatus) IsValid() bool {
	switch s {
	case StatusOnline, StatusOffline, StatusMaintenance, StatusError:
		return true
	default:
		return false
	}
}

// AlertLevel classifies device notifications by severity.
type AlertLevel string

// Alert levels, lowest to highest severity.
const (
	AlertInfo     AlertLevel = "info"
	AlertWarning  AlertLevel = "warning"
	AlertError    AlertLevel = "error"
	AlertCritical AlertLevel = "critical"
)

// DeviceData is one reported data point.
type DeviceData struct {
	// Timestamp is when the data was collected, in unix seconds.
	Timestamp int64 `json:"timestamp"`

	// Status is the device status at collection time.
	Status DeviceStatus `json:"status"`

	// Readings holds sensor readings as key-value pairs.
	Readings map[string]json.RawMessage `json:"readings"`

	// AlertLevel is set when the data point raises an alert.
	AlertLevel AlertLevel `json:"alert_level,omitempty"`
}

// NewDeviceData creates a data point with the current timestamp and
// no readings.
func NewDeviceData(status DeviceStatus) *DeviceData {
	return &DeviceData{
		Timestamp: time.Now().Unix(),
		Status:    status,
		Readings:  map[string]json.RawMessage{},
	}
}

// AddReading adds a sensor reading. The value may be any
// JSON-serializable type.
func (d *DeviceData) AddReading(name string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode reading %q: %w", name, err)
	}
	if d.Readings == nil {
		d.Readings = map[string]json.RawMessage{}
	}
	d.Readings[name] = data
	return nil
}

// WithAlertLevel sets the alert level and returns the data point for
// chaining.
func (d *DeviceData) WithAlertLevel(level AlertLevel) *DeviceData {
	d.AlertLevel = level
	return d
}
