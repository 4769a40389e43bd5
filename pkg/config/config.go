// Package config holds the SDK client configuration.
//
// Configuration can be built in code, loaded from a JSON or YAML
// file, or read from FLEETDASH_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
	"github.com/joeshaw/envdecode"
	"gopkg.in/yaml.v3"
)

// DefaultRequestTimeout bounds API requests when no timeout is
// configured.
const DefaultRequestTimeout = 30 * time.Second

// Config errors.
var (
	ErrMissingAPIURL     = errors.New("api_url is required")
	ErrUnknownFileFormat = errors.New("unknown config file format")
)

// Config configures the SDK client.
type Config struct {
	// APIURL is the base URL for the dashboard API service.
	APIURL string `json:"api_url" yaml:"api_url" env:"FLEETDASH_API_URL"`

	// SocketURL is the WebSocket endpoint URL. Optional; the socket
	// client is unavailable without it.
	SocketURL string `json:"websocket_url,omitempty" yaml:"websocket_url,omitempty" env:"FLEETDASH_WEBSOCKET_URL"`

	// KeyFile is the path to the private key file for authentication.
	KeyFile string `json:"private_key_path,omitempty" yaml:"private_key_path,omitempty" env:"FLEETDASH_PRIVATE_KEY_PATH"`

	// KeyBase64 is the private key as a base64 string, as an
	// alternative to a key file.
	KeyBase64 string `json:"private_key_base64,omitempty" yaml:"private_key_base64,omitempty" env:"FLEETDASH_PRIVATE_KEY_BASE64"`

	// DeviceID is the device identifier. Generated if empty.
	DeviceID string `json:"device_id,omitempty" yaml:"device_id,omitempty" env:"FLEETDASH_DEVICE_ID"`

	// RequestTimeout bounds API requests
	// (default: DefaultRequestTimeout).
	RequestTimeout time.Duration `json:"request_timeout,omitempty" yaml:"request_timeout,omitempty" env:"FLEETDASH_REQUEST_TIMEOUT"`
}

// New creates a configuration with the minimal required parameters.
func New(apiURL string) *Config {
	return &Config{
		APIURL:         apiURL,
		RequestTimeout: DefaultRequestTimeout,
	}
}

// FromFile loads a configuration from a JSON (.json) or YAML
// (.yaml/.yml) file.
func FromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	switch ext := filepath.Ext(path); ext {
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFileFormat, ext)
	}

	return cfg, cfg.Validate()
}

// FromEnv builds a configuration from FLEETDASH_* environment
// variables.
func FromEnv() (*Config, error) {
	cfg := &Config{}
	if err := envdecode.Decode(cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("failed to decode config from environment: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate checks required fields.
func (c *Config) Validate() error {
	if c.APIURL == "" {
		return ErrMissingAPIURL
	}
	return nil
}

// WithPrivateKeyFile sets the private key file path.
func (c *Config) WithPrivateKeyFile(path string) *Config {
	c.KeyFile = path
	return c
}

// WithPrivateKeyBase64 sets the private key from a base64 string.
func (c *Config) WithPrivateKeyBase64(key string) *Config {
	c.KeyBase64 = key
	return c
}

// WithDeviceID sets the device identifier.
func (c *Config) WithDeviceID(deviceID string) *Config {
	c.DeviceID = deviceID
	return c
}

// WithSocketURL sets the WebSocket endpoint URL.
func (c *Config) WithSocketURL(url string) *Config {
	c.SocketURL = url
	return c
}

// WithRequestTimeout sets the API request timeout.
func (c *Config) WithRequestTimeout(timeout time.Duration) *Config {
	c.RequestTimeout = timeout
	return c
}
