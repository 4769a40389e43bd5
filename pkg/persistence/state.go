// Package persistence stores agent state on disk so a device keeps
// its identity and registration across restarts.
package persistence

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/fleetdash/fleetdash-go/pkg/model"
)

// StateVersion is the current version of the state file format.
const StateVersion = 1

// AgentState contains the runtime state for a device agent.
type AgentState struct {
	// Version is the state file format version.
	Version int `json:"version"`

	// SavedAt is when the state was last saved.
	SavedAt time.Time `json:"saved_at"`

	// DeviceID is the device identifier. Persisting it keeps a
	// generated ID stable across restarts.
	DeviceID string `json:"device_id"`

	// Registered indicates the device has been registered with the
	// dashboard service.
	Registered bool `json:"registered,omitempty"`

	// RegisteredAt is when the registration succeeded.
	RegisteredAt time.Time `json:"registered_at,omitempty"`

	// APIKey is the service-issued key from registration, if any.
	APIKey string `json:"api_key,omitempty"`

	// LastStatus is the last status reported to the service.
	LastStatus model.DeviceStatus `json:"last_status,omitempty"`
}

// Store manages persistence of agent state to a JSON file.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore creates a state store backed by the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Save persists the agent state to disk.
func (s *Store) Save(state *AgentState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	state.Version = StateVersion
	state.SavedAt = time.Now()

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}

	// Write to a temp file first so a crash never leaves a torn state
	// file behind.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	return os.Rename(tmp, s.path)
}

// Load reads the agent state from disk.
// Returns nil, nil if the file doesn't exist (fresh agent).
func (s *Store) Load() (*AgentState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	state := &AgentState{}
	if err := json.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("failed to parse state file: %w", err)
	}
	return state, nil
}

// Clear removes the state file.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
