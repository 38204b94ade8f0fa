package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// DefaultGateRadiusMeters applies when no radius has been configured.
const DefaultGateRadiusMeters = 100

// Settings are the manager-editable terminal settings, persisted as a small
// JSON blob beside the agent.
type Settings struct {
	GateRadiusMeters float64 `json:"gpsRadius"`
	AlertThreshold   float64 `json:"alertThreshold"`
}

// SettingsStore reads and writes the settings file. Safe for concurrent use.
type SettingsStore struct {
	path string

	mu      sync.Mutex
	current Settings
	loaded  bool
}

// NewSettingsStore constructs a SettingsStore for path.
func NewSettingsStore(path string) *SettingsStore {
	return &SettingsStore{path: path}
}

// Load returns the current settings, reading the file on first use. A missing
// or unreadable file yields defaults taken from the environment.
func (s *SettingsStore) Load() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return s.current
	}
	s.current = Settings{
		GateRadiusMeters: getenvFloatDefault("GATE_RADIUS_METERS", DefaultGateRadiusMeters),
	}
	if data, err := os.ReadFile(s.path); err == nil {
		var fromFile Settings
		if err := json.Unmarshal(data, &fromFile); err == nil {
			if fromFile.GateRadiusMeters > 0 {
				s.current.GateRadiusMeters = fromFile.GateRadiusMeters
			}
			s.current.AlertThreshold = fromFile.AlertThreshold
		}
	}
	s.loaded = true
	return s.current
}

// Save replaces the settings and persists them.
func (s *SettingsStore) Save(settings Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return err
	}
	s.current = settings
	s.loaded = true
	return nil
}

// GateRadius returns the configured geofence radius, falling back to the
// default when the stored value is unusable.
func (s *SettingsStore) GateRadius() float64 {
	settings := s.Load()
	if settings.GateRadiusMeters <= 0 {
		return DefaultGateRadiusMeters
	}
	return settings.GateRadiusMeters
}
