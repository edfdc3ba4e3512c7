package config

import (
	"strings"
	"sync"
)

// Settings is a full preferences update.
type Settings struct {
	Location string `json:"location" validate:"required,max=64"`
	Units    string `json:"units" validate:"required,oneof=metric imperial"`
}

// Preferences holds the user's settings. Reads are synchronous and safe from
// any goroutine.
type Preferences struct {
	mu       sync.RWMutex
	location string
	units    string
}

// NewPreferences seeds preferences from the loaded configuration.
func NewPreferences(cfg *AppConfig) *Preferences {
	return &Preferences{location: strings.TrimSpace(cfg.Location), units: cfg.Units}
}

// Location returns the preferred location setting.
func (p *Preferences) Location() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.location
}

// IsMetric reports whether temperatures are shown in Celsius.
func (p *Preferences) IsMetric() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.units != UnitsImperial
}

// Snapshot returns the current settings.
func (p *Preferences) Snapshot() Settings {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return Settings{Location: p.location, Units: p.units}
}

// Set validates and applies s. The location is stored trimmed, the same way
// the syncer keys what it saves.
func (p *Preferences) Set(s Settings) error {
	s.Location = strings.TrimSpace(s.Location)
	s.Units = strings.ToLower(strings.TrimSpace(s.Units))
	if err := validate.Struct(s); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.location = s.Location
	p.units = s.Units
	return nil
}
