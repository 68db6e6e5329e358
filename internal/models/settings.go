// Package models contains data structures used throughout the application
package models

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
)

// Settings contains all persisted application settings: the Nightscout
// connection, display thresholds, alert behaviour and the patient block
// printed on reports.
type Settings struct {
	// Connection settings
	NightscoutURL string `json:"nightscoutUrl"`
	APISecret     string `json:"apiSecret"` // Plain API secret (hashed on the wire)
	APIToken      string `json:"apiToken"`  // Token-based auth
	UseToken      bool   `json:"useToken"`  // Use token instead of secret

	// Display settings
	Unit            string `json:"unit"`            // "mg/dL" or "mmol/L"
	RefreshInterval int    `json:"refreshInterval"` // Seconds, for watch mode

	// Glucose thresholds (mg/dL)
	TargetLow  int `json:"targetLow"`
	TargetHigh int `json:"targetHigh"`
	UrgentLow  int `json:"urgentLow"`
	UrgentHigh int `json:"urgentHigh"`

	// Alert settings
	EnableHighAlert       bool `json:"enableHighAlert"`
	EnableLowAlert        bool `json:"enableLowAlert"`
	EnableUrgentHighAlert bool `json:"enableUrgentHighAlert"`
	EnableUrgentLowAlert  bool `json:"enableUrgentLowAlert"`
	RepeatAlertMinutes    int  `json:"repeatAlertMinutes"` // 0 = no repeat

	// Patient block for the printable report
	PatientName      string `json:"patientName"`
	PatientFirstName string `json:"patientFirstName"`
	BirthDate        string `json:"birthDate"`      // "YYYY-MM-DD"
	InsulinRegimen   string `json:"insulinRegimen"` // free text, e.g. insulin brand
	DiabeticSince    string `json:"diabeticSince"`  // "YYYY-MM"

	// Report options
	IncludeDailyCharts      bool `json:"includeDailyCharts"`
	IncludeVariabilityChart bool `json:"includeVariabilityChart"`
}

// DefaultSettings returns settings with default values
func DefaultSettings() *Settings {
	return &Settings{
		Unit:            "mg/dL",
		RefreshInterval: 60,

		TargetLow:  70,
		TargetHigh: 180,
		UrgentLow:  55,
		UrgentHigh: 250,

		EnableHighAlert:       true,
		EnableLowAlert:        true,
		EnableUrgentHighAlert: true,
		EnableUrgentLowAlert:  true,
		RepeatAlertMinutes:    15,

		IncludeDailyCharts:      true,
		IncludeVariabilityChart: true,
	}
}

// IsConfigured returns true if minimum required settings are set
func (s *Settings) IsConfigured() bool {
	return s.NightscoutURL != ""
}

// GetGlucoseStatus returns the status string for a glucose value
func (s *Settings) GetGlucoseStatus(mgdl float64) string {
	switch {
	case mgdl <= float64(s.UrgentLow):
		return StatusUrgentLow
	case mgdl <= float64(s.TargetLow):
		return StatusLow
	case mgdl >= float64(s.UrgentHigh):
		return StatusUrgentHigh
	case mgdl >= float64(s.TargetHigh):
		return StatusHigh
	default:
		return StatusNormal
	}
}

// EnvOverrides are connection settings read from the environment; they
// take precedence over the settings file when set.
type EnvOverrides struct {
	URL      string `envconfig:"NSREPORT_URL"`
	APIToken string `envconfig:"NSREPORT_TOKEN"`
	Secret   string `envconfig:"NSREPORT_SECRET"`
}

// ApplyEnv overlays environment overrides onto the settings.
func (s *Settings) ApplyEnv() error {
	var env EnvOverrides
	if err := envconfig.Process("", &env); err != nil {
		return err
	}
	if env.URL != "" {
		s.NightscoutURL = env.URL
	}
	if env.APIToken != "" {
		s.APIToken = env.APIToken
		s.UseToken = true
	}
	if env.Secret != "" {
		s.APISecret = env.Secret
	}
	return nil
}

// SettingsRepository loads and stores settings. The core never touches
// ambient global state; callers inject a repository.
type SettingsRepository interface {
	Load() (*Settings, error)
	Save(*Settings) error
}

// FileRepository persists settings as JSON under the user config dir.
type FileRepository struct {
	path string
}

// NewFileRepository creates a repository at the given path; an empty path
// resolves to <user config dir>/nightscout-report/settings.json.
func NewFileRepository(path string) (*FileRepository, error) {
	if path == "" {
		configDir, err := os.UserConfigDir()
		if err != nil {
			return nil, err
		}
		appDir := filepath.Join(configDir, "nightscout-report")
		if err := os.MkdirAll(appDir, 0750); err != nil {
			return nil, err
		}
		path = filepath.Join(appDir, "settings.json")
	}
	return &FileRepository{path: path}, nil
}

// Load reads settings from disk, returning defaults when no file exists.
func (r *FileRepository) Load() (*Settings, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}
	settings := DefaultSettings()
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// Save writes settings to disk.
func (r *FileRepository) Save(s *Settings) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(r.path, data, 0600)
}
