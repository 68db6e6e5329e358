// Package notifications raises desktop alerts for out-of-range readings
// during watch mode.
package notifications

import (
	"fmt"
	"sync"
	"time"

	"github.com/gen2brain/beeep"

	"github.com/mrcode/nightscout-report/internal/models"
)

// Manager evaluates readings against the configured thresholds and
// raises desktop notifications, suppressing repeats per alert type.
type Manager struct {
	mu            sync.Mutex
	settings      *models.Settings
	lastAlertTime map[string]time.Time
	send          func(title, message string) error
	now           func() time.Time
}

// NewManager creates a notification manager.
func NewManager(settings *models.Settings) *Manager {
	return &Manager{
		settings:      settings,
		lastAlertTime: make(map[string]time.Time),
		send: func(title, message string) error {
			return beeep.Notify(title, message, "")
		},
		now: time.Now,
	}
}

// UpdateSettings updates the settings reference
func (m *Manager) UpdateSettings(settings *models.Settings) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = settings
}

// CheckAndNotify alerts on the reading when its status warrants it and
// the repeat window has elapsed. Returns the alert type that fired, or
// an empty string.
func (m *Manager) CheckAndNotify(entry *models.GlucoseEntry) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	alertType := m.shouldAlert(entry)
	if alertType == "" {
		return "", nil
	}

	if lastTime, ok := m.lastAlertTime[alertType]; ok {
		if m.settings.RepeatAlertMinutes > 0 {
			repeat := time.Duration(m.settings.RepeatAlertMinutes) * time.Minute
			if m.now().Sub(lastTime) < repeat {
				return "", nil
			}
		} else {
			// No repeat, one alert per status change.
			return "", nil
		}
	}

	title, message := m.formatNotification(entry, alertType)
	if err := m.send(title, message); err != nil {
		return "", err
	}
	m.lastAlertTime[alertType] = m.now()
	return alertType, nil
}

// shouldAlert maps the reading's status onto an enabled alert type.
func (m *Manager) shouldAlert(entry *models.GlucoseEntry) string {
	switch m.settings.GetGlucoseStatus(entry.ValueMgDL()) {
	case models.StatusUrgentLow:
		if m.settings.EnableUrgentLowAlert {
			return models.StatusUrgentLow
		}
	case models.StatusLow:
		if m.settings.EnableLowAlert {
			return models.StatusLow
		}
	case models.StatusUrgentHigh:
		if m.settings.EnableUrgentHighAlert {
			return models.StatusUrgentHigh
		}
	case models.StatusHigh:
		if m.settings.EnableHighAlert {
			return models.StatusHigh
		}
	}
	return ""
}

// formatNotification creates the notification title and message
func (m *Manager) formatNotification(entry *models.GlucoseEntry, alertType string) (string, string) {
	var valueStr string
	if m.settings.Unit == "mmol/L" {
		valueStr = fmt.Sprintf("%.1f mmol/L", entry.ValueMmolL())
	} else {
		valueStr = fmt.Sprintf("%.0f mg/dL", entry.ValueMgDL())
	}

	var title, message string
	switch alertType {
	case models.StatusUrgentLow:
		title = "URGENT LOW GLUCOSE"
		message = fmt.Sprintf("Glucose is critically low: %s %s", valueStr, entry.Direction)
	case models.StatusLow:
		title = "Low Glucose"
		message = fmt.Sprintf("Glucose is low: %s %s", valueStr, entry.Direction)
	case models.StatusUrgentHigh:
		title = "URGENT HIGH GLUCOSE"
		message = fmt.Sprintf("Glucose is critically high: %s %s", valueStr, entry.Direction)
	case models.StatusHigh:
		title = "High Glucose"
		message = fmt.Sprintf("Glucose is high: %s %s", valueStr, entry.Direction)
	}
	return title, message
}

// ClearAlertState clears the alert state for a specific type or all types
func (m *Manager) ClearAlertState(alertType string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if alertType == "" {
		m.lastAlertTime = make(map[string]time.Time)
	} else {
		delete(m.lastAlertTime, alertType)
	}
}

// SendTestNotification sends a test notification
func (m *Manager) SendTestNotification() error {
	return m.send("Nightscout Report", "Test notification - alerts are working!")
}
