// Package models contains data structures used throughout the application
package models

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// BasalBreakpoint is one step of a cyclical 24h basal schedule
type BasalBreakpoint struct {
	Time         string  `json:"time"` // "HH:MM"
	Value        float64 `json:"value"`
	TimeAsSecond float64 `json:"timeAsSeconds"`
}

// MinuteOfDay parses the breakpoint's time-of-day into minutes since
// midnight. Malformed times report an error: a broken schedule is an
// upstream contract breach, not a condition to paper over.
func (b BasalBreakpoint) MinuteOfDay() (int, error) {
	parts := strings.SplitN(b.Time, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("malformed basal time %q", b.Time)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("malformed basal time %q: %w", b.Time, err)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("malformed basal time %q: %w", b.Time, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("basal time %q out of range", b.Time)
	}
	return h*60 + m, nil
}

// BasalSchedule is an ordered sequence of breakpoints, cyclical over 24
// hours. The rate in force at any instant is the latest breakpoint whose
// time-of-day is <= the instant's, wrapping to the last breakpoint of the
// previous day before the first breakpoint.
type BasalSchedule []BasalBreakpoint

// Validate checks the schedule is non-empty, parseable and sorted.
func (s BasalSchedule) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("empty basal schedule")
	}
	prev := -1
	for _, b := range s {
		min, err := b.MinuteOfDay()
		if err != nil {
			return err
		}
		if min <= prev && prev >= 0 {
			return fmt.Errorf("basal schedule not sorted at %q", b.Time)
		}
		prev = min
	}
	return nil
}

// RateAtMinute returns the scheduled rate for a minute-of-day (0..1439).
func (s BasalSchedule) RateAtMinute(minute int) float64 {
	if len(s) == 0 {
		return 0
	}
	// Wrap to the previous day's last breakpoint when the instant
	// precedes the first one.
	rate := s[len(s)-1].Value
	for _, b := range s {
		min, err := b.MinuteOfDay()
		if err != nil {
			continue
		}
		if min <= minute {
			rate = b.Value
		} else {
			break
		}
	}
	return rate
}

// ProfileStore holds one named profile's settings as stored by Nightscout
type ProfileStore struct {
	DIA       float64       `json:"dia"`
	Basal     BasalSchedule `json:"basal"`
	Timezone  string        `json:"timezone"`
	Units     string        `json:"units"`
	StartDate string        `json:"startDate"`
	Mills     int64         `json:"mills"`
}

// Profile is one version of the profile document. Nightscout keeps a
// history of these; the newest version effective on a given day wins.
type Profile struct {
	ID             string                  `json:"_id"`
	Date           int64                   `json:"date"` // effective date, epoch ms
	Mills          int64                   `json:"mills"`
	DefaultProfile string                  `json:"defaultProfile"`
	Store          map[string]ProfileStore `json:"store"`
}

// EffectiveMillis returns the profile version's effective instant.
func (p *Profile) EffectiveMillis() int64 {
	if p.Date > 0 {
		return p.Date
	}
	return p.Mills
}

// Schedule returns the default profile's basal schedule, or nil when the
// document carries none.
func (p *Profile) Schedule() BasalSchedule {
	if p == nil || p.Store == nil {
		return nil
	}
	store, ok := p.Store[p.DefaultProfile]
	if !ok {
		return nil
	}
	return store.Basal
}

// ActiveProfile selects the schedule version in force on the given day:
// the most recently effective version whose effective date precedes or
// equals the day's midnight. Versions dated after the day are ignored;
// if none qualify the earliest version is used.
func ActiveProfile(profiles []Profile, day time.Time) *Profile {
	if len(profiles) == 0 {
		return nil
	}
	midnight := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayMillis := midnight.UnixMilli()

	sorted := make([]Profile, len(profiles))
	copy(sorted, profiles)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].EffectiveMillis() < sorted[j].EffectiveMillis()
	})

	active := &sorted[0]
	for i := range sorted {
		if sorted[i].EffectiveMillis() <= dayMillis {
			active = &sorted[i]
		}
	}
	out := *active
	return &out
}
