package models

import (
	"testing"
	"time"
)

func TestBasalBreakpoint_MinuteOfDay(t *testing.T) {
	tests := []struct {
		time    string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"06:30", 390, false},
		{"23:59", 1439, false},
		{"24:00", 0, true},
		{"12:60", 0, true},
		{"noon", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.time, func(t *testing.T) {
			got, err := BasalBreakpoint{Time: tt.time}.MinuteOfDay()
			if (err != nil) != tt.wantErr {
				t.Fatalf("MinuteOfDay(%q) error = %v, wantErr %v", tt.time, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("MinuteOfDay(%q) = %d, want %d", tt.time, got, tt.want)
			}
		})
	}
}

func TestBasalSchedule_Validate(t *testing.T) {
	valid := BasalSchedule{
		{Time: "00:00", Value: 0.8},
		{Time: "06:00", Value: 1.2},
		{Time: "22:00", Value: 0.9},
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}

	if err := (BasalSchedule{}).Validate(); err == nil {
		t.Error("Empty schedule should fail validation")
	}

	unsorted := BasalSchedule{
		{Time: "06:00", Value: 1.2},
		{Time: "00:00", Value: 0.8},
	}
	if err := unsorted.Validate(); err == nil {
		t.Error("Unsorted schedule should fail validation")
	}

	malformed := BasalSchedule{{Time: "soon", Value: 1}}
	if err := malformed.Validate(); err == nil {
		t.Error("Malformed time should fail validation")
	}
}

func TestBasalSchedule_RateAtMinute(t *testing.T) {
	schedule := BasalSchedule{
		{Time: "06:00", Value: 1.2},
		{Time: "22:00", Value: 0.9},
	}

	tests := []struct {
		name   string
		minute int
		want   float64
	}{
		{"before first wraps to last", 0, 0.9},
		{"at first breakpoint", 360, 1.2},
		{"midday", 720, 1.2},
		{"at last breakpoint", 1320, 0.9},
		{"end of day", 1439, 0.9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := schedule.RateAtMinute(tt.minute); got != tt.want {
				t.Errorf("RateAtMinute(%d) = %v, want %v", tt.minute, got, tt.want)
			}
		})
	}

	if got := (BasalSchedule{}).RateAtMinute(0); got != 0 {
		t.Errorf("Empty schedule RateAtMinute = %v, want 0", got)
	}
}

func TestProfile_Schedule(t *testing.T) {
	profile := Profile{
		DefaultProfile: "Default",
		Store: map[string]ProfileStore{
			"Default": {Basal: BasalSchedule{{Time: "00:00", Value: 0.8}}},
			"Sport":   {Basal: BasalSchedule{{Time: "00:00", Value: 0.4}}},
		},
	}

	schedule := profile.Schedule()
	if len(schedule) != 1 || schedule[0].Value != 0.8 {
		t.Errorf("Schedule() = %+v, want default profile basal", schedule)
	}

	missing := Profile{DefaultProfile: "Gone", Store: map[string]ProfileStore{}}
	if missing.Schedule() != nil {
		t.Error("Missing default profile should yield nil schedule")
	}
}

func TestActiveProfile(t *testing.T) {
	day := func(d int) int64 {
		return time.Date(2026, 3, d, 0, 0, 0, 0, time.UTC).UnixMilli()
	}
	profiles := []Profile{
		{ID: "v2", Date: day(10)},
		{ID: "v1", Date: day(1)},
		{ID: "v3", Date: day(20)},
	}

	tests := []struct {
		name string
		day  time.Time
		want string
	}{
		{"before all versions uses earliest", time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC), "v1"},
		{"between versions", time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC), "v2"},
		{"on effective day", time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC), "v2"},
		{"after all versions", time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), "v3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ActiveProfile(profiles, tt.day)
			if got == nil || got.ID != tt.want {
				t.Errorf("ActiveProfile() = %+v, want %s", got, tt.want)
			}
		})
	}

	if ActiveProfile(nil, time.Now()) != nil {
		t.Error("ActiveProfile with no versions should be nil")
	}
}
