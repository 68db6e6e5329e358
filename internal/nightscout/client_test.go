package nightscout

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mrcode/nightscout-report/internal/models"
)

func TestHashSecret(t *testing.T) {
	result := hashSecret("test")
	expected := "a94a8fe5ccb19ba61c4c0873d391e987982fbbd3"

	if result != expected {
		t.Errorf("hashSecret(\"test\") = %s, want %s", result, expected)
	}
}

func TestNewClient(t *testing.T) {
	client := NewClient("https://test.example.com", "secret", "token", true)

	if client.baseURL != "https://test.example.com" {
		t.Errorf("baseURL = %s, want https://test.example.com", client.baseURL)
	}
	if client.apiSecret != "secret" {
		t.Errorf("apiSecret = %s, want secret", client.apiSecret)
	}
	if client.apiToken != "token" {
		t.Errorf("apiToken = %s, want token", client.apiToken)
	}
	if !client.useToken {
		t.Error("useToken should be true")
	}
}

func TestNewClient_TrimsTrailingSlash(t *testing.T) {
	client := NewClient("https://test.example.com/", "", "", false)

	if client.baseURL != "https://test.example.com" {
		t.Errorf("baseURL = %s, should not have trailing slash", client.baseURL)
	}
}

func TestClient_GetEntries(t *testing.T) {
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 14, 23, 59, 59, 0, time.UTC)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/entries.json" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}

		q := r.URL.Query()
		if got := q.Get("find[date][$gte]"); got != "1772323200000" {
			t.Errorf("find[date][$gte] = %s, want 1772323200000", got)
		}
		if got := q.Get("find[date][$lte]"); got != "1773532799000" {
			t.Errorf("find[date][$lte] = %s, want 1773532799000", got)
		}
		if got := q.Get("count"); got != "100000" {
			t.Errorf("count = %s, want 100000", got)
		}

		entries := []models.GlucoseEntry{
			{SGV: 120, Date: from.Add(time.Hour).UnixMilli()},
			{SGV: 115, Date: from.Add(2 * time.Hour).UnixMilli()},
			{SGV: 118, Date: from.Add(3 * time.Hour).UnixMilli()},
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(entries)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", "", false)
	entries, err := client.GetEntries(context.Background(), from, to, 100000)

	if err != nil {
		t.Fatalf("GetEntries() error = %v", err)
	}
	if len(entries) != 3 {
		t.Errorf("Got %d entries, want 3", len(entries))
	}
	if entries[0].SGV != 120 {
		t.Errorf("SGV = %v, want 120", entries[0].SGV)
	}
}

func TestClient_GetEntries_SecretHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("API-SECRET"); got != hashSecret("my-secret") {
			t.Errorf("API-SECRET = %s, want hashed secret", got)
		}
		if r.Header.Get("Authorization") != "" {
			t.Error("Authorization header should not be set")
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]models.GlucoseEntry{})
	}))
	defer server.Close()

	client := NewClient(server.URL, "my-secret", "", false)
	if _, err := client.GetEntries(context.Background(), time.Time{}, time.Time{}, 0); err != nil {
		t.Fatalf("GetEntries() error = %v", err)
	}
}

func TestClient_GetEntries_BearerToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer my-token" {
			t.Errorf("Authorization = %s, want Bearer my-token", got)
		}
		if r.Header.Get("API-SECRET") != "" {
			t.Error("API-SECRET header should not be set")
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]models.GlucoseEntry{})
	}))
	defer server.Close()

	client := NewClient(server.URL, "", "my-token", true)
	if _, err := client.GetEntries(context.Background(), time.Time{}, time.Time{}, 0); err != nil {
		t.Fatalf("GetEntries() error = %v", err)
	}
}

func TestClient_GetLatestEntry(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("count"); got != "1" {
			t.Errorf("count = %s, want 1", got)
		}

		entries := []models.GlucoseEntry{
			{ID: "test123", SGV: 130, Date: time.Now().UnixMilli(), Direction: "SingleUp"},
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(entries)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", "", false)
	entry, err := client.GetLatestEntry(context.Background())

	if err != nil {
		t.Fatalf("GetLatestEntry() error = %v", err)
	}
	if entry.SGV != 130 {
		t.Errorf("SGV = %v, want 130", entry.SGV)
	}
	if entry.Direction != "SingleUp" {
		t.Errorf("Direction = %s, want SingleUp", entry.Direction)
	}
}

func TestClient_GetLatestEntry_SingleObject(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		entry := models.GlucoseEntry{ID: "test123", SGV: 120, Direction: "Flat"}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(entry)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", "", false)
	entry, err := client.GetLatestEntry(context.Background())

	if err != nil {
		t.Fatalf("GetLatestEntry() error = %v", err)
	}
	if entry.SGV != 120 {
		t.Errorf("SGV = %v, want 120", entry.SGV)
	}
}

func TestClient_GetLatestEntry_Empty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]models.GlucoseEntry{})
	}))
	defer server.Close()

	client := NewClient(server.URL, "", "", false)
	if _, err := client.GetLatestEntry(context.Background()); err == nil {
		t.Error("Expected error for empty entry list")
	}
}

func TestClient_GetTreatments(t *testing.T) {
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/treatments.json" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}

		q := r.URL.Query()
		if got := q.Get("find[created_at][$gte]"); got != "2026-03-01T00:00:00Z" {
			t.Errorf("find[created_at][$gte] = %s, want 2026-03-01T00:00:00Z", got)
		}
		if got := q.Get("find[created_at][$lte]"); got != "2026-03-02T00:00:00Z" {
			t.Errorf("find[created_at][$lte] = %s, want 2026-03-02T00:00:00Z", got)
		}

		treatments := []models.Treatment{
			{EventType: "Meal Bolus", Insulin: 4.5, Carbs: 45, CreatedAt: "2026-03-01T12:00:00Z"},
			{EventType: "Temp Basal", Rate: 0.5, Duration: 30, CreatedAt: "2026-03-01T14:00:00Z"},
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(treatments)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", "", false)
	treatments, err := client.GetTreatments(context.Background(), from, to, 0)

	if err != nil {
		t.Fatalf("GetTreatments() error = %v", err)
	}
	if len(treatments) != 2 {
		t.Fatalf("Got %d treatments, want 2", len(treatments))
	}
	if treatments[0].Kind() != models.KindMealBolus {
		t.Errorf("Kind = %v, want meal bolus", treatments[0].Kind())
	}
}

func TestClient_GetProfiles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/profile.json" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}

		profiles := []models.Profile{
			{
				ID:             "p1",
				DefaultProfile: "Default",
				Store: map[string]models.ProfileStore{
					"Default": {
						Basal: []models.BasalBreakpoint{{Time: "00:00", Value: 0.8}},
					},
				},
			},
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(profiles)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", "", false)
	profiles, err := client.GetProfiles(context.Background())

	if err != nil {
		t.Fatalf("GetProfiles() error = %v", err)
	}
	if len(profiles) != 1 {
		t.Fatalf("Got %d profiles, want 1", len(profiles))
	}
	schedule := profiles[0].Schedule()
	if len(schedule) != 1 || schedule[0].Value != 0.8 {
		t.Errorf("Unexpected basal schedule: %+v", schedule)
	}
}

func TestClient_GetProfiles_SingleObject(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		profile := models.Profile{ID: "p1", DefaultProfile: "Default"}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(profile)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", "", false)
	profiles, err := client.GetProfiles(context.Background())

	if err != nil {
		t.Fatalf("GetProfiles() error = %v", err)
	}
	if len(profiles) != 1 || profiles[0].ID != "p1" {
		t.Errorf("Unexpected profiles: %+v", profiles)
	}
}

func TestClient_GetStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/status.json" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}

		status := models.ServerStatus{
			Status:     "ok",
			Name:       "nightscout",
			Version:    "15.0.2",
			APIEnabled: true,
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(status)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", "", false)
	status, err := client.GetStatus(context.Background())

	if err != nil {
		t.Fatalf("GetStatus() error = %v", err)
	}
	if status.Status != "ok" {
		t.Errorf("Status = %s, want ok", status.Status)
	}
	if !status.APIEnabled {
		t.Error("APIEnabled should be true")
	}
}

func TestClient_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("Unauthorized"))
	}))
	defer server.Close()

	client := NewClient(server.URL, "wrong", "", false)
	_, err := client.GetStatus(context.Background())

	if err == nil {
		t.Fatal("Expected error for 401 response")
	}
	if !strings.Contains(err.Error(), "API error 401") {
		t.Errorf("Error = %v, want API error 401", err)
	}
}

func TestClient_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]models.GlucoseEntry{})
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(server.URL, "", "", false)
	if _, err := client.GetEntries(ctx, time.Time{}, time.Time{}, 0); err == nil {
		t.Error("Expected error for cancelled context")
	}
}
