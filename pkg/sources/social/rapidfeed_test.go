package social

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Chip777-coder/mirrorx-backend/pkg/config"
	"github.com/Chip777-coder/mirrorx-backend/pkg/logging"
)

func TestRapidFeedAdapter_RequiresHost(t *testing.T) {
	_, err := NewRapidFeedAdapter(&config.AdapterConfig{
		Type:    "social",
		Name:    "rapidfeed",
		Dataset: "social-metrics",
	}, logging.Nop())
	if !errors.Is(err, ErrHostRequired) {
		t.Errorf("Expected ErrHostRequired, got %v", err)
	}
}

func TestRapidFeedAdapter_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/likes" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("pid") != "12345" {
			t.Errorf("Expected pid 12345, got %q", r.URL.Query().Get("pid"))
		}
		if r.URL.Query().Get("count") != "20" {
			t.Errorf("Expected count 20, got %q", r.URL.Query().Get("count"))
		}
		if r.Header.Get("x-rapidapi-host") != "feed.example.test" {
			t.Errorf("Expected rapidapi host header, got %q", r.Header.Get("x-rapidapi-host"))
		}
		if r.Header.Get("x-rapidapi-key") != "test_key" {
			t.Errorf("Expected rapidapi key header, got %q", r.Header.Get("x-rapidapi-key"))
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"like_count":10}]`))
	}))
	defer server.Close()

	adapter, err := NewRapidFeedAdapter(&config.AdapterConfig{
		Type:    "social",
		Name:    "rapidfeed",
		Dataset: "social-metrics",
		Config: map[string]interface{}{
			"host":       "feed.example.test",
			"base_url":   server.URL,
			"api_key":    "test_key",
			"profile_id": "12345",
			"rate_limit": 1000,
		},
	}, logging.Nop())
	if err != nil {
		t.Fatalf("NewRapidFeedAdapter failed: %v", err)
	}

	payload, err := adapter.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if !strings.Contains(string(payload), "like_count") {
		t.Errorf("Unexpected payload %s", payload)
	}
}
