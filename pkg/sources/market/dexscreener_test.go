package market

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Chip777-coder/mirrorx-backend/pkg/config"
	"github.com/Chip777-coder/mirrorx-backend/pkg/logging"
)

func TestDexScreenerAdapter_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/latest/dex/search" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("q") != "BONK" {
			t.Errorf("Expected query BONK, got %q", r.URL.Query().Get("q"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"pairs":[]}`))
	}))
	defer server.Close()

	adapter, err := NewDexScreenerAdapter(&config.AdapterConfig{
		Type:    "market",
		Name:    "dexscreener",
		Dataset: "crypto-market",
		Config: map[string]interface{}{
			"base_url": server.URL,
			"query":    "BONK",
		},
	}, logging.Nop())
	if err != nil {
		t.Fatalf("NewDexScreenerAdapter failed: %v", err)
	}

	payload, err := adapter.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if string(payload) != `{"pairs":[]}` {
		t.Errorf("Unexpected payload %s", payload)
	}
}

func TestCryptoCompareAdapter_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/data/top/totalvolfull" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("tsym") != "USD" {
			t.Errorf("Expected tsym USD, got %q", r.URL.Query().Get("tsym"))
		}
		if r.Header.Get("Authorization") != "Apikey test_key" {
			t.Errorf("Expected Apikey authorization, got %q", r.Header.Get("Authorization"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"Data":[]}`))
	}))
	defer server.Close()

	adapter, err := NewCryptoCompareAdapter(&config.AdapterConfig{
		Type:    "market",
		Name:    "cryptocompare",
		Dataset: "crypto-market",
		Config: map[string]interface{}{
			"base_url": server.URL,
			"api_key":  "test_key",
		},
	}, logging.Nop())
	if err != nil {
		t.Fatalf("NewCryptoCompareAdapter failed: %v", err)
	}

	if _, err := adapter.Fetch(context.Background()); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
}
