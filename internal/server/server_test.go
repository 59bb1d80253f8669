package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/devicerevive/secondlife/internal/aigen"
	"github.com/devicerevive/secondlife/internal/device"
	"github.com/devicerevive/secondlife/internal/llm"
	"github.com/devicerevive/secondlife/internal/schema"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newUnconfiguredServer(t *testing.T) *Server {
	t.Helper()
	llmClient, err := llm.NewClient(llm.Config{APIKey: ""})
	if err != nil {
		t.Fatalf("failed to create llm client: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	gen := aigen.New(aigen.Config{Client: llmClient, Model: "m", Logger: logger})
	return New(Config{
		Generator: gen,
		LLM:       llmClient,
		Logger:    logger,
	})
}

func TestHealth(t *testing.T) {
	srv := newUnconfiguredServer(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var body struct {
		Status         string `json:"status"`
		GroqConfigured bool   `json:"groq_configured"`
		Timestamp      int64  `json:"timestamp"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if body.Status != "ok" || body.GroqConfigured || body.Timestamp == 0 {
		t.Errorf("unexpected health body: %+v", body)
	}
}

func TestScrapeRejectsWithoutKey(t *testing.T) {
	srv := newUnconfiguredServer(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/scrape",
		strings.NewReader(`{"deviceName":"Pixel 4a","conditions":["Screen Broken"]}`))
	req.Header.Set("Content-Type", "application/json")
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}

func TestScrapeRejectsMissingDeviceName(t *testing.T) {
	srv := newUnconfiguredServer(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/scrape",
		strings.NewReader(`{"conditions":["Screen Broken"]}`))
	req.Header.Set("Content-Type", "application/json")
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestEcoValuationRejectsWithoutKey(t *testing.T) {
	srv := newUnconfiguredServer(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/eco-valuation",
		strings.NewReader(`{"deviceName":"Pixel 4a"}`))
	req.Header.Set("Content-Type", "application/json")
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}

func TestMetricsMounted(t *testing.T) {
	srv := newUnconfiguredServer(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "go_goroutines") {
		t.Error("expected prometheus output on /metrics")
	}
}

func TestDeviceFromScrapeDefaults(t *testing.T) {
	dev := deviceFromScrape(schema.ScrapeRequest{DeviceName: "Pixel 4a"})
	if dev.Mode != device.ModeStandard {
		t.Errorf("mode = %q, want Standard", dev.Mode)
	}
	if dev.DeviceType != "Smartphone" {
		t.Errorf("device type = %q, want Smartphone", dev.DeviceType)
	}
}

func TestDeviceFromScrapeCarriesFields(t *testing.T) {
	dev := deviceFromScrape(schema.ScrapeRequest{
		DeviceName:     "Dell XPS 13",
		Conditions:     []string{device.CondBadBattery},
		Mode:           string(device.ModeHarvest),
		DeviceType:     "Laptop",
		RAMGB:          8,
		StorageGB:      256,
		ConditionNotes: "hinge wobbles",
	})
	if dev.Mode != device.ModeHarvest || dev.DeviceType != "Laptop" {
		t.Errorf("unexpected device: %+v", dev)
	}
	if dev.RAMGB != 8 || dev.StorageGB != 256 || dev.Notes != "hinge wobbles" {
		t.Errorf("fields not carried: %+v", dev)
	}
}
