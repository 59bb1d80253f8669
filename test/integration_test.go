//go:build integration

package test

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/devicerevive/secondlife/internal/aigen"
	"github.com/devicerevive/secondlife/internal/fingerprint"
	"github.com/devicerevive/secondlife/internal/llm"
	"github.com/devicerevive/secondlife/internal/pipeline"
	"github.com/devicerevive/secondlife/internal/schema"
	"github.com/devicerevive/secondlife/internal/search"
	"github.com/devicerevive/secondlife/internal/server"
	"github.com/devicerevive/secondlife/internal/sources"
)

const serpPage = `<html><body>
<div class="results">
  <div class="result">
    <a class="result__a" href="https://www.youtube.com/watch?v=cam123">Turn Old Phone Into Security Camera</a>
    <a class="result__snippet" href="#">Reuse a broken-screen phone as a motion camera.</a>
  </div>
  <div class="result">
    <a class="result__a" href="https://github.com/example/pi-server">Headless home server on old Android</a>
    <a class="result__snippet" href="#">Run a small web server over ADB, no screen needed.</a>
  </div>
</div>
</body></html>`

const creativeReply = `[
  {
    "title": "Headless Media Remote Hub",
    "difficulty": "Intermediate",
    "feasibility_score": 8,
    "use_case": "Control your TV and speakers from a shelf-mounted brain",
    "description": "Keep the phone plugged in and drive it over ADB.",
    "required_software": ["Termux", "ADB"],
    "hardware_fix_needed": "None",
    "steps": ["Enable developer mode", "Install Termux", "Pair over ADB"]
  }
]`

const valuationReply = `{
  "valuation_summary": {
    "device_name": "Pixel 4a",
    "condition_grade": "C",
    "estimated_resale_usd": 60,
    "estimated_scrap_cash_usd": 25,
    "eco_message": "Recycling this device recovers about 0.034g of gold."
  },
  "trade_in_offers": [
    {"partner": "Google", "offer_type": "Store Credit", "headline": "Trade up", "monetary_value_cap": "Up to $50 value", "coupon_url": "https://store.google.com/us/magazine/trade_in", "reasoning": "Best for Pixel owners."},
    {"partner": "Best Buy", "offer_type": "Discount Coupon", "headline": "15% off", "monetary_value_cap": "Up to $40 value", "coupon_url": "https://www.bestbuy.com/trade-in", "reasoning": "Works in store."},
    {"partner": "Gazelle", "offer_type": "Cash Transfer", "headline": "Cash out", "monetary_value_cap": "$25 cash", "coupon_url": "https://www.gazelle.com/", "reasoning": "Immediate payout."}
  ]
}`

const visionReply = `{
  "visual_condition_summary": "Cracked screen across the top third, body intact.",
  "detected_issues": ["Screen Broken"],
  "cosmetic_grade": "C",
  "confidence": "high"
}`

// fakeGroq routes completions by system prompt so one handler can serve every
// generator in the pipeline.
func fakeGroq(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header: %q", got)
		}
		body, _ := io.ReadAll(r.Body)
		payload := string(body)

		var content string
		switch {
		case strings.Contains(payload, "Second Life Hardware Architect"):
			content = creativeReply
		case strings.Contains(payload, "Eco-Exchange Valuation Engine"):
			content = valuationReply
		case strings.Contains(payload, "image_url"):
			content = visionReply
		default:
			content = `[{"title": "Fallback Project", "description": "AI idea", "difficulty": "Beginner"}]`
		}

		reply := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": content}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(reply)
	}))
}

func newStack(t *testing.T, serpURL, groqURL string) *server.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	fetcher, err := search.NewFetcher(search.FetchConfig{
		Timeout:     5 * time.Second,
		Fingerprint: fingerprint.ProfileGo,
	})
	if err != nil {
		t.Fatalf("failed to create fetcher: %v", err)
	}
	searchClient := search.NewClient(search.ClientConfig{
		Fetcher: fetcher,
		BaseURL: serpURL + "/",
		Logger:  logger,
	})

	llmClient, err := llm.NewClient(llm.Config{
		APIKey:  "test-key",
		BaseURL: groqURL,
		Timeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("failed to create llm client: %v", err)
	}
	gen := aigen.New(aigen.Config{
		Client:      llmClient,
		Model:       "test-model",
		VisionModel: "test-vision-model",
		Logger:      logger,
	})

	runner := pipeline.New(pipeline.Config{
		Scrapers: []sources.Scraper{
			&sources.YouTube{Client: searchClient},
			&sources.Reddit{Client: searchClient},
			&sources.GitHub{Client: searchClient},
			&sources.Maker{Client: searchClient},
			&sources.Web{Client: searchClient},
			&sources.Creative{Client: searchClient},
		},
		Generator:     gen,
		Search:        searchClient,
		SourceTimeout: 5 * time.Second,
		Logger:        logger,
	})

	return server.New(server.Config{
		Runner:          runner,
		Generator:       gen,
		LLM:             llmClient,
		PipelineTimeout: 30 * time.Second,
		Logger:          logger,
	})
}

func TestIntegration_ScrapeEndToEnd(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// 1. Mock search provider and Groq API
	serpSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, serpPage)
	}))
	defer serpSrv.Close()

	groqSrv := fakeGroq(t)
	defer groqSrv.Close()

	// 2. Wire the full stack against the mocks
	srv := newStack(t, serpSrv.URL, groqSrv.URL)

	// 3. Execute a scrape request
	body := `{"deviceName":"Pixel 4a","conditions":["Screen Broken","Bad Battery"],"deviceType":"Smartphone","ramGB":6,"storageGB":128}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/scrape", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp schema.ScrapeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}

	// 4. Verify the envelope
	if len(resp.Recommendations) == 0 {
		t.Fatal("expected recommendations, got none")
	}
	if len(resp.SearchQueries) == 0 {
		t.Error("expected formulated search queries in envelope")
	}
	if !strings.Contains(resp.DeviceSummary, "Pixel 4a") {
		t.Errorf("device summary = %q", resp.DeviceSummary)
	}

	var creativeFound, scrapedFound bool
	for _, rec := range resp.Recommendations {
		if rec.CompatibilityScore < 0 || rec.CompatibilityScore > 100 {
			t.Errorf("score out of range: %d (%s)", rec.CompatibilityScore, rec.Title)
		}
		if rec.ID == "" || rec.Title == "" {
			t.Errorf("incomplete recommendation: %+v", rec)
		}
		if rec.Title == "Headless Media Remote Hub" {
			creativeFound = true
			if rec.Type != "Creative Build" || rec.Platform != "AI Generated" {
				t.Errorf("creative build mislabeled: type=%q platform=%q", rec.Type, rec.Platform)
			}
			if len(rec.Steps) != 3 || rec.Steps[0].StepNumber != 1 {
				t.Errorf("steps not numbered: %+v", rec.Steps)
			}
		}
		if strings.Contains(rec.SourceURL, "youtube.com") {
			scrapedFound = true
		}
	}
	if !creativeFound {
		t.Error("AI creative build missing from recommendations")
	}
	if !scrapedFound {
		t.Error("scraped YouTube result missing from recommendations")
	}

	if resp.EcoValuation == nil || resp.EcoValuation.ValuationSummary == nil {
		t.Fatal("expected eco valuation in envelope")
	}
	summary := resp.EcoValuation.ValuationSummary
	if summary.EstimatedScrapCashUSD != 25 {
		t.Errorf("scrap usd = %v", summary.EstimatedScrapCashUSD)
	}
	if summary.EstimatedScrapCashINR != 25*83 {
		t.Errorf("scrap inr = %v, want fixed-rate mirror", summary.EstimatedScrapCashINR)
	}
	if len(resp.EcoValuation.TradeInOffers) != 3 {
		t.Errorf("expected 3 trade-in offers, got %d", len(resp.EcoValuation.TradeInOffers))
	}

	var doneFound bool
	for _, th := range resp.Thoughts {
		if th.Message == "Done. Delivering results." {
			doneFound = true
		}
	}
	if !doneFound {
		t.Error("thought log missing completion line")
	}
}

func TestIntegration_ScrapeDegradesWhenProviderChallenged(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// Search provider answers every query with a Cloudflare challenge, so all
	// scrapers degrade to zero results and the AI fallback kicks in.
	serpSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Server", "cloudflare")
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `<html><body>cf-browser-verification</body></html>`)
	}))
	defer serpSrv.Close()

	groqSrv := fakeGroq(t)
	defer groqSrv.Close()

	srv := newStack(t, serpSrv.URL, groqSrv.URL)

	body := `{"deviceName":"Pixel 4a","conditions":["Screen Broken"]}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/scrape", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp schema.ScrapeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}

	// The creative architect still contributes, so the envelope is non-empty
	// even with every scraper challenged.
	if len(resp.Recommendations) == 0 {
		t.Error("expected AI recommendations despite challenged provider")
	}
	for _, rec := range resp.Recommendations {
		if rec.Platform != "AI Generated" {
			t.Errorf("unexpected non-AI recommendation %q from platform %q", rec.Title, rec.Platform)
		}
	}
}

func TestIntegration_EcoValuationWithVision(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var visionCalled bool
	groqSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		payload := string(body)

		var content string
		if strings.Contains(payload, "test-vision-model") {
			visionCalled = true
			content = visionReply
		} else {
			content = valuationReply
		}
		reply := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": content}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(reply)
	}))
	defer groqSrv.Close()

	serpSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body></body></html>`)
	}))
	defer serpSrv.Close()

	srv := newStack(t, serpSrv.URL, groqSrv.URL)

	body := `{"deviceName":"Pixel 4a","conditions":["Screen Broken"],"images":["data:image/jpeg;base64,AAAA"]}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/eco-valuation", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	if !visionCalled {
		t.Error("expected a vision model call for the uploaded image")
	}

	var result schema.EcoValuation
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if result.ValuationSummary == nil || result.ValuationSummary.ConditionGrade != "C" {
		t.Errorf("unexpected valuation summary: %+v", result.ValuationSummary)
	}
	if len(result.TradeInOffers) != 3 {
		t.Errorf("expected 3 offers, got %d", len(result.TradeInOffers))
	}
}
