package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/devicerevive/secondlife/internal/aigen"
	"github.com/devicerevive/secondlife/internal/candidate"
	"github.com/devicerevive/secondlife/internal/device"
	"github.com/devicerevive/secondlife/internal/fingerprint"
	"github.com/devicerevive/secondlife/internal/llm"
	"github.com/devicerevive/secondlife/internal/schema"
	"github.com/devicerevive/secondlife/internal/search"
	"github.com/devicerevive/secondlife/internal/sources"
)

func TestBuildRecommendationSteps(t *testing.T) {
	c := candidate.Candidate{
		Title: "Home Server",
		Steps: []string{"Install Linux", "", "  ", "Configure SSH"},
	}
	rec := buildRecommendation(c, device.Context{Name: "Pixel 4a"})

	if len(rec.Steps) != 2 {
		t.Fatalf("expected 2 steps after blank filtering, got %d", len(rec.Steps))
	}
	if rec.Steps[0].StepNumber != 1 || rec.Steps[1].StepNumber != 2 {
		t.Errorf("steps not numbered consecutively: %+v", rec.Steps)
	}
	if rec.Steps[1].Description != "Configure SSH" {
		t.Errorf("step description = %q, want %q", rec.Steps[1].Description, "Configure SSH")
	}
}

func TestBuildRecommendationDefaults(t *testing.T) {
	rec := buildRecommendation(candidate.Candidate{Title: "Project"}, device.Context{Name: "Pixel 4a"})

	if len(rec.ID) != 8 {
		t.Errorf("id length = %d, want 8", len(rec.ID))
	}
	if rec.Platform != candidate.PlatformWeb {
		t.Errorf("platform = %q, want %q", rec.Platform, candidate.PlatformWeb)
	}
	if rec.Difficulty != "Intermediate" {
		t.Errorf("difficulty = %q, want Intermediate", rec.Difficulty)
	}
	want := "Found on Web. Compatible with your Pixel 4a's condition."
	if rec.Reasoning != want {
		t.Errorf("reasoning = %q, want %q", rec.Reasoning, want)
	}
}

func TestBuildRecommendationAIFloor(t *testing.T) {
	c := candidate.Candidate{
		Title:    "AI Idea",
		Platform: candidate.PlatformAIGenerated,
		Type:     candidate.TypeSoftware,
	}
	rec := buildRecommendation(c, device.Context{Name: "Pixel 4a"})
	if rec.CompatibilityScore < 70 {
		t.Errorf("AI-generated score = %d, want >= 70", rec.CompatibilityScore)
	}
}

func TestBuildRecommendationAICreativeUsesFeasibility(t *testing.T) {
	c := candidate.Candidate{
		Title:       "Creative Build",
		Platform:    candidate.PlatformAIGenerated,
		Type:        candidate.TypeCreativeBuild,
		Feasibility: 9,
	}
	rec := buildRecommendation(c, device.Context{Name: "Pixel 4a"})
	if rec.CompatibilityScore != 90 {
		t.Errorf("AI creative score = %d, want 90", rec.CompatibilityScore)
	}
}

func TestRankCapAndSlots(t *testing.T) {
	dev := device.Context{Name: "Pixel 4a"}
	var recs []schema.ProjectRecommendation
	for i := 0; i < 30; i++ {
		recs = append(recs, buildRecommendation(candidate.Candidate{
			Title:    fmt.Sprintf("Scraped Project %d", i),
			Platform: candidate.PlatformWeb,
		}, dev))
	}
	for i := 0; i < 8; i++ {
		recs = append(recs, buildRecommendation(candidate.Candidate{
			Title:       fmt.Sprintf("AI Build %d", i),
			Platform:    candidate.PlatformAIGenerated,
			Type:        candidate.TypeCreativeBuild,
			Feasibility: 8,
		}, dev))
	}

	out := rank(recs)

	if len(out) != maxRecommendations {
		t.Fatalf("ranked count = %d, want %d", len(out), maxRecommendations)
	}
	aiCreative := 0
	for _, r := range out {
		if r.Platform == candidate.PlatformAIGenerated && r.Type == candidate.TypeCreativeBuild {
			aiCreative++
		}
	}
	if aiCreative != maxAICreativeSlots {
		t.Errorf("AI creative slots = %d, want %d", aiCreative, maxAICreativeSlots)
	}
	for i := 1; i < len(out); i++ {
		if out[i].CompatibilityScore > out[i-1].CompatibilityScore {
			t.Fatalf("not sorted by score at %d: %d > %d", i, out[i].CompatibilityScore, out[i-1].CompatibilityScore)
		}
	}
}

func TestRankKeepsAllWhenUnderCap(t *testing.T) {
	dev := device.Context{Name: "Pixel 4a"}
	var recs []schema.ProjectRecommendation
	for i := 0; i < 5; i++ {
		recs = append(recs, buildRecommendation(candidate.Candidate{
			Title: fmt.Sprintf("Project %d", i),
		}, dev))
	}
	if out := rank(recs); len(out) != 5 {
		t.Errorf("ranked count = %d, want 5", len(out))
	}
}

// stubScraper feeds fixed candidates into a pipeline run.
type stubScraper struct {
	platform string
	key      string
	result   sources.Result
}

func (s *stubScraper) Platform() string { return s.platform }
func (s *stubScraper) QueryKey() string { return s.key }
func (s *stubScraper) Scrape(ctx context.Context, queries []string, dev device.Context) sources.Result {
	return s.result
}

// offlineDeps builds a search client pointing at a local empty SERP and a
// generator with no API key, so runs exercise the full flow without network.
func offlineDeps(t *testing.T) (*search.Client, *aigen.Generator, func()) {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html><body></body></html>")
	}))

	fetcher, err := search.NewFetcher(search.FetchConfig{
		Timeout:     2 * time.Second,
		Fingerprint: fingerprint.ProfileGo,
	})
	if err != nil {
		ts.Close()
		t.Fatalf("failed to create fetcher: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := search.NewClient(search.ClientConfig{
		Fetcher: fetcher,
		BaseURL: ts.URL + "/html/",
		Logger:  logger,
	})

	llmClient, err := llm.NewClient(llm.Config{APIKey: ""})
	if err != nil {
		ts.Close()
		t.Fatalf("failed to create llm client: %v", err)
	}
	gen := aigen.New(aigen.Config{Client: llmClient, Model: "test", Logger: logger})

	return client, gen, ts.Close
}

func TestRunAssemblesEnvelope(t *testing.T) {
	client, gen, cleanup := offlineDeps(t)
	defer cleanup()

	scraper := &stubScraper{
		platform: candidate.PlatformYouTube,
		key:      "youtube",
		result: sources.Result{
			Candidates: []candidate.Candidate{
				{Title: "Pixel 4a headless server", SourceURL: "https://youtube.com/watch?v=1", Platform: candidate.PlatformYouTube},
				{Title: "Pixel 4a Headless Server!", SourceURL: "https://youtube.com/watch?v=2", Platform: candidate.PlatformYouTube},
				{Title: "Retro gaming handheld build", SourceURL: "https://youtube.com/watch?v=3", Platform: candidate.PlatformYouTube},
			},
			Thoughts: []schema.ThoughtLogEntry{schema.NewThought("[YouTube] Searching: test")},
		},
	}

	runner := New(Config{
		Scrapers:      []sources.Scraper{scraper},
		Generator:     gen,
		Search:        client,
		SourceTimeout: 5 * time.Second,
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	dev := device.Context{
		Name:       "Pixel 4a",
		Conditions: []string{device.CondScreenBroken},
		Mode:       device.ModeStandard,
		DeviceType: "Smartphone",
	}
	resp := runner.Run(context.Background(), dev)

	if len(resp.Recommendations) != 2 {
		t.Fatalf("expected 2 recommendations after dedupe, got %d", len(resp.Recommendations))
	}
	if len(resp.SearchQueries) == 0 {
		t.Error("expected formulated search queries in envelope")
	}
	if !strings.Contains(resp.DeviceSummary, "Pixel 4a") {
		t.Errorf("device summary = %q, want device name included", resp.DeviceSummary)
	}
	if resp.EcoValuation != nil {
		t.Error("expected nil eco valuation without an API key")
	}

	var sawDone bool
	for _, th := range resp.Thoughts {
		if th.Message == "Done. Delivering results." {
			sawDone = true
		}
		if th.Timestamp == 0 {
			t.Error("thought missing timestamp")
		}
	}
	if !sawDone {
		t.Error("expected final delivery thought in log")
	}

	for _, rec := range resp.Recommendations {
		if rec.CompatibilityScore < 0 || rec.CompatibilityScore > 100 {
			t.Errorf("score out of range: %d", rec.CompatibilityScore)
		}
		if rec.ID == "" {
			t.Error("recommendation missing id")
		}
	}
}

func TestRunEmptySourcesFallsBackToAI(t *testing.T) {
	client, gen, cleanup := offlineDeps(t)
	defer cleanup()

	runner := New(Config{
		Scrapers:  []sources.Scraper{&stubScraper{platform: candidate.PlatformWeb, key: "general"}},
		Generator: gen,
		Search:    client,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	resp := runner.Run(context.Background(), device.Context{Name: "Pixel 4a", Mode: device.ModeStandard})

	// Fallback generator has no API key, so the run delivers an empty set
	// and narrates both fallback attempts.
	if len(resp.Recommendations) != 0 {
		t.Fatalf("expected empty recommendations, got %d", len(resp.Recommendations))
	}
	var sawActivating, sawEmpty bool
	for _, th := range resp.Thoughts {
		if strings.Contains(th.Message, "Activating AI to generate project recommendations") {
			sawActivating = true
		}
		if strings.Contains(th.Message, "Delivering empty set") {
			sawEmpty = true
		}
	}
	if !sawActivating || !sawEmpty {
		t.Errorf("expected fallback narration, got activating=%v empty=%v", sawActivating, sawEmpty)
	}
}
