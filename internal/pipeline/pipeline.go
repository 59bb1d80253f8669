// Package pipeline orchestrates one scrape run: formulate queries, fan out
// to the source scrapers and AI generators concurrently, then deduplicate,
// classify, score, rank, and assemble the response envelope.
package pipeline

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/devicerevive/secondlife/internal/aigen"
	"github.com/devicerevive/secondlife/internal/candidate"
	"github.com/devicerevive/secondlife/internal/device"
	"github.com/devicerevive/secondlife/internal/metrics"
	"github.com/devicerevive/secondlife/internal/query"
	"github.com/devicerevive/secondlife/internal/schema"
	"github.com/devicerevive/secondlife/internal/search"
	"github.com/devicerevive/secondlife/internal/sources"
)

const (
	// maxRecommendations caps the response envelope size.
	maxRecommendations = 20
	// maxAICreativeSlots reserves room for architect builds in the cap.
	maxAICreativeSlots = 6
)

// Config wires a Runner.
type Config struct {
	Scrapers      []sources.Scraper
	Generator     *aigen.Generator
	Search        *search.Client
	SourceTimeout time.Duration
	Logger        *slog.Logger
}

// Runner executes scrape runs. Safe for concurrent use.
type Runner struct {
	scrapers      []sources.Scraper
	gen           *aigen.Generator
	search        *search.Client
	sourceTimeout time.Duration
	logger        *slog.Logger
}

// New creates a Runner.
func New(cfg Config) *Runner {
	if cfg.SourceTimeout == 0 {
		cfg.SourceTimeout = 60 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		scrapers:      cfg.Scrapers,
		gen:           cfg.Generator,
		search:        cfg.Search,
		sourceTimeout: cfg.SourceTimeout,
		logger:        logger,
	}
}

// Run executes the full pipeline for one device. Individual source and
// generator failures degrade to empty contributions; Run itself always
// returns an envelope. The caller bounds the whole run via ctx.
func (r *Runner) Run(ctx context.Context, dev device.Context) *schema.ScrapeResponse {
	var thoughts []schema.ThoughtLogEntry
	think := func(format string, args ...any) {
		thoughts = append(thoughts, schema.NewThought(fmt.Sprintf(format, args...)))
	}

	think("Analyzing %s (%s) specs...", dev.Name, dev.DeviceType)

	plan := query.Formulate(dev)
	thoughts = append(thoughts, plan.Thoughts...)

	think("Launching %d scraper agents in parallel...", len(r.scrapers))
	think("Activating AI Creative Builds Architect for spec-aware project ideas...")
	think("Activating Eco-Exchange Valuation Engine for trade-in offers...")

	results := make([]sources.Result, len(r.scrapers))
	var (
		disassemblyURL string
		aiCreative     []candidate.Candidate
		eco            *schema.EcoValuation
	)

	g, gctx := errgroup.WithContext(ctx)
	for i, s := range r.scrapers {
		g.Go(func() error {
			sctx, cancel := context.WithTimeout(gctx, r.sourceTimeout)
			defer cancel()
			results[i] = s.Scrape(sctx, plan.For(s.QueryKey()), dev)
			return nil
		})
	}
	g.Go(func() error {
		sctx, cancel := context.WithTimeout(gctx, r.sourceTimeout)
		defer cancel()
		disassemblyURL = sources.LookupDisassembly(sctx, r.search, dev)
		return nil
	})
	g.Go(func() error {
		aiCreative = r.gen.CreativeBuilds(gctx, dev)
		return nil
	})
	g.Go(func() error {
		eco = r.gen.Valuation(gctx, dev, "")
		return nil
	})
	g.Wait()

	var all []candidate.Candidate
	for _, res := range results {
		thoughts = append(thoughts, res.Thoughts...)
		all = append(all, res.Candidates...)
	}
	think("Collected %d raw results across all sources.", len(all))

	if len(aiCreative) > 0 {
		think("AI Architect generated %d spec-aware creative build ideas.", len(aiCreative))
		all = append(all, aiCreative...)
	} else {
		think("AI Creative Builds Architect returned no results. Using web search results only.")
	}

	deduped := Deduplicate(all)
	think("After deduplication: %d unique projects.", len(deduped))

	if len(deduped) == 0 {
		think("No web results found. Activating AI to generate project recommendations...")
		if fallback := r.gen.Fallback(ctx, dev); len(fallback) > 0 {
			think("AI generated %d creative project ideas with step-by-step instructions.", len(fallback))
			deduped = fallback
		} else {
			think("AI fallback also returned no results. Delivering empty set.")
		}
	}

	think("Scoring projects by device compatibility...")
	if disassemblyURL != "" {
		think("Found disassembly manual: %s...", truncate(disassemblyURL, 60))
	}

	recs := make([]schema.ProjectRecommendation, 0, len(deduped))
	for _, c := range deduped {
		recs = append(recs, buildRecommendation(c, dev))
	}
	recs = rank(recs)

	think("Synthesis complete. Generated %d recommendations.", len(recs))
	think("Generating shopping lists and difficulty ratings...")
	think("Done. Delivering results.")

	if eco != nil && eco.ValuationSummary != nil {
		think("Eco-Exchange valued device at $%v scrap + %d partner offers.",
			eco.ValuationSummary.EstimatedScrapCashUSD, len(eco.TradeInOffers))
	}

	status := "ok"
	if ctx.Err() != nil {
		status = "timeout"
	}
	metrics.PipelineRunsTotal.WithLabelValues(status).Inc()
	metrics.RecommendationCount.Observe(float64(len(recs)))
	r.logger.Info("pipeline run complete",
		"device", dev.Name, "recommendations", len(recs), "status", status)

	return &schema.ScrapeResponse{
		Thoughts:        thoughts,
		Recommendations: recs,
		SearchQueries:   plan.Flat(),
		DeviceSummary:   dev.Summary(),
		DisassemblyURL:  disassemblyURL,
		EcoValuation:    eco,
	}
}

// buildRecommendation scores and normalizes one candidate into its final
// envelope form.
func buildRecommendation(c candidate.Candidate, dev device.Context) schema.ProjectRecommendation {
	aiCreative := c.IsAICreative()

	var score int
	if aiCreative {
		score = scoreAICreative(c)
	} else {
		score = scoreCandidate(c, dev)
	}
	// Plain AI-generated ideas are tailored to the device even without a
	// feasibility score, so they keep a floor above the scraped baseline.
	if c.Platform == candidate.PlatformAIGenerated && !aiCreative && score < 70 {
		score = 70
	}

	typ := c.Type
	switch typ {
	case candidate.TypeSoftware, candidate.TypeHardwareHarvest, candidate.TypeCreativeBuild:
	default:
		typ = classifyType(c, dev.Mode)
	}

	platform := c.Platform
	if platform == "" {
		platform = candidate.PlatformWeb
	}

	title := c.Title
	if title == "" {
		title = "Untitled Project"
	}

	reasoning := c.Reasoning
	if reasoning == "" {
		reasoning = fmt.Sprintf("Found on %s. Compatible with your %s's condition.", platform, dev.Name)
	}

	var steps []schema.StepByStepInstruction
	for _, raw := range c.Steps {
		text := strings.TrimSpace(raw)
		if text == "" {
			continue
		}
		steps = append(steps, schema.StepByStepInstruction{
			StepNumber:  len(steps) + 1,
			Description: text,
		})
	}

	return schema.ProjectRecommendation{
		ID:                 newID(),
		Title:              title,
		Type:               typ,
		Description:        c.Description,
		Difficulty:         normalizeDifficulty(c.Difficulty),
		CompatibilityScore: score,
		Reasoning:          reasoning,
		RequiredParts:      c.RequiredParts,
		SourceURL:          c.SourceURL,
		Steps:              steps,
		Platform:           platform,
	}
}

// rank orders recommendations by score and applies the envelope cap with
// reserved slots for AI creative builds, so a flood of scraped results can
// never push the architect's ideas out entirely.
func rank(recs []schema.ProjectRecommendation) []schema.ProjectRecommendation {
	sortByScore(recs)

	var aiCreative, other []schema.ProjectRecommendation
	for _, r := range recs {
		if r.Platform == candidate.PlatformAIGenerated && r.Type == candidate.TypeCreativeBuild {
			aiCreative = append(aiCreative, r)
		} else {
			other = append(other, r)
		}
	}

	maxAI := len(aiCreative)
	if maxAI > maxAICreativeSlots {
		maxAI = maxAICreativeSlots
	}
	maxOther := maxRecommendations - maxAI
	if len(other) > maxOther {
		other = other[:maxOther]
	}

	out := append(aiCreative[:maxAI], other...)
	sortByScore(out)
	return out
}

func sortByScore(recs []schema.ProjectRecommendation) {
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].CompatibilityScore > recs[j].CompatibilityScore
	})
}

// newID returns a short opaque recommendation ID.
func newID() string {
	u := uuid.New()
	return hex.EncodeToString(u[:])[:8]
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
