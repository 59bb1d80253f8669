// Package aigen holds the LLM-backed generators: the brainstorm fallback used
// when scraping finds nothing, the spec-aware creative builds architect, the
// trade-in valuation engine, and the vision condition analyzer. Generators
// degrade to empty results on failure so the pipeline never hard-fails on a
// single model call.
package aigen

import (
	"log/slog"
	"strings"

	"github.com/devicerevive/secondlife/internal/llm"
)

// Config wires a Generator.
type Config struct {
	Client      *llm.Client
	Model       string
	VisionModel string
	Logger      *slog.Logger
}

// Generator runs the LLM generators against a single device context.
type Generator struct {
	client      *llm.Client
	model       string
	visionModel string
	logger      *slog.Logger
}

// New creates a Generator.
func New(cfg Config) *Generator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		client:      cfg.Client,
		model:       cfg.Model,
		visionModel: cfg.VisionModel,
		logger:      logger,
	}
}

// condText renders the condition list the way prompts expect it.
func condText(conditions []string, whenEmpty string) string {
	if len(conditions) == 0 {
		return whenEmpty
	}
	return strings.Join(conditions, ", ")
}
