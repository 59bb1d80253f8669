package aigen

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/devicerevive/secondlife/internal/candidate"
	"github.com/devicerevive/secondlife/internal/device"
	"github.com/devicerevive/secondlife/internal/llm"
	"github.com/devicerevive/secondlife/internal/metrics"
)

const fallbackSystemPrompt = `You are a hardware hacking and electronics upcycling expert.
Given a device and its conditions, you generate creative, practical project ideas
for giving the device a second life.

You MUST respond with valid JSON only - no markdown, no code fences, no explanation.
The JSON must be an array of project objects. Each project object has these fields:
- "title": string - short project name
- "description": string - 2-3 sentence explanation of the project
- "difficulty": "Beginner" | "Intermediate" | "Expert"
- "type": "Software" | "Hardware Harvest" | "Creative Build"
- "required_parts": string[] - list of parts, tools, or software needed
- "steps": string[] - 5-10 detailed step-by-step instructions
- "reasoning": string - why this project is a good fit for this device and conditions

Generate 5-8 diverse projects. Include a mix of Software, Hardware Harvest, and Creative Build types.
"Creative Build" means physically transforming the device into something entirely new
(like DIY Perks style projects - e.g., turning a laptop screen into a portable monitor,
making a phone into a home server, building a custom Bluetooth speaker from phone parts).
Each project must work with the device's reported conditions (broken parts).
Be specific and actionable - include real software names, tools, and techniques.`

type fallbackProject struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Difficulty    string   `json:"difficulty"`
	Type          string   `json:"type"`
	RequiredParts []string `json:"required_parts"`
	Steps         []string `json:"steps"`
	Reasoning     string   `json:"reasoning"`
}

// Fallback brainstorms project ideas when scraping produced nothing.
// Returns an empty slice on any failure.
func (g *Generator) Fallback(ctx context.Context, dev device.Context) []candidate.Candidate {
	conds := condText(dev.Conditions, "no reported issues")

	var b strings.Builder
	fmt.Fprintf(&b, "Device: %s\n", dev.Name)
	fmt.Fprintf(&b, "Conditions: %s\n", conds)
	if dev.Notes != "" {
		fmt.Fprintf(&b, "\nUser's description of condition: %s\n", dev.Notes)
	}
	fmt.Fprintf(&b, "Mode: %s\n\n", dev.Mode)
	fmt.Fprintf(&b, "Generate creative second-life project ideas for this device. ")
	fmt.Fprintf(&b, "Remember the device has these broken/damaged parts: %s. ", conds)
	if dev.Notes != "" {
		fmt.Fprintf(&b, "The user also describes: %s. ", dev.Notes)
	}
	b.WriteString("All projects must work AROUND these limitations.\n")
	if dev.Mode == device.ModeHarvest {
		b.WriteString("Focus on teardown and component harvesting projects.\n")
	} else {
		b.WriteString("Focus on software repurposing and creative reuse projects.\n")
	}
	b.WriteString("Respond with a JSON array of project objects only.")

	start := time.Now()
	content, err := g.client.Chat(ctx, llm.ChatRequest{
		Model:       g.model,
		System:      fallbackSystemPrompt,
		User:        b.String(),
		Temperature: 0.7,
		MaxTokens:   4096,
	})
	metrics.RecordLLMCall("fallback", err, time.Since(start))
	if err != nil {
		g.logger.Error("ai fallback generation failed", "error", err)
		return nil
	}

	var items []json.RawMessage
	if err := llm.UnmarshalArray(content, "projects", &items); err != nil {
		g.logger.Error("ai fallback returned unparseable content", "error", err)
		return nil
	}

	var out []candidate.Candidate
	for _, raw := range items {
		var p fallbackProject
		if err := json.Unmarshal(raw, &p); err != nil || p.Title == "" {
			continue
		}
		reasoning := p.Reasoning
		if reasoning == "" {
			reasoning = "AI-generated recommendation based on device specs."
		}
		typ := p.Type
		if typ == "" {
			typ = candidate.TypeSoftware
		}
		diff := p.Difficulty
		if diff == "" {
			diff = "Intermediate"
		}
		out = append(out, candidate.Candidate{
			Title:         p.Title,
			Description:   p.Description,
			Steps:         p.Steps,
			RequiredParts: p.RequiredParts,
			Difficulty:    diff,
			Platform:      candidate.PlatformAIGenerated,
			Type:          typ,
			Reasoning:     reasoning,
		})
	}

	g.logger.Info("ai fallback generated recommendations", "count", len(out))
	return out
}
