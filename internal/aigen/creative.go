package aigen

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/devicerevive/secondlife/internal/candidate"
	"github.com/devicerevive/secondlife/internal/device"
	"github.com/devicerevive/secondlife/internal/llm"
	"github.com/devicerevive/secondlife/internal/metrics"
)

const creativeSystemPrompt = `You are the "Second Life Hardware Architect" - an expert embedded-systems engineer,
maker-space mentor, and sustainability consultant rolled into one.

Your job: given a broken or outdated consumer device (with specific damaged components and remaining specs),
generate PRACTICAL, CREATIVE second-life project ideas that reuse the device as-is (no hypothetical "if the screen worked" projects).

## RULES YOU MUST FOLLOW

### Headless Rule
If the screen OR touch digitizer is broken, EVERY project must be controllable via SSH, ADB, web UI,
or companion app - never rely on the local display/touch.

### Tethered Rule
If the battery is dead or the charging port is broken, the project must assume permanent wall power
(USB supply or wireless charging pad) - do NOT suggest portable/battery-dependent ideas.

### Power Rule
If the charging port is broken AND the battery is dead, the only viable path is component harvesting
or a wireless-charging mod; make that clear.

### Sensor Rule
If camera is dead, exclude any vision-based project. If speaker is broken, exclude audio-output projects.
Only propose projects that use WORKING sensors/components.

## OUTPUT FORMAT
Return a JSON array of project objects. Each object:
{
  "title": "Short project name (5-8 words)",
  "difficulty": "Beginner" | "Intermediate" | "Expert",
  "feasibility_score": 1-10 (how realistic given the broken parts),
  "use_case": "One-line use case summary",
  "description": "2-4 sentence detailed description covering what the project does and why it's a good fit for this device",
  "required_software": ["list", "of", "software/tools"],
  "hardware_fix_needed": "None" | "Brief description of any minor hardware fix required",
  "steps": ["Step 1: ...", "Step 2: ...", "Step 3: ...", "Step 4: ...", "Step 5: ..."]
}

Generate 4-6 diverse projects. Rank them by feasibility_score (highest first).

IMPORTANT:
- Be specific about real software, tools, and techniques.
- Consider RAM and storage constraints - don't suggest running heavy software on 1GB RAM.
- For smartphones with >=2GB RAM: consider home server, Pi-hole, media server, sensor hub.
- For smartphones with <2GB RAM: consider IoT sensor node, digital photo frame, dedicated single-app device.
- For laptops with >=4GB RAM: consider NAS, home server, development box, network monitor, Plex media server.
- For laptops with <4GB RAM: consider lightweight Linux distro, retro gaming, dedicated kiosk.
- For tablets: consider wall-mounted dashboard, digital frame, secondary display.
- Each project must ACTUALLY work with the reported broken components.
- Think creatively about PHYSICAL transformations: backlight from a broken LCD into a desk lamp,
  laptop with broken screen into a headless home server, broken phone into a motion-sensor night light,
  old tablet into a smart mirror frame, phone motherboard into an IoT node, laptop speakers into a Bluetooth speaker mod.
- Mix software-only projects (install Linux, run Pi-hole) with physical hack projects (extract backlight for lamp, convert into wall-mounted display).

You MUST respond with valid JSON only - no markdown, no code fences, no explanation outside the JSON.`

type creativeProject struct {
	Title             string   `json:"title"`
	Difficulty        string   `json:"difficulty"`
	FeasibilityScore  float64  `json:"feasibility_score"`
	UseCase           string   `json:"use_case"`
	Description       string   `json:"description"`
	RequiredSoftware  []string `json:"required_software"`
	HardwareFixNeeded string   `json:"hardware_fix_needed"`
	Steps             []string `json:"steps"`
}

func specStr(gb int) string {
	if gb <= 0 {
		return "Unknown"
	}
	return strconv.Itoa(gb) + "GB"
}

// CreativeBuilds asks the hardware architect prompt for spec-aware build
// ideas. Returns an empty slice on any failure.
func (g *Generator) CreativeBuilds(ctx context.Context, dev device.Context) []candidate.Candidate {
	conds := condText(dev.Conditions, "All components working")

	var b strings.Builder
	fmt.Fprintf(&b, "Device: %s\n", dev.Name)
	fmt.Fprintf(&b, "Device Type: %s\n", dev.DeviceType)
	fmt.Fprintf(&b, "RAM: %s\n", specStr(dev.RAMGB))
	fmt.Fprintf(&b, "Storage: %s\n", specStr(dev.StorageGB))
	fmt.Fprintf(&b, "Broken Components: %s\n", conds)
	fmt.Fprintf(&b, "Working Components: %s\n\n", strings.Join(dev.WorkingComponents(), ", "))
	fmt.Fprintf(&b, "Generate creative second-life project ideas for this %s. ", strings.ToLower(dev.DeviceType))
	fmt.Fprintf(&b, "Remember: %s - all projects must work AROUND these limitations. ", conds)
	b.WriteString("Only use the working components listed above.\n")
	b.WriteString("Respond with a JSON array of project objects only.")

	start := time.Now()
	content, err := g.client.Chat(ctx, llm.ChatRequest{
		Model:       g.model,
		System:      creativeSystemPrompt,
		User:        b.String(),
		Temperature: 0.7,
		MaxTokens:   4096,
	})
	metrics.RecordLLMCall("creative", err, time.Since(start))
	if err != nil {
		g.logger.Error("creative builds generation failed", "error", err)
		return nil
	}

	var items []json.RawMessage
	if err := llm.UnmarshalArray(content, "projects", &items); err != nil {
		g.logger.Error("creative builds returned unparseable content", "error", err)
		return nil
	}

	var out []candidate.Candidate
	for _, raw := range items {
		var p creativeProject
		if err := json.Unmarshal(raw, &p); err != nil || p.Title == "" {
			continue
		}
		feasibility := p.FeasibilityScore
		if feasibility == 0 {
			feasibility = 7
		}

		parts := p.RequiredSoftware
		if fix := strings.TrimSpace(p.HardwareFixNeeded); fix != "" && !strings.EqualFold(fix, "none") {
			parts = append(parts, "Hardware: "+fix)
		}

		reasoning := fmt.Sprintf(
			"%s (Feasibility: %s/10) — AI-generated recommendation tailored to your device's specs and condition.",
			p.UseCase, strconv.FormatFloat(feasibility, 'f', -1, 64),
		)

		diff := p.Difficulty
		if diff == "" {
			diff = "Intermediate"
		}
		out = append(out, candidate.Candidate{
			Title:         p.Title,
			Description:   p.Description,
			Steps:         p.Steps,
			RequiredParts: parts,
			Difficulty:    diff,
			Platform:      candidate.PlatformAIGenerated,
			Type:          candidate.TypeCreativeBuild,
			Reasoning:     reasoning,
			Feasibility:   feasibility,
		})
	}

	g.logger.Info("creative builds generated", "count", len(out))
	return out
}
