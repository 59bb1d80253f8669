package pipeline

import (
	"strings"

	"github.com/devicerevive/secondlife/internal/candidate"
	"github.com/devicerevive/secondlife/internal/device"
)

var hardwareKeywords = []string{
	"teardown", "harvest", "disassembly", "component", "extract",
	"motor", "battery", "camera module", "display panel", "pcb",
	"solder", "desolder", "ifixit",
}

var creativeKeywords = []string{
	"convert into", "transform into", "build into", "make into",
	"secondary display", "external monitor", "portable monitor",
	"diy perks", "conversion", "custom build", "repurpose into",
	"turned into", "made from", "built from", "transform",
}

// classifyType infers a project type from the candidate's text. Hardware
// Harvest is only assigned in harvest mode; the mode expresses user intent
// and teardown content is noise otherwise.
func classifyType(c candidate.Candidate, mode device.Mode) string {
	text := strings.ToLower(c.Title + " " + c.Description)

	if mode == device.ModeHarvest {
		for _, kw := range hardwareKeywords {
			if strings.Contains(text, kw) {
				return candidate.TypeHardwareHarvest
			}
		}
	}
	for _, kw := range creativeKeywords {
		if strings.Contains(text, kw) {
			return candidate.TypeCreativeBuild
		}
	}
	return candidate.TypeSoftware
}

// normalizeDifficulty folds free-form difficulty labels into the three
// levels the frontend renders. Unrecognized input maps to Intermediate.
func normalizeDifficulty(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case strings.Contains(s, "beginner"), strings.Contains(s, "easy"):
		return "Beginner"
	case strings.Contains(s, "expert"), strings.Contains(s, "hard"), strings.Contains(s, "advanced"):
		return "Expert"
	default:
		return "Intermediate"
	}
}
