package pipeline

import (
	"strings"

	"github.com/devicerevive/secondlife/internal/candidate"
	"github.com/devicerevive/secondlife/internal/device"
)

// scoreCandidate rates how well a scraped project fits the device, 0-100.
// It starts from a neutral base and applies additive bonuses and penalties
// keyed on the reported conditions.
func scoreCandidate(c candidate.Candidate, dev device.Context) int {
	score := 65

	text := strings.ToLower(c.Title + " " + c.Description)

	if strings.Contains(text, strings.ToLower(dev.Name)) {
		score += 10
	}

	switch {
	case len(c.Steps) >= 3:
		score += 8
	case len(c.Steps) >= 1:
		score += 4
	}

	if len(c.RequiredParts) > 0 {
		score += 3
	}

	if dev.Has(device.CondScreenBroken) {
		if containsAny(text, "headless", "no screen", "server") {
			score += 12
		}
		if containsAny(text, "display", "screen", "mirror") {
			score -= 10
		}
	}

	if dev.Has(device.CondBadBattery) {
		if containsAny(text, "wall", "plugged", "usb power") {
			score += 8
		}
		if containsAny(text, "portable", "battery powered") {
			score -= 8
		}
	}

	if dev.Has(device.CondTouchBroken) {
		if containsAny(text, "adb", "headless", "sensor", "ssh") {
			score += 10
		}
		if containsAny(text, "touchscreen", "touch interface") {
			score -= 10
		}
	}

	if dev.Has(device.CondCameraDead) {
		if containsAny(text, "camera", "security cam", "webcam") {
			score -= 15
		}
	}

	if dev.Has(device.CondSpeakerBroken) {
		if containsAny(text, "audio", "speaker", "music") {
			score -= 10
		}
	}

	// Provenance bonuses: repos carry runnable code, video tutorials with
	// extracted steps are directly actionable.
	if c.Platform == candidate.PlatformGitHub {
		score += 3
	}
	if c.Platform == candidate.PlatformYouTube && len(c.Steps) > 0 {
		score += 5
	}

	return clampScore(score)
}

// scoreAICreative converts the architect's 1-10 feasibility into the 0-100
// scale. These candidates bypass the keyword scorer, which would penalize
// them for honestly mentioning the broken parts they work around.
func scoreAICreative(c candidate.Candidate) int {
	feasibility := c.Feasibility
	if feasibility == 0 {
		feasibility = 7
	}
	score := int(feasibility * 10)
	if score < 60 {
		score = 60
	}
	if score > 100 {
		score = 100
	}
	if len(c.Steps) >= 3 {
		score += 5
	}
	return clampScore(score)
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func containsAny(text string, subs ...string) bool {
	for _, s := range subs {
		if strings.Contains(text, s) {
			return true
		}
	}
	return false
}
