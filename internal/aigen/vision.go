package aigen

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/devicerevive/secondlife/internal/llm"
	"github.com/devicerevive/secondlife/internal/metrics"
)

// maxVisionImages caps the images per call to stay inside token limits.
const maxVisionImages = 3

const visionSystemPrompt = `You are a device condition analyst. Analyze the image(s) of this device and provide a detailed condition report.

**YOUR TASK:**
Look at the device image carefully and describe:
1. **Physical damage** you can see (cracks, dents, scratches, discoloration, missing parts)
2. **Screen condition** (cracked, scratched, burn-in, dead pixels, working)
3. **Body/housing condition** (bent, cracked, scuffed, clean)
4. **Port/button condition** (if visible - damaged, missing, dirty)
5. **Overall cosmetic grade** (Pristine / Good / Fair / Poor / Damaged)

**OUTPUT FORMAT:**
Return ONLY a valid JSON object with this structure:
{
  "visual_condition_summary": "A 2-3 sentence summary of the device's physical condition based on the image",
  "detected_issues": ["list", "of", "specific", "issues", "spotted"],
  "cosmetic_grade": "Pristine" or "Good" or "Fair" or "Poor" or "Damaged",
  "confidence": "High" or "Medium" or "Low"
}

Be honest and specific. Only report what you can actually see in the image. If the image is unclear, set confidence to "Low".
Respond with valid JSON only - no markdown, no code fences.`

// VisionReport is the condition report extracted from device photos.
type VisionReport struct {
	Summary        string   `json:"visual_condition_summary"`
	DetectedIssues []string `json:"detected_issues"`
	CosmeticGrade  string   `json:"cosmetic_grade"`
	Confidence     string   `json:"confidence"`
}

// Notes renders the report as free text for the valuation prompt.
func (r *VisionReport) Notes() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Visual analysis (%s confidence): %s", r.Confidence, r.Summary)
	if len(r.DetectedIssues) > 0 {
		fmt.Fprintf(&b, " Detected issues: %s.", strings.Join(r.DetectedIssues, ", "))
	}
	if r.CosmeticGrade != "" {
		fmt.Fprintf(&b, " Cosmetic grade: %s.", r.CosmeticGrade)
	}
	return b.String()
}

// AnalyzeImages runs the vision model over base64-encoded device photos.
// A data-URL prefix on an image is tolerated and stripped. Returns nil when
// no images are given or the call fails.
func (g *Generator) AnalyzeImages(ctx context.Context, images []string, deviceName string) *VisionReport {
	if len(images) == 0 {
		return nil
	}

	text := "Analyze this device's physical condition from the image(s)."
	if deviceName != "" {
		text = fmt.Sprintf("This is a %s. Analyze its physical condition from the image(s).", deviceName)
	}
	parts := []llm.ContentPart{{Type: "text", Text: text}}

	if len(images) > maxVisionImages {
		images = images[:maxVisionImages]
	}
	for _, img := range images {
		if strings.HasPrefix(img, "data:") {
			if i := strings.Index(img, ","); i >= 0 {
				img = img[i+1:]
			}
		}
		parts = append(parts, llm.ContentPart{
			Type:     "image_url",
			ImageURL: &llm.ImageURL{URL: "data:image/jpeg;base64," + img},
		})
	}

	start := time.Now()
	content, err := g.client.Chat(ctx, llm.ChatRequest{
		Model:       g.visionModel,
		System:      visionSystemPrompt,
		Parts:       parts,
		Temperature: 0.3,
		MaxTokens:   1024,
	})
	metrics.RecordLLMCall("vision", err, time.Since(start))
	if err != nil {
		g.logger.Error("vision analysis failed", "error", err)
		return nil
	}

	var report VisionReport
	if err := llm.UnmarshalObject(content, &report); err != nil {
		g.logger.Error("vision analysis returned unparseable content", "error", err)
		return nil
	}

	g.logger.Info("vision analysis complete",
		"grade", report.CosmeticGrade, "issues", len(report.DetectedIssues), "confidence", report.Confidence)
	return &report
}
