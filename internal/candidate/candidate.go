// Package candidate defines the loosely-structured project records collected
// from scrapers and AI generators before validation and scoring. External
// JSON never flows past this shape: the pipeline converts candidates into
// the typed schema.ProjectRecommendation once classified and scored.
package candidate

// Platform labels for provenance tagging.
const (
	PlatformYouTube       = "YouTube"
	PlatformReddit        = "Reddit"
	PlatformGitHub        = "GitHub"
	PlatformInstructables = "Instructables"
	PlatformHackaday      = "Hackaday"
	PlatformIFixit        = "iFixit"
	PlatformWeb           = "Web"
	PlatformAIGenerated   = "AI Generated"
)

// Project type categories.
const (
	TypeSoftware        = "Software"
	TypeHardwareHarvest = "Hardware Harvest"
	TypeCreativeBuild   = "Creative Build"
)

// Candidate is an unscored project idea. Title is the only required field;
// candidates with an empty title are dropped before deduplication.
type Candidate struct {
	Title         string
	Description   string
	SourceURL     string // empty for AI-generated ideas
	Steps         []string
	RequiredParts []string
	Difficulty    string // free text, normalized during scoring
	Platform      string
	Type          string // optional explicit category
	Reasoning     string // optional
	// Feasibility is the AI creative-build generator's own 1-10 rating.
	// Zero means unset.
	Feasibility float64
}

// IsAICreative reports whether the candidate came from the creative-build
// generator, which carries its own feasibility-based scoring path.
func (c Candidate) IsAICreative() bool {
	return c.Platform == PlatformAIGenerated && c.Type == TypeCreativeBuild
}
