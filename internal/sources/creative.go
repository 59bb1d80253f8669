package sources

import (
	"context"
	"strings"

	"github.com/devicerevive/secondlife/internal/candidate"
	"github.com/devicerevive/secondlife/internal/device"
	"github.com/devicerevive/secondlife/internal/query"
	"github.com/devicerevive/secondlife/internal/search"
)

// Creative hunts for DIY-Perks-style conversion builds: projects that turn
// the broken device into something entirely new. Hits are tagged as
// Creative Build and re-attributed to the platform their URL points at.
type Creative struct {
	Client *search.Client
}

func (s *Creative) Platform() string { return "Creative" }
func (s *Creative) QueryKey() string { return query.KeyCreative }

func (s *Creative) Scrape(ctx context.Context, queries []string, dev device.Context) Result {
	var res Result
	for _, q := range capQueries(queries, maxQueriesPerSource+1) {
		res.think("[Creative Builds] Searching: %s", q)
		found := toCandidates(s.Client.Search(ctx, search.Request{Query: q}), candidate.PlatformWeb)
		for i := range found {
			found[i].Type = candidate.TypeCreativeBuild
			found[i].Platform = platformFromURL(found[i].SourceURL)
		}
		res.Candidates = append(res.Candidates, found...)
		res.think("[Creative Builds] Found %d results", len(found))
	}
	return res
}

// platformFromURL attributes a creative hit to the platform hosting it.
func platformFromURL(rawURL string) string {
	u := strings.ToLower(rawURL)
	switch {
	case strings.Contains(u, "youtube.com"), strings.Contains(u, "youtu.be"):
		return candidate.PlatformYouTube
	case strings.Contains(u, "reddit.com"):
		return candidate.PlatformReddit
	case strings.Contains(u, "instructables.com"):
		return candidate.PlatformInstructables
	case strings.Contains(u, "hackaday"):
		return candidate.PlatformHackaday
	case strings.Contains(u, "ifixit.com"):
		return candidate.PlatformIFixit
	default:
		return candidate.PlatformWeb
	}
}
