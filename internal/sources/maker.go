package sources

import (
	"context"
	"strings"
	"time"

	"github.com/devicerevive/secondlife/internal/candidate"
	"github.com/devicerevive/secondlife/internal/device"
	"github.com/devicerevive/secondlife/internal/query"
	"github.com/devicerevive/secondlife/internal/search"
)

// makerSites are queried individually for each maker query.
var makerSites = []string{"instructables.com", "hackaday.com", "ifixit.com"}

// Maker covers the maker-tutorial sites: Instructables, Hackaday, iFixit.
type Maker struct {
	Client *search.Client
}

func (s *Maker) Platform() string { return candidate.PlatformInstructables }
func (s *Maker) QueryKey() string { return query.KeyInstructables }

func (s *Maker) Scrape(ctx context.Context, queries []string, dev device.Context) Result {
	var res Result
	for _, q := range capQueries(queries, maxQueriesPerSource) {
		res.think("[Maker Sites] Searching: %s", q)
		for _, site := range makerSites {
			hits := s.Client.Search(ctx, search.Request{Query: q, Site: site, MaxResults: 3})
			res.Candidates = append(res.Candidates, toCandidates(hits, s.Platform())...)
		}
		res.think("[Maker Sites] Found %d results", len(res.Candidates))
	}
	return res
}

// LookupDisassembly searches iFixit for a teardown guide and returns the
// first on-domain URL, or "" when none is found. Failures degrade to "".
func LookupDisassembly(ctx context.Context, client *search.Client, dev device.Context) string {
	hits := client.Search(ctx, search.Request{
		Query:      dev.Name + " teardown disassembly guide",
		Site:       "ifixit.com",
		MaxResults: 3,
		Timeout:    15 * time.Second,
	})
	for _, h := range hits {
		if strings.Contains(h.URL, "ifixit.com") {
			return h.URL
		}
	}
	return ""
}
