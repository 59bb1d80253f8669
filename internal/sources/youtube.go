package sources

import (
	"context"

	"github.com/devicerevive/secondlife/internal/candidate"
	"github.com/devicerevive/secondlife/internal/device"
	"github.com/devicerevive/secondlife/internal/query"
	"github.com/devicerevive/secondlife/internal/search"
)

// YouTube finds video tutorials via site-filtered search.
type YouTube struct {
	Client *search.Client
}

func (s *YouTube) Platform() string { return candidate.PlatformYouTube }
func (s *YouTube) QueryKey() string { return query.KeyYouTube }

func (s *YouTube) Scrape(ctx context.Context, queries []string, dev device.Context) Result {
	var res Result
	for _, q := range capQueries(queries, maxQueriesPerSource) {
		res.think("[YouTube] Searching: %s", q)
		hits := s.Client.Search(ctx, search.Request{Query: q, Site: "youtube.com"})
		found := keepDomain(toCandidates(hits, s.Platform()), "youtube.com")
		res.Candidates = append(res.Candidates, found...)
		res.think("[YouTube] Found %d results", len(found))
	}
	return res
}
