package sources

import (
	"context"

	"github.com/devicerevive/secondlife/internal/candidate"
	"github.com/devicerevive/secondlife/internal/device"
	"github.com/devicerevive/secondlife/internal/query"
	"github.com/devicerevive/secondlife/internal/search"
)

// Reddit finds discussion threads about repurposing projects.
type Reddit struct {
	Client *search.Client
}

func (s *Reddit) Platform() string { return candidate.PlatformReddit }
func (s *Reddit) QueryKey() string { return query.KeyReddit }

func (s *Reddit) Scrape(ctx context.Context, queries []string, dev device.Context) Result {
	var res Result
	for _, q := range capQueries(queries, maxQueriesPerSource) {
		res.think("[Reddit] Searching: %s", q)
		hits := s.Client.Search(ctx, search.Request{Query: q, Site: "reddit.com"})
		found := keepDomain(toCandidates(hits, s.Platform()), "reddit.com")
		res.Candidates = append(res.Candidates, found...)
		res.think("[Reddit] Found %d results", len(found))
	}
	return res
}
