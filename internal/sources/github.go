package sources

import (
	"context"

	"github.com/devicerevive/secondlife/internal/candidate"
	"github.com/devicerevive/secondlife/internal/device"
	"github.com/devicerevive/secondlife/internal/query"
	"github.com/devicerevive/secondlife/internal/search"
)

// GitHub finds code-hosting projects; repos tend to carry actionable code.
type GitHub struct {
	Client *search.Client
}

func (s *GitHub) Platform() string { return candidate.PlatformGitHub }
func (s *GitHub) QueryKey() string { return query.KeyGitHub }

func (s *GitHub) Scrape(ctx context.Context, queries []string, dev device.Context) Result {
	var res Result
	for _, q := range capQueries(queries, maxQueriesPerSource) {
		res.think("[GitHub] Searching: %s", q)
		hits := s.Client.Search(ctx, search.Request{Query: q, Site: "github.com"})
		found := keepDomain(toCandidates(hits, s.Platform()), "github.com")
		res.Candidates = append(res.Candidates, found...)
		res.think("[GitHub] Found %d results", len(found))
	}
	return res
}
