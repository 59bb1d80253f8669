package sources

import (
	"context"

	"github.com/devicerevive/secondlife/internal/candidate"
	"github.com/devicerevive/secondlife/internal/device"
	"github.com/devicerevive/secondlife/internal/query"
	"github.com/devicerevive/secondlife/internal/search"
)

// Web is the unrestricted general-web scraper.
type Web struct {
	Client *search.Client
}

func (s *Web) Platform() string { return candidate.PlatformWeb }
func (s *Web) QueryKey() string { return query.KeyGeneral }

func (s *Web) Scrape(ctx context.Context, queries []string, dev device.Context) Result {
	var res Result
	for _, q := range capQueries(queries, maxQueriesPerSource) {
		res.think("[Web] Searching: %s", q)
		found := toCandidates(s.Client.Search(ctx, search.Request{Query: q}), s.Platform())
		res.Candidates = append(res.Candidates, found...)
		res.think("[Web] Found %d results", len(found))
	}
	return res
}
