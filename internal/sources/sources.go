// Package sources holds the per-platform scrapers. Each scraper takes the
// query list the formulator assigned to it, runs a bounded number of SERP
// searches, and converts accepted hits into platform-tagged candidates. A
// failed or empty query contributes nothing; it never aborts the scraper.
package sources

import (
	"context"
	"fmt"
	"strings"

	"github.com/devicerevive/secondlife/internal/candidate"
	"github.com/devicerevive/secondlife/internal/device"
	"github.com/devicerevive/secondlife/internal/metrics"
	"github.com/devicerevive/secondlife/internal/schema"
	"github.com/devicerevive/secondlife/internal/search"
)

// maxQueriesPerSource bounds worst-case external calls per request.
const maxQueriesPerSource = 3

// Result is a scraper's contribution to one pipeline run.
type Result struct {
	Candidates []candidate.Candidate
	Thoughts   []schema.ThoughtLogEntry
}

func (r *Result) think(format string, args ...any) {
	r.Thoughts = append(r.Thoughts, schema.NewThought(fmt.Sprintf(format, args...)))
}

// Scraper is the shared contract of the six source scrapers.
type Scraper interface {
	// Platform is the provenance label stamped on candidates.
	Platform() string
	// QueryKey selects which of the formulator's query lists this scraper consumes.
	QueryKey() string
	Scrape(ctx context.Context, queries []string, dev device.Context) Result
}

// toCandidates converts raw search hits into candidates tagged with the
// given platform. Hits without a title or URL are discarded here, upholding
// the non-empty-title invariant for everything entering deduplication.
func toCandidates(hits []search.Result, platform string) []candidate.Candidate {
	var out []candidate.Candidate
	for _, h := range hits {
		title := strings.TrimSpace(h.Title)
		u := strings.TrimSpace(h.URL)
		if title == "" || u == "" {
			continue
		}
		out = append(out, candidate.Candidate{
			Title:       title,
			Description: strings.TrimSpace(h.Snippet),
			SourceURL:   u,
			Difficulty:  "Intermediate",
			Platform:    platform,
		})
	}
	metrics.SourceCandidatesTotal.WithLabelValues(platform).Add(float64(len(out)))
	return out
}

// keepDomain filters candidates whose source URL is outside the given
// domain. Site-filtered queries mostly return on-domain hits, but SERP
// responses occasionally leak unrelated results.
func keepDomain(cands []candidate.Candidate, domain string) []candidate.Candidate {
	var out []candidate.Candidate
	for _, c := range cands {
		if strings.Contains(c.SourceURL, domain) {
			out = append(out, c)
		}
	}
	return out
}

func capQueries(queries []string, max int) []string {
	if len(queries) > max {
		return queries[:max]
	}
	return queries
}
