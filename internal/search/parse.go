package search

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// parseSERP extracts organic results from a DuckDuckGo HTML results page.
// Ad blocks are skipped and redirect links are unwrapped to the target URL.
func parseSERP(body []byte, max int) []Result {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil
	}

	var results []Result
	doc.Find("div.result").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if sel.HasClass("result--ad") {
			return true
		}

		link := sel.Find("a.result__a").First()
		title := strings.TrimSpace(link.Text())
		href, _ := link.Attr("href")
		target := resolveRedirect(href)
		if title == "" || target == "" {
			return true
		}

		results = append(results, Result{
			Title:   title,
			Snippet: strings.TrimSpace(sel.Find(".result__snippet").First().Text()),
			URL:     target,
		})
		return len(results) < max
	})

	return results
}

// resolveRedirect unwraps DDG's /l/?uddg=<escaped> redirect links. Plain
// links pass through; protocol-relative links get https.
func resolveRedirect(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}

	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if strings.Contains(u.Path, "/l/") || u.Query().Has("uddg") {
		if target := u.Query().Get("uddg"); target != "" {
			return target
		}
	}
	return href
}
