// Package bypass identifies bot-protection challenge responses so the
// search layer can tell "no results" apart from "blocked". Detection feeds
// metrics and logs only; a detected challenge is still treated as an empty
// result set by the caller.
package bypass

import (
	"bytes"
	"net/http"
	"strings"
)

// Response is the minimal view of an HTTP exchange the detectors need.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// Detector examines a response and reports whether a bot protection
// mechanism blocked or challenged the request, and which one.
type Detector func(res Response) (detected bool, source string)

// DefaultDetectors returns the standard detector list.
func DefaultDetectors() []Detector {
	return []Detector{
		detectDuckDuckGo,
		detectCloudflare,
		detectAkamai,
		detectDataDome,
		detectPerimeterX,
	}
}

// Analyze runs the response through all detectors and returns the first hit.
func Analyze(res Response, detectors []Detector) (bool, string) {
	for _, d := range detectors {
		if detected, source := d(res); detected {
			return true, source
		}
	}
	return false, ""
}

func header(h http.Header, key string) string {
	if h == nil {
		return ""
	}
	return h.Get(key)
}

// detectDuckDuckGo matches the DDG HTML endpoint's anomaly page, served
// when it decides the traffic is automated.
func detectDuckDuckGo(res Response) (bool, string) {
	if bytes.Contains(res.Body, []byte("anomaly-modal")) ||
		bytes.Contains(res.Body, []byte("Unfortunately, bots use DuckDuckGo too")) {
		return true, "DuckDuckGo"
	}
	return false, ""
}

// detectCloudflare looks for common Cloudflare challenge/block signatures.
func detectCloudflare(res Response) (bool, string) {
	if res.StatusCode == http.StatusForbidden || res.StatusCode == http.StatusServiceUnavailable {
		if strings.Contains(strings.ToLower(header(res.Headers, "Server")), "cloudflare") {
			return true, "Cloudflare"
		}
		if bytes.Contains(res.Body, []byte("cf-browser-verification")) ||
			bytes.Contains(res.Body, []byte("cf-turnstile")) ||
			bytes.Contains(res.Body, []byte("Attention Required! | Cloudflare")) {
			return true, "Cloudflare"
		}
	}
	return false, ""
}

// detectAkamai looks for Akamai Bot Manager signatures.
func detectAkamai(res Response) (bool, string) {
	if res.StatusCode == http.StatusForbidden {
		if strings.Contains(strings.ToLower(header(res.Headers, "Server")), "akamai") {
			return true, "Akamai"
		}
		// Akamai block pages carry a generic "Reference #" marker.
		if bytes.Contains(res.Body, []byte("Reference #")) && bytes.Contains(res.Body, []byte("Access Denied")) {
			return true, "Akamai"
		}
	}
	return false, ""
}

// detectDataDome looks for DataDome challenge signatures.
func detectDataDome(res Response) (bool, string) {
	if res.StatusCode == http.StatusForbidden {
		if strings.Contains(strings.ToLower(header(res.Headers, "Server")), "datadome") {
			return true, "DataDome"
		}
		if bytes.Contains(res.Body, []byte("geo.captcha-delivery.com")) {
			return true, "DataDome"
		}
	}
	return false, ""
}

// detectPerimeterX looks for PerimeterX/HUMAN challenge signatures.
func detectPerimeterX(res Response) (bool, string) {
	if res.StatusCode == http.StatusForbidden {
		if bytes.Contains(res.Body, []byte("_pxhd")) ||
			bytes.Contains(res.Body, []byte("px-captcha")) {
			return true, "PerimeterX"
		}
	}
	return false, ""
}
