package bypass

import (
	"net/http"
	"testing"
)

func TestDetectDuckDuckGo(t *testing.T) {
	res := Response{
		StatusCode: 200,
		Body:       []byte(`<div class="anomaly-modal">...</div>`),
	}
	if detected, src := detectDuckDuckGo(res); !detected || src != "DuckDuckGo" {
		t.Errorf("expected DuckDuckGo detection by anomaly modal")
	}

	res = Response{
		StatusCode: 200,
		Body:       []byte("Unfortunately, bots use DuckDuckGo too. Please complete the following challenge."),
	}
	if detected, _ := detectDuckDuckGo(res); !detected {
		t.Errorf("expected DuckDuckGo detection by bot message")
	}

	res = Response{StatusCode: 200, Body: []byte("<html>normal results</html>")}
	if detected, _ := detectDuckDuckGo(res); detected {
		t.Errorf("expected not detected")
	}
}

func TestDetectCloudflare(t *testing.T) {
	res := Response{
		StatusCode: 200,
		Headers:    http.Header{"Server": {"nginx"}},
		Body:       []byte("OK"),
	}
	if detected, _ := detectCloudflare(res); detected {
		t.Errorf("expected not detected")
	}

	res = Response{
		StatusCode: 403,
		Headers:    http.Header{"Server": {"cloudflare"}},
		Body:       []byte("Access Denied"),
	}
	if detected, src := detectCloudflare(res); !detected || src != "Cloudflare" {
		t.Errorf("expected Cloudflare detection by header")
	}

	res = Response{
		StatusCode: 503,
		Body:       []byte("<html>... cf-turnstile ...</html>"),
	}
	if detected, src := detectCloudflare(res); !detected || src != "Cloudflare" {
		t.Errorf("expected Cloudflare detection by body")
	}
}

func TestDetectAkamai(t *testing.T) {
	res := Response{
		StatusCode: 403,
		Headers:    http.Header{"Server": {"AkamaiGHost"}},
	}
	if detected, src := detectAkamai(res); !detected || src != "Akamai" {
		t.Errorf("expected Akamai detection by header")
	}

	res = Response{
		StatusCode: 403,
		Body:       []byte("Access Denied... Reference #123.456"),
	}
	if detected, src := detectAkamai(res); !detected || src != "Akamai" {
		t.Errorf("expected Akamai detection by body")
	}
}

func TestDetectDataDome(t *testing.T) {
	res := Response{
		StatusCode: 403,
		Headers:    http.Header{"Server": {"DataDome"}},
	}
	if detected, src := detectDataDome(res); !detected || src != "DataDome" {
		t.Errorf("expected DataDome detection by header")
	}

	res = Response{
		StatusCode: 403,
		Body:       []byte("script src='https://geo.captcha-delivery.com/...'"),
	}
	if detected, src := detectDataDome(res); !detected || src != "DataDome" {
		t.Errorf("expected DataDome detection by body")
	}
}

func TestDetectPerimeterX(t *testing.T) {
	res := Response{
		StatusCode: 403,
		Body:       []byte("window._pxhd = true;"),
	}
	if detected, src := detectPerimeterX(res); !detected || src != "PerimeterX" {
		t.Errorf("expected PerimeterX detection by body")
	}
}

func TestAnalyze(t *testing.T) {
	detectors := DefaultDetectors()

	res := Response{
		StatusCode: 403,
		Headers:    http.Header{"Server": {"cloudflare"}},
	}
	if detected, src := Analyze(res, detectors); !detected || src != "Cloudflare" {
		t.Errorf("expected analyze hit: %v, %s", detected, src)
	}

	safe := Response{StatusCode: 200, Body: []byte("hello")}
	if detected, src := Analyze(safe, detectors); detected || src != "" {
		t.Errorf("expected safe result: %v, %s", detected, src)
	}
}
