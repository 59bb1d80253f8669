// Package query turns a device description into per-platform search queries.
// Formulate is pure: same device in, same queries out, no I/O.
package query

import (
	"fmt"
	"strings"

	"github.com/devicerevive/secondlife/internal/device"
	"github.com/devicerevive/secondlife/internal/schema"
)

// Platform keys used to route query lists to scrapers.
const (
	KeyYouTube       = "youtube"
	KeyReddit        = "reddit"
	KeyGitHub        = "github"
	KeyInstructables = "instructables"
	KeyGeneral       = "general"
	KeyCreative      = "creative"
)

// platformOrder fixes the iteration order of the plan, which in turn fixes
// the first-seen tie-break of deduplication downstream.
var platformOrder = []string{
	KeyYouTube, KeyReddit, KeyGitHub, KeyInstructables, KeyGeneral, KeyCreative,
}

// Plan holds the formulated queries plus the reasoning log.
type Plan struct {
	queries  map[string][]string
	Thoughts []schema.ThoughtLogEntry
}

// For returns the query list assigned to a platform key. Scrapers with no
// platform-specific queries fall back to the general list.
func (p *Plan) For(key string) []string {
	if qs, ok := p.queries[key]; ok && len(qs) > 0 {
		return qs
	}
	return p.queries[KeyGeneral]
}

// Flat returns every query in fixed platform order, for the response envelope.
func (p *Plan) Flat() []string {
	var out []string
	for _, key := range platformOrder {
		out = append(out, p.queries[key]...)
	}
	return out
}

// Total counts all formulated queries.
func (p *Plan) Total() int {
	n := 0
	for _, qs := range p.queries {
		n += len(qs)
	}
	return n
}

func (p *Plan) add(key string, queries ...string) {
	p.queries[key] = append(p.queries[key], queries...)
}

func (p *Plan) think(format string, args ...any) {
	p.Thoughts = append(p.Thoughts, schema.NewThought(fmt.Sprintf(format, args...)))
}

// Formulate builds the per-platform query plan for a device. Each recognized
// condition flag biases the queries toward projects that work around the
// broken component; a creative-build seed query is always present; a generic
// repurpose set fills in when no condition produced core-platform queries.
func Formulate(dev device.Context) *Plan {
	p := &Plan{queries: make(map[string][]string)}
	d := dev.Name

	p.think("Analyzing %s specs...", d)

	if dev.Has(device.CondScreenBroken) {
		p.think("Detected 'Broken Screen'. Filtering out Smart Mirrors...")
		p.add(KeyYouTube, d+" headless project no screen needed tutorial")
		p.add(KeyReddit, d+" headless server project broken screen")
		p.add(KeyGitHub, "headless android server project")
		p.add(KeyGeneral, d+" headless android projects server -screen")
	}

	if dev.Has(device.CondBadBattery) {
		p.think("Battery is dead. Searching for wall-powered / always-plugged projects...")
		p.add(KeyYouTube, d+" wall powered always plugged project tutorial")
		p.add(KeyReddit, "old phone no battery wall power server project")
		p.add(KeyGeneral, d+" wall powered project always plugged in server")
	}

	if dev.Has(device.CondTouchBroken) {
		p.think("Touch digitizer broken. Looking for ADB-controlled or sensor-only projects...")
		p.add(KeyYouTube, d+" broken touch ADB control project")
		p.add(KeyReddit, "android phone broken touch ADB project automation")
		p.add(KeyGeneral, d+" no touch sensor station automation")
	}

	if dev.Has(device.CondCameraDead) {
		p.think("Camera module dead. Excluding security-cam projects, keeping audio/server...")
		p.add(KeyReddit, "old android phone project no camera needed server")
		p.add(KeyGeneral, "old android phone project no camera needed")
	}

	if dev.Has(device.CondSpeakerBroken) {
		p.think("Speaker broken. Focusing on silent/display-only projects...")
		p.add(KeyGeneral, "old android phone silent display dashboard project")
	}

	if dev.Has(device.CondNoChargingPort) {
		p.think("Charging port broken. Looking for wireless-charging setups or parts harvest...")
		p.add(KeyYouTube, d+" wireless charging mod project")
		p.add(KeyGeneral, d+" wireless charging mod DIY")
	}

	// Creative-build seed queries are always present so the creative scraper
	// never runs dry.
	p.add(KeyCreative,
		"DIY Perks style "+d+" creative project build conversion",
		"broken "+d+" convert into unique project DIY build",
	)
	switch {
	case dev.Has(device.CondScreenBroken):
		p.add(KeyCreative, "broken laptop screen portable external monitor build DIY")
	case dev.Has(device.CondBadBattery):
		p.add(KeyCreative, d+" no battery wall powered creative station build")
	default:
		p.add(KeyCreative, "old "+d+" creative conversion mod project unique")
	}

	// Generic repurpose set when no condition produced core-platform queries.
	if len(p.queries[KeyYouTube])+len(p.queries[KeyReddit])+len(p.queries[KeyGitHub])+
		len(p.queries[KeyInstructables])+len(p.queries[KeyGeneral]) == 0 {
		p.add(KeyYouTube, d+" repurpose upcycle project tutorial 2024")
		p.add(KeyReddit, d+" second life repurpose DIY project")
		p.add(KeyGitHub, d+" repurpose project")
		p.add(KeyGeneral, d+" repurpose upcycle project ideas 2024")
	}

	if notes := truncate(dev.Notes, 60); notes != "" {
		p.think("User described condition: %q. Adding targeted queries...", truncate(dev.Notes, 80))
		p.add(KeyGeneral, d+" "+notes+" repurpose project")
		p.add(KeyYouTube, d+" "+notes+" DIY fix reuse tutorial")
		p.add(KeyGeneral, d+" second life DIY project github")
	}

	if dev.Mode == device.ModeHarvest {
		p.think("Harvest mode enabled. Searching for %s teardown & component pinouts...", d)
		p.add(KeyYouTube, d+" teardown disassembly tutorial")
		p.add(KeyReddit, d+" teardown parts harvest reuse")
		p.add(KeyGitHub, "smartphone component harvesting arduino")
		p.add(KeyInstructables,
			d+" teardown parts harvest",
			d+" ifixit teardown components reuse",
		)
		p.add(KeyGeneral, d+" teardown parts list pinout")
	}

	p.think("Formulated %d search queries across %d platforms. Initiating web search...",
		p.Total(), len(platformOrder))

	return p
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n]
}
