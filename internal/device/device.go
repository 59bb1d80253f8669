// Package device holds the request-scoped description of the broken device.
// A Context is read-only for the lifetime of one pipeline run.
package device

import (
	"fmt"
	"strings"
)

// Mode selects the overall goal of a run.
type Mode string

const (
	ModeStandard Mode = "Standard"
	ModeHarvest  Mode = "Teardown/Harvest"
)

// Condition flags reported by the caller. Free text is allowed, but these
// are the flags the query formulator and scorer understand.
const (
	CondScreenBroken   = "Screen Broken"
	CondBadBattery     = "Bad Battery"
	CondTouchBroken    = "Touch Broken"
	CondCameraDead     = "Camera Dead"
	CondSpeakerBroken  = "Speaker Broken"
	CondNoChargingPort = "No Charging Port"
)

// Context describes the device one request is about.
type Context struct {
	Name       string
	Conditions []string
	Mode       Mode
	DeviceType string // Smartphone, Laptop, Tablet, ...
	RAMGB      int
	StorageGB  int
	Notes      string // free-text condition description from the user
}

// Has reports whether the given condition flag was set.
func (c Context) Has(condition string) bool {
	for _, v := range c.Conditions {
		if v == condition {
			return true
		}
	}
	return false
}

// Summary returns the one-line device description used in the response envelope.
func (c Context) Summary() string {
	conds := "no reported issues"
	if len(c.Conditions) > 0 {
		conds = strings.Join(c.Conditions, ", ")
	}
	return fmt.Sprintf("%s with %s — Mode: %s", c.Name, conds, c.Mode)
}

// componentFor maps a condition flag to the component it disables.
var componentFor = map[string]string{
	CondScreenBroken:   "Screen",
	CondTouchBroken:    "Touch Digitizer",
	CondBadBattery:     "Battery",
	CondCameraDead:     "Camera",
	CondSpeakerBroken:  "Speaker",
	CondNoChargingPort: "Charging Port",
}

// allComponents is the component inventory assumed for consumer devices.
var allComponents = []string{
	"Accelerometer", "Battery", "Bluetooth", "Camera", "Charging Port",
	"GPS", "Gyroscope", "Screen", "Speaker", "Touch Digitizer", "WiFi",
}

// BrokenComponents returns the components disabled by the reported conditions.
func (c Context) BrokenComponents() []string {
	var out []string
	for _, cond := range c.Conditions {
		if comp, ok := componentFor[cond]; ok {
			out = append(out, comp)
		}
	}
	return out
}

// WorkingComponents returns the inventory minus the broken components,
// in a stable order so prompts stay deterministic.
func (c Context) WorkingComponents() []string {
	broken := make(map[string]bool)
	for _, comp := range c.BrokenComponents() {
		broken[comp] = true
	}
	var out []string
	for _, comp := range allComponents {
		if !broken[comp] {
			out = append(out, comp)
		}
	}
	return out
}
