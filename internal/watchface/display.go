package watchface

import (
	"fmt"

	"watchcore/internal/battery"
)

// DisplayState is every value currently shown. Fields keep their last known
// value until a newer valid one replaces them.
type DisplayState struct {
	Time           string `json:"time"`
	Day            string `json:"day"`
	Date           string `json:"date"`
	Temperature    string `json:"temperature"`
	Conditions     string `json:"conditions"`
	BatteryPercent int    `json:"battery_percent"`
	Connected      bool   `json:"connected"`
}

// Element identifies one drawable item of a face.
type Element uint8

const (
	ElementTime Element = iota
	ElementDay
	ElementDate
	ElementTemperature
	ElementConditions
	ElementWeather
	ElementBattery
	ElementConnectivity
)

func (e Element) String() string {
	switch e {
	case ElementTime:
		return "time"
	case ElementDay:
		return "day"
	case ElementDate:
		return "date"
	case ElementTemperature:
		return "temperature"
	case ElementConditions:
		return "conditions"
	case ElementWeather:
		return "weather"
	case ElementBattery:
		return "battery"
	case ElementConnectivity:
		return "connectivity"
	default:
		return fmt.Sprintf("element(%d)", uint8(e))
	}
}

func (e Element) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// Update is the finalized content of one element handed to a Surface.
type Update struct {
	Element Element      `json:"element"`
	Text    string       `json:"text,omitempty"`
	Hidden  bool         `json:"hidden,omitempty"`
	Bar     *battery.Bar `json:"bar,omitempty"`
}

// Surface draws updates. Implementations must not retain the slice.
type Surface interface {
	Render(updates []Update)
}

// SurfaceFunc adapts a function to Surface.
type SurfaceFunc func([]Update)

func (f SurfaceFunc) Render(updates []Update) { f(updates) }

// MultiSurface fans updates out to several surfaces in order.
type MultiSurface []Surface

func (m MultiSurface) Render(updates []Update) {
	for _, s := range m {
		s.Render(updates)
	}
}
