package watchface

import (
	"fmt"
	"sort"

	"watchcore/internal/clock"
)

// WeatherLayout selects how weather is shown, if at all.
type WeatherLayout uint8

const (
	WeatherNone WeatherLayout = iota
	// WeatherCombined shows one "<t>C, <conditions>" line once both are known.
	WeatherCombined
	// WeatherSplit shows temperature and conditions as separate elements.
	WeatherSplit
)

// Variant is the feature set of one watchface.
type Variant struct {
	Name string

	Weekday bool
	Date    bool

	// Force12h ignores the user's 24h preference.
	Force12h    bool
	HourPadding clock.HourPadding

	Battery         bool
	BatteryBarWidth int

	Connectivity bool
	// ConnectivityGlyph is the text of the disconnected indicator; empty for an icon.
	ConnectivityGlyph string
	// CheckConnectionAtLoad alerts at startup when the companion is already unreachable.
	CheckConnectionAtLoad bool

	Weather WeatherLayout
}

var variants = map[string]Variant{
	// time only; the smallest face that still draws something
	"basicdisplay": {
		Name:        "basicdisplay",
		HourPadding: clock.PadZero,
	},
	"withdate": {
		Name:        "withdate",
		Weekday:     true,
		Force12h:    true,
		HourPadding: clock.PadZero,
	},
	"bluetoo": {
		Name:                  "bluetoo",
		HourPadding:           clock.PadZero,
		Battery:               true,
		BatteryBarWidth:       114,
		Connectivity:          true,
		CheckConnectionAtLoad: true,
	},
	"addweb": {
		Name:        "addweb",
		HourPadding: clock.PadZero,
		Weather:     WeatherCombined,
	},
	"natswatch": {
		Name:                  "natswatch",
		Weekday:               true,
		Date:                  true,
		HourPadding:           clock.PadSpace,
		Battery:               true,
		BatteryBarWidth:       168,
		Connectivity:          true,
		ConnectivityGlyph:     "!B",
		CheckConnectionAtLoad: true,
		Weather:               WeatherSplit,
	},
}

// LookupVariant returns the named watchface.
func LookupVariant(name string) (Variant, error) {
	v, ok := variants[name]
	if !ok {
		return Variant{}, fmt.Errorf("unknown watchface variant %q", name)
	}
	return v, nil
}

// VariantNames lists the known watchfaces in sorted order.
func VariantNames() []string {
	names := make([]string, 0, len(variants))
	for n := range variants {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Elements lists the display elements this variant draws, in layout order.
func (v Variant) Elements() []Element {
	var out []Element
	if v.Weekday {
		out = append(out, ElementDay)
	}
	out = append(out, ElementTime)
	if v.Date {
		out = append(out, ElementDate)
	}
	out = append(out, v.weatherElements()...)
	if v.Battery {
		out = append(out, ElementBattery)
	}
	if v.Connectivity {
		out = append(out, ElementConnectivity)
	}
	return out
}

func (v Variant) weatherElements() []Element {
	switch v.Weather {
	case WeatherCombined:
		return []Element{ElementWeather}
	case WeatherSplit:
		return []Element{ElementTemperature, ElementConditions}
	default:
		return nil
	}
}
