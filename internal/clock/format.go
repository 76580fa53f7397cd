// Package clock produces the time and date strings shown by a watchface and
// the minute ticks that drive it.
package clock

import (
	"fmt"
	"time"
)

// HourPadding selects how a 12-hour clock fills a single-digit hour.
type HourPadding uint8

const (
	// PadSpace blank-pads the hour (" 7:05").
	PadSpace HourPadding = iota
	// PadZero zero-pads the hour ("07:05").
	PadZero
)

// TimeDate holds the display strings derived from one clock sample.
type TimeDate struct {
	Time string
	Day  string
	Date string
}

// Format renders t as a watchface time, weekday and date. It has no error
// cases; seconds are never shown.
func Format(t time.Time, use24h bool, pad HourPadding) TimeDate {
	return TimeDate{
		Time: formatTime(t, use24h, pad),
		Day:  t.Weekday().String(),
		Date: t.Format("January 2"),
	}
}

func formatTime(t time.Time, use24h bool, pad HourPadding) string {
	if use24h {
		return t.Format("15:04")
	}
	h := t.Hour() % 12
	if h == 0 {
		h = 12
	}
	if pad == PadZero {
		return fmt.Sprintf("%02d:%02d", h, t.Minute())
	}
	return fmt.Sprintf("%2d:%02d", h, t.Minute())
}
