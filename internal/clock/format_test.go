package clock

import (
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name   string
		at     time.Time
		use24h bool
		pad    HourPadding
		want   TimeDate
	}{
		{
			name:   "24h afternoon",
			at:     time.Date(2026, time.October, 17, 15, 4, 59, 0, time.UTC),
			use24h: true,
			want:   TimeDate{Time: "15:04", Day: "Saturday", Date: "October 17"},
		},
		{
			name:   "24h midnight",
			at:     time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
			use24h: true,
			want:   TimeDate{Time: "00:00", Day: "Thursday", Date: "January 1"},
		},
		{
			name: "12h blank padded morning",
			at:   time.Date(2026, time.March, 5, 7, 5, 0, 0, time.UTC),
			pad:  PadSpace,
			want: TimeDate{Time: " 7:05", Day: "Thursday", Date: "March 5"},
		},
		{
			name: "12h zero padded evening",
			at:   time.Date(2026, time.March, 5, 19, 30, 0, 0, time.UTC),
			pad:  PadZero,
			want: TimeDate{Time: "07:30", Day: "Thursday", Date: "March 5"},
		},
		{
			name: "12h midnight is twelve",
			at:   time.Date(2026, time.December, 25, 0, 15, 0, 0, time.UTC),
			want: TimeDate{Time: "12:15", Day: "Friday", Date: "December 25"},
		},
		{
			name: "12h noon is twelve",
			at:   time.Date(2026, time.December, 25, 12, 0, 0, 0, time.UTC),
			pad:  PadZero,
			want: TimeDate{Time: "12:00", Day: "Friday", Date: "December 25"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Format(tt.at, tt.use24h, tt.pad)
			if got != tt.want {
				t.Errorf("Format() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestFormat_HourRanges(t *testing.T) {
	re24 := regexp.MustCompile(`^([0-9]{2}):([0-5][0-9])$`)
	re12 := regexp.MustCompile(`^([ 0-9][0-9]):([0-5][0-9])$`)

	start := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	for step := 0; step < 24*60; step += 7 {
		at := start.Add(time.Duration(step) * time.Minute)

		got24 := Format(at, true, PadSpace).Time
		m := re24.FindStringSubmatch(got24)
		if m == nil {
			t.Fatalf("24h time %q does not match HH:MM", got24)
		}
		if h, _ := strconv.Atoi(m[1]); h < 0 || h > 23 {
			t.Fatalf("24h hour %d out of range in %q", h, got24)
		}

		for _, pad := range []HourPadding{PadSpace, PadZero} {
			got12 := Format(at, false, pad).Time
			m := re12.FindStringSubmatch(got12)
			if m == nil {
				t.Fatalf("12h time %q does not match H:MM", got12)
			}
			h, err := strconv.Atoi(strings.TrimSpace(m[1]))
			if err != nil || h < 1 || h > 12 {
				t.Fatalf("12h hour %q out of range in %q", m[1], got12)
			}
		}
	}
}
