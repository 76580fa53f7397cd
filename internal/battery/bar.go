// Package battery samples the host charge level and describes the two-tone
// bar a watchface draws for it.
package battery

// Bar describes a battery meter: the background spans Width pixels and the
// foreground spans Filled pixels from the leading edge.
type Bar struct {
	Width  int `json:"width"`
	Filled int `json:"filled"`
}

// Render computes the filled width for percent on a bar widthPx wide using
// integer floor division. Callers are expected to pass percent in 0..100.
func Render(percent, widthPx int) Bar {
	return Bar{
		Width:  widthPx,
		Filled: percent * widthPx / 100,
	}
}
