package battery

import "testing"

func TestRender(t *testing.T) {
	tests := []struct {
		name    string
		percent int
		width   int
		want    int
	}{
		{name: "empty", percent: 0, width: 168, want: 0},
		{name: "full", percent: 100, width: 168, want: 168},
		{name: "half of 114", percent: 50, width: 114, want: 57},
		{name: "floors fraction", percent: 33, width: 114, want: 37}, // 37.62
		{name: "one percent of narrow bar", percent: 1, width: 50, want: 0},
		{name: "zero width", percent: 80, width: 0, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Render(tt.percent, tt.width)
			if got.Filled != tt.want {
				t.Errorf("Render(%d, %d).Filled = %d, want %d", tt.percent, tt.width, got.Filled, tt.want)
			}
			if got.Width != tt.width {
				t.Errorf("Render(%d, %d).Width = %d, want %d", tt.percent, tt.width, got.Width, tt.width)
			}
		})
	}
}

func TestRender_NeverExceedsWidth(t *testing.T) {
	for _, w := range []int{1, 2, 6, 114, 168, 180} {
		for p := 0; p <= 100; p++ {
			got := Render(p, w)
			if got.Filled != p*w/100 {
				t.Fatalf("Render(%d, %d).Filled = %d, want %d", p, w, got.Filled, p*w/100)
			}
			if got.Filled > w || got.Filled < 0 {
				t.Fatalf("Render(%d, %d).Filled = %d outside [0, %d]", p, w, got.Filled, w)
			}
		}
	}
}
