package watchface

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"watchcore/internal/battery"
)

func TestFrameBuffer(t *testing.T) {
	fb := NewFrameBuffer("bluetoo")
	at := time.Date(2026, time.October, 17, 9, 0, 0, 0, time.UTC)
	fb.now = func() time.Time { return at }

	bar := battery.Render(50, 114)
	fb.Render([]Update{{Element: ElementTime, Text: "09:00"}, {Element: ElementBattery, Bar: &bar}})
	fb.Render([]Update{{Element: ElementTime, Text: "09:01"}})
	bar.Filled = 0

	snap := fb.Snapshot()
	if snap.Redraws != 2 || !snap.UpdatedAt.Equal(at) {
		t.Fatalf("snapshot = %+v", snap)
	}
	if snap.Elements[ElementTime].Text != "09:01" {
		t.Fatalf("time = %q, want 09:01", snap.Elements[ElementTime].Text)
	}
	if snap.Elements[ElementBattery].Bar.Filled != 57 {
		t.Fatalf("stored bar aliases caller: %+v", snap.Elements[ElementBattery].Bar)
	}

	snap.Elements[ElementTime] = Update{Text: "mutated"}
	if fb.Snapshot().Elements[ElementTime].Text != "09:01" {
		t.Fatal("snapshot aliases buffer")
	}

	data, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"battery":{"element":"battery"`) {
		t.Fatalf("json = %s", data)
	}
}
