package watchface

import (
	"sync"
	"time"
)

// Frame is the latest content of every element drawn so far.
type Frame struct {
	Variant   string             `json:"variant"`
	Elements  map[Element]Update `json:"elements"`
	Redraws   int                `json:"redraws"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// FrameBuffer is a Surface that keeps the latest frame for readers on other
// goroutines.
type FrameBuffer struct {
	now func() time.Time

	mu    sync.RWMutex
	frame Frame
}

func NewFrameBuffer(variant string) *FrameBuffer {
	return &FrameBuffer{
		now:   time.Now,
		frame: Frame{Variant: variant, Elements: make(map[Element]Update)},
	}
}

func (b *FrameBuffer) Render(updates []Update) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, u := range updates {
		if u.Bar != nil {
			bar := *u.Bar
			u.Bar = &bar
		}
		b.frame.Elements[u.Element] = u
	}
	b.frame.Redraws++
	b.frame.UpdatedAt = b.now()
}

// Snapshot returns a deep copy of the current frame.
func (b *FrameBuffer) Snapshot() Frame {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := b.frame
	out.Elements = make(map[Element]Update, len(b.frame.Elements))
	for k, v := range b.frame.Elements {
		if v.Bar != nil {
			bar := *v.Bar
			v.Bar = &bar
		}
		out.Elements[k] = v
	}
	return out
}
