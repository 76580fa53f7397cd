package watchface

import "log/slog"

// LogSurface writes every update to a logger. It stands in for a panel when
// the face runs headless.
type LogSurface struct {
	Logger *slog.Logger
}

func (s LogSurface) Render(updates []Update) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	for _, u := range updates {
		attrs := []any{"element", u.Element.String()}
		switch {
		case u.Bar != nil:
			attrs = append(attrs, "bar_width", u.Bar.Width, "bar_filled", u.Bar.Filled)
		default:
			attrs = append(attrs, "text", u.Text)
		}
		if u.Hidden {
			attrs = append(attrs, "hidden", true)
		}
		logger.Debug("render", attrs...)
	}
}
