package httpapi

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sr, r)

		level := slog.LevelInfo
		if r.URL.Path == "/healthz" {
			level = slog.LevelDebug
		}
		logger.Log(r.Context(), level, "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sr.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// slogPrinter adapts a slog.Logger to the recovery handler's Println logger.
type slogPrinter struct {
	logger *slog.Logger
}

func (p slogPrinter) Println(v ...any) {
	p.logger.Error("http handler panic", "panic", fmt.Sprint(v...))
}

func recoverer(logger *slog.Logger, next http.Handler) http.Handler {
	return handlers.RecoveryHandler(
		handlers.RecoveryLogger(slogPrinter{logger: logger}),
		handlers.PrintRecoveryStack(false),
	)(next)
}
