package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"watchcore/internal/journal"
	"watchcore/internal/watchface"
)

const (
	defaultExchangeLimit = 50
	maxExchangeLimit     = 1000
)

// DisplaySource exposes the latest rendered frame.
type DisplaySource interface {
	Snapshot() watchface.Frame
}

// LinkStatus reports whether the companion channel is up.
type LinkStatus interface {
	IsConnected() bool
}

type Deps struct {
	DB      *sql.DB
	Display DisplaySource
	Journal journal.Repository
	Link    LinkStatus
	Logger  *slog.Logger
}

type api struct {
	deps Deps
}

// reply writes v as JSON. Every payload describes live state, so nothing is
// cacheable.
func (h *api) reply(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.deps.Logger.Error("failed to write JSON", "error", err)
	}
}

func (h *api) fail(w http.ResponseWriter, status int, msg string) {
	h.reply(w, status, map[string]string{
		"error":   http.StatusText(status),
		"message": msg,
	})
}

func (h *api) handleHealthz(w http.ResponseWriter, r *http.Request) {
	var ok int
	if err := h.deps.DB.QueryRowContext(r.Context(), `SELECT 1`).Scan(&ok); err != nil {
		h.deps.Logger.Error("failed to check database connectivity", "error", err)
		h.fail(w, http.StatusInternalServerError, "failed to check database connectivity")
		return
	}
	body := map[string]any{"status": "ok"}
	if h.deps.Link != nil {
		body["companion_link"] = h.deps.Link.IsConnected()
	}
	if h.deps.Journal != nil {
		body["session"] = h.deps.Journal.Session()
	}
	h.reply(w, http.StatusOK, body)
}

func (h *api) handleDisplay(w http.ResponseWriter, _ *http.Request) {
	h.reply(w, http.StatusOK, h.deps.Display.Snapshot())
}

func (h *api) handleExchanges(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		h.fail(w, http.StatusBadRequest, err.Error())
		return
	}
	entries, err := h.deps.Journal.Recent(r.Context(), limit)
	if err != nil {
		h.deps.Logger.Error("list exchanges failed", "error", err)
		h.fail(w, http.StatusInternalServerError, "failed to list exchanges")
		return
	}
	h.reply(w, http.StatusOK, map[string]any{
		"limit": limit,
		"items": entries,
	})
}

func (h *api) handleExchangeStats(w http.ResponseWriter, r *http.Request) {
	counts, err := h.deps.Journal.CountByKind(r.Context())
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		h.deps.Logger.Error("count exchanges failed", "error", err)
		h.fail(w, http.StatusInternalServerError, "failed to count exchanges")
		return
	}
	h.reply(w, http.StatusOK, counts)
}

func parseLimit(r *http.Request) (int, error) {
	s := r.URL.Query().Get("limit")
	if s == "" {
		return defaultExchangeLimit, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.New("invalid 'limit' (expected integer)")
	}
	if n <= 0 {
		return 0, errors.New("'limit' must be > 0")
	}
	if n > maxExchangeLimit {
		return 0, errors.New("'limit' must be <= 1000")
	}
	return n, nil
}
