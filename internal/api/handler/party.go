package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/mcoot/wordparty/internal/api/response"
	"github.com/mcoot/wordparty/internal/model"
	"github.com/mcoot/wordparty/internal/store"
)

const (
	// Time between keepalive comments on an event stream
	pingPeriod = 30 * time.Second

	// Buffered status notifications per stream
	streamBufferSize = 64
)

// PartyHandler serves read-only views of parties in the shared store
type PartyHandler struct {
	store  store.Store
	logger *slog.Logger
}

// NewPartyHandler creates a new party handler
func NewPartyHandler(st store.Store, logger *slog.Logger) *PartyHandler {
	return &PartyHandler{
		store:  st,
		logger: logger.With(slog.String("component", "party-handler")),
	}
}

// Get handles GET /api/v1/parties/{code}
func (h *PartyHandler) Get(w http.ResponseWriter, r *http.Request) {
	code, err := model.NormalizeCode(mux.Vars(r)["code"])
	if err != nil {
		WriteError(w, err)
		return
	}

	snap, err := h.store.Get(r.Context(), model.PartyPath(code))
	if err != nil {
		WriteError(w, err)
		return
	}
	if !snap.Exists() {
		WriteError(w, model.ErrPartyNotFound)
		return
	}
	p, err := model.DecodeParty(code, snap.Value())
	if err != nil {
		h.logger.Warn("malformed party", slog.String("party", string(code)), slog.String("error", err.Error()))
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PartyFromModel(p))
}

// Events handles GET /api/v1/parties/{code}/events.
// It streams a "party" event for every status, round or word setter change and a final
// "closed" event when the party is removed.
func (h *PartyHandler) Events(w http.ResponseWriter, r *http.Request) {
	code, err := model.NormalizeCode(mux.Vars(r)["code"])
	if err != nil {
		WriteError(w, err)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		WriteError(w, NewInvalidRequestError("Streaming unsupported"))
		return
	}

	ctx := r.Context()
	changes := make(chan struct{}, streamBufferSize)
	notify := func(store.Snapshot) {
		select {
		case changes <- struct{}{}:
		default:
			// A pending notification already covers this change
		}
	}

	scope := store.NewScope()
	defer scope.Release()
	paths := []string{
		model.StatusPath(code),
		model.PartyField(code, model.FieldRound),
		model.PartyField(code, model.FieldWordSetterIndex),
	}
	for _, path := range paths {
		sub, err := h.store.Subscribe(ctx, path, notify)
		if err != nil {
			WriteError(w, err)
			return
		}
		scope.Add(sub)
	}

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	h.logger.Info("event stream opened", slog.String("party", string(code)))
	defer h.logger.Info("event stream closed", slog.String("party", string(code)))

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	var last *response.Party
	for {
		select {
		case <-changes:
			snap, err := h.store.Get(ctx, model.PartyPath(code))
			if err != nil {
				h.logger.Warn("event stream read failed", slog.String("error", err.Error()))
				return
			}
			if !snap.Exists() {
				_ = response.Event(w, "closed", response.Closed{Code: string(code)})
				flusher.Flush()
				return
			}
			p, err := model.DecodeParty(code, snap.Value())
			if err != nil {
				h.logger.Warn("event stream skipped malformed party", slog.String("error", err.Error()))
				continue
			}
			view := response.PartyFromModel(p)
			if last != nil && last.Status == view.Status && last.Round == view.Round && last.WordSetter == view.WordSetter {
				continue
			}
			last = &view
			if err := response.Event(w, "party", view); err != nil {
				return
			}
			flusher.Flush()

		case <-ticker.C:
			// Send keepalive comment
			if _, err := w.Write([]byte(": keepalive\n\n")); err != nil {
				return
			}
			flusher.Flush()

		case <-ctx.Done():
			// Client disconnected
			return
		}
	}
}
