package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/wordparty/internal/api/handler"
	"github.com/mcoot/wordparty/internal/api/middleware"
	"github.com/mcoot/wordparty/internal/services/dictionary"
	"github.com/mcoot/wordparty/internal/store"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger     *slog.Logger
	Store      store.Store
	Dictionary *dictionary.Service
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	partyHandler := handler.NewPartyHandler(cfg.Store, cfg.Logger)
	wordsHandler := handler.NewWordsHandler(cfg.Dictionary)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Recovery(cfg.Logger))
	api.Use(middleware.Logging(cfg.Logger))

	// Party inspection routes (read only)
	api.HandleFunc("/parties/{code}", partyHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/parties/{code}/events", partyHandler.Events).Methods(http.MethodGet)

	// Word routes
	api.HandleFunc("/evaluate", wordsHandler.Evaluate).Methods(http.MethodPost)
	api.HandleFunc("/words/{word}", wordsHandler.Lookup).Methods(http.MethodGet)

	// Health check endpoint
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
