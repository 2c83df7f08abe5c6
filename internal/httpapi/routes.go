// Package httpapi exposes the recommendation and order pipelines over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/kaicatering/kai/internal/fulfillment"
	"github.com/kaicatering/kai/internal/recommend"
)

// go-playground/validator/v10: struct validator for order request payloads.
var validate = validator.New()

// Recommender is the recommendation pipeline surface the API depends on.
type Recommender interface {
	Recommend(ctx context.Context, message string) (recommend.Result, error)
	RecommendStream(ctx context.Context, message string) (<-chan recommend.StreamResult, error)
}

// API wires the pipelines to HTTP handlers.
type API struct {
	recommender Recommender
	pipeline    *fulfillment.Pipeline
	logger      *slog.Logger
}

// New creates the HTTP API.
func New(recommender Recommender, pipeline *fulfillment.Pipeline, logger *slog.Logger) *API {
	if logger == nil {
		logger = slog.Default()
	}
	return &API{recommender: recommender, pipeline: pipeline, logger: logger}
}

// Router returns the configured route table. Authentication is deliberately
// absent; middleware slots in here when that gap is closed.
func (a *API) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", a.healthHandler).Methods(http.MethodGet)
	r.HandleFunc("/api/chat", a.chatHandler).Methods(http.MethodPost)
	r.HandleFunc("/api/chat/stream", a.chatStreamHandler).Methods(http.MethodPost)
	r.HandleFunc("/api/order", a.orderHandler).Methods(http.MethodPost)
	r.Use(a.logRequests)
	return r
}

func (a *API) healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a.logger.Debug("request", "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
