// Package httpadapter exposes query routing and knowledge ingestion over
// HTTP. The query endpoint always answers 200: orchestration converts its
// own failures into a best-effort response body.
package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/mkorolev/insight-router/internal/core/ports"
)

const maxQueryLength = 4000

type Router struct {
	queryRouter ports.QueryRouter
	ingestor    ports.KnowledgeIngestor
	reader      ports.KnowledgeReader
	traffic     TrafficConfig
}

// TrafficConfig bounds inbound load before requests reach orchestration.
type TrafficConfig struct {
	RateLimitRPS   float64
	RateLimitBurst int
	MaxConcurrent  int
	QueueWait      time.Duration
}

func NewRouter(
	queryRouter ports.QueryRouter,
	ingestor ports.KnowledgeIngestor,
	reader ports.KnowledgeReader,
	traffic TrafficConfig,
) *Router {
	return &Router{
		queryRouter: queryRouter,
		ingestor:    ingestor,
		reader:      reader,
		traffic:     traffic,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/query", rt.routeQuery)
	mux.HandleFunc("/v1/knowledge", rt.ingestKnowledge)
	mux.HandleFunc("/v1/knowledge/", rt.getKnowledgeByID)

	var handler http.Handler = mux
	if rt.traffic.MaxConcurrent > 0 {
		handler = backpressureMiddleware(handler, rt.traffic.MaxConcurrent, rt.traffic.QueueWait)
	}
	if rt.traffic.RateLimitRPS > 0 {
		handler = rateLimitMiddleware(handler, rt.traffic.RateLimitRPS, rt.traffic.RateLimitBurst)
	}
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) routeQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	query := strings.TrimSpace(req.Query)
	if query == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query is required"})
		return
	}
	if len(query) > maxQueryLength {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query is too long"})
		return
	}

	// Orchestration never fails; only transport-level errors end before it.
	writeJSON(w, http.StatusOK, rt.queryRouter.ProcessQuery(r.Context(), query))
}

func (rt *Router) ingestKnowledge(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Question string `json:"question"`
		Answer   string `json:"answer"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	entry, err := rt.ingestor.Ingest(r.Context(), req.Question, req.Answer)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusAccepted, entry)
}

func (rt *Router) getKnowledgeByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/v1/knowledge/")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "entry id is required"})
		return
	}

	entry, err := rt.reader.GetByID(r.Context(), id)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
