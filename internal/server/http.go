package server

import (
	"encoding/json"
	"net/http"

	"github.com/zeusync/shatter/internal/core/catalog"
	"github.com/zeusync/shatter/internal/core/observability/log"
	"github.com/zeusync/shatter/pkg/sequence"
)

// Handler routes the HTTP API:
//
//	GET /healthz          liveness and session count
//	GET /levels           the level catalog
//	GET /ws?level=<key>   a game session over websocket
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /levels", s.handleLevels)
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	return mux
}

type healthResponse struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
	Topics   int    `json:"topics"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	status := "ok"
	if s.closedFlag() {
		status = "closing"
	}
	s.writeJSON(w, http.StatusOK, healthResponse{
		Status:   status,
		Sessions: s.Sessions(),
		Topics:   len(s.bus.Topics()),
	})
}

type levelSummary struct {
	ID        int    `json:"id"`
	Key       string `json:"key"`
	Name      string `json:"name"`
	Repulsion bool   `json:"repulsion"`
	Pieces    int    `json:"pieces"`
}

// handleLevels lists the catalog. ?repulsion=true keeps only levels with
// repulsion fields.
func (s *Server) handleLevels(w http.ResponseWriter, r *http.Request) {
	levels := sequence.From(s.catalog.Levels())
	if r.URL.Query().Get("repulsion") == "true" {
		levels = levels.Filter(func(l catalog.Level) bool { return l.Repulsion })
	}
	s.writeJSON(w, http.StatusOK, sequence.ToArray(levels, func(l catalog.Level) levelSummary {
		return levelSummary{
			ID:        l.ID,
			Key:       l.Key,
			Name:      l.Name,
			Repulsion: l.Repulsion,
			Pieces:    len(l.Pieces),
		}
	}))
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Debug("Failed to write response", log.Error(err))
	}
}
