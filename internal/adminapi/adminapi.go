// Package adminapi exposes a small read-only HTTP surface over the
// translation cache for operational visibility: aggregate stats, a
// single file's correspondence row, and a liveness probe. It never
// mutates the cache — translation itself happens out of band, driven
// by the orchestrator — so every handler here is a GET.
package adminapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog/hlog"

	"github.com/seanblong/doctran/internal/auth"
	"github.com/seanblong/doctran/internal/cachebackend"
)

// NewMux builds the admin API's handler tree, gating every route but
// /healthz behind auth.RequireBearer.
func NewMux(backend *cachebackend.Backend) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	mux.HandleFunc("/cache/stats", auth.RequireBearer(statsHandler(backend)))
	mux.HandleFunc("/cache/row", auth.RequireBearer(rowHandler(backend)))

	return mux
}

func statsHandler(backend *cachebackend.Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		stats, err := backend.ComputeStats()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(stats); err != nil {
			http.Error(w, "failed to encode response", http.StatusInternalServerError)
			return
		}
		if l := hlog.FromRequest(r); l != nil {
			l.Info().Str("path", "/cache/stats").Dur("dur", time.Since(start)).Msg("served")
		}
	}
}

// rowResponse is the shape returned by /cache/row?path=...: the rows of
// correspondence.csv scoped to that one file's path hash, alongside the
// hash itself so a caller can cross-reference a blob directory.
type rowResponse struct {
	Path     string              `json:"path"`
	PathHash string              `json:"path_hash"`
	Rows     []map[string]string `json:"rows"`
}

func rowHandler(backend *cachebackend.Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := r.URL.Query().Get("path")
		if path == "" {
			http.Error(w, "missing query parameter path", http.StatusBadRequest)
			return
		}

		hash, ok, err := backend.PathHashFor(path)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if !ok {
			http.NotFound(w, r)
			return
		}

		rows, err := backend.RowForPathHash(hash)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		resp := rowResponse{Path: path, PathHash: hash, Rows: rows}
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			http.Error(w, "failed to encode response", http.StatusInternalServerError)
			return
		}
		if l := hlog.FromRequest(r); l != nil {
			l.Info().Str("path", "/cache/row").Str("file", path).Dur("dur", time.Since(start)).Msg("served")
		}
	}
}
