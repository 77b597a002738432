// Package server exposes a loaded dictionary over a minimal read-only
// HTTP surface, gated by a resource.Controller so query concurrency
// stays bounded without ever locking the (already lock-free) dictionary
// itself.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"math"
	"net/http"
	"os"
	"strconv"
	"sync"

	"github.com/succinctgo/uxdict"
	"github.com/succinctgo/uxdict/persistence"
	"github.com/succinctgo/uxdict/resource"
)

// Server answers prefix/common-prefix/predictive/decode queries against
// a loaded *ux.Dictionary, plus a reload endpoint that atomically swaps
// in a freshly rebuilt snapshot from disk. Every query handler is a thin
// wrapper around the query engine; dict is guarded by mu only across a
// reload, never during ordinary query serving.
type Server struct {
	mu         sync.RWMutex
	dict       *ux.Dictionary
	mgr        *persistence.Manager
	controller *resource.Controller
	mux        *http.ServeMux
}

// New builds a Server over dict. If controller is nil, requests are
// answered without any concurrency gate. If mgr is non-nil, POST /reload
// is registered to recover a fresh snapshot from mgr's configured path
// and swap it in atomically.
func New(dict *ux.Dictionary, controller *resource.Controller, mgr *persistence.Manager) *Server {
	s := &Server{dict: dict, controller: controller, mgr: mgr}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /prefix", s.handlePrefix)
	mux.HandleFunc("GET /common-prefix", s.handleCommonPrefix)
	mux.HandleFunc("GET /predictive", s.handlePredictive)
	mux.HandleFunc("GET /decode/{id}", s.handleDecode)
	if mgr != nil {
		mux.HandleFunc("POST /reload", s.handleReload)
	}
	s.mux = mux
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// LoadSnapshot implements persistence.SnapshotLoader: it loads the
// dictionary at path and, on success, swaps it in as the server's
// active dict. Query handlers never observe a half-loaded dictionary,
// since the swap only happens after Load fully succeeds.
func (s *Server) LoadSnapshot(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	d, err := ux.Load(ctx, f)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.dict = d
	s.mu.Unlock()
	return nil
}

// dictionary returns the currently active dictionary, safe to call
// concurrently with a reload.
func (s *Server) dictionary() *ux.Dictionary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dict
}

// handleReload triggers Manager.Recover against the server's configured
// snapshot path, swapping in the result via LoadSnapshot on success.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if err := s.mgr.Recover(r.Context(), s); err != nil {
		log.Printf("server: reload failed: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"reloaded": true,
		"keyNum":   s.dictionary().GetKeyNum(),
	})
}

// admit acquires one concurrency slot for the request's lifetime,
// releasing it via the returned func. A nil controller admits
// unconditionally.
func (s *Server) admit(r *http.Request) (release func(), ok bool) {
	if s.controller == nil {
		return func() {}, true
	}
	if err := s.controller.AcquireBackground(r.Context()); err != nil {
		return nil, false
	}
	return s.controller.ReleaseBackground, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func queryParam(r *http.Request) ([]byte, bool) {
	q := r.URL.Query().Get("q")
	if q == "" {
		return nil, false
	}
	return []byte(q), true
}

func limitParam(r *http.Request, def int) int {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func (s *Server) handlePrefix(w http.ResponseWriter, r *http.Request) {
	release, ok := s.admit(r)
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "server busy")
		return
	}
	defer release()

	q, ok := queryParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "missing q parameter")
		return
	}

	id, matchedLen, err := s.dictionary().PrefixSearch(q)
	if err != nil {
		if errors.Is(err, ux.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no prefix of q is a key")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "matchedLen": matchedLen})
}

func (s *Server) handleCommonPrefix(w http.ResponseWriter, r *http.Request) {
	release, ok := s.admit(r)
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "server busy")
		return
	}
	defer release()

	q, ok := queryParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "missing q parameter")
		return
	}

	ids, err := s.dictionary().CommonPrefixSearch(q, limitParam(r, math.MaxInt))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ids": ids})
}

func (s *Server) handlePredictive(w http.ResponseWriter, r *http.Request) {
	release, ok := s.admit(r)
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "server busy")
		return
	}
	defer release()

	q, ok := queryParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "missing q parameter")
		return
	}

	ids, err := s.dictionary().PredictiveSearch(q, limitParam(r, math.MaxInt))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ids": ids})
}

func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request) {
	release, ok := s.admit(r)
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "server busy")
		return
	}
	defer release()

	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "id must be an integer")
		return
	}

	key, err := s.dictionary().Decode(id)
	if err != nil {
		var invalid *ux.ErrInvalidID
		if errors.As(err, &invalid) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"key": string(key)})
}
