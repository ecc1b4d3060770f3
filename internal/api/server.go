// Package api exposes the HTTP control surface: render mode and orientation
// switching, stats, config and the MJPEG preview stream.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/camviz/edgeview/internal/config"
	"github.com/camviz/edgeview/internal/logger"
	"github.com/camviz/edgeview/internal/output"
	"github.com/camviz/edgeview/internal/render"
	"github.com/camviz/edgeview/internal/session"
	"github.com/camviz/edgeview/internal/store"
)

// Server represents the HTTP API server.
type Server struct {
	router    *mux.Router
	session   *session.Session
	configMgr *config.Manager
	preview   *output.MJPEGOutput
	upgrader  websocket.Upgrader
}

// NewServer creates a new API server. preview may be nil when the MJPEG
// stream is disabled.
func NewServer(sess *session.Session, configMgr *config.Manager, preview *output.MJPEGOutput) *Server {
	s := &Server{
		router:    mux.NewRouter(),
		session:   sess,
		configMgr: configMgr,
		preview:   preview,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins for development
			},
		},
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures the API routes.
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	// Render control
	api.HandleFunc("/render/mode", s.handleGetMode).Methods("GET")
	api.HandleFunc("/render/mode", s.handleSetMode).Methods("PUT")
	api.HandleFunc("/render/orientation", s.handleGetOrientation).Methods("GET")
	api.HandleFunc("/render/orientation", s.handleSetOrientation).Methods("PUT")

	// Session management
	api.HandleFunc("/session/reset", s.handleReset).Methods("POST")
	api.HandleFunc("/stats", s.handleStats).Methods("GET")
	api.HandleFunc("/events", s.handleEvents)

	// Configuration
	api.HandleFunc("/config", s.handleGetConfig).Methods("GET")
	api.HandleFunc("/config", s.handleUpdateConfig).Methods("PUT")

	// Health check
	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	if s.preview != nil {
		s.router.HandleFunc("/stream", s.preview.GetHTTPHandler()).Methods("GET")
		s.router.HandleFunc("/", s.preview.GetViewerHandler()).Methods("GET")
	}
}

// Router returns the configured router, mostly for tests.
func (s *Server) Router() http.Handler {
	return s.enableCORS(s.router)
}

// Start starts the HTTP server.
func (s *Server) Start(port int) error {
	addr := fmt.Sprintf(":%d", port)
	logger.WithComponent("api").Info().
		Str("addr", addr).
		Msg("Starting API server")
	return http.ListenAndServe(addr, s.enableCORS(s.router))
}

// enableCORS adds CORS headers.
func (s *Server) enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// HTTP Handlers

func (s *Server) handleGetMode(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"mode": s.session.RenderMode().String()})
}

func (s *Server) handleSetMode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Mode string `json:"mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	mode, err := store.ParseMode(req.Mode)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.session.SetRenderMode(mode)
	writeJSON(w, map[string]string{"mode": mode.String()})
}

func (s *Server) handleGetOrientation(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"orientation": s.session.Orientation().String()})
}

func (s *Server) handleSetOrientation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Orientation string `json:"orientation"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	o, err := render.ParseOrientation(req.Orientation)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.session.SetOrientation(o)
	writeJSON(w, map[string]string{"orientation": o.String()})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.session.Reset()
	writeJSON(w, map[string]string{"status": "success"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats := s.session.Stats()
	resp := struct {
		session.Stats
		PreviewClients int `json:"preview_clients"`
	}{Stats: stats}
	if s.preview != nil {
		resp.PreviewClients = s.preview.ClientCount()
	}
	writeJSON(w, resp)
}

// handleEvents streams a stats snapshot over a websocket once per second
// until the client goes away.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.WithComponent("api").Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	if err := conn.WriteJSON(s.session.Stats()); err != nil {
		return
	}
	for range ticker.C {
		if err := conn.WriteJSON(s.session.Stats()); err != nil {
			return
		}
	}
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.configMgr.Get())
}

func (s *Server) handleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	var cfg config.Config
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.configMgr.Update(&cfg); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]string{"status": "success"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{
		"status":  "healthy",
		"version": "0.1.0",
	})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
