// Package server exposes the assistant over HTTP and streams assistant
// events to WebSocket clients.
package server

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"aria/assistant"
	"aria/intent"
	"aria/task"
)

// Server is the ARIA HTTP front end.
type Server struct {
	router    *mux.Router
	assistant *assistant.Assistant
	history   *task.History
	hub       *Hub
	http      *http.Server
}

// New builds the server and its routes. history may be nil.
func New(addr string, a *assistant.Assistant, history *task.History) *Server {
	s := &Server{
		router:    mux.NewRouter(),
		assistant: a,
		history:   history,
		hub:       NewHub(),
	}
	s.routes()
	s.http = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
	}
	return s
}

// Hub returns the WebSocket hub so the event bus can feed it.
func (s *Server) Hub() *Hub { return s.hub }

func (s *Server) routes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/api/v1/command", s.handleCommand).Methods("POST")
	s.router.HandleFunc("/api/v1/voice", s.handleVoice).Methods("POST")
	s.router.HandleFunc("/api/v1/status", s.handleStatus).Methods("GET")
	s.router.HandleFunc("/api/v1/history", s.handleHistory).Methods("GET")
	s.router.HandleFunc("/api/v1/intents", s.handleIntents).Methods("GET")
	s.router.HandleFunc("/api/v1/suggestions", s.handleSuggestions).Methods("GET")
	s.router.HandleFunc("/ws/events", s.hub.handleWebSocket)
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	log.Printf("🌐 [SERVER] Listening on %s", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and closes WebSocket clients.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Close()
	return s.http.Shutdown(ctx)
}

type commandRequest struct {
	Text    string `json:"text"`
	Channel string `json:"channel,omitempty"`
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}
	if req.Channel == "" {
		req.Channel = "api"
	}
	response := s.assistant.ProcessCommand(r.Context(), req.Text, req.Channel)
	writeJSON(w, http.StatusOK, response)
}

// handleVoice accepts a recorded utterance as a multipart upload under
// the "audio" field, transcribes it and runs the wake-word-gated
// pipeline.
func (s *Server) handleVoice(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("audio")
	if err != nil {
		writeError(w, http.StatusBadRequest, "audio file is required")
		return
	}
	defer file.Close()

	tmp, err := os.CreateTemp("", "aria-voice-*"+filepath.Ext(header.Filename))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to store audio")
		return
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		writeError(w, http.StatusInternalServerError, "failed to store audio")
		return
	}
	tmp.Close()

	response, err := s.assistant.ProcessAudio(r.Context(), tmp.Name())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if response == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{"ignored": true})
		return
	}
	writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.assistant.Status())
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeJSON(w, http.StatusOK, []task.HistoryRecord{})
		return
	}
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	records, err := s.history.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleIntents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"intents": intent.Names(),
	})
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	partial := r.URL.Query().Get("q")
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"suggestions": s.assistant.Suggestions(partial),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
