// Package server exposes the assistant over HTTP and WebSocket.
//
// The REST surface accepts typed commands and audio uploads, and a
// WebSocket endpoint carries interactive text sessions. It is best
// suited for web clients, phones, and companion listener processes.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/rishavshrivastavarxll-jpg/jervis/internal/ingest"
	"github.com/rishavshrivastavarxll-jpg/jervis/internal/listener"
	"github.com/rishavshrivastavarxll-jpg/jervis/internal/message"
	"github.com/rishavshrivastavarxll-jpg/jervis/internal/router"
)

const maxUploadBytes = 25 << 20

// Options wires a Server's collaborators.
type Options struct {
	Port     int
	Router   *router.Router
	Pipeline *ingest.Pipeline
	Listener *listener.Controller
	// StopFile signals external listener processes to shut down.
	StopFile string
	// TempDir receives uploaded audio before transcription.
	TempDir string
}

// Server is the assistant's HTTP front door.
type Server struct {
	port     int
	router   *router.Router
	pipeline *ingest.Pipeline
	listener *listener.Controller
	stopFile string
	tempDir  string

	server   *http.Server
	upgrader websocket.Upgrader
}

// New creates a server from the given options.
func New(opts Options) *Server {
	if opts.TempDir == "" {
		opts.TempDir = os.TempDir()
	}
	return &Server{
		port:     opts.Port,
		router:   opts.Router,
		pipeline: opts.Pipeline,
		listener: opts.Listener,
		stopFile: opts.StopFile,
		tempDir:  opts.TempDir,
		upgrader: websocket.Upgrader{
			// Browser clients connect from arbitrary origins.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Handler builds the HTTP routing table. Exposed so tests can drive the
// server without a listening socket.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /command", s.handleCommand)
	mux.HandleFunc("GET /greet", s.handleGreet)
	mux.HandleFunc("GET /ws", s.handleWS)
	mux.HandleFunc("POST /shutdown_listener", s.handleShutdownListener)
	mux.HandleFunc("POST /stop_external_listener", s.handleStopExternalListener)

	// Swagger UI — serves the generated OpenAPI docs.
	mux.Handle("GET /swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	return mux
}

// ListenAndServe starts the HTTP server.
// It blocks until the context is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("command server listening", "port", s.port)

	go func() {
		<-ctx.Done()
		slog.Info("command server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("http listen: %w", err)
	}
	return nil
}

type commandRequest struct {
	ManualCommand string `json:"manual_command"`
}

type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// handleCommand processes a POST /command request.
//
// @Summary     Interpret a voice or text command
// @Description Accepts either a JSON body with a manual_command field or a
// @Description multipart form with an "audio" file. Audio is converted and
// @Description transcribed before interpretation; the response always carries
// @Description the recognized command and the assistant's reply.
// @Tags        command
// @Accept      json
// @Accept      multipart/form-data
// @Produce     json
// @Param       message  body      commandRequest  false  "Typed command (JSON)"
// @Param       audio    formData  file            false  "Audio upload (multipart)"
// @Success     200  {object}  message.Result  "Recognized command and response"
// @Failure     400  {string}  string  "Invalid request body"
// @Router      /command [post]
func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "application/json") {
		s.handleTypedCommand(w, r)
		return
	}
	s.handleAudioCommand(w, r)
}

func (s *Server) handleTypedCommand(w http.ResponseWriter, r *http.Request) {
	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}

	text := strings.TrimSpace(req.ManualCommand)
	if text == "" {
		writeJSON(w, map[string]string{"response": "No manual command text received."})
		return
	}

	result := s.router.Process(r.Context(), message.Typed(text))
	writeJSON(w, result)
}

func (s *Server) handleAudioCommand(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("audio")
	if err != nil {
		writeJSON(w, map[string]string{"response": "No audio data received in the POST request."})
		return
	}
	defer file.Close()

	path, err := s.saveUpload(file, header)
	if err != nil {
		slog.Error("saving audio upload failed", "error", err)
		writeJSON(w, map[string]string{"response": fmt.Sprintf("An unexpected error occurred during transcription: %v", err)})
		return
	}
	defer func() {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("upload cleanup failed", "path", path, "error", err)
		}
	}()

	text, err := s.pipeline.Transcribe(r.Context(), path)
	if err != nil {
		var terr *ingest.TranscriptionError
		if errors.As(err, &terr) {
			writeJSON(w, map[string]string{"response": terr.Cause})
			return
		}
		writeJSON(w, map[string]string{"response": fmt.Sprintf("An unexpected error occurred during transcription: %v", err)})
		return
	}

	result := s.router.Process(r.Context(), message.Transcribed(text))
	writeJSON(w, result)
}

// saveUpload spools the multipart part to the temp directory, keeping
// the original extension so the pipeline can tell WAV from the rest.
func (s *Server) saveUpload(file multipart.File, header *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext == "" {
		ext = ".bin"
	}
	path := filepath.Join(s.tempDir, uuid.NewString()+ext)

	out, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, file); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}

// handleGreet processes a GET /greet request.
//
// @Summary     Fetch the session greeting
// @Description Returns the time-of-day greeting clients show when a session opens.
// @Tags        command
// @Produce     json
// @Success     200  {object}  map[string]string  "Greeting text"
// @Router      /greet [get]
func (s *Server) handleGreet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"response": s.router.Greeting()})
}

// handleWS upgrades to WebSocket and runs an interactive text session:
// each text frame is interpreted as a typed command and answered with a
// JSON result frame.
//
// @Summary     Interactive command session
// @Description WebSocket endpoint. Each text frame is an utterance; each reply
// @Description frame is a JSON object with the command and response.
// @Tags        command
// @Success     101  {string}  string  "Switching protocols"
// @Router      /ws [get]
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	slog.Info("websocket session opened", "remote", conn.RemoteAddr())
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Warn("websocket session ended", "error", err)
			}
			return
		}

		result := s.router.Process(r.Context(), message.Typed(string(data)))
		if err := conn.WriteJSON(result); err != nil {
			slog.Warn("websocket write failed", "error", err)
			return
		}
	}
}

// handleShutdownListener processes a POST /shutdown_listener request.
//
// @Summary     Stop the in-process listener loop
// @Tags        listener
// @Produce     json
// @Success     200  {object}  statusResponse
// @Router      /shutdown_listener [post]
func (s *Server) handleShutdownListener(w http.ResponseWriter, r *http.Request) {
	if s.listener != nil && s.listener.Stop() {
		slog.Info("listener stop requested")
		writeJSON(w, statusResponse{Status: "stopping", Message: "Listener stopping."})
		return
	}
	writeJSON(w, statusResponse{Status: "stopped", Message: "Listener already stopped."})
}

// handleStopExternalListener processes a POST /stop_external_listener request.
//
// @Summary     Signal external listener processes to stop
// @Description Writes the stop marker file that companion listener processes poll.
// @Tags        listener
// @Produce     json
// @Success     200  {object}  statusResponse
// @Failure     500  {object}  statusResponse
// @Router      /stop_external_listener [post]
func (s *Server) handleStopExternalListener(w http.ResponseWriter, r *http.Request) {
	if err := listener.WriteStopMarker(s.stopFile); err != nil {
		slog.Error("writing stop marker failed", "path", s.stopFile, "error", err)
		writeJSONStatus(w, http.StatusInternalServerError, statusResponse{Status: "error", Message: "Could not write stop signal."})
		return
	}
	writeJSON(w, statusResponse{Status: "stopping", Message: "Stop signal written."})
}

func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
