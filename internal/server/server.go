// Package server exposes the display over HTTP.
//
// POST / accepts a JSON body with a base64-encoded PNG (a leading
// "data:...," prefix is tolerated), converts it to panel dimensions and
// enqueues it for display. GET /status reports queue and panel state.
package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	epaper "github.com/alchemist-s/e-paper-simulation"
	"github.com/alchemist-s/e-paper-simulation/internal/queue"

	_ "image/jpeg"
	_ "image/png"
)

// maxBodyBytes caps the request body. A raw 800×480 RGBA PNG is well
// under 2MB; anything bigger is not a frame.
const maxBodyBytes = 8 << 20

// imageRequest is the POST / payload.
type imageRequest struct {
	Image string `json:"image"`
}

// imageResponse is the POST / reply.
type imageResponse struct {
	Status string `json:"status"`
	JobID  string `json:"job_id,omitempty"`
	Error  string `json:"error,omitempty"`
}

// statusResponse is the GET /status reply.
type statusResponse struct {
	Panel  string       `json:"panel"`
	Queue  queue.Status `json:"queue"`
	Uptime string       `json:"uptime"`
}

// Server accepts frames over HTTP and forwards them to the update queue.
type Server struct {
	proc    *queue.Processor
	bounds  image.Rectangle
	logger  *log.Logger
	started time.Time
}

// New creates a server feeding the given processor. Frames are rescaled
// to bounds before they are enqueued.
func New(proc *queue.Processor, bounds image.Rectangle, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		proc:    proc,
		bounds:  bounds,
		logger:  logger,
		started: time.Now(),
	}
}

// Router builds the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Post("/", s.handleImage)
	r.Get("/status", s.handleStatus)
	return r
}

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("read body: %w", err))
		return
	}

	var req imageRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	if req.Image == "" {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("missing image field"))
		return
	}

	frame, err := s.decodeFrame(req.Image)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	id, err := s.proc.Enqueue(frame)
	switch {
	case err == nil:
	case errors.Is(err, queue.ErrQueueFull):
		s.writeError(w, http.StatusTooManyRequests, err)
		return
	default:
		s.writeError(w, http.StatusServiceUnavailable, err)
		return
	}

	s.logger.Info("frame accepted", "job", id, "bytes", len(body))
	s.writeJSON(w, http.StatusAccepted, imageResponse{Status: "queued", JobID: id.String()})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, statusResponse{
		Panel:  fmt.Sprintf("%dx%d", s.bounds.Dx(), s.bounds.Dy()),
		Queue:  s.proc.Status(),
		Uptime: time.Since(s.started).Round(time.Second).String(),
	})
}

// decodeFrame turns a base64 image payload into a panel-sized frame.
// Data-URL prefixes ("data:image/png;base64,") are stripped.
func (s *Server) decodeFrame(payload string) (*epaper.Frame, error) {
	if i := strings.IndexByte(payload, ','); i >= 0 {
		payload = payload[i+1:]
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decode base64: %w", err)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return epaper.FrameFromImage(img, s.bounds.Dx(), s.bounds.Dy())
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("write response", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, code int, err error) {
	s.logger.Warn("request rejected", "status", code, "err", err)
	s.writeJSON(w, code, imageResponse{Status: "error", Error: err.Error()})
}
