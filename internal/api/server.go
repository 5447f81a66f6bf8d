// Package api exposes the optimizer pipeline over HTTP for the browser
// front end: upload a bundle, calculate tasks, generate and download
// the archive, stream generation progress.
package api

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Dzazaleo/Spine-Asset-Optimizer-v1/internal/archive"
	"github.com/Dzazaleo/Spine-Asset-Optimizer-v1/internal/atlas"
	"github.com/Dzazaleo/Spine-Asset-Optimizer-v1/internal/optimize"
)

// Session status values.
const (
	StatusIdle       = "idle"
	StatusGenerating = "generating"
	StatusDone       = "done"
	StatusError      = "error"
)

// Session holds one uploaded bundle and its derived outputs.
type Session struct {
	ID       string
	Regions  map[string]atlas.Region
	Analyses []optimize.AnimationAnalysis
	Images   []optimize.LoadedImage

	mu        sync.Mutex
	tasks     []optimize.Task
	archive   []byte
	status    string
	completed int
	total     int
	failure   string
}

func (s *Session) snapshot() sessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sessionStatus{
		ID:        s.ID,
		Status:    s.status,
		Completed: s.completed,
		Total:     s.total,
		Tasks:     len(s.tasks),
		Error:     s.failure,
	}
}

type sessionStatus struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
	Tasks     int    `json:"tasks"`
	Error     string `json:"error,omitempty"`
}

// Server owns optimizer sessions and the HTTP handlers around them.
type Server struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewServer creates an empty session store.
func NewServer() *Server {
	return &Server{sessions: make(map[string]*Session)}
}

// Register wires all routes onto the Echo instance.
func (s *Server) Register(e *echo.Echo) {
	e.HTTPErrorHandler = ErrorHandler
	e.GET("/health", s.handleHealth)

	g := e.Group("/api/sessions")
	g.POST("", s.handleCreateSession)
	g.GET("/:id", s.handleGetSession)
	g.DELETE("/:id", s.handleDeleteSession)
	g.POST("/:id/calculate", s.handleCalculate)
	g.POST("/:id/archive", s.handleGenerate)
	g.GET("/:id/archive", s.handleDownload)
	g.GET("/:id/progress", s.handleProgress)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// handleCreateSession accepts a multipart bundle: an optional "atlas"
// descriptor, a required "analysis" JSON file and any number of
// "images" files. Image dimensions come from the decoded headers.
func (s *Server) handleCreateSession(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return NewBadRequestError("multipart form required", err)
	}

	analysisFiles := form.File["analysis"]
	if len(analysisFiles) == 0 {
		return NewBadRequestError("missing analysis file", nil)
	}
	raw, err := readPart(analysisFiles[0])
	if err != nil {
		return NewBadRequestError("unreadable analysis file", err)
	}
	analyses, err := optimize.DecodeAnalysis(raw)
	if err != nil {
		return NewBadRequestError("invalid analysis JSON", err)
	}

	sess := &Session{
		ID:       uuid.New().String(),
		Analyses: analyses,
		status:   StatusIdle,
	}

	if atlasFiles := form.File["atlas"]; len(atlasFiles) > 0 {
		text, err := readPart(atlasFiles[0])
		if err != nil {
			return NewBadRequestError("unreadable atlas file", err)
		}
		sess.Regions = atlas.Parse(string(text))
	}

	for _, fh := range form.File["images"] {
		data, err := readPart(fh)
		if err != nil {
			return NewBadRequestError("unreadable image "+fh.Filename, err)
		}
		cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return NewBadRequestError("undecodable image "+fh.Filename, err)
		}
		sess.Images = append(sess.Images, optimize.LoadedImage{
			Path:   fh.Filename,
			Name:   fh.Filename,
			Width:  cfg.Width,
			Height: cfg.Height,
			Data:   data,
		})
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"id":         sess.ID,
		"images":     len(sess.Images),
		"regions":    len(sess.Regions),
		"animations": len(sess.Analyses),
	})
}

func (s *Server) handleGetSession(c echo.Context) error {
	sess, err := s.session(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sess.snapshot())
}

func (s *Server) handleDeleteSession(c echo.Context) error {
	id := c.Param("id")
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return NewNotFoundError("session", id)
	}
	return c.NoContent(http.StatusNoContent)
}

// handleCalculate runs the calculator with the request's buffer
// percentage. Safe to call repeatedly; each call replaces the task
// list.
func (s *Server) handleCalculate(c echo.Context) error {
	sess, err := s.session(c)
	if err != nil {
		return err
	}

	buffer := 0.0
	if v := c.QueryParam("buffer"); v != "" {
		buffer, err = strconv.ParseFloat(v, 64)
		if err != nil || buffer < 0 {
			return NewBadRequestError("buffer must be a non-negative number", err)
		}
	}

	tasks, warnings := optimize.Calculate(sess.Analyses, sess.Images, buffer)

	sess.mu.Lock()
	if sess.status == StatusGenerating {
		sess.mu.Unlock()
		return NewConflictError("archive generation in progress")
	}
	sess.tasks = tasks
	sess.archive = nil
	sess.status = StatusIdle
	sess.completed, sess.total = 0, len(tasks)
	sess.mu.Unlock()

	return c.JSON(http.StatusOK, map[string]interface{}{
		"tasks":    tasks,
		"warnings": warnings,
	})
}

// handleGenerate kicks off archive generation in the background. The
// generator goroutine is the only progress writer.
func (s *Server) handleGenerate(c echo.Context) error {
	sess, err := s.session(c)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	if sess.status == StatusGenerating {
		sess.mu.Unlock()
		return NewConflictError("archive generation already running")
	}
	tasks := sess.tasks
	if tasks == nil {
		sess.mu.Unlock()
		return NewConflictError("calculate tasks before generating")
	}
	sess.status = StatusGenerating
	sess.completed, sess.total = 0, len(tasks)
	sess.failure = ""
	sess.mu.Unlock()

	go func() {
		data, err := archive.Generate(tasks, func(done, total int) {
			sess.mu.Lock()
			sess.completed, sess.total = done, total
			sess.mu.Unlock()
		})
		sess.mu.Lock()
		if err != nil {
			sess.status = StatusError
			sess.failure = err.Error()
		} else {
			sess.status = StatusDone
			sess.archive = data
		}
		sess.mu.Unlock()
	}()

	return c.JSON(http.StatusAccepted, sess.snapshot())
}

func (s *Server) handleDownload(c echo.Context) error {
	sess, err := s.session(c)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	data := sess.archive
	status := sess.status
	sess.mu.Unlock()

	if status != StatusDone || data == nil {
		return NewConflictError(fmt.Sprintf("archive not ready (status %s)", status))
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="optimized.zip"`)
	return c.Blob(http.StatusOK, "application/zip", data)
}

func (s *Server) session(c echo.Context) (*Session, error) {
	id := c.Param("id")
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, NewNotFoundError("session", id)
	}
	return sess, nil
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
