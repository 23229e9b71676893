// Package statusapi exposes a read-only HTTP surface for operator
// tooling: health of storage/writer, and queue/writer throughput
// stats. It never accepts writes — the dashboard and any other
// consumer only ever reads through here or directly against the
// store's schema.
package statusapi

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/dmittakarin8/solflow/internal/health"
	"github.com/dmittakarin8/solflow/internal/storage"
)

// Server runs the status HTTP endpoint.
type Server struct {
	app     *fiber.App
	checker *health.Checker
	queue   *storage.Queue
	writer  *storage.Writer
	host    string
	port    int
}

// NewServer creates a status server backed by checker (health),
// queue (depth/drop counters), and writer (batch/commit counters).
func NewServer(host string, port int, checker *health.Checker, queue *storage.Queue, writer *storage.Writer) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ReadTimeout:           5 * time.Second,
		WriteTimeout:          5 * time.Second,
	})

	s := &Server{
		app:     app,
		checker: checker,
		queue:   queue,
		writer:  writer,
		host:    host,
		port:    port,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.app.Get("/healthz", s.handleHealthz)
	s.app.Get("/stats", s.handleStats)
}

func (s *Server) handleHealthz(c *fiber.Ctx) error {
	statuses := s.checker.GetStatuses()

	allHealthy := true
	for _, st := range statuses {
		if !st.Healthy {
			allHealthy = false
			break
		}
	}

	code := fiber.StatusOK
	if !allHealthy {
		code = fiber.StatusServiceUnavailable
	}

	return c.Status(code).JSON(fiber.Map{
		"healthy":    allHealthy,
		"components": statuses,
		"time":       time.Now().Unix(),
	})
}

func (s *Server) handleStats(c *fiber.Ctx) error {
	writerStats := s.writer.Stats()

	return c.JSON(fiber.Map{
		"queue_depth":        s.queue.Depth(),
		"queue_dropped":      s.queue.Dropped(),
		"batches_committed":  writerStats.BatchesCommitted,
		"requests_committed": writerStats.RequestsCommitted,
		"last_commit_at":     writerStats.LastCommitAt.Unix(),
		"last_commit_error":  writerStats.LastCommitError,
	})
}

// Start runs the HTTP server; blocks until Shutdown is called or the
// listener fails.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	log.Info().Str("addr", addr).Msg("starting status api")
	return s.app.Listen(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
