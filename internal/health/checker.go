// Package health periodically checks the liveness of the storage
// connection and the writer task, surfaced through the status API.
package health

import (
	"context"
	"sync"
	"time"

	"github.com/dmittakarin8/solflow/internal/storage"
)

// Status represents the health of one component.
type Status struct {
	Name    string
	Healthy bool
	Latency time.Duration
	Error   string
}

// pinger is satisfied by *storage.DB; kept as an interface so tests
// can substitute a fake without opening a real database.
type pinger interface {
	Ping() error
}

// writerStatter is satisfied by *storage.Writer.
type writerStatter interface {
	Stats() storage.WriterStats
}

// staleCommitThreshold flags the writer unhealthy if it hasn't
// committed a batch in this long, once it has committed at least one.
const staleCommitThreshold = 30 * time.Second

// Checker periodically checks storage reachability and writer-task
// liveness.
type Checker struct {
	mu       sync.RWMutex
	statuses []Status

	db     pinger
	writer writerStatter
}

// NewChecker creates a Checker over the given storage connection and
// writer task.
func NewChecker(db pinger, writer writerStatter) *Checker {
	return &Checker{db: db, writer: writer}
}

// Start begins periodic health checks every 10s until ctx is done. It
// also runs one check immediately so GetStatuses is populated before
// the first tick.
func (c *Checker) Start(ctx context.Context) {
	c.check()

	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.check()
			}
		}
	}()
}

func (c *Checker) check() {
	statuses := []Status{c.checkStorage(), c.checkWriter()}

	c.mu.Lock()
	c.statuses = statuses
	c.mu.Unlock()
}

func (c *Checker) checkStorage() Status {
	start := time.Now()
	err := c.db.Ping()
	latency := time.Since(start)

	status := Status{Name: "storage", Latency: latency, Healthy: err == nil}
	if err != nil {
		status.Error = err.Error()
	}
	return status
}

func (c *Checker) checkWriter() Status {
	stats := c.writer.Stats()

	status := Status{Name: "writer", Healthy: true}
	if stats.LastCommitError != "" {
		status.Healthy = false
		status.Error = stats.LastCommitError
	} else if stats.BatchesCommitted > 0 && time.Since(stats.LastCommitAt) > staleCommitThreshold {
		status.Healthy = false
		status.Error = "no batch committed within the stale-commit threshold"
	}
	return status
}

// GetStatuses returns the most recently computed statuses.
func (c *Checker) GetStatuses() []Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.statuses
}
