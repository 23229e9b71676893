package storage

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	batchMaxRequests = 100
	batchMaxWait     = 100 * time.Millisecond
)

// WriterStats is a point-in-time snapshot of writer health, surfaced
// through the status endpoint.
type WriterStats struct {
	BatchesCommitted  uint64
	RequestsCommitted uint64
	LastCommitAt      time.Time
	LastCommitError   string
}

// Writer is the single task that owns the database connection. It
// drains Queue, accumulates requests into a batch, and commits the
// batch as one transaction when either batchMaxRequests requests have
// accumulated or its batchMaxWait timer fires — whichever comes first.
// The timer runs continuously and restarts after each flush, so a
// batch waits at most batchMaxWait, often less.
type Writer struct {
	db    *DB
	queue *Queue

	statsMu sync.RWMutex
	stats   WriterStats
}

// NewWriter creates a Writer over db, draining requests from queue.
func NewWriter(db *DB, queue *Queue) *Writer {
	return &Writer{db: db, queue: queue}
}

// Run drains the queue until ctx is cancelled, then performs one final
// drain pass (non-blocking — whatever is already buffered) before
// returning. Callers that want a full graceful drain should stop
// producers, wait for the queue to empty, and only then cancel ctx.
func (w *Writer) Run(ctx context.Context) {
	timer := time.NewTimer(batchMaxWait)
	defer timer.Stop()

	batch := make([]WriteRequest, 0, batchMaxRequests)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		w.commit(batch)
		batch = batch[:0]
	}

	for {
		select {
		case <-ctx.Done():
			w.drainRemaining(&batch)
			flush()
			return
		case req := <-w.queue.ch:
			batch = append(batch, req)
			if len(batch) >= batchMaxRequests {
				flush()
				if !timer.Stop() {
					<-timer.C
				}
				timer.Reset(batchMaxWait)
			}
		case <-timer.C:
			flush()
			timer.Reset(batchMaxWait)
		}
	}
}

// drainRemaining pulls whatever is already buffered in the channel
// without blocking, for one last commit on shutdown.
func (w *Writer) drainRemaining(batch *[]WriteRequest) {
	for {
		select {
		case req := <-w.queue.ch:
			*batch = append(*batch, req)
		default:
			return
		}
	}
}

// commit applies one batch as a single transaction. An error on an
// individual statement is logged and skipped — the rest of the batch
// still lands. A connection-level error aborts the whole transaction;
// the next batch opens a fresh one.
func (w *Writer) commit(batch []WriteRequest) {
	tx, err := w.db.db.BeginTx(context.Background(), nil)
	if err != nil {
		w.recordCommitError(err)
		log.Error().Err(err).Msg("writer: failed to open transaction, dropping batch")
		return
	}

	var committed int
	for _, req := range batch {
		if err := applyRequest(tx, req); err != nil {
			log.Warn().Err(err).Str("correlation_id", req.CorrelationID).Msg("writer: statement failed, skipping")
			continue
		}
		committed++
	}

	if err := tx.Commit(); err != nil {
		w.recordCommitError(err)
		log.Error().Err(err).Msg("writer: commit failed")
		return
	}

	w.recordCommitSuccess(committed)
}

func applyRequest(tx *sql.Tx, req WriteRequest) error {
	switch req.Kind {
	case MetricsUpsert:
		return upsertMetrics(tx, req.Metrics)
	case TradeAppend:
		return insertTrade(tx, req.Trade)
	case SignalAppend:
		return insertSignal(tx, req.Signal)
	case MetadataUpsert:
		return upsertMetadata(tx, req.Metadata)
	default:
		return nil
	}
}

func (w *Writer) recordCommitSuccess(n int) {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	w.stats.BatchesCommitted++
	w.stats.RequestsCommitted += uint64(n)
	w.stats.LastCommitAt = time.Now()
	w.stats.LastCommitError = ""
}

func (w *Writer) recordCommitError(err error) {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	w.stats.LastCommitError = err.Error()
}

// Stats returns a copy of the writer's current counters.
func (w *Writer) Stats() WriterStats {
	w.statsMu.RLock()
	defer w.statsMu.RUnlock()
	return w.stats
}
