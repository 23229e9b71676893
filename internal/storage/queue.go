package storage

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dmittakarin8/solflow/internal/metadata"
	"github.com/dmittakarin8/solflow/internal/rolling"
	"github.com/dmittakarin8/solflow/internal/signals"
	"github.com/dmittakarin8/solflow/internal/trade"
)

// QueueCapacity bounds the write queue. Producers never block on a
// full queue — they drop the request and log a warning instead.
const QueueCapacity = 1000

// dropWarnInterval bounds how often a single mint's dropped-request
// warning is allowed to repeat, so a sustained full-queue condition
// logs at a trickle instead of at event rate.
const dropWarnInterval = 5 * time.Second

// RequestKind distinguishes the write-request shapes the writer
// understands.
type RequestKind int

const (
	MetricsUpsert RequestKind = iota
	TradeAppend
	SignalAppend
	MetadataUpsert
)

// WriteRequest is one unit of work handed to the writer. Exactly one
// of Metrics/Trade/Signal/Metadata is populated, per Kind.
// CorrelationID is a diagnostic aid only — nothing in the schema
// depends on it.
type WriteRequest struct {
	Kind          RequestKind
	CorrelationID string

	Metrics  rolling.Metrics
	Trade    trade.Event
	Signal   signals.Signal
	Metadata metadata.TokenMetadata
}

func newMetricsUpsert(m rolling.Metrics) WriteRequest {
	return WriteRequest{Kind: MetricsUpsert, CorrelationID: uuid.NewString(), Metrics: m}
}

func newTradeAppend(ev trade.Event) WriteRequest {
	return WriteRequest{Kind: TradeAppend, CorrelationID: uuid.NewString(), Trade: ev}
}

func newSignalAppend(sig signals.Signal) WriteRequest {
	return WriteRequest{Kind: SignalAppend, CorrelationID: uuid.NewString(), Signal: sig}
}

func newMetadataUpsert(md metadata.TokenMetadata) WriteRequest {
	return WriteRequest{Kind: MetadataUpsert, CorrelationID: uuid.NewString(), Metadata: md}
}

// Queue is the bounded FIFO between processors and the writer task.
// It owns no connection and does no I/O; it is just a channel plus a
// drop counter for observability. Safe for concurrent use by many
// producer goroutines.
type Queue struct {
	ch           chan WriteRequest
	droppedCount atomic.Uint64

	dropLogMu    sync.Mutex
	dropLoggedAt map[string]time.Time
}

// NewQueue creates a Queue with the given capacity (QueueCapacity when
// cap <= 0).
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = QueueCapacity
	}
	return &Queue{
		ch:           make(chan WriteRequest, capacity),
		dropLoggedAt: make(map[string]time.Time),
	}
}

// enqueue performs the shared non-blocking send: on a full queue it
// drops the request and, subject to a per-mint rate limit, logs a
// warning rather than ever blocking the caller's ingestion path.
func (q *Queue) enqueue(req WriteRequest) {
	select {
	case q.ch <- req:
	default:
		q.droppedCount.Add(1)
		mint := mintOf(req)
		if q.shouldLogDrop(mint) {
			log.Warn().
				Str("kind", kindString(req.Kind)).
				Str("mint", mint).
				Str("correlation_id", req.CorrelationID).
				Msg("write queue full, dropping request")
		}
	}
}

// shouldLogDrop reports whether a dropped-request warning for mint may
// be logged now, allowing at most one every dropWarnInterval.
func (q *Queue) shouldLogDrop(mint string) bool {
	q.dropLogMu.Lock()
	defer q.dropLogMu.Unlock()

	now := time.Now()
	if last, ok := q.dropLoggedAt[mint]; ok && now.Sub(last) < dropWarnInterval {
		return false
	}
	q.dropLoggedAt[mint] = now
	return true
}

// mintOf extracts the mint a write request concerns, for rate-limited
// drop logging.
func mintOf(req WriteRequest) string {
	switch req.Kind {
	case MetricsUpsert:
		return req.Metrics.Mint
	case TradeAppend:
		return req.Trade.Mint
	case SignalAppend:
		return req.Signal.Mint
	case MetadataUpsert:
		return req.Metadata.Mint
	default:
		return ""
	}
}

// EnqueueMetrics enqueues an aggregate upsert for mint.
func (q *Queue) EnqueueMetrics(m rolling.Metrics) {
	q.enqueue(newMetricsUpsert(m))
}

// EnqueueTrade enqueues an append-only trade-log row.
func (q *Queue) EnqueueTrade(ev trade.Event) {
	q.enqueue(newTradeAppend(ev))
}

// EnqueueSignal enqueues an append-only signal-firing row.
func (q *Queue) EnqueueSignal(sig signals.Signal) {
	q.enqueue(newSignalAppend(sig))
}

// EnqueueMetadata enqueues a boundary metadata upsert for a mint.
func (q *Queue) EnqueueMetadata(md metadata.TokenMetadata) {
	q.enqueue(newMetadataUpsert(md))
}

// Dropped returns the number of requests dropped so far due to a full
// queue (diagnostics only).
func (q *Queue) Dropped() uint64 {
	return q.droppedCount.Load()
}

// Depth returns the number of requests currently buffered.
func (q *Queue) Depth() int {
	return len(q.ch)
}

func kindString(k RequestKind) string {
	switch k {
	case MetricsUpsert:
		return "metrics_upsert"
	case TradeAppend:
		return "trade_append"
	case SignalAppend:
		return "signal_append"
	case MetadataUpsert:
		return "metadata_upsert"
	default:
		return "unknown"
	}
}
