// Package ingest wires the one-directional pipeline together: decoded
// instruction -> Trade Extractor -> Rolling State -> Signals Engine ->
// Write Queue. Nothing here does I/O beyond the queue send and, for a
// newly-seen mint, a best-effort metadata fetch; the upstream
// decoded-instruction source and the database connection are both
// supplied by the caller.
package ingest

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dmittakarin8/solflow/internal/metadata"
	"github.com/dmittakarin8/solflow/internal/rolling"
	"github.com/dmittakarin8/solflow/internal/signals"
	"github.com/dmittakarin8/solflow/internal/storage"
	"github.com/dmittakarin8/solflow/internal/trade"
)

// Sink is the minimal surface the pipeline needs from the write queue,
// kept as an interface so tests can substitute a recorder.
type Sink interface {
	EnqueueMetrics(rolling.Metrics)
	EnqueueTrade(trade.Event)
	EnqueueSignal(signals.Signal)
	EnqueueMetadata(metadata.TokenMetadata)
}

var _ Sink = (*storage.Queue)(nil)

const metadataFetchTimeout = 5 * time.Second

// Pipeline ties a Deduplicator, Extractor, and rolling Store to a
// write-queue Sink. One Pipeline is shared by every decoder goroutine.
type Pipeline struct {
	Dedup     *trade.Deduplicator
	Extractor *trade.Extractor
	Store     *rolling.Store
	Sink      Sink
	Metadata  metadata.Fetcher

	seenMu sync.Mutex
	seen   map[string]struct{}
}

// New creates a Pipeline from already-constructed components. fetcher
// may be metadata.StubFetcher{} when no metadata source is configured.
func New(dedup *trade.Deduplicator, extractor *trade.Extractor, store *rolling.Store, sink Sink, fetcher metadata.Fetcher) *Pipeline {
	return &Pipeline{
		Dedup:     dedup,
		Extractor: extractor,
		Store:     store,
		Sink:      sink,
		Metadata:  fetcher,
		seen:      make(map[string]struct{}),
	}
}

// Process runs one decoded instruction through the full pipeline:
// dedup -> extract -> insert -> evaluate signals -> enqueue. It never
// blocks on I/O and never panics on malformed input; failures are
// logged and the instruction is skipped.
func (p *Pipeline) Process(di trade.DecodedInstruction, meta trade.InstructionMetadata) {
	if p.Dedup.SeenOrRecord(meta.TxSignature) {
		return
	}

	ev, err := p.Extractor.Extract(di, meta)
	if err != nil {
		log.Debug().Err(err).Str("tx", meta.TxSignature).Msg("trade extraction skipped")
		return
	}
	if ev == nil {
		return
	}

	result := p.Store.Insert(*ev)
	if !result.Applied {
		return
	}

	p.Sink.EnqueueMetrics(result.Metrics)
	p.Sink.EnqueueTrade(*ev)

	for _, sig := range signals.Evaluate(result.Metrics, result.Trades300s) {
		p.Sink.EnqueueSignal(sig)
	}

	p.maybeFetchMetadata(ev.Mint)
}

// Run consumes src until ctx is cancelled or src's channel closes,
// calling Process for each envelope. Intended to be run in its own
// goroutine by the caller that owns src's lifecycle.
func (p *Pipeline) Run(ctx context.Context, src trade.Source) {
	ch := src.Instructions()
	for {
		select {
		case <-ctx.Done():
			return
		case env, ok := <-ch:
			if !ok {
				return
			}
			p.Process(env.Instruction, env.Metadata)
		}
	}
}

// maybeFetchMetadata kicks off a best-effort background fetch the
// first time a mint is seen. A slow or failing metadata source never
// affects ingestion: the fetch runs in its own goroutine with a short
// timeout and its result, if any, only ever reaches the write queue.
func (p *Pipeline) maybeFetchMetadata(mint string) {
	p.seenMu.Lock()
	_, already := p.seen[mint]
	if !already {
		p.seen[mint] = struct{}{}
	}
	p.seenMu.Unlock()
	if already {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), metadataFetchTimeout)
		defer cancel()

		md, found, err := p.Metadata.Fetch(ctx, mint)
		if err != nil {
			log.Debug().Err(err).Str("mint", mint).Msg("metadata fetch failed")
			return
		}
		if !found {
			return
		}
		p.Sink.EnqueueMetadata(*md)
	}()
}
