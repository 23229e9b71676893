package console

import (
	"sort"

	"github.com/dmittakarin8/solflow/internal/rolling"
	"github.com/dmittakarin8/solflow/internal/storage"
)

// queueDepther and writerStatter are the narrow slices of
// storage.Queue/storage.Writer the console needs, kept as interfaces
// so tests can substitute fakes without opening a real database.
type queueDepther interface {
	Depth() int
	Dropped() uint64
}

type writerStatter interface {
	Stats() storage.WriterStats
}

// StoreProvider adapts a rolling.Store, a SignalFeed, and the write
// queue/writer into the console's Provider interface.
type StoreProvider struct {
	store  *rolling.Store
	feed   *SignalFeed
	queue  queueDepther
	writer writerStatter
	topN   int
}

// NewStoreProvider creates a Provider backed by the live ingestion
// components. topN bounds how many recent signals are pulled from the
// feed; every tracked mint is ranked, and the Model truncates the mint
// list at render time.
func NewStoreProvider(store *rolling.Store, feed *SignalFeed, queue *storage.Queue, writer *storage.Writer, topN int) *StoreProvider {
	return &StoreProvider{store: store, feed: feed, queue: queue, writer: writer, topN: topN}
}

// Snapshot implements Provider.
func (p *StoreProvider) Snapshot() Snapshot {
	metrics := p.store.Snapshot()

	rows := make([]MintRow, 0, len(metrics))
	for _, m := range metrics {
		rows = append(rows, MintRow{
			Mint:              m.Mint,
			NetFlow300s:       m.NetFlow300s,
			UniqueWallets300s: m.UniqueWallets300s,
			BotRatio300s:      m.BotRatio300s(),
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].NetFlow300s > rows[j].NetFlow300s })

	var sigRows []SignalRow
	for _, sig := range p.feed.Recent(p.topN) {
		sigRows = append(sigRows, SignalRow{
			Mint:      sig.Mint,
			Kind:      string(sig.Kind),
			Strength:  sig.Strength,
			WindowTag: sig.WindowTag,
			Timestamp: sig.Timestamp,
		})
	}

	stats := p.writer.Stats()
	writerHealthy := stats.LastCommitError == ""

	return Snapshot{
		Mints:         rows,
		Signals:       sigRows,
		QueueDepth:    p.queue.Depth(),
		QueueDropped:  p.queue.Dropped(),
		WriterHealthy: writerHealthy,
	}
}
