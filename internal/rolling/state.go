package rolling

import (
	"sync"

	"github.com/dmittakarin8/solflow/internal/trade"
)

// State is a single mint's rolling-state cell: six window buffers plus
// a wallet-activity table, guarded by its own lock so cells for
// different mints update fully independently.
type State struct {
	mu sync.Mutex

	mint        string
	latestTs    int64
	buffers     [6][]entry
	wallets     map[string]*WalletActivity
	lastMetrics Metrics
}

func newState(mint string) *State {
	return &State{
		mint:    mint,
		wallets: make(map[string]*WalletActivity),
	}
}

// InsertResult carries everything produced by one insertion: the
// metrics snapshot and a copy of the 300s trade buffer (for the
// signals engine). Applied is false if the event was entirely outside
// the largest window or carried non-positive SOL — nothing downstream
// should be enqueued for it.
type InsertResult struct {
	Metrics    Metrics
	Trades300s []trade.Event
	Applied    bool
}

// Insert applies ev to this mint's state following the insertion
// protocol: determine "now", prune each window, classify bot/DCA,
// append to every window still covering the event, update wallet
// activity, and compute a metrics snapshot — all under one lock
// acquisition. State releases its lock before returning; callers copy
// the result out before any write-queue send.
func (s *State) Insert(ev trade.Event, classifier *Classifier) InsertResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ev.SolAmount <= 0 {
		return InsertResult{Applied: false}
	}

	now := ev.Timestamp
	if s.latestTs > now {
		now = s.latestTs
	}
	s.latestTs = now

	for i, span := range Windows {
		s.buffers[i] = pruneEntries(s.buffers[i], now-span)
	}

	activity := s.wallets[ev.Wallet]
	if activity != nil {
		activity.pruneBefore(now - WalletActivityWindowSeconds)
	}

	ev.IsBot = classifier.ClassifyBot(activity, ev.Timestamp, ev.Direction)
	ev.IsDCA = ClassifyDCA(ev.SourceProgram)

	appliedAny := false
	for i, span := range Windows {
		if now-ev.Timestamp <= span {
			s.buffers[i] = append(s.buffers[i], entryFromEvent(&ev))
			appliedAny = true
		}
	}

	if now-ev.Timestamp <= WalletActivityWindowSeconds {
		if activity == nil {
			activity = newWalletActivity(ev.Wallet)
		}
		activity.append(walletTrade{timestamp: ev.Timestamp, solAmount: ev.SolAmount, direction: ev.Direction})
	}

	switch {
	case activity != nil && activity.empty():
		delete(s.wallets, ev.Wallet)
	case activity != nil:
		s.wallets[ev.Wallet] = activity
	}

	if !appliedAny {
		return InsertResult{Applied: false}
	}

	metrics := computeMetrics(s.mint, now, s.buffers)
	s.lastMetrics = metrics

	buf300 := s.buffers[windowIndex(WalletActivityWindowSeconds)]
	trades300 := make([]trade.Event, 0, len(buf300))
	for _, be := range buf300 {
		trades300 = append(trades300, trade.Event{
			Timestamp: be.timestamp,
			Mint:      s.mint,
			Wallet:    be.wallet,
			Direction: be.direction,
			SolAmount: be.solAmount,
			IsBot:     be.isBot,
			IsDCA:     be.isDCA,
		})
	}

	return InsertResult{Metrics: metrics, Trades300s: trades300, Applied: true}
}

// Snapshot returns the most recently computed metrics for this mint,
// without mutating any window buffer.
func (s *State) Snapshot() Metrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastMetrics
}

func pruneEntries(buf []entry, cutoff int64) []entry {
	i := 0
	for i < len(buf) && buf[i].timestamp < cutoff {
		i++
	}
	if i == 0 {
		return buf
	}
	return buf[i:]
}
