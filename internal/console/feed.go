package console

import (
	"sync"

	"github.com/dmittakarin8/solflow/internal/signals"
)

const feedCapacity = 200

// SignalFeed is a bounded, thread-safe ring buffer of recently fired
// signals, read by the console's Provider. It holds no opinion about
// persistence — the same Signal also goes to the write queue.
type SignalFeed struct {
	mu    sync.Mutex
	items []signals.Signal
}

// NewSignalFeed creates an empty feed.
func NewSignalFeed() *SignalFeed {
	return &SignalFeed{}
}

// Record appends sig, evicting the oldest entry once the feed is full.
func (f *SignalFeed) Record(sig signals.Signal) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, sig)
	if len(f.items) > feedCapacity {
		f.items = f.items[len(f.items)-feedCapacity:]
	}
}

// Recent returns up to n of the most recently recorded signals,
// newest first.
func (f *SignalFeed) Recent(n int) []signals.Signal {
	f.mu.Lock()
	defer f.mu.Unlock()

	if n <= 0 || n > len(f.items) {
		n = len(f.items)
	}
	out := make([]signals.Signal, n)
	for i := 0; i < n; i++ {
		out[i] = f.items[len(f.items)-1-i]
	}
	return out
}
