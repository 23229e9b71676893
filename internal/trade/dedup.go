package trade

import (
	"container/list"
	"sync"
)

// DefaultDedupCeiling bounds the signature set so memory doesn't grow
// unboundedly across a long-running process. Policy parameter, not a
// correctness requirement — an evicted signature is reported unseen
// if it arrives again.
const DefaultDedupCeiling = 200_000

// Deduplicator rejects instructions whose transaction signature has
// already been seen this session. Shared across all venue decoders in
// one process; fails open on memory pressure by evicting the oldest
// entry rather than blocking or erroring.
type Deduplicator struct {
	mu      sync.Mutex
	ceiling int
	seen    map[string]*list.Element
	order   *list.List // front = oldest
}

// NewDeduplicator creates a deduplicator bounded to ceiling signatures.
// A ceiling <= 0 uses DefaultDedupCeiling.
func NewDeduplicator(ceiling int) *Deduplicator {
	if ceiling <= 0 {
		ceiling = DefaultDedupCeiling
	}
	return &Deduplicator{
		ceiling: ceiling,
		seen:    make(map[string]*list.Element, ceiling),
		order:   list.New(),
	}
}

// SeenOrRecord returns true if sig was already recorded this session
// (the instruction should be rejected); otherwise it records sig and
// returns false.
func (d *Deduplicator) SeenOrRecord(sig string) bool {
	if sig == "" {
		return false
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[sig]; ok {
		return true
	}

	el := d.order.PushBack(sig)
	d.seen[sig] = el

	for len(d.seen) > d.ceiling {
		oldest := d.order.Front()
		if oldest == nil {
			break
		}
		d.order.Remove(oldest)
		delete(d.seen, oldest.Value.(string))
	}

	return false
}

// Len returns the number of signatures currently tracked.
func (d *Deduplicator) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}
