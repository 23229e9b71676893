package rolling

import (
	"hash/fnv"
	"sync"

	"github.com/dmittakarin8/solflow/internal/trade"
)

const shardCount = 32

// Store is the concurrent map of per-mint state entries. Each shard
// behaves as an independently-lockable cell directory: acquiring one
// mint's State never blocks access to another mint's, and creating a
// brand-new cell never blocks readers of existing cells in other
// shards. No single global lock guards the hot path.
type Store struct {
	shards     [shardCount]*shard
	classifier *Classifier
}

type shard struct {
	mu     sync.Mutex
	states map[string]*State
}

// NewStore creates a Store using the given classifier parameters for
// every mint's insertion path.
func NewStore(params ClassifierParams) *Store {
	st := &Store{classifier: NewClassifier(params)}
	for i := range st.shards {
		st.shards[i] = &shard{states: make(map[string]*State)}
	}
	return st
}

func (s *Store) shardFor(mint string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(mint))
	return s.shards[h.Sum32()%shardCount]
}

// cellFor returns the State for mint, creating it if absent. Creating
// a new cell only holds that mint's shard lock briefly; it never
// blocks on another shard or on any in-flight Insert.
func (s *Store) cellFor(mint string) *State {
	sh := s.shardFor(mint)

	sh.mu.Lock()
	st, ok := sh.states[mint]
	if !ok {
		st = newState(mint)
		sh.states[mint] = st
	}
	sh.mu.Unlock()

	return st
}

// Insert applies a trade event to its mint's cell and returns the
// resulting snapshot. Mints other than ev.Mint are entirely
// unaffected and may be updated concurrently by other callers.
func (s *Store) Insert(ev trade.Event) InsertResult {
	cell := s.cellFor(ev.Mint)
	return cell.Insert(ev, s.classifier)
}

// Len returns the number of mints currently tracked (for
// diagnostics/tests only).
func (s *Store) Len() int {
	n := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		n += len(sh.states)
		sh.mu.Unlock()
	}
	return n
}

// Snapshot returns the last-computed Metrics for every mint currently
// tracked. Read-only and approximate by nature — a mint may update
// between one shard's snapshot and the next's under concurrent
// ingestion. Intended for the operator console, not for persistence.
func (s *Store) Snapshot() []Metrics {
	var out []Metrics
	for _, sh := range s.shards {
		sh.mu.Lock()
		cells := make([]*State, 0, len(sh.states))
		for _, st := range sh.states {
			cells = append(cells, st)
		}
		sh.mu.Unlock()

		for _, st := range cells {
			out = append(out, st.Snapshot())
		}
	}
	return out
}
