package console

import (
	"testing"

	"github.com/dmittakarin8/solflow/internal/signals"
)

func TestFeedRecentReturnsNewestFirst(t *testing.T) {
	f := NewSignalFeed()
	f.Record(signals.Signal{Mint: "A", Timestamp: 1})
	f.Record(signals.Signal{Mint: "B", Timestamp: 2})
	f.Record(signals.Signal{Mint: "C", Timestamp: 3})

	recent := f.Recent(2)
	if len(recent) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(recent))
	}
	if recent[0].Mint != "C" || recent[1].Mint != "B" {
		t.Errorf("expected newest-first order, got %v", recent)
	}
}

func TestFeedEvictsOldestBeyondCapacity(t *testing.T) {
	f := NewSignalFeed()
	for i := 0; i < feedCapacity+10; i++ {
		f.Record(signals.Signal{Mint: "M", Timestamp: int64(i)})
	}

	all := f.Recent(0)
	if len(all) != feedCapacity {
		t.Fatalf("expected feed capped at %d, got %d", feedCapacity, len(all))
	}
	if all[0].Timestamp != int64(feedCapacity+9) {
		t.Errorf("expected newest entry first, got timestamp %d", all[0].Timestamp)
	}
}

func TestFeedRecentZeroOrNegativeReturnsAll(t *testing.T) {
	f := NewSignalFeed()
	f.Record(signals.Signal{Mint: "A"})
	f.Record(signals.Signal{Mint: "B"})

	if got := len(f.Recent(0)); got != 2 {
		t.Errorf("Recent(0) = %d entries, want 2", got)
	}
	if got := len(f.Recent(-1)); got != 2 {
		t.Errorf("Recent(-1) = %d entries, want 2", got)
	}
}
