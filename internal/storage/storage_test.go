package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmittakarin8/solflow/internal/metadata"
	"github.com/dmittakarin8/solflow/internal/rolling"
	"github.com/dmittakarin8/solflow/internal/signals"
	"github.com/dmittakarin8/solflow/internal/trade"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "solflow.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "solflow.db")

	db1, err := Open(path)
	if err != nil {
		t.Fatalf("first Open: %v", err)
	}
	db1.Close()

	db2, err := Open(path)
	if err != nil {
		t.Fatalf("second Open on an existing schema: %v", err)
	}
	db2.Close()
}

func TestWriterCommitsMetricsTradeAndSignal(t *testing.T) {
	db := openTestDB(t)
	queue := NewQueue(16)
	w := NewWriter(db, queue)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	queue.EnqueueMetrics(rolling.Metrics{Mint: "M1", UpdatedAt: 100, NetFlow300s: 42})
	queue.EnqueueTrade(trade.Event{Mint: "M1", Timestamp: 100, Wallet: "wA", Direction: trade.Buy, SolAmount: 5})
	queue.EnqueueSignal(signals.Signal{Mint: "M1", Kind: signals.Breakout, Strength: 0.5, WindowTag: "60s", Timestamp: 100, MetadataJSON: "{}"})

	// Force a commit: either 100 requests accumulate or 100ms elapses,
	// so give the writer's timer room to fire.
	time.Sleep(200 * time.Millisecond)
	cancel()
	<-done

	var gotMint string
	if err := db.db.QueryRow("SELECT mint FROM token_rolling_metrics WHERE mint = ?", "M1").Scan(&gotMint); err != nil {
		t.Fatalf("metrics row missing: %v", err)
	}

	var tradeCount int
	if err := db.db.QueryRow("SELECT COUNT(*) FROM token_trades WHERE mint = ?", "M1").Scan(&tradeCount); err != nil {
		t.Fatalf("query trades: %v", err)
	}
	if tradeCount != 1 {
		t.Errorf("trade count = %d, want 1", tradeCount)
	}

	var signalCount int
	if err := db.db.QueryRow("SELECT COUNT(*) FROM token_signals WHERE mint = ?", "M1").Scan(&signalCount); err != nil {
		t.Fatalf("query signals: %v", err)
	}
	if signalCount != 1 {
		t.Errorf("signal count = %d, want 1", signalCount)
	}
}

func TestWriterCommitsAtBatchSizeThreshold(t *testing.T) {
	db := openTestDB(t)
	queue := NewQueue(200)
	w := NewWriter(db, queue)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	for i := 0; i < batchMaxRequests; i++ {
		queue.EnqueueTrade(trade.Event{Mint: "M2", Timestamp: int64(i), Wallet: "wA", Direction: trade.Buy, SolAmount: 1})
	}

	deadline := time.After(2 * time.Second)
	for {
		var n int
		if err := db.db.QueryRow("SELECT COUNT(*) FROM token_trades WHERE mint = ?", "M2").Scan(&n); err != nil {
			t.Fatalf("query trades: %v", err)
		}
		if n == batchMaxRequests {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("batch of %d requests never fully committed, got %d", batchMaxRequests, n)
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	<-done
}

// S6 — queue-full resilience: filling the queue and submitting more
// must never block or deadlock the producer; excess requests are
// dropped and counted.
func TestScenarioS6QueueFullResilience(t *testing.T) {
	queue := NewQueue(4)

	for i := 0; i < 4; i++ {
		queue.EnqueueTrade(trade.Event{Mint: "M3", Timestamp: int64(i), SolAmount: 1})
	}

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			queue.EnqueueTrade(trade.Event{Mint: "M3", Timestamp: int64(100 + i), SolAmount: 1})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("enqueue blocked on a full queue")
	}

	if queue.Dropped() != 10 {
		t.Errorf("Dropped() = %d, want 10", queue.Dropped())
	}
	if queue.Depth() != 4 {
		t.Errorf("Depth() = %d, want 4 (queue still full, untouched by the drops)", queue.Depth())
	}
}

func TestWriterUpsertsMetadataOnConflict(t *testing.T) {
	db := openTestDB(t)
	queue := NewQueue(16)
	w := NewWriter(db, queue)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	price := 1.25
	queue.EnqueueMetadata(metadata.TokenMetadata{Mint: "M4", Symbol: "FOO", Decimals: 6, PriceUSD: &price})
	time.Sleep(150 * time.Millisecond)

	updatedPrice := 2.50
	queue.EnqueueMetadata(metadata.TokenMetadata{Mint: "M4", Symbol: "FOO", Decimals: 6, PriceUSD: &updatedPrice})
	time.Sleep(150 * time.Millisecond)

	cancel()
	<-done

	var symbol string
	var gotPrice float64
	if err := db.db.QueryRow("SELECT symbol, price_usd FROM token_metadata WHERE mint = ?", "M4").Scan(&symbol, &gotPrice); err != nil {
		t.Fatalf("metadata row missing: %v", err)
	}
	if symbol != "FOO" {
		t.Errorf("symbol = %q, want FOO", symbol)
	}
	if gotPrice != 2.50 {
		t.Errorf("price_usd = %v, want 2.50 (expected conflict update to win)", gotPrice)
	}

	var count int
	if err := db.db.QueryRow("SELECT COUNT(*) FROM token_metadata WHERE mint = ?", "M4").Scan(&count); err != nil {
		t.Fatalf("query count: %v", err)
	}
	if count != 1 {
		t.Errorf("expected exactly 1 row after upsert, got %d", count)
	}
}

func TestMigrationsDeclaredInLexicographicOrder(t *testing.T) {
	ordered := make([]migration, len(migrations))
	copy(ordered, migrations)
	for i := 1; i < len(ordered); i++ {
		if ordered[i-1].name >= ordered[i].name {
			t.Fatalf("migrations not declared in lexicographic order: %q before %q", ordered[i-1].name, ordered[i].name)
		}
	}
}
