package ingest

import (
	"context"
	"testing"
	"time"

	"github.com/dmittakarin8/solflow/internal/metadata"
	"github.com/dmittakarin8/solflow/internal/rolling"
	"github.com/dmittakarin8/solflow/internal/signals"
	"github.com/dmittakarin8/solflow/internal/trade"
)

type recordingSink struct {
	metrics  []rolling.Metrics
	trades   []trade.Event
	sigs     []signals.Signal
	metadata []metadata.TokenMetadata
}

func (s *recordingSink) EnqueueMetrics(m rolling.Metrics)         { s.metrics = append(s.metrics, m) }
func (s *recordingSink) EnqueueTrade(ev trade.Event)              { s.trades = append(s.trades, ev) }
func (s *recordingSink) EnqueueSignal(sig signals.Signal)         { s.sigs = append(s.sigs, sig) }
func (s *recordingSink) EnqueueMetadata(md metadata.TokenMetadata) { s.metadata = append(s.metadata, md) }

func envelope(wallet string, ts int64, sol float64) trade.InstructionEnvelope {
	return trade.InstructionEnvelope{
		Instruction: trade.DecodedInstruction{
			Venue:               trade.ExplicitBuy,
			Mint:                "MintX",
			UserAccount:         wallet,
			SourceProgram:       "TestAMM",
			ExplicitSolLamports: uint64(sol * 1_000_000_000),
			TokenAmountRaw:      1_000_000,
		},
		Metadata: trade.InstructionMetadata{
			TxSignature: wallet + "-" + time.Unix(ts, 0).String(),
			BlockTime:   ts,
			AccountKeys: []string{wallet},
		},
	}
}

func newTestPipeline(sink Sink) *Pipeline {
	return New(
		trade.NewDeduplicator(0),
		trade.NewExtractor(),
		rolling.NewStore(rolling.DefaultClassifierParams()),
		sink,
		metadata.StubFetcher{},
	)
}

func TestProcessEnqueuesMetricsAndTrade(t *testing.T) {
	sink := &recordingSink{}
	p := newTestPipeline(sink)

	env := envelope("wallet1", 100, 10)
	p.Process(env.Instruction, env.Metadata)

	if len(sink.metrics) != 1 {
		t.Fatalf("expected 1 metrics enqueue, got %d", len(sink.metrics))
	}
	if len(sink.trades) != 1 {
		t.Fatalf("expected 1 trade enqueue, got %d", len(sink.trades))
	}
}

func TestProcessDeduplicatesSameSignature(t *testing.T) {
	sink := &recordingSink{}
	p := newTestPipeline(sink)

	env := envelope("wallet1", 100, 10)
	p.Process(env.Instruction, env.Metadata)
	p.Process(env.Instruction, env.Metadata)

	if len(sink.trades) != 1 {
		t.Errorf("expected dedup to block second insert, got %d trades", len(sink.trades))
	}
}

func TestProcessSkipsZeroSolTrade(t *testing.T) {
	sink := &recordingSink{}
	p := newTestPipeline(sink)

	env := envelope("wallet1", 100, 0)
	p.Process(env.Instruction, env.Metadata)

	if len(sink.trades) != 0 {
		t.Errorf("expected zero-SOL trade to be skipped, got %d trades", len(sink.trades))
	}
}

func TestProcessFiresBreakoutSignal(t *testing.T) {
	sink := &recordingSink{}
	p := newTestPipeline(sink)

	wallets := []string{"w1", "w2", "w3", "w4", "w5", "w6"}
	amounts := []float64{40, 30, 20, 20, 20}
	for i, sol := range amounts {
		env := envelope(wallets[i], int64(100+i), sol)
		p.Process(env.Instruction, env.Metadata)
	}
	env := envelope(wallets[5], 200, 60)
	p.Process(env.Instruction, env.Metadata)

	found := false
	for _, sig := range sink.sigs {
		if sig.Kind == signals.Breakout {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a breakout signal among %d fired signals", len(sink.sigs))
	}
}

func TestRunConsumesSourceUntilClosed(t *testing.T) {
	sink := &recordingSink{}
	p := newTestPipeline(sink)

	ch := make(chan trade.InstructionEnvelope, 2)
	ch <- envelope("w1", 100, 5)
	ch <- envelope("w2", 101, 5)
	close(ch)

	ctx := context.Background()
	p.Run(ctx, chanSource(ch))

	if len(sink.trades) != 2 {
		t.Errorf("expected 2 trades processed from source, got %d", len(sink.trades))
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	sink := &recordingSink{}
	p := newTestPipeline(sink)

	ch := make(chan trade.InstructionEnvelope)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		p.Run(ctx, chanSource(ch))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return promptly after context cancellation")
	}
}

type chanSource chan trade.InstructionEnvelope

func (c chanSource) Instructions() <-chan trade.InstructionEnvelope { return c }
