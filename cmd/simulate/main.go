// Command simulate drives the ingestion pipeline with a synthetic
// trade script instead of a live upstream stream, so the extractor,
// rolling state, and signals engine can be exercised end to end
// without a real gRPC/Yellowstone connection.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dmittakarin8/solflow/internal/ingest"
	"github.com/dmittakarin8/solflow/internal/metadata"
	"github.com/dmittakarin8/solflow/internal/rolling"
	"github.com/dmittakarin8/solflow/internal/storage"
	"github.com/dmittakarin8/solflow/internal/trade"
)

const simMint = "SimMint1111111111111111111111111111111111"

// scriptedSource replays a fixed sequence of envelopes on its channel,
// one per tick, then closes the channel. It satisfies trade.Source.
type scriptedSource struct {
	ch chan trade.InstructionEnvelope
}

func newScriptedSource(envelopes []trade.InstructionEnvelope, tick time.Duration) *scriptedSource {
	s := &scriptedSource{ch: make(chan trade.InstructionEnvelope)}
	go func() {
		defer close(s.ch)
		for _, env := range envelopes {
			s.ch <- env
			time.Sleep(tick)
		}
	}()
	return s
}

func (s *scriptedSource) Instructions() <-chan trade.InstructionEnvelope {
	return s.ch
}

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).With().Timestamp().Logger()
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Info().Msg("starting synthetic ingestion run")

	dbPath := "./data/simulate.db"
	if err := os.MkdirAll("./data", 0o755); err != nil {
		log.Fatal().Err(err).Msg("failed to create data dir")
	}
	db, err := storage.Open(dbPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open storage")
	}
	defer db.Close()

	queue := storage.NewQueue(storage.QueueCapacity)
	writer := storage.NewWriter(db, queue)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go writer.Run(ctx)

	dedup := trade.NewDeduplicator(0)
	extractor := trade.NewExtractor()
	store := rolling.NewStore(rolling.DefaultClassifierParams())
	pipeline := ingest.New(dedup, extractor, store, queue, metadata.StubFetcher{})

	src := newScriptedSource(breakoutScript(), 10*time.Millisecond)
	pipeline.Run(ctx, src)

	// Give the writer a moment to flush the final batch before reading back.
	time.Sleep(200 * time.Millisecond)

	stats := writer.Stats()
	if stats.LastCommitError != "" {
		color.Red("✗ writer reported a commit error: %s", stats.LastCommitError)
	} else {
		color.Green("✓ committed %d rows across %d batches", stats.RequestsCommitted, stats.BatchesCommitted)
	}
	fmt.Printf("tracked mints: %d, dropped: %d\n", store.Len(), queue.Dropped())
	log.Info().Msg("synthetic run complete")
}

// breakoutScript reproduces the breakout scenario: five buys of
// descending size in the first five seconds, then a much larger buy
// a hundred seconds later, from six distinct wallets.
func breakoutScript() []trade.InstructionEnvelope {
	wallets := []string{"walletA", "walletB", "walletC", "walletD", "walletE", "walletF"}
	amounts := []float64{40, 30, 20, 20, 20}

	var out []trade.InstructionEnvelope
	for i, sol := range amounts {
		out = append(out, buyEnvelope(wallets[i], int64(100+i), sol))
	}
	out = append(out, buyEnvelope(wallets[5], 200, 60))
	return out
}

func buyEnvelope(wallet string, blockTime int64, sol float64) trade.InstructionEnvelope {
	lamports := uint64(sol * 1_000_000_000)
	return trade.InstructionEnvelope{
		Instruction: trade.DecodedInstruction{
			Venue:               trade.ExplicitBuy,
			Mint:                simMint,
			UserAccount:         wallet,
			SourceProgram:       "SimAMM",
			ExplicitSolLamports: lamports,
			TokenAmountRaw:      1_000_000,
		},
		Metadata: trade.InstructionMetadata{
			TxSignature: fmt.Sprintf("%s-%d", wallet, blockTime),
			BlockTime:   blockTime,
			AccountKeys: []string{wallet},
		},
	}
}
