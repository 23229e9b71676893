// Command solflow runs the ingestion pipeline: decoded trade
// instructions in, rolling flow state and fired signals out, batched
// to SQLite by a single writer goroutine. A companion terminal UI can
// attach to the same process in console mode.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dmittakarin8/solflow/internal/config"
	"github.com/dmittakarin8/solflow/internal/console"
	"github.com/dmittakarin8/solflow/internal/health"
	"github.com/dmittakarin8/solflow/internal/ingest"
	"github.com/dmittakarin8/solflow/internal/metadata"
	"github.com/dmittakarin8/solflow/internal/rolling"
	"github.com/dmittakarin8/solflow/internal/signals"
	"github.com/dmittakarin8/solflow/internal/statusapi"
	"github.com/dmittakarin8/solflow/internal/storage"
	"github.com/dmittakarin8/solflow/internal/trade"
)

func main() {
	setupLogger()

	configPath := os.Getenv("SOLFLOW_CONFIG")
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfgManager, err := config.NewManager(configPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", configPath).Msg("failed to load config")
	}
	cfg := cfgManager.Get()

	if err := os.MkdirAll(filepath.Dir(cfg.Storage.SQLitePath), 0o755); err != nil {
		log.Fatal().Err(err).Msg("failed to create storage directory")
	}

	db, err := storage.Open(cfg.Storage.SQLitePath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Storage.SQLitePath).Msg("failed to open storage")
	}
	defer db.Close()

	queue := storage.NewQueue(cfg.Storage.QueueCapacity)
	writer := storage.NewWriter(db, queue)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var writerWG sync.WaitGroup
	writerWG.Add(1)
	go func() {
		defer writerWG.Done()
		writer.Run(ctx)
	}()

	checker := health.NewChecker(db, writer)
	go checker.Start(ctx)

	server := statusapi.NewServer(cfg.StatusAPI.ListenHost, cfg.StatusAPI.ListenPort, checker, queue, writer)
	go func() {
		if err := server.Start(); err != nil {
			log.Error().Err(err).Msg("status API server stopped")
		}
	}()
	log.Info().
		Str("host", cfg.StatusAPI.ListenHost).
		Int("port", cfg.StatusAPI.ListenPort).
		Msg("status API listening")

	dedup := trade.NewDeduplicator(cfg.Dedup.Ceiling)
	extractor := trade.NewExtractor()
	extractor.CountDegradedInFlow = cfg.Extractor.CountDegradedInFlow

	classifierParams := rolling.ClassifierParams{
		BotMinTrades:        cfg.Classifier.BotMinTrades,
		BotSubWindowSeconds: cfg.Classifier.BotSubWindowSeconds,
		MevMinOpposing:      cfg.Classifier.MevMinOpposing,
		MevWindowSeconds:    cfg.Classifier.MevWindowSeconds,
	}
	store := rolling.NewStore(classifierParams)

	var fetcher metadata.Fetcher = metadata.StubFetcher{}
	if cfg.Metadata.Enabled {
		fetcher = metadata.NewHTTPFetcher(cfg.Metadata.BaseURL, time.Duration(cfg.Metadata.TimeoutSeconds)*time.Second)
	}

	feed := console.NewSignalFeed()
	sink := &recordingSink{Queue: queue, feed: feed}
	pipeline := ingest.New(dedup, extractor, store, sink, fetcher)

	if os.Getenv("SOLFLOW_CONSOLE") == "1" {
		provider := console.NewStoreProvider(store, feed, queue, writer, cfg.Console.TopN)
		model := console.New(provider, time.Duration(cfg.Console.RefreshRateMs)*time.Millisecond, cfg.Console.TopN)
		program := tea.NewProgram(model, tea.WithAltScreen())
		go func() {
			if _, err := program.Run(); err != nil {
				log.Error().Err(err).Msg("console exited with error")
			}
			cancel()
		}()
	}

	src, err := newConfiguredSource(cfg)
	if err != nil {
		log.Warn().Err(err).Msg("no upstream stream source configured, running ingestion services only")
	} else {
		go pipeline.Run(ctx, src)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down...")
	cancel()
	writerWG.Wait()
	if err := server.Shutdown(); err != nil {
		log.Warn().Err(err).Msg("status API shutdown error")
	}
	log.Info().Msg("goodbye")
}

// recordingSink forwards every write to the storage queue and, for
// signals only, also records into the console's feed so the operator
// view has something to show without re-reading the database.
type recordingSink struct {
	*storage.Queue
	feed *console.SignalFeed
}

func (s *recordingSink) EnqueueSignal(sig signals.Signal) {
	s.Queue.EnqueueSignal(sig)
	s.feed.Record(sig)
}

// newConfiguredSource resolves the upstream decoded-instruction
// source. The gRPC/Yellowstone stream client itself is out of scope
// for this module — specified only by the trade.Source interface — so
// today this always reports unconfigured. A future network client
// plugs in here without touching the rest of main.
func newConfiguredSource(cfg *config.Config) (trade.Source, error) {
	if cfg.Stream.Endpoint == "" {
		return nil, errors.New("stream.endpoint not configured")
	}
	return nil, errors.New("no in-module stream client implements trade.Source")
}

func setupLogger() {
	log.Logger = zerolog.New(
		zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"},
	).With().Timestamp().Logger()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if os.Getenv("DEBUG") == "1" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}
