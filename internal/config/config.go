// Package config loads and hot-reloads SolFlow's YAML configuration
// using viper, watching the file with fsnotify so operators can tune
// thresholds without a restart.
package config

import (
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Config holds all runtime configuration.
type Config struct {
	Stream     StreamConfig     `mapstructure:"stream"`
	Dedup      DedupConfig      `mapstructure:"dedup"`
	Extractor  ExtractorConfig  `mapstructure:"extractor"`
	Classifier ClassifierConfig `mapstructure:"classifier"`
	Storage    StorageConfig    `mapstructure:"storage"`
	StatusAPI  StatusAPIConfig  `mapstructure:"status_api"`
	Console    ConsoleConfig    `mapstructure:"console"`
	Metadata   MetadataConfig   `mapstructure:"metadata"`
}

// StreamConfig describes the upstream gRPC/Yellowstone source. The
// stream client itself is an external collaborator (specified only by
// interface); this is just enough to locate and authenticate to it.
type StreamConfig struct {
	Endpoint     string `mapstructure:"endpoint"`
	AuthTokenEnv string `mapstructure:"auth_token_env"`
}

// DedupConfig controls the in-session signature deduplicator.
type DedupConfig struct {
	Ceiling int `mapstructure:"ceiling"`
}

// ExtractorConfig controls trade-extraction policy.
type ExtractorConfig struct {
	CountDegradedInFlow bool `mapstructure:"count_degraded_in_flow"`
	ImplicitDecimals    int  `mapstructure:"implicit_decimals"`
}

// ClassifierConfig surfaces the bot/MEV thresholds as tunable
// parameters rather than baked-in constants.
type ClassifierConfig struct {
	BotMinTrades        int   `mapstructure:"bot_min_trades"`
	BotSubWindowSeconds int64 `mapstructure:"bot_sub_window_seconds"`
	MevMinOpposing      int   `mapstructure:"mev_min_opposing"`
	MevWindowSeconds    int64 `mapstructure:"mev_window_seconds"`
}

// StorageConfig controls the SQLite path and write-queue sizing.
type StorageConfig struct {
	SQLitePath    string `mapstructure:"sqlite_path"`
	QueueCapacity int    `mapstructure:"queue_capacity"`
}

// StatusAPIConfig controls the read-only health/stats HTTP surface.
type StatusAPIConfig struct {
	ListenHost string `mapstructure:"listen_host"`
	ListenPort int    `mapstructure:"listen_port"`
}

// ConsoleConfig controls the operator terminal UI.
type ConsoleConfig struct {
	RefreshRateMs int `mapstructure:"refresh_rate_ms"`
	TopN          int `mapstructure:"top_n"`
}

// MetadataConfig controls the external token-metadata fetcher.
type MetadataConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// Manager handles config loading and hot-reload.
type Manager struct {
	mu       sync.RWMutex
	config   *Config
	viper    *viper.Viper
	onChange func(*Config)
}

// NewManager loads configPath and starts watching it for changes.
func NewManager(configPath string) (*Manager, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	v.SetDefault("dedup.ceiling", 200_000)
	v.SetDefault("extractor.count_degraded_in_flow", true)
	v.SetDefault("extractor.implicit_decimals", 6)
	v.SetDefault("classifier.bot_min_trades", 3)
	v.SetDefault("classifier.bot_sub_window_seconds", 10)
	v.SetDefault("classifier.mev_min_opposing", 2)
	v.SetDefault("classifier.mev_window_seconds", 2)
	v.SetDefault("storage.sqlite_path", "./data/solflow.db")
	v.SetDefault("storage.queue_capacity", 1000)
	v.SetDefault("status_api.listen_host", "127.0.0.1")
	v.SetDefault("status_api.listen_port", 8090)
	v.SetDefault("console.refresh_rate_ms", 500)
	v.SetDefault("console.top_n", 20)
	v.SetDefault("metadata.enabled", false)
	v.SetDefault("metadata.timeout_seconds", 5)
	v.SetDefault("stream.auth_token_env", "SOLFLOW_STREAM_TOKEN")

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if cfg.Storage.SQLitePath == "" {
		cfg.Storage.SQLitePath = "./data/solflow.db"
	}

	m := &Manager{config: &cfg, viper: v}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		log.Info().Str("file", e.Name).Msg("config file changed, reloading")
		m.reload()
	})

	return m, nil
}

// Get returns the current config (thread-safe).
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// SetOnChange registers a callback fired after a successful reload.
func (m *Manager) SetOnChange(fn func(*Config)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = fn
}

func (m *Manager) reload() {
	m.mu.Lock()
	defer m.mu.Unlock()

	var cfg Config
	if err := m.viper.Unmarshal(&cfg); err != nil {
		log.Error().Err(err).Msg("failed to unmarshal config on reload")
		return
	}

	m.config = &cfg
	if m.onChange != nil {
		m.onChange(&cfg)
	}
}

// StreamAuthToken loads the stream's bearer token from the configured
// environment variable.
func (m *Manager) StreamAuthToken() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return os.Getenv(m.config.Stream.AuthTokenEnv)
}
