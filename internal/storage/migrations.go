package storage

// migration is one schema step, applied idempotently. Statements use
// CREATE TABLE/INDEX IF NOT EXISTS so re-running the full set on every
// startup is always safe.
type migration struct {
	name string
	sql  string
}

// migrations is applied in lexicographic order by name, matching the
// numbered-prefix convention below.
var migrations = []migration{
	{
		name: "0001_rolling_metrics",
		sql: `
CREATE TABLE IF NOT EXISTS token_rolling_metrics (
	mint TEXT PRIMARY KEY,
	updated_at INTEGER NOT NULL,
	net_flow_60s REAL NOT NULL DEFAULT 0,
	net_flow_300s REAL NOT NULL DEFAULT 0,
	net_flow_900s REAL NOT NULL DEFAULT 0,
	net_flow_3600s REAL NOT NULL DEFAULT 0,
	net_flow_7200s REAL NOT NULL DEFAULT 0,
	net_flow_14400s REAL NOT NULL DEFAULT 0,
	unique_wallets_300s INTEGER NOT NULL DEFAULT 0,
	bot_wallets_300s INTEGER NOT NULL DEFAULT 0,
	bot_trades_300s INTEGER NOT NULL DEFAULT 0,
	bot_flow_300s REAL NOT NULL DEFAULT 0,
	dca_flow_300s REAL NOT NULL DEFAULT 0,
	dca_unique_wallets_300s INTEGER NOT NULL DEFAULT 0,
	dca_ratio_300s REAL NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_rolling_metrics_updated_at ON token_rolling_metrics(updated_at);
CREATE INDEX IF NOT EXISTS idx_rolling_metrics_net_flow_300s ON token_rolling_metrics(net_flow_300s);
`,
	},
	{
		name: "0002_trades",
		sql: `
CREATE TABLE IF NOT EXISTS token_trades (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	mint TEXT NOT NULL,
	timestamp INTEGER NOT NULL,
	wallet TEXT NOT NULL,
	side TEXT NOT NULL CHECK (side IN ('buy', 'sell')),
	sol_amount REAL NOT NULL,
	is_bot INTEGER NOT NULL DEFAULT 0,
	is_dca INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_trades_mint_timestamp ON token_trades(mint, timestamp DESC);
`,
	},
	{
		name: "0003_signals",
		sql: `
CREATE TABLE IF NOT EXISTS token_signals (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	mint TEXT NOT NULL,
	signal_type TEXT NOT NULL,
	strength REAL NOT NULL,
	window TEXT NOT NULL,
	timestamp INTEGER NOT NULL,
	metadata TEXT NOT NULL DEFAULT '{}'
);
CREATE INDEX IF NOT EXISTS idx_signals_mint_timestamp ON token_signals(mint, timestamp DESC);
`,
	},
	{
		name: "0004_metadata_and_blocklist",
		sql: `
CREATE TABLE IF NOT EXISTS token_metadata (
	mint TEXT PRIMARY KEY,
	symbol TEXT,
	name TEXT,
	decimals INTEGER NOT NULL,
	price_usd REAL,
	market_cap REAL,
	token_age_seconds INTEGER,
	fetched_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS blocklist (
	mint TEXT PRIMARY KEY,
	reason TEXT,
	added_at INTEGER NOT NULL
);
`,
	},
}
