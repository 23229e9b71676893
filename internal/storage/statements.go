package storage

import (
	"database/sql"

	"github.com/dmittakarin8/solflow/internal/metadata"
	"github.com/dmittakarin8/solflow/internal/rolling"
	"github.com/dmittakarin8/solflow/internal/signals"
	"github.com/dmittakarin8/solflow/internal/trade"
)

func upsertMetrics(tx *sql.Tx, m rolling.Metrics) error {
	_, err := tx.Exec(`
		INSERT INTO token_rolling_metrics (
			mint, updated_at,
			net_flow_60s, net_flow_300s, net_flow_900s, net_flow_3600s, net_flow_7200s, net_flow_14400s,
			unique_wallets_300s, bot_wallets_300s, bot_trades_300s, bot_flow_300s,
			dca_flow_300s, dca_unique_wallets_300s, dca_ratio_300s
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(mint) DO UPDATE SET
			updated_at = excluded.updated_at,
			net_flow_60s = excluded.net_flow_60s,
			net_flow_300s = excluded.net_flow_300s,
			net_flow_900s = excluded.net_flow_900s,
			net_flow_3600s = excluded.net_flow_3600s,
			net_flow_7200s = excluded.net_flow_7200s,
			net_flow_14400s = excluded.net_flow_14400s,
			unique_wallets_300s = excluded.unique_wallets_300s,
			bot_wallets_300s = excluded.bot_wallets_300s,
			bot_trades_300s = excluded.bot_trades_300s,
			bot_flow_300s = excluded.bot_flow_300s,
			dca_flow_300s = excluded.dca_flow_300s,
			dca_unique_wallets_300s = excluded.dca_unique_wallets_300s,
			dca_ratio_300s = excluded.dca_ratio_300s`,
		m.Mint, m.UpdatedAt,
		m.NetFlow60s, m.NetFlow300s, m.NetFlow900s, m.NetFlow3600s, m.NetFlow7200s, m.NetFlow14400s,
		m.UniqueWallets300s, m.BotWallets300s, m.BotTrades300s, m.BotFlow300s,
		m.DCAFlow300s, m.DCAUniqueWallets300s, m.DCARatio300s,
	)
	return err
}

func insertTrade(tx *sql.Tx, ev trade.Event) error {
	_, err := tx.Exec(`
		INSERT INTO token_trades (mint, timestamp, wallet, side, sol_amount, is_bot, is_dca)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ev.Mint, ev.Timestamp, ev.Wallet, ev.Direction.String(), ev.SolAmount, boolToInt(ev.IsBot), boolToInt(ev.IsDCA),
	)
	return err
}

func insertSignal(tx *sql.Tx, sig signals.Signal) error {
	_, err := tx.Exec(`
		INSERT INTO token_signals (mint, signal_type, strength, window, timestamp, metadata)
		VALUES (?, ?, ?, ?, ?, ?)`,
		sig.Mint, string(sig.Kind), sig.Strength, sig.WindowTag, sig.Timestamp, sig.MetadataJSON,
	)
	return err
}

func upsertMetadata(tx *sql.Tx, md metadata.TokenMetadata) error {
	_, err := tx.Exec(`
		INSERT INTO token_metadata (mint, symbol, name, decimals, price_usd, market_cap, token_age_seconds, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(mint) DO UPDATE SET
			symbol = excluded.symbol,
			name = excluded.name,
			decimals = excluded.decimals,
			price_usd = excluded.price_usd,
			market_cap = excluded.market_cap,
			token_age_seconds = excluded.token_age_seconds,
			fetched_at = excluded.fetched_at`,
		md.Mint, md.Symbol, md.Name, md.Decimals, md.PriceUSD, md.MarketCap, md.TokenAgeSeconds, md.FetchedAt.Unix(),
	)
	return err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
