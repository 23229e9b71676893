package rolling

import "github.com/dmittakarin8/solflow/internal/trade"

type walletTrade struct {
	timestamp int64
	solAmount float64
	direction trade.Direction
}

// WalletActivity is a per-wallet recent-trade tracker scoped to one
// mint: an ordered sequence of trades pruned to the last 300 seconds,
// plus lifetime first/last-seen timestamps.
type WalletActivity struct {
	Wallet    string
	trades    []walletTrade
	FirstSeen int64
	LastSeen  int64
}

func newWalletActivity(wallet string) *WalletActivity {
	return &WalletActivity{Wallet: wallet}
}

// pruneBefore drops trades older than cutoff (strictly less-than —
// boundary trades are kept).
func (w *WalletActivity) pruneBefore(cutoff int64) {
	i := 0
	for i < len(w.trades) && w.trades[i].timestamp < cutoff {
		i++
	}
	if i > 0 {
		w.trades = w.trades[i:]
	}
}

func (w *WalletActivity) append(t walletTrade) {
	if w.FirstSeen == 0 || t.timestamp < w.FirstSeen {
		w.FirstSeen = t.timestamp
	}
	if t.timestamp > w.LastSeen {
		w.LastSeen = t.timestamp
	}
	w.trades = append(w.trades, t)
}

// empty reports whether this activity record has no trades left in
// its 300s buffer — callers discard it once it's also stale (per
// spec, > 300s old).
func (w *WalletActivity) empty() bool {
	return len(w.trades) == 0
}

// countInWindow returns the count of trades with timestamp in
// [since, upTo] (both inclusive).
func (w *WalletActivity) countInWindow(since, upTo int64) int {
	n := 0
	for _, t := range w.trades {
		if t.timestamp >= since && t.timestamp <= upTo {
			n++
		}
	}
	return n
}
