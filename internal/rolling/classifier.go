package rolling

import "github.com/dmittakarin8/solflow/internal/trade"

// ClassifierParams holds the bot-detection thresholds. The spec notes
// these are not empirically tuned and should be surfaced as
// parameters rather than baked-in constants.
type ClassifierParams struct {
	// BotMinTrades is the trade count (on the same mint, including the
	// trade being classified) that must occur within BotSubWindowSeconds
	// to flag the wallet as a bot for this trade.
	BotMinTrades int
	// BotSubWindowSeconds is the width of the rolling sub-interval
	// examined for rapid-fire trading.
	BotSubWindowSeconds int64
	// MevMinOpposing is the minimum count of opposing-direction trades
	// (including the trade being classified) within MevWindowSeconds
	// that marks an MEV-style round trip. A value of 1 or less disables
	// the MEV check.
	MevMinOpposing int
	// MevWindowSeconds is the width of the window examined for
	// opposing-direction micro-patterns.
	MevWindowSeconds int64
}

// DefaultClassifierParams mirrors the thresholds named in the spec:
// >= 3 trades (counting the trade being classified) within the 10s
// ending at that trade, or >= 2 opposing-direction trades within 2s.
func DefaultClassifierParams() ClassifierParams {
	return ClassifierParams{
		BotMinTrades:        3,
		BotSubWindowSeconds: 10,
		MevMinOpposing:      2,
		MevWindowSeconds:    2,
	}
}

// Classifier applies the bot/DCA policy during rolling-state
// insertion, using the wallet's existing 300s activity (before the
// current trade is appended) plus the current trade itself.
type Classifier struct {
	Params ClassifierParams
}

// NewClassifier creates a Classifier with the given parameters.
func NewClassifier(params ClassifierParams) *Classifier {
	return &Classifier{Params: params}
}

// ClassifyBot reports whether the wallet is bot-flagged for the trade
// at timestamp ts/direction dir, given its existing (pre-append)
// activity on this mint. The flag is per-trade: if the pattern lapses
// on a later trade, that trade is unflagged.
func (c *Classifier) ClassifyBot(activity *WalletActivity, ts int64, dir trade.Direction) bool {
	if activity == nil {
		return false
	}

	rapidCount := activity.countInWindow(ts-c.Params.BotSubWindowSeconds, ts) + 1
	if rapidCount >= c.Params.BotMinTrades {
		return true
	}

	if c.Params.MevMinOpposing <= 1 {
		return false
	}
	opposing := activity.countOpposing(ts-c.Params.MevWindowSeconds, ts, dir) + 1
	return opposing >= c.Params.MevMinOpposing
}

// ClassifyDCA reports whether sourceProgram is the recognized DCA
// venue program tag. Direction is irrelevant.
func ClassifyDCA(sourceProgram string) bool {
	return sourceProgram == trade.DCAProgramID
}

// countOpposing returns the count of existing trades within
// [since, upTo] whose direction differs from dir.
func (w *WalletActivity) countOpposing(since, upTo int64, dir trade.Direction) int {
	n := 0
	for _, t := range w.trades {
		if t.timestamp < since || t.timestamp > upTo {
			continue
		}
		if t.direction != dir {
			n++
		}
	}
	return n
}
