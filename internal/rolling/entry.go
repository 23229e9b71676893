package rolling

import "github.com/dmittakarin8/solflow/internal/trade"

// entry is the per-trade record held in a window buffer: the minimal
// fields needed for flow summation and the 300s derived metrics.
type entry struct {
	timestamp int64
	solAmount float64
	direction trade.Direction
	wallet    string
	isBot     bool
	isDCA     bool
}

func (e entry) signedFlow() float64 {
	if e.direction == trade.Buy {
		return e.solAmount
	}
	return -e.solAmount
}

func entryFromEvent(ev *trade.Event) entry {
	return entry{
		timestamp: ev.Timestamp,
		solAmount: ev.SolAmount,
		direction: ev.Direction,
		wallet:    ev.Wallet,
		isBot:     ev.IsBot,
		isDCA:     ev.IsDCA,
	}
}
