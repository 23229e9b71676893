// Package signals turns a rolling-metrics snapshot and its recent trade
// window into zero or more fired Signal values. Every function here is
// pure: no locks, no I/O, no shared state between calls.
package signals

import (
	"encoding/json"

	"github.com/dmittakarin8/solflow/internal/rolling"
	"github.com/dmittakarin8/solflow/internal/trade"
)

// Kind identifies which of the five recognized signal patterns fired.
type Kind string

const (
	Breakout       Kind = "breakout"
	Reaccumulation Kind = "reaccumulation"
	FocusedBuyers  Kind = "focused_buyers"
	Persistence    Kind = "persistence"
	FlowReversal   Kind = "flow_reversal"
)

// Signal is one firing of a pattern for one mint. MetadataJSON carries
// an open schema so new signal variants never require a storage
// migration.
type Signal struct {
	Mint         string
	Kind         Kind
	Strength     float64
	WindowTag    string
	Timestamp    int64
	MetadataJSON string
}

func newSignal(mint string, kind Kind, strength float64, windowTag string, ts int64, metadata map[string]any) Signal {
	raw, err := json.Marshal(metadata)
	if err != nil {
		raw = []byte("{}")
	}
	return Signal{
		Mint:         mint,
		Kind:         kind,
		Strength:     clamp01(strength),
		WindowTag:    windowTag,
		Timestamp:    ts,
		MetadataJSON: string(raw),
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// detector is the shared shape of each pure signal-evaluation function.
type detector func(m rolling.Metrics, trades300s []trade.Event) (Signal, bool)

var detectors = []detector{
	detectBreakout,
	detectReaccumulation,
	detectFocusedBuyers,
	detectPersistence,
	detectFlowReversal,
}

// Evaluate runs every detector against the given snapshot and recent
// trade window, returning every signal that fired. Never fails; a
// degenerate snapshot (e.g. no trades) simply yields no signals.
func Evaluate(m rolling.Metrics, trades300s []trade.Event) []Signal {
	var fired []Signal
	for _, d := range detectors {
		if sig, ok := d(m, trades300s); ok {
			fired = append(fired, sig)
		}
	}
	return fired
}
