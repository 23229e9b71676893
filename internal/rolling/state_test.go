package rolling

import (
	"testing"

	"github.com/dmittakarin8/solflow/internal/trade"
)

func buy(ts int64, sol float64, wallet string) trade.Event {
	return trade.Event{
		Timestamp:     ts,
		Mint:          "M",
		Wallet:        wallet,
		Direction:     trade.Buy,
		SolAmount:     sol,
		SourceProgram: "RaydiumV4",
	}
}

func sell(ts int64, sol float64, wallet string) trade.Event {
	ev := buy(ts, sol, wallet)
	ev.Direction = trade.Sell
	return ev
}

// S1 — breakout scenario net-flow numbers (signal firing tested in
// the signals package).
func TestScenarioS1BreakoutFlows(t *testing.T) {
	classifier := NewClassifier(DefaultClassifierParams())
	st := newState("M")

	for _, ev := range []trade.Event{
		buy(100, 40, "wA"),
		buy(101, 30, "wB"),
		buy(102, 20, "wC"),
		buy(103, 20, "wD"),
		buy(104, 20, "wE"),
	} {
		st.Insert(ev, classifier)
	}
	res := st.Insert(buy(200, 60, "wF"), classifier)

	if res.Metrics.NetFlow60s != 60 {
		t.Errorf("NetFlow60s = %v, want 60", res.Metrics.NetFlow60s)
	}
	if res.Metrics.NetFlow300s != 190 {
		t.Errorf("NetFlow300s = %v, want 190", res.Metrics.NetFlow300s)
	}
	if res.Metrics.NetFlow900s != 190 {
		t.Errorf("NetFlow900s = %v, want 190", res.Metrics.NetFlow900s)
	}
	if res.Metrics.UniqueWallets300s != 6 {
		t.Errorf("UniqueWallets300s = %v, want 6", res.Metrics.UniqueWallets300s)
	}
	if res.Metrics.BotRatio300s() != 0 {
		t.Errorf("BotRatio300s = %v, want 0", res.Metrics.BotRatio300s())
	}
}

// S2 — bot flag fires on the 3rd rapid trade by the same wallet.
func TestScenarioS2BotFlag(t *testing.T) {
	classifier := NewClassifier(DefaultClassifierParams())
	st := newState("M")

	st.Insert(buy(100, 5, "wA"), classifier)
	st.Insert(buy(102, 5, "wA"), classifier)
	res := st.Insert(buy(104, 5, "wA"), classifier)

	if res.Metrics.BotTrades300s != 1 {
		t.Errorf("BotTrades300s = %v, want 1 (only the 3rd trade is flagged so far)", res.Metrics.BotTrades300s)
	}
	if res.Metrics.BotWallets300s != 1 {
		t.Errorf("BotWallets300s = %v, want 1", res.Metrics.BotWallets300s)
	}
}

// S5 — window pruning: the first trade drops out of the 60s window
// once the second trade is 65s later.
func TestScenarioS5WindowPruning(t *testing.T) {
	classifier := NewClassifier(DefaultClassifierParams())
	st := newState("M")

	st.Insert(buy(0, 10, "wA"), classifier)
	res := st.Insert(buy(65, 10, "wB"), classifier)

	if res.Metrics.NetFlow60s != 10 {
		t.Errorf("NetFlow60s = %v, want 10 (first trade pruned)", res.Metrics.NetFlow60s)
	}
	if res.Metrics.NetFlow300s != 20 {
		t.Errorf("NetFlow300s = %v, want 20", res.Metrics.NetFlow300s)
	}
}

func TestBoundaryTradeExactlyAtWindowEdgeIncluded(t *testing.T) {
	classifier := NewClassifier(DefaultClassifierParams())
	st := newState("M")

	st.Insert(buy(0, 10, "wA"), classifier)
	// Second trade at t=60: now-ts = 60-0 = 60 == window span -> included.
	res := st.Insert(buy(60, 5, "wB"), classifier)

	if res.Metrics.NetFlow60s != 15 {
		t.Errorf("NetFlow60s = %v, want 15 (boundary trade included)", res.Metrics.NetFlow60s)
	}
}

func TestOutOfOrderWithinWindowAccepted(t *testing.T) {
	classifier := NewClassifier(DefaultClassifierParams())
	st := newState("M")

	st.Insert(buy(100, 10, "wA"), classifier)
	// Slightly out of order but within the window.
	res := st.Insert(buy(95, 5, "wB"), classifier)

	if res.Metrics.NetFlow300s != 15 {
		t.Errorf("NetFlow300s = %v, want 15", res.Metrics.NetFlow300s)
	}
}

func TestEventOutsideLargestWindowDiscarded(t *testing.T) {
	classifier := NewClassifier(DefaultClassifierParams())
	st := newState("M")

	st.Insert(buy(100000, 10, "wA"), classifier)
	res := st.Insert(buy(0, 5, "wB"), classifier) // far older than MaxWindowSeconds

	if res.Applied {
		t.Error("event older than the largest window should not apply")
	}
}

func TestUniqueWalletsAlwaysDominatesBotAndDCA(t *testing.T) {
	classifier := NewClassifier(DefaultClassifierParams())
	st := newState("M")

	evs := []trade.Event{
		buy(1, 5, "wA"),
		buy(2, 5, "wA"),
		buy(3, 5, "wA"), // flags wA as bot
		buy(4, 5, "wB"),
	}
	var last InsertResult
	for _, ev := range evs {
		last = st.Insert(ev, classifier)
	}

	if last.Metrics.UniqueWallets300s < last.Metrics.BotWallets300s {
		t.Error("invariant violated: unique_wallets_300s >= bot_wallets_300s")
	}
	if last.Metrics.UniqueWallets300s < last.Metrics.DCAUniqueWallets300s {
		t.Error("invariant violated: unique_wallets_300s >= dca_unique_wallets_300s")
	}
}

func TestDCARatioBoundedAndZeroWhenNoInflow(t *testing.T) {
	classifier := NewClassifier(DefaultClassifierParams())
	st := newState("M")

	res := st.Insert(sell(1, 5, "wA"), classifier)
	if res.Metrics.DCARatio300s != 0 {
		t.Errorf("DCARatio300s = %v, want 0 when no positive inflow", res.Metrics.DCARatio300s)
	}
	if res.Metrics.DCARatio300s < 0 || res.Metrics.DCARatio300s > 1 {
		t.Errorf("DCARatio300s out of [0,1]: %v", res.Metrics.DCARatio300s)
	}
}
