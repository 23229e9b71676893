package signals

import (
	"math"
	"sort"

	"github.com/dmittakarin8/solflow/internal/rolling"
	"github.com/dmittakarin8/solflow/internal/trade"
)

func ratio(num, denomFloor float64, denom float64) float64 {
	d := denom
	if d < denomFloor {
		d = denomFloor
	}
	return num / d
}

// detectBreakout fires on accelerating inflow across all three short
// windows with a broad, mostly-organic wallet base.
func detectBreakout(m rolling.Metrics, _ []trade.Event) (Signal, bool) {
	botRatio := m.BotRatio300s()

	if !(m.NetFlow300s > m.NetFlow900s &&
		m.NetFlow60s > m.NetFlow300s &&
		m.UniqueWallets300s >= 5 &&
		botRatio <= 0.3) {
		return Signal{}, false
	}

	accel := clamp01(ratio(m.NetFlow300s-m.NetFlow900s, 1, math.Abs(m.NetFlow900s)))
	momentum := clamp01(ratio(m.NetFlow60s, 1, m.NetFlow300s))
	wallet := clamp01(float64(m.UniqueWallets300s) / 20)

	strength := 0.3*accel + 0.3*momentum + 0.2*wallet + 0.2*(1-botRatio)

	return newSignal(m.Mint, Breakout, strength, "60s", m.UpdatedAt, map[string]any{
		"net_flow_60s":      m.NetFlow60s,
		"net_flow_300s":     m.NetFlow300s,
		"net_flow_900s":     m.NetFlow900s,
		"unique_wallets":    m.UniqueWallets300s,
		"bot_ratio":         botRatio,
	}), true
}

// detectReaccumulation fires when recognized DCA flow is driving a
// positive, accelerating 300s window.
func detectReaccumulation(m rolling.Metrics, _ []trade.Event) (Signal, bool) {
	if !(m.DCAFlow300s > 0 &&
		m.DCAUniqueWallets300s >= 2 &&
		m.NetFlow300s > 0 &&
		m.NetFlow300s > m.NetFlow900s) {
		return Signal{}, false
	}

	strength := 0.3*clamp01(m.DCAFlow300s/10) +
		0.2*clamp01(float64(m.DCAUniqueWallets300s)/5) +
		0.3*clamp01(m.NetFlow300s/50) +
		0.2*clamp01(ratio(m.NetFlow300s-m.NetFlow900s, 1, math.Abs(m.NetFlow900s)))

	return newSignal(m.Mint, Reaccumulation, strength, "300s", m.UpdatedAt, map[string]any{
		"dca_flow_300s":     m.DCAFlow300s,
		"dca_wallets_300s":  m.DCAUniqueWallets300s,
		"net_flow_300s":     m.NetFlow300s,
		"net_flow_900s":     m.NetFlow900s,
		"dca_ratio_300s":    m.DCARatio300s,
	}), true
}

// detectFocusedBuyers fires when a small fraction of buyers account
// for most of the positive inflow over the last 300s.
func detectFocusedBuyers(m rolling.Metrics, trades300s []trade.Event) (Signal, bool) {
	if m.NetFlow300s <= 0 {
		return Signal{}, false
	}

	inflowByWallet := make(map[string]float64)
	var totalInflow float64
	for _, ev := range trades300s {
		if ev.Direction != trade.Buy {
			continue
		}
		inflowByWallet[ev.Wallet] += ev.SolAmount
		totalInflow += ev.SolAmount
	}

	totalBuyers := len(inflowByWallet)
	if totalBuyers == 0 || totalInflow <= 0 {
		return Signal{}, false
	}

	inflows := make([]float64, 0, totalBuyers)
	for _, v := range inflowByWallet {
		inflows = append(inflows, v)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(inflows)))

	threshold := 0.7 * totalInflow
	var cumulative float64
	kMin := totalBuyers
	for i, v := range inflows {
		cumulative += v
		if cumulative >= threshold {
			kMin = i + 1
			break
		}
	}

	fScore := float64(kMin) / float64(totalBuyers)
	if fScore > 0.35 {
		return Signal{}, false
	}

	strength := 0.6*(1-fScore/0.35) + 0.4*clamp01(m.NetFlow300s/50)

	return newSignal(m.Mint, FocusedBuyers, strength, "300s", m.UpdatedAt, map[string]any{
		"f_score":        fScore,
		"wallets_needed": kMin,
		"total_wallets":  totalBuyers,
		"net_flow_300s":  m.NetFlow300s,
		"total_inflow":   totalInflow,
	}), true
}

// detectPersistence fires on a sustained, broad, mostly-organic
// positive flow across all three short windows.
func detectPersistence(m rolling.Metrics, _ []trade.Event) (Signal, bool) {
	botRatio := m.BotRatio300s()

	if !(m.NetFlow60s > 0 && m.NetFlow300s > 0 && m.NetFlow900s > 0 &&
		m.UniqueWallets300s >= 5 &&
		botRatio <= 0.4) {
		return Signal{}, false
	}

	strength := 0.3*(1-ratio(math.Abs(m.NetFlow60s-m.NetFlow300s), 1, m.NetFlow300s)) +
		0.3*clamp01(m.NetFlow900s/100) +
		0.2*clamp01(float64(m.UniqueWallets300s)/20) +
		0.2*(1-botRatio)

	return newSignal(m.Mint, Persistence, strength, "300s", m.UpdatedAt, map[string]any{
		"net_flow_60s":   m.NetFlow60s,
		"net_flow_300s":  m.NetFlow300s,
		"net_flow_900s":  m.NetFlow900s,
		"unique_wallets": m.UniqueWallets300s,
		"bot_ratio":      botRatio,
	}), true
}

// detectFlowReversal fires when a short, narrow burst of selling flips
// an otherwise positive 300s window negative at the 60s horizon.
func detectFlowReversal(m rolling.Metrics, _ []trade.Event) (Signal, bool) {
	walletsPerTrade := ratio(float64(m.UniqueWallets60s), 1, float64(m.TotalTrades60s))

	if !(m.NetFlow60s < 0 &&
		m.NetFlow300s > 0 &&
		walletsPerTrade < 0.5) {
		return Signal{}, false
	}

	strength := 0.6*clamp01(ratio(m.NetFlow300s-m.NetFlow60s, 1, math.Abs(m.NetFlow300s))) +
		0.4*clamp01(m.NetFlow300s/50)

	return newSignal(m.Mint, FlowReversal, strength, "60s", m.UpdatedAt, map[string]any{
		"net_flow_60s":      m.NetFlow60s,
		"net_flow_300s":     m.NetFlow300s,
		"unique_wallets_60s": m.UniqueWallets60s,
		"trades_60s":        m.TotalTrades60s,
		"wallets_per_trade": walletsPerTrade,
	}), true
}
