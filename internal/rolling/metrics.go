package rolling

// Metrics is the immutable snapshot produced per update. Values are
// copied out of the state entry's lock, never shared by reference
// across task boundaries.
type Metrics struct {
	Mint      string
	UpdatedAt int64

	NetFlow60s    float64
	NetFlow300s   float64
	NetFlow900s   float64
	NetFlow3600s  float64
	NetFlow7200s  float64
	NetFlow14400s float64

	UniqueWallets300s    int
	BotWallets300s       int
	BotTrades300s        int
	BotFlow300s          float64
	DCAFlow300s          float64
	DCAUniqueWallets300s int
	DCARatio300s         float64

	TotalTrades300s int

	UniqueWallets60s int
	TotalTrades60s   int
}

// NetFlowFor returns the net flow for the given window span in
// seconds, or 0 if span isn't one of the tracked Windows.
func (m Metrics) NetFlowFor(span int64) float64 {
	switch span {
	case 60:
		return m.NetFlow60s
	case 300:
		return m.NetFlow300s
	case 900:
		return m.NetFlow900s
	case 3600:
		return m.NetFlow3600s
	case 7200:
		return m.NetFlow7200s
	case 14400:
		return m.NetFlow14400s
	default:
		return 0
	}
}

// BotRatio300s returns bot_trades_300s / max(1, total_trades_300s).
func (m Metrics) BotRatio300s() float64 {
	denom := m.TotalTrades300s
	if denom < 1 {
		denom = 1
	}
	return float64(m.BotTrades300s) / float64(denom)
}

func computeMetrics(mint string, now int64, windowBuf [6][]entry) Metrics {
	m := Metrics{Mint: mint, UpdatedAt: now}

	for i, span := range Windows {
		var flow float64
		for _, e := range windowBuf[i] {
			flow += e.signedFlow()
		}
		switch span {
		case 60:
			m.NetFlow60s = flow
		case 300:
			m.NetFlow300s = flow
		case 900:
			m.NetFlow900s = flow
		case 3600:
			m.NetFlow3600s = flow
		case 7200:
			m.NetFlow7200s = flow
		case 14400:
			m.NetFlow14400s = flow
		}
	}

	buf300 := windowBuf[windowIndex(300)]
	m.TotalTrades300s = len(buf300)

	buf60 := windowBuf[windowIndex(60)]
	m.TotalTrades60s = len(buf60)
	uniqueWallets60 := make(map[string]struct{})
	for _, e := range buf60 {
		uniqueWallets60[e.wallet] = struct{}{}
	}
	m.UniqueWallets60s = len(uniqueWallets60)

	uniqueWallets := make(map[string]struct{})
	botWallets := make(map[string]struct{})
	dcaWallets := make(map[string]struct{})

	var botFlow, dcaFlow, totalPositiveInflow, dcaPositiveInflow float64
	var botTrades int

	for _, e := range buf300 {
		uniqueWallets[e.wallet] = struct{}{}

		if e.isBot {
			botWallets[e.wallet] = struct{}{}
			botTrades++
			botFlow += e.signedFlow()
		}
		if e.isDCA {
			dcaWallets[e.wallet] = struct{}{}
			dcaFlow += e.signedFlow()
		}
		if e.signedFlow() > 0 {
			totalPositiveInflow += e.signedFlow()
			if e.isDCA {
				dcaPositiveInflow += e.signedFlow()
			}
		}
	}

	m.UniqueWallets300s = len(uniqueWallets)
	m.BotWallets300s = len(botWallets)
	m.BotTrades300s = botTrades
	m.BotFlow300s = botFlow
	m.DCAFlow300s = dcaFlow
	m.DCAUniqueWallets300s = len(dcaWallets)

	if totalPositiveInflow > 0 {
		m.DCARatio300s = dcaPositiveInflow / totalPositiveInflow
	}

	return m
}

func windowIndex(span int64) int {
	for i, s := range Windows {
		if s == span {
			return i
		}
	}
	return -1
}
