// Package console is the operator terminal UI: a live ranking of mints
// by net flow, a feed of recent signal firings, and write-queue
// health, rendered with bubbletea/lipgloss the way the
// project's other terminal tooling is built.
package console

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"
)

const mintColumnWidth = 44

// MintRow is one ranked entry in the flow table.
type MintRow struct {
	Mint              string
	NetFlow300s       float64
	UniqueWallets300s int
	BotRatio300s      float64
}

// SignalRow is one recent signal firing.
type SignalRow struct {
	Mint      string
	Kind      string
	Strength  float64
	WindowTag string
	Timestamp int64
}

// Snapshot is everything the console renders for one refresh tick.
type Snapshot struct {
	Mints         []MintRow
	Signals       []SignalRow
	QueueDepth    int
	QueueDropped  uint64
	WriterHealthy bool
}

// Provider supplies the console's periodic snapshot. Implementations
// must not block meaningfully — the console calls this on every
// refresh tick from its own event loop.
type Provider interface {
	Snapshot() Snapshot
}

// Model is the bubbletea model for the console.
type Model struct {
	provider      Provider
	refreshEvery  time.Duration
	topN          int
	width, height int
	latest        Snapshot
	quitting      bool
}

// New creates a console Model polling provider every refreshEvery,
// showing up to topN ranked mints.
func New(provider Provider, refreshEvery time.Duration, topN int) Model {
	if topN <= 0 {
		topN = 20
	}
	return Model{provider: provider, refreshEvery: refreshEvery, topN: topN}
}

type tickMsg time.Time

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.refreshNow(), m.scheduleTick())
}

func (m Model) scheduleTick() tea.Cmd {
	return tea.Tick(m.refreshEvery, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) refreshNow() tea.Cmd {
	return func() tea.Msg { return m.provider.Snapshot() }
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tickMsg:
		return m, tea.Batch(m.refreshNow(), m.scheduleTick())
	case Snapshot:
		m.latest = msg
	}
	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(StyleHeader.Render("solflow — live mint flow") + "\n\n")
	b.WriteString(m.renderMintTable())
	b.WriteString("\n")
	b.WriteString(m.renderSignalFeed())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())

	return StylePage.Render(b.String())
}

func (m Model) renderMintTable() string {
	header := StyleTableHeader.Render(fmt.Sprintf("%-44s %12s %8s %8s", "mint", "net_flow_300s", "wallets", "bot_ratio"))

	rows := m.latest.Mints
	if len(rows) > m.topN {
		rows = rows[:m.topN]
	}

	var lines []string
	lines = append(lines, header)
	for _, r := range rows {
		style := StyleProfit
		if r.NetFlow300s < 0 {
			style = StyleLoss
		}
		lines = append(lines, style.Render(fmt.Sprintf("%-44s %12.2f %8d %7.0f%%",
			truncateMint(r.Mint), r.NetFlow300s, r.UniqueWallets300s, r.BotRatio300s*100)))
	}
	if len(rows) == 0 {
		lines = append(lines, StyleFooter.Render("(no mints tracked yet)"))
	}

	return StylePanel.Render(strings.Join(lines, "\n"))
}

func (m Model) renderSignalFeed() string {
	header := StyleTableHeader.Render(fmt.Sprintf("%-44s %-16s %8s %6s", "mint", "signal", "strength", "window"))

	var lines []string
	lines = append(lines, header)
	for _, s := range m.latest.Signals {
		lines = append(lines, fmt.Sprintf("%-44s %-16s %8.2f %6s", truncateMint(s.Mint), s.Kind, s.Strength, s.WindowTag))
	}
	if len(m.latest.Signals) == 0 {
		lines = append(lines, StyleFooter.Render("(no signals fired recently)"))
	}

	return StylePanel.Render(strings.Join(lines, "\n"))
}

func truncateMint(mint string) string {
	return runewidth.Truncate(mint, mintColumnWidth, "…")
}

func (m Model) renderFooter() string {
	writerState := StyleProfit.Render("writer ok")
	if !m.latest.WriterHealthy {
		writerState = StyleWarn.Render("writer degraded")
	}

	return StyleFooter.Render(fmt.Sprintf("queue depth=%d dropped=%d  %s  [q] quit",
		m.latest.QueueDepth, m.latest.QueueDropped, writerState))
}
