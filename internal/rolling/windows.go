// Package rolling maintains per-mint sliding windows of flow and wallet
// activity, derives RollingMetrics snapshots, and applies bot/DCA
// classification during insertion.
package rolling

// Windows are the six durations (seconds) every mint's state tracks.
var Windows = [6]int64{60, 300, 900, 3600, 7200, 14400}

// WalletActivityWindowSeconds is the fixed scope of per-wallet recent
// trade tracking (always the 300s window).
const WalletActivityWindowSeconds = 300

// MaxWindowSeconds is the largest window any buffer tracks. Events
// older than now - MaxWindowSeconds are discarded from all windows.
const MaxWindowSeconds = 14400
