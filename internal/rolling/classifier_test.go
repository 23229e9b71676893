package rolling

import (
	"testing"

	"github.com/dmittakarin8/solflow/internal/trade"
)

func TestClassifyBotMevOpposingDirection(t *testing.T) {
	c := NewClassifier(DefaultClassifierParams())
	activity := newWalletActivity("wA")
	activity.append(walletTrade{timestamp: 10, solAmount: 5, direction: trade.Buy})

	// A sell 1s later, opposing the existing buy, within the 2s MEV window.
	if !c.ClassifyBot(activity, 11, trade.Sell) {
		t.Error("expected bot flag on opposing-direction round trip within 2s")
	}
}

func TestClassifyBotMevRequiresWithinWindow(t *testing.T) {
	c := NewClassifier(DefaultClassifierParams())
	activity := newWalletActivity("wA")
	activity.append(walletTrade{timestamp: 10, solAmount: 5, direction: trade.Buy})

	// 5s later is outside the 2s MEV window and below the rapid-trade threshold.
	if c.ClassifyBot(activity, 15, trade.Sell) {
		t.Error("did not expect bot flag outside the MEV window")
	}
}

func TestClassifyBotNilActivity(t *testing.T) {
	c := NewClassifier(DefaultClassifierParams())
	if c.ClassifyBot(nil, 0, trade.Buy) {
		t.Error("nil activity must never be flagged as a bot")
	}
}

func TestClassifyDCA(t *testing.T) {
	if !ClassifyDCA(trade.DCAProgramID) {
		t.Error("expected the DCA program id to classify as DCA")
	}
	if ClassifyDCA("RaydiumV4") {
		t.Error("did not expect an unrelated program to classify as DCA")
	}
}
