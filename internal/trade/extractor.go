package trade

import (
	"github.com/rs/zerolog/log"
)

const lamportsPerSol = 1_000_000_000

// maxTokenDecimals bounds a decoded instruction's token-decimals field;
// anything outside 0-18 means the venue variant decoded but produced
// internally inconsistent data.
const maxTokenDecimals = 18

// Extractor converts a decoded instruction + instruction metadata into
// a canonical Event. It never blocks and never returns a fatal error —
// every failure is one of the ExtractError kinds and is skipped by the
// caller.
type Extractor struct {
	// CountDegradedInFlow controls whether a trade whose SOL amount
	// came from the instruction-provided bound fallback (rather than a
	// located balance delta) counts toward rolling flow metrics. Open
	// Question in the spec; default true — the degraded trade is still
	// written, just flagged via Event.DegradedSolAmount.
	CountDegradedInFlow bool
}

// NewExtractor creates an Extractor with the default policy (degraded
// trades count toward flow).
func NewExtractor() *Extractor {
	return &Extractor{CountDegradedInFlow: true}
}

// Extract produces a canonical Event from a decoded instruction, or
// (nil, nil) if the trade is not actionable (zero SOL after
// reconstruction), or (nil, *ExtractError) for a recognized, non-fatal
// failure.
func (x *Extractor) Extract(di DecodedInstruction, meta InstructionMetadata) (*Event, error) {
	if !validPubkey(di.Mint) {
		log.Debug().Str("mint", di.Mint).Msg("extractor: mint does not decode as a base58 pubkey, carrying it through as-is")
	}
	if !validPubkey(di.UserAccount) {
		log.Debug().Str("user", di.UserAccount).Msg("extractor: user account does not decode as a base58 pubkey, carrying it through as-is")
	}

	decimals := DefaultImplicitDecimals
	if di.TokenDecimals != nil {
		decimals = *di.TokenDecimals
		if decimals < 0 || decimals > maxTokenDecimals {
			return nil, newExtractErr(DecodeMismatch, "token decimals out of range")
		}
	}

	ev := &Event{
		Timestamp:     meta.BlockTime,
		Mint:          di.Mint,
		Wallet:        di.UserAccount,
		Direction:     di.Venue.Direction(),
		TokenAmount:   rawToDecimal(di.TokenAmountRaw, decimals),
		TokenDecimals: decimals,
		SourceProgram: di.SourceProgram,
		TxSignature:   meta.TxSignature,
	}

	if di.Venue.IsExplicit() {
		ev.SolAmount = float64(di.ExplicitSolLamports) / lamportsPerSol
	} else {
		sol, degraded, err := x.reconstructSol(di, meta)
		if err != nil {
			return nil, err
		}
		ev.SolAmount = sol
		ev.DegradedSolAmount = degraded
	}

	if ev.SolAmount <= 0 {
		// Not-a-trade: either genuinely zero, or reconstruction
		// produced nothing usable.
		return nil, nil
	}
	if ev.DegradedSolAmount && !x.CountDegradedInFlow {
		return nil, nil
	}

	return ev, nil
}

// reconstructSol computes delta_lamports = |post - pre| + fee (if the
// user is the fee payer), converted to SOL. If the user pubkey can't
// be located in the transaction's account-key list, it falls back to
// an instruction-provided bound and marks the result degraded.
func (x *Extractor) reconstructSol(di DecodedInstruction, meta InstructionMetadata) (sol float64, degraded bool, err error) {
	if di.UserAccount == "" {
		return 0, false, newExtractErr(MalformedPayload, "missing user account in decoded instruction")
	}

	if len(meta.AccountKeys) != len(meta.PreBalances) || len(meta.AccountKeys) != len(meta.PostBalances) {
		return 0, false, newExtractErr(MalformedPayload, "account key / balance slice length mismatch")
	}

	idx := findAccountIndex(meta.AccountKeys, di.UserAccount)
	if idx < 0 {
		log.Debug().
			Str("user", di.UserAccount).
			Str("program", di.SourceProgram).
			Msg("extractor: user account not found in transaction keys, falling back to instruction bound (degraded)")

		bound := di.MaxQuoteInLamports
		if di.Venue == ImplicitSell {
			bound = di.MinQuoteOutLamports
		}
		if bound == 0 {
			return 0, false, newExtractErr(NoUserAccount, "user account absent and no fallback bound provided")
		}
		return float64(bound) / lamportsPerSol, true, nil
	}

	pre := meta.PreBalances[idx]
	post := meta.PostBalances[idx]

	var delta uint64
	if post >= pre {
		delta = post - pre
	} else {
		delta = pre - post
	}

	if idx == 0 {
		// User is the fee payer: the fee is part of their lamport
		// movement but not part of the swap's economic SOL amount on
		// the receiving/spending side computed by |post-pre| alone,
		// since the balance already reflects the fee debit. Per spec:
		// delta_lamports = |post - pre| + fee_if_user_is_fee_payer.
		delta += meta.Fee
	}

	if delta == 0 {
		return 0, false, nil
	}

	return float64(delta) / lamportsPerSol, false, nil
}

func rawToDecimal(raw uint64, decimals int) float64 {
	if decimals <= 0 {
		return float64(raw)
	}
	divisor := 1.0
	for i := 0; i < decimals; i++ {
		divisor *= 10
	}
	return float64(raw) / divisor
}
