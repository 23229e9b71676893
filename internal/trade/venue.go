package trade

// VenueCase identifies which of the five recognized swap-instruction
// shapes a decoded instruction matches. Direction and SOL-amount
// handling both depend on it.
type VenueCase int

const (
	// ExplicitBuy carries the SOL amount directly in the payload.
	ExplicitBuy VenueCase = iota
	// ExplicitSell carries the SOL amount directly in the payload.
	ExplicitSell
	// ImplicitBuy requires SOL-delta reconstruction from balances.
	ImplicitBuy
	// ImplicitSell requires SOL-delta reconstruction from balances.
	ImplicitSell
	// ImplicitBuyExactQuoteIn is a buy variant common on one AMM venue
	// (exact-quote-in swaps) that also requires SOL-delta reconstruction.
	ImplicitBuyExactQuoteIn
)

// Direction returns the trade direction implied by the venue case.
func (v VenueCase) Direction() Direction {
	switch v {
	case ExplicitSell, ImplicitSell:
		return Sell
	default:
		return Buy
	}
}

// IsExplicit reports whether the venue case carries the SOL amount
// directly in the instruction payload (no reconstruction needed).
func (v VenueCase) IsExplicit() bool {
	return v == ExplicitBuy || v == ExplicitSell
}

// DefaultImplicitDecimals is the token-decimals default for the AMM
// venue whose implicit instructions don't carry a decimals field.
const DefaultImplicitDecimals = 6

// DCAProgramID is the known DCA venue program tag. Trades whose
// SourceProgram equals this are flagged IsDCA regardless of direction
// or size.
const DCAProgramID = "DCA265Vj8a9CEuX1eb1LWRnDT7uK6q1xMipnNyatn23M"

// DecodedInstruction is what the upstream decoder layer hands the
// extractor for each recognized swap instruction: the venue shape plus
// whatever the instruction payload itself carries. Account fields hold
// base58 pubkeys; the extractor never assumes a fixed index for any of
// them — only instruction-metadata.AccountKeys has positional meaning,
// and that's the transaction's own key list, not this struct.
type DecodedInstruction struct {
	Venue         VenueCase
	Mint          string
	UserAccount   string // the trader's wallet pubkey, per this venue's arrange-accounts contract
	SourceProgram string

	// ExplicitSolLamports is set only for ExplicitBuy/ExplicitSell.
	ExplicitSolLamports uint64

	TokenAmountRaw uint64
	// TokenDecimals is a pointer so "not present" is distinguishable
	// from "zero decimals".
	TokenDecimals *int

	// MaxQuoteInLamports / MinQuoteOutLamports are the instruction-
	// provided bounds used as a fallback SOL amount when the user
	// account can't be located in the transaction's key list.
	MaxQuoteInLamports  uint64
	MinQuoteOutLamports uint64
}

// InstructionMetadata is the transaction-level context the extractor
// needs to reconstruct a SOL delta: balances and keys are positional
// within this struct (by transaction account order), never assumed
// positional within DecodedInstruction.
type InstructionMetadata struct {
	TxSignature string
	BlockTime   int64
	Fee         uint64 // lamports, charged to AccountKeys[0] (the fee payer)

	// AccountKeys is the ordered list of static account public keys for
	// the transaction. Index 0 is always the fee payer, per Solana
	// transaction convention.
	AccountKeys  []string
	PreBalances  []uint64
	PostBalances []uint64
}

// findAccountIndex locates pubkey within keys by equality, never by a
// fixed offset. Returns -1 if absent.
func findAccountIndex(keys []string, pubkey string) int {
	for i, k := range keys {
		if k == pubkey {
			return i
		}
	}
	return -1
}
