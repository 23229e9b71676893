package trade

import "fmt"

// ExtractErrorKind enumerates the non-fatal extraction failure kinds.
// All are skip-the-instruction outcomes; none propagate beyond the
// extractor.
type ExtractErrorKind int

const (
	// NoUserAccount means the user pubkey could not be located in the
	// transaction's static account-key list.
	NoUserAccount ExtractErrorKind = iota
	// MalformedPayload means the instruction payload could not be
	// decoded into the expected venue shape.
	MalformedPayload
	// DecodeMismatch means the venue variant decoded but produced
	// internally inconsistent data (e.g. token decimals outside 0-18).
	DecodeMismatch
)

func (k ExtractErrorKind) String() string {
	switch k {
	case NoUserAccount:
		return "NoUserAccount"
	case MalformedPayload:
		return "MalformedPayload"
	case DecodeMismatch:
		return "DecodeMismatch"
	default:
		return "Unknown"
	}
}

// ExtractError is returned by Extractor.Extract for any recognized,
// non-fatal failure. Callers log and skip; they never propagate it.
type ExtractError struct {
	Kind ExtractErrorKind
	Msg  string
}

func (e *ExtractError) Error() string {
	if e.Msg == "" {
		return "extract: " + e.Kind.String()
	}
	return fmt.Sprintf("extract: %s: %s", e.Kind, e.Msg)
}

func newExtractErr(kind ExtractErrorKind, msg string) *ExtractError {
	return &ExtractError{Kind: kind, Msg: msg}
}
