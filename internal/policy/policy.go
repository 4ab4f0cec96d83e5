// Package policy holds the tiered security-requirement rules for transfers.
// The rules are pure functions so they stay centralized and testable.
package policy

// Tier is the verification strength required before a transfer may be
// finalized. Ordering matters: a higher tier subsumes a lower one.
type Tier int

const (
	TierNone Tier = iota
	TierDocument
	TierLiveness
)

// Amounts are minor units (cents).
const (
	DocumentThreshold int64 = 50_00
	LivenessThreshold int64 = 200_00
)

// TierFor maps a transfer amount to its required verification tier. Lower
// bounds are inclusive. Negative and zero amounts are rejected by input
// validation before this is consulted.
func TierFor(amount int64) Tier {
	switch {
	case amount >= LivenessThreshold:
		return TierLiveness
	case amount >= DocumentThreshold:
		return TierDocument
	default:
		return TierNone
	}
}

func (t Tier) String() string {
	switch t {
	case TierDocument:
		return "document"
	case TierLiveness:
		return "liveness"
	default:
		return "none"
	}
}
