package auth

// Entitlement holds the per-tier usage allowances.
type Entitlement struct {
	// MaxMessagesPerDay caps user turns in a rolling 24 hour window.
	MaxMessagesPerDay int
}

// Entitlements maps service tiers to their allowances.
type Entitlements map[string]Entitlement

// DefaultEntitlements returns the built-in tier allowances.
func DefaultEntitlements() Entitlements {
	return Entitlements{
		TierGuest:   {MaxMessagesPerDay: 20},
		TierRegular: {MaxMessagesPerDay: 100},
	}
}

// MaxMessagesPerDay returns the allowance for the tier. Unknown tiers
// fall back to the guest allowance.
func (e Entitlements) MaxMessagesPerDay(tier string) int {
	if ent, ok := e[tier]; ok {
		return ent.MaxMessagesPerDay
	}
	return e[TierGuest].MaxMessagesPerDay
}
