package models

// Tier is a subscription level governing quotas and model access.
// Tiers are ordered: Free < Starter < Pro < Premium.
type Tier int

const (
	TierFree Tier = iota
	TierStarter
	TierPro
	TierPremium
)

func (t Tier) String() string {
	switch t {
	case TierFree:
		return "free"
	case TierStarter:
		return "starter"
	case TierPro:
		return "pro"
	case TierPremium:
		return "premium"
	default:
		return "unknown"
	}
}

// ParseTier maps a tier name to its Tier value, defaulting to Free for
// anything unrecognized so a missing or corrupt subscription record can
// never grant elevated access.
func ParseTier(s string) Tier {
	switch s {
	case "starter":
		return TierStarter
	case "pro":
		return TierPro
	case "premium":
		return TierPremium
	default:
		return TierFree
	}
}

// AllTiers lists tiers in ascending order.
var AllTiers = []Tier{TierFree, TierStarter, TierPro, TierPremium}

// dailyLimits is the authoritative quota table: per tier, per capability,
// how many generations a user may run within one UTC day. A zero cap means
// the capability is unavailable to that tier. Caps are non-decreasing from
// Free to Premium for every capability.
var dailyLimits = map[Tier]map[Capability]int{
	TierFree: {
		CapabilityChat:      30,
		CapabilityImage:     3,
		CapabilityImageEdit: 3,
		CapabilityVideo:     0,
		CapabilityPPT:       1,
		CapabilityTTS:       5,
		CapabilityMusic:     0,
	},
	TierStarter: {
		CapabilityChat:      200,
		CapabilityImage:     20,
		CapabilityImageEdit: 20,
		CapabilityVideo:     3,
		CapabilityPPT:       5,
		CapabilityTTS:       20,
		CapabilityMusic:     5,
	},
	TierPro: {
		CapabilityChat:      1000,
		CapabilityImage:     100,
		CapabilityImageEdit: 100,
		CapabilityVideo:     10,
		CapabilityPPT:       20,
		CapabilityTTS:       100,
		CapabilityMusic:     20,
	},
	TierPremium: {
		CapabilityChat:      5000,
		CapabilityImage:     300,
		CapabilityImageEdit: 300,
		CapabilityVideo:     30,
		CapabilityPPT:       50,
		CapabilityTTS:       300,
		CapabilityMusic:     50,
	},
}

// monthlyTokenBudgets caps total completion-token spend per tier per month.
var monthlyTokenBudgets = map[Tier]int{
	TierFree:    100_000,
	TierStarter: 1_000_000,
	TierPro:     5_000_000,
	TierPremium: 20_000_000,
}

// minimumTiers gates capabilities that are unconditionally unavailable below
// a tier, checked before any quota lookup. Capabilities absent from this map
// are available from Free upward (quota permitting).
var minimumTiers = map[Capability]Tier{
	CapabilityVideo: TierStarter,
	CapabilityMusic: TierStarter,
}

// DailyLimit returns the daily generation cap for a tier and capability.
func DailyLimit(tier Tier, capability Capability) int {
	return dailyLimits[tier][capability]
}

// MonthlyTokenBudget returns the monthly token budget for a tier.
func MonthlyTokenBudget(tier Tier) int {
	return monthlyTokenBudgets[tier]
}

// MinimumTier returns the lowest tier allowed to use a capability.
func MinimumTier(capability Capability) Tier {
	if min, ok := minimumTiers[capability]; ok {
		return min
	}
	return TierFree
}

// Allows reports whether the tier meets the capability's minimum tier gate.
func (t Tier) Allows(capability Capability) bool {
	return t >= MinimumTier(capability)
}
