package recommend

import "strings"

// NoRewardFilter is the preference value that disables reward-type filtering.
const NoRewardFilter = "All"

// IsNoRewardFilter reports whether a preference means "any reward type".
func IsNoRewardFilter(preference string) bool {
	p := strings.TrimSpace(preference)
	return p == "" || strings.EqualFold(p, NoRewardFilter)
}

// MatchRewardType reports whether a card's reward label satisfies a
// preference. Matching is a case-insensitive contains, so "cash" matches
// "Cashback Plus".
func MatchRewardType(preference, label string) bool {
	if IsNoRewardFilter(preference) {
		return true
	}
	return strings.Contains(strings.ToLower(label), strings.ToLower(strings.TrimSpace(preference)))
}
