package recommend

import "github.com/shopspring/decimal"

// RewardEstimate values one card for one profile. Amounts are exact; no
// rounding is applied.
type RewardEstimate struct {
	// Breakdown has an entry for every category in the profile's spend,
	// including zero contributions. Card-only categories are omitted.
	Breakdown map[Category]decimal.Decimal
	Monthly   decimal.Decimal
	Yearly    decimal.Decimal
}

// EstimateReward computes spend * rate / 100 per category and the monthly
// and yearly totals.
func EstimateReward(profile UserProfile, card CardRecord) RewardEstimate {
	est := RewardEstimate{
		Breakdown: make(map[Category]decimal.Decimal, len(profile.CategorySpend)),
		Monthly:   decimal.Zero,
	}
	for cat, spend := range profile.CategorySpend {
		// rates are whole percentages; Shift(-2) divides by 100 exactly
		contribution := spend.Mul(card.Rate(cat)).Shift(-2)
		est.Breakdown[cat] = contribution
		est.Monthly = est.Monthly.Add(contribution)
	}
	est.Yearly = est.Monthly.Mul(annualization)
	return est
}
