package recommend

import "github.com/shopspring/decimal"

// AnnualizationFactor converts monthly amounts (user income, rewards) into
// the annual figures the catalog and the yearly estimate use.
const AnnualizationFactor = 12

var annualization = decimal.NewFromInt(AnnualizationFactor)

// FilterResult is the outcome of one filtering pass.
type FilterResult struct {
	// Eligible is a subsequence of the catalog, in catalog order.
	Eligible []CardRecord
	// Skipped holds the records excluded for data quality reasons.
	Skipped []DataQualityFault
}

// Eligibility records each check made for a card against a profile.
type Eligibility struct {
	AnnualIncome   decimal.Decimal `json:"annual_income"`
	MinIncome      decimal.Decimal `json:"min_income"`
	IncomeOK       bool            `json:"income_ok"`
	CreditScore    int             `json:"credit_score"`
	MinCreditScore Optional[int]   `json:"min_credit_score"`
	CreditScoreOK  bool            `json:"credit_score_ok"`
	RewardType     string          `json:"reward_type"`
	RewardTypeOK   bool            `json:"reward_type_ok"`
}

// Eligible reports whether every check passed.
func (e Eligibility) Eligible() bool {
	return e.IncomeOK && e.CreditScoreOK && e.RewardTypeOK
}

// Explain evaluates the income, credit score and reward type conditions for
// one card. A card without a minimum income never passes the income check.
func Explain(profile UserProfile, card CardRecord) Eligibility {
	annual := profile.AnnualIncome()
	e := Eligibility{
		AnnualIncome:   annual,
		MinIncome:      card.MinIncome.Decimal,
		IncomeOK:       card.MinIncome.Valid && card.MinIncome.Decimal.LessThanOrEqual(annual),
		CreditScore:    profile.CreditScore,
		MinCreditScore: card.MinCreditScore,
		CreditScoreOK:  true,
		RewardType:     card.RewardType,
		RewardTypeOK:   MatchRewardType(profile.PreferredRewardType, card.RewardType),
	}
	if minScore, ok := card.MinCreditScore.Get(); ok {
		e.CreditScoreOK = profile.CreditScore >= minScore
	}
	return e
}

// FilterEligible returns the cards the profile qualifies for, preserving
// catalog order. Records that fail QualityFaults are reported in Skipped
// instead of aborting the pass. An empty catalog yields an empty result.
func FilterEligible(profile UserProfile, catalog []CardRecord) FilterResult {
	res := FilterResult{Eligible: make([]CardRecord, 0, len(catalog))}
	for _, card := range catalog {
		if faults := card.QualityFaults(); len(faults) > 0 {
			res.Skipped = append(res.Skipped, faults...)
			continue
		}
		if Explain(profile, card).Eligible() {
			res.Eligible = append(res.Eligible, card)
		}
	}
	return res
}
