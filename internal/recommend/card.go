package recommend

import (
	"github.com/shopspring/decimal"
)

// CardRecord is one catalog entry. The engine only reads it.
type CardRecord struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Issuer string `json:"issuer"`

	// MinIncome is the minimum annual income. Invalid means the record is
	// missing a required field.
	MinIncome      decimal.NullDecimal `json:"min_income"`
	MinCreditScore Optional[int]       `json:"min_credit_score"`
	RewardType     string              `json:"reward_type"`
	// RewardRates maps a category to a whole-number percentage (0–100).
	RewardRates map[Category]decimal.Decimal `json:"reward_rates"`

	AnnualFee    decimal.Decimal `json:"annual_fee"`
	SpecialPerks []string        `json:"special_perks"`
	ApplyLink    string          `json:"apply_link"`
	ImageURL     string          `json:"image_url"`

	// MalformedFields names source fields that were present but could not be
	// read as numbers. Sources fill it instead of guessing a value.
	MalformedFields []string `json:"malformed_fields,omitempty"`
}

// Rate returns the card's percentage for a category, zero when absent.
func (c CardRecord) Rate(cat Category) decimal.Decimal {
	if r, ok := c.RewardRates[cat]; ok {
		return r
	}
	return decimal.Zero
}

var maxRate = decimal.NewFromInt(100)

// QualityFaults lists the problems that keep the record out of a filtering
// pass. A nil result means the record is usable.
func (c CardRecord) QualityFaults() []DataQualityFault {
	var faults []DataQualityFault
	fault := func(field, reason string) {
		faults = append(faults, DataQualityFault{CardID: c.ID, CardName: c.Name, Field: field, Reason: reason})
	}

	malformed := make(map[string]bool, len(c.MalformedFields))
	for _, field := range c.MalformedFields {
		malformed[field] = true
		fault(field, "is not numeric")
	}

	switch {
	case malformed["min_income"]:
	case !c.MinIncome.Valid:
		fault("min_income", "is missing")
	case c.MinIncome.Decimal.IsNegative():
		fault("min_income", "is negative")
	}

	if score, ok := c.MinCreditScore.Get(); ok && score < 0 {
		fault("min_credit_score", "is negative")
	}

	for _, cat := range sortedCategories(c.RewardRates) {
		r := c.RewardRates[cat]
		if r.IsNegative() || r.GreaterThan(maxRate) {
			fault("reward_rates."+string(cat), "is outside 0-100")
		}
	}
	return faults
}
