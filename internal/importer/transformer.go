package importer

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ajharbinger/card-recommender/internal/recommend"
)

var numberNoise = regexp.MustCompile(`(?i)^(rs\.?|inr|usd)|[,\s%₹$€£]`)

// Scores are stored in an INTEGER column
var (
	minScoreCell = decimal.NewFromInt(math.MinInt32)
	maxScoreCell = decimal.NewFromInt(math.MaxInt32)
)

// Transformer converts parsed rows to catalog records
type Transformer struct{}

// NewTransformer creates a new transformer instance
func NewTransformer() *Transformer {
	return &Transformer{}
}

// TransformToCard converts a RawCard to a CardRecord. Cells that are
// present but not numeric are listed in MalformedFields; blank cells and
// "N/A" are treated as absent.
func (t *Transformer) TransformToCard(raw RawCard, defaultIssuer string) recommend.CardRecord {
	card := recommend.CardRecord{
		Name:         raw.Name,
		Issuer:       raw.Issuer,
		RewardType:   raw.RewardType,
		RewardRates:  make(map[recommend.Category]decimal.Decimal, len(raw.Rates)),
		SpecialPerks: raw.SpecialPerks,
		ApplyLink:    raw.ApplyLink,
		ImageURL:     raw.ImageURL,
	}
	if card.Issuer == "" {
		card.Issuer = defaultIssuer
	}

	malformed := func(field string) {
		card.MalformedFields = append(card.MalformedFields, field)
	}

	if v, ok, err := parseAmount(raw.MinIncome); err != nil {
		malformed("min_income")
	} else if ok {
		card.MinIncome = decimal.NewNullDecimal(v)
	}

	if v, ok, err := parseAmount(raw.MinCreditScore); err != nil {
		malformed("min_credit_score")
	} else if ok {
		if !v.IsInteger() || v.LessThan(minScoreCell) || v.GreaterThan(maxScoreCell) {
			malformed("min_credit_score")
		} else {
			card.MinCreditScore = recommend.Some(int(v.IntPart()))
		}
	}

	if v, ok, err := parseAmount(raw.AnnualFee); err != nil {
		if isFree(raw.AnnualFee) {
			card.AnnualFee = decimal.Zero
		} else {
			malformed("annual_fee")
		}
	} else if ok {
		card.AnnualFee = v
	}

	for _, cat := range sortedRateKeys(raw.Rates) {
		v, ok, err := parseAmount(raw.Rates[cat])
		if err != nil {
			malformed("reward_rates." + cat)
			continue
		}
		if ok {
			card.RewardRates[recommend.Category(cat)] = v
		}
	}

	return card
}

// ValidateCard returns warnings for fields that are usually filled in
func (t *Transformer) ValidateCard(card recommend.CardRecord) []string {
	var warnings []string

	if card.Issuer == "" {
		warnings = append(warnings, "issuer is empty")
	}
	if card.RewardType == "" {
		warnings = append(warnings, "reward type is empty")
	}
	if len(card.RewardRates) == 0 {
		warnings = append(warnings, "no reward rates found")
	}
	if card.ApplyLink == "" {
		warnings = append(warnings, "apply link is empty")
	}

	return warnings
}

// parseAmount reads "₹3,00,000", "5%" or "750". ok is false for blank cells.
func parseAmount(text string) (decimal.Decimal, bool, error) {
	text = strings.TrimSpace(text)
	if text == "" || text == "-" || strings.EqualFold(text, "n/a") || strings.EqualFold(text, "none") {
		return decimal.Zero, false, nil
	}

	cleaned := numberNoise.ReplaceAllString(text, "")
	if cleaned == "" {
		return decimal.Zero, false, fmt.Errorf("%q is not a number", text)
	}
	v, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("%q is not a number: %w", text, err)
	}
	return v, true, nil
}

func isFree(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	return t == "free" || t == "nil" || strings.HasPrefix(t, "lifetime free")
}

func sortedRateKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
