package recommend

import (
	"sort"
	"strconv"

	"github.com/shopspring/decimal"
)

// Category names a monthly spend bucket such as fuel or dining.
type Category string

// Categories the catalog has historically carried rates for.
const (
	CategoryFuel      Category = "fuel"
	CategoryTravel    Category = "travel"
	CategoryGroceries Category = "groceries"
	CategoryDining    Category = "dining"
)

// DefaultCategories is the configured category set when none is supplied.
var DefaultCategories = []Category{CategoryFuel, CategoryTravel, CategoryGroceries, CategoryDining}

// DefaultMaxCreditScore is the upper bound of the score scale used by the catalog.
const DefaultMaxCreditScore = 900

// UserProfile is the self-reported input for one recommendation request.
type UserProfile struct {
	MonthlyIncome       decimal.Decimal
	CreditScore         int
	CategorySpend       map[Category]decimal.Decimal
	PreferredRewardType string
}

// AnnualIncome converts the monthly figure to the catalog's annual convention.
func (p UserProfile) AnnualIncome() decimal.Decimal {
	return p.MonthlyIncome.Mul(annualization)
}

// Bounds are the domain limits a profile is validated against.
type Bounds struct {
	MaxCreditScore int
	// Categories restricts the accepted spend categories. Empty accepts any.
	Categories []Category
}

// DefaultBounds returns the 0–900 score scale and the default categories.
func DefaultBounds() Bounds {
	return Bounds{
		MaxCreditScore: DefaultMaxCreditScore,
		Categories:     append([]Category(nil), DefaultCategories...),
	}
}

// Validate checks the profile at the request boundary. Negative amounts are
// reported, never clamped.
func (p UserProfile) Validate(b Bounds) error {
	var faults []ValidationFault

	if p.MonthlyIncome.IsNegative() {
		faults = append(faults, ValidationFault{
			Field:  "monthly_income",
			Value:  p.MonthlyIncome.String(),
			Reason: "must not be negative",
		})
	}

	maxScore := b.MaxCreditScore
	if maxScore <= 0 {
		maxScore = DefaultMaxCreditScore
	}
	if p.CreditScore < 0 || p.CreditScore > maxScore {
		faults = append(faults, ValidationFault{
			Field:  "credit_score",
			Value:  strconv.Itoa(p.CreditScore),
			Reason: "must be between 0 and " + strconv.Itoa(maxScore),
		})
	}

	allowed := make(map[Category]bool, len(b.Categories))
	for _, c := range b.Categories {
		allowed[c] = true
	}
	for _, cat := range sortedCategories(p.CategorySpend) {
		spend := p.CategorySpend[cat]
		field := "category_spend." + string(cat)
		if len(allowed) > 0 && !allowed[cat] {
			faults = append(faults, ValidationFault{Field: field, Reason: "unknown spend category"})
			continue
		}
		if spend.IsNegative() {
			faults = append(faults, ValidationFault{
				Field:  field,
				Value:  spend.String(),
				Reason: "must not be negative",
			})
		}
	}

	if len(faults) > 0 {
		return &ValidationError{Faults: faults}
	}
	return nil
}

func sortedCategories(m map[Category]decimal.Decimal) []Category {
	cats := make([]Category, 0, len(m))
	for c := range m {
		cats = append(cats, c)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i] < cats[j] })
	return cats
}
