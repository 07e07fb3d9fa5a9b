package recommend

import "github.com/shopspring/decimal"

// Engine runs the validate, filter, estimate and rank steps for one profile
// against an in-memory catalog. It holds no mutable state and is safe for
// concurrent use.
type Engine struct {
	bounds Bounds
	limit  int
}

// NewEngine creates an engine. A limit <= 0 returns every eligible card.
func NewEngine(bounds Bounds, limit int) *Engine {
	return &Engine{bounds: bounds, limit: limit}
}

// Bounds returns the limits profiles are validated against.
func (e *Engine) Bounds() Bounds {
	return e.bounds
}

// Limit returns the display cap.
func (e *Engine) Limit() int {
	return e.limit
}

// Result is the outcome of a recommendation request. An empty
// Recommendations slice is a valid outcome.
type Result struct {
	AnnualIncome    decimal.Decimal
	Recommendations []Recommendation
	// EligibleCount is the number of eligible cards before the display cap.
	EligibleCount int
	Skipped       []DataQualityFault
}

// Recommend validates the profile and returns the ranked, capped
// recommendations. An invalid profile returns a *ValidationError and
// nothing else runs.
func (e *Engine) Recommend(profile UserProfile, catalog []CardRecord) (*Result, error) {
	if err := profile.Validate(e.bounds); err != nil {
		return nil, err
	}

	filtered := FilterEligible(profile, catalog)
	recs := make([]Recommendation, 0, len(filtered.Eligible))
	for _, card := range filtered.Eligible {
		recs = append(recs, Recommendation{
			Card:        card,
			Reward:      EstimateReward(profile, card),
			Eligibility: Explain(profile, card),
		})
	}
	Rank(recs)

	return &Result{
		AnnualIncome:    profile.AnnualIncome(),
		Recommendations: Top(recs, e.limit),
		EligibleCount:   len(recs),
		Skipped:         filtered.Skipped,
	}, nil
}
