package models

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ajharbinger/card-recommender/internal/recommend"
)

// RecommendationRequest is the body of POST /api/v1/recommendations.
// Amounts accept JSON numbers or numeric strings.
type RecommendationRequest struct {
	MonthlyIncome       *decimal.Decimal           `json:"monthly_income" binding:"required"`
	CreditScore         *int                       `json:"credit_score" binding:"required"`
	CategorySpend       map[string]decimal.Decimal `json:"category_spend"`
	PreferredRewardType string                     `json:"preferred_reward_type"`
}

// ToProfile converts the request into an engine profile. Range checks are
// left to the engine so every fault is reported together.
func (r RecommendationRequest) ToProfile() recommend.UserProfile {
	profile := recommend.UserProfile{
		CategorySpend:       make(map[recommend.Category]decimal.Decimal, len(r.CategorySpend)),
		PreferredRewardType: r.PreferredRewardType,
	}
	if r.MonthlyIncome != nil {
		profile.MonthlyIncome = *r.MonthlyIncome
	}
	if r.CreditScore != nil {
		profile.CreditScore = *r.CreditScore
	}
	for name, spend := range r.CategorySpend {
		profile.CategorySpend[recommend.Category(name)] = spend
	}
	return profile
}

// RecommendationResponse is the result of a recommendation request
type RecommendationResponse struct {
	RequestID       string                       `json:"request_id"`
	AnnualIncome    float64                      `json:"annual_income"`
	EligibleCount   int                          `json:"eligible_count"`
	Recommendations []RecommendationView         `json:"recommendations"`
	Skipped         []recommend.DataQualityFault `json:"skipped"`
}

// RecommendationView is one ranked card with its estimated rewards
type RecommendationView struct {
	Rank          int                `json:"rank"`
	Card          CardView           `json:"card"`
	MonthlyReward float64            `json:"monthly_reward"`
	YearlyReward  float64            `json:"yearly_reward"`
	Breakdown     map[string]float64 `json:"breakdown"`
	Eligibility   EligibilityView    `json:"eligibility"`
	Why           []string           `json:"why"`
}

// EligibilityView shows the values each eligibility check compared
type EligibilityView struct {
	AnnualIncome   float64 `json:"annual_income"`
	MinIncome      float64 `json:"min_income"`
	CreditScore    int     `json:"credit_score"`
	MinCreditScore *int    `json:"min_credit_score"`
	RewardType     string  `json:"reward_type"`
}

// NewRecommendationResponse renders an engine result
func NewRecommendationResponse(requestID string, result *recommend.Result) RecommendationResponse {
	resp := RecommendationResponse{
		RequestID:       requestID,
		AnnualIncome:    result.AnnualIncome.InexactFloat64(),
		EligibleCount:   result.EligibleCount,
		Recommendations: make([]RecommendationView, len(result.Recommendations)),
		Skipped:         result.Skipped,
	}
	if resp.Skipped == nil {
		resp.Skipped = []recommend.DataQualityFault{}
	}

	for i, rec := range result.Recommendations {
		breakdown := make(map[string]float64, len(rec.Reward.Breakdown))
		for cat, amount := range rec.Reward.Breakdown {
			breakdown[string(cat)] = amount.InexactFloat64()
		}
		resp.Recommendations[i] = RecommendationView{
			Rank:          i + 1,
			Card:          NewCardView(rec.Card),
			MonthlyReward: rec.Reward.Monthly.InexactFloat64(),
			YearlyReward:  rec.Reward.Yearly.InexactFloat64(),
			Breakdown:     breakdown,
			Eligibility: EligibilityView{
				AnnualIncome:   rec.Eligibility.AnnualIncome.InexactFloat64(),
				MinIncome:      rec.Eligibility.MinIncome.InexactFloat64(),
				CreditScore:    rec.Eligibility.CreditScore,
				MinCreditScore: rec.Eligibility.MinCreditScore.Ptr(),
				RewardType:     rec.Eligibility.RewardType,
			},
			Why: Why(rec.Eligibility),
		}
	}
	return resp
}

// Why explains in plain sentences why a card passed the filter
func Why(e recommend.Eligibility) []string {
	reasons := []string{
		fmt.Sprintf("You satisfy the income criteria of %s (your annual income: %s)",
			e.MinIncome.StringFixed(2), e.AnnualIncome.StringFixed(2)),
	}
	if e.MinCreditScore.IsSet() {
		reasons = append(reasons, fmt.Sprintf("You satisfy the credit score criteria of %s (your score: %d)",
			e.MinCreditScore, e.CreditScore))
	} else {
		reasons = append(reasons, fmt.Sprintf("This card has no minimum credit score (your score: %d)", e.CreditScore))
	}
	return reasons
}

// ValidationErrorResponse lists every fault found in a request
type ValidationErrorResponse struct {
	Error  string                      `json:"error"`
	Code   string                      `json:"code"`
	Faults []recommend.ValidationFault `json:"faults"`
}
