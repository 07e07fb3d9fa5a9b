package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajharbinger/card-recommender/internal/recommend"
)

func TestRecommendationRequest_ToProfile(t *testing.T) {
	var req RecommendationRequest
	body := `{"monthly_income": "50000", "credit_score": 750,
		"category_spend": {"fuel": 2000, "travel": "1000.50"},
		"preferred_reward_type": "Cashback"}`
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	profile := req.ToProfile()
	assert.True(t, profile.MonthlyIncome.Equal(decimal.NewFromInt(50000)))
	assert.Equal(t, 750, profile.CreditScore)
	assert.True(t, profile.CategorySpend[recommend.CategoryTravel].Equal(decimal.RequireFromString("1000.50")))
	assert.Equal(t, "Cashback", profile.PreferredRewardType)
}

func TestNewRecommendationResponse(t *testing.T) {
	card := recommend.CardRecord{
		ID:             "c1",
		Name:           "Everyday",
		Issuer:         "Bank",
		MinIncome:      decimal.NewNullDecimal(decimal.NewFromInt(300000)),
		MinCreditScore: recommend.Some(700),
		RewardType:     "Cashback",
		RewardRates:    map[recommend.Category]decimal.Decimal{recommend.CategoryFuel: decimal.NewFromInt(5)},
	}
	profile := recommend.UserProfile{
		MonthlyIncome: decimal.NewFromInt(50000),
		CreditScore:   750,
		CategorySpend: map[recommend.Category]decimal.Decimal{recommend.CategoryFuel: decimal.NewFromInt(2000)},
	}
	result, err := recommend.NewEngine(recommend.DefaultBounds(), 5).Recommend(profile, []recommend.CardRecord{card})
	require.NoError(t, err)

	resp := NewRecommendationResponse("req-1", result)
	assert.Equal(t, "req-1", resp.RequestID)
	assert.Equal(t, 600000.0, resp.AnnualIncome)
	assert.NotNil(t, resp.Skipped)
	require.Len(t, resp.Recommendations, 1)

	view := resp.Recommendations[0]
	assert.Equal(t, 1, view.Rank)
	assert.Equal(t, 100.0, view.MonthlyReward)
	assert.Equal(t, 1200.0, view.YearlyReward)
	assert.Equal(t, map[string]float64{"fuel": 100}, view.Breakdown)
	require.NotNil(t, view.Eligibility.MinCreditScore)
	assert.Equal(t, 700, *view.Eligibility.MinCreditScore)
	assert.Equal(t, []string{
		"You satisfy the income criteria of 300000.00 (your annual income: 600000.00)",
		"You satisfy the credit score criteria of 700 (your score: 750)",
	}, view.Why)
}

func TestWhy_NoMinimumScore(t *testing.T) {
	reasons := Why(recommend.Eligibility{
		AnnualIncome: decimal.NewFromInt(10),
		MinIncome:    decimal.NewFromInt(5),
		CreditScore:  600,
	})
	assert.Contains(t, reasons, "This card has no minimum credit score (your score: 600)")
}

func TestCardRequest_ToCard(t *testing.T) {
	score := 650
	income := decimal.NewFromInt(100000)
	req := CardRequest{
		Name:           "Card",
		Issuer:         "Bank",
		MinIncome:      &income,
		MinCreditScore: &score,
		RewardRates:    map[string]decimal.Decimal{"dining": decimal.NewFromInt(3)},
	}

	card := req.ToCard("id-1")
	assert.Equal(t, "id-1", card.ID)
	assert.True(t, card.MinIncome.Valid)
	v, ok := card.MinCreditScore.Get()
	assert.True(t, ok)
	assert.Equal(t, 650, v)
	assert.True(t, card.Rate(recommend.CategoryDining).Equal(decimal.NewFromInt(3)))

	req.MinCreditScore = nil
	assert.False(t, req.ToCard("id-1").MinCreditScore.IsSet())
}

func TestNewCardView_MissingIncome(t *testing.T) {
	view := NewCardView(recommend.CardRecord{ID: "x"})
	assert.Nil(t, view.MinIncome)
	assert.Nil(t, view.MinCreditScore)
	assert.NotNil(t, view.SpecialPerks)
}
