package models

import (
	"github.com/shopspring/decimal"

	"github.com/ajharbinger/card-recommender/internal/recommend"
)

// CardView is a catalog card as returned by the API
type CardView struct {
	ID             string             `json:"id"`
	Name           string             `json:"name"`
	Issuer         string             `json:"issuer"`
	MinIncome      *float64           `json:"min_income"`
	MinCreditScore *int               `json:"min_credit_score"`
	RewardType     string             `json:"reward_type"`
	RewardRates    map[string]float64 `json:"reward_rates"`
	AnnualFee      float64            `json:"annual_fee"`
	SpecialPerks   []string           `json:"special_perks"`
	ApplyLink      string             `json:"apply_link"`
	ImageURL       string             `json:"image_url"`
}

// NewCardView renders a catalog record
func NewCardView(card recommend.CardRecord) CardView {
	view := CardView{
		ID:             card.ID,
		Name:           card.Name,
		Issuer:         card.Issuer,
		MinCreditScore: card.MinCreditScore.Ptr(),
		RewardType:     card.RewardType,
		RewardRates:    make(map[string]float64, len(card.RewardRates)),
		AnnualFee:      card.AnnualFee.InexactFloat64(),
		SpecialPerks:   card.SpecialPerks,
		ApplyLink:      card.ApplyLink,
		ImageURL:       card.ImageURL,
	}
	if card.MinIncome.Valid {
		v := card.MinIncome.Decimal.InexactFloat64()
		view.MinIncome = &v
	}
	for cat, rate := range card.RewardRates {
		view.RewardRates[string(cat)] = rate.InexactFloat64()
	}
	if view.SpecialPerks == nil {
		view.SpecialPerks = []string{}
	}
	return view
}

// NewCardViews renders a list of catalog records
func NewCardViews(cards []recommend.CardRecord) []CardView {
	views := make([]CardView, len(cards))
	for i, card := range cards {
		views[i] = NewCardView(card)
	}
	return views
}

// CardRequest is the body of card create and update requests
type CardRequest struct {
	Name           string                     `json:"name" binding:"required"`
	Issuer         string                     `json:"issuer" binding:"required"`
	MinIncome      *decimal.Decimal           `json:"min_income" binding:"required"`
	MinCreditScore *int                       `json:"min_credit_score"`
	RewardType     string                     `json:"reward_type"`
	RewardRates    map[string]decimal.Decimal `json:"reward_rates"`
	AnnualFee      decimal.Decimal            `json:"annual_fee"`
	SpecialPerks   []string                   `json:"special_perks"`
	ApplyLink      string                     `json:"apply_link" binding:"omitempty,url"`
	ImageURL       string                     `json:"image_url" binding:"omitempty,url"`
}

// ToCard converts the request into a catalog record with the given ID
func (r CardRequest) ToCard(id string) recommend.CardRecord {
	card := recommend.CardRecord{
		ID:             id,
		Name:           r.Name,
		Issuer:         r.Issuer,
		MinIncome:      decimal.NullDecimal{},
		MinCreditScore: recommend.FromPtr(r.MinCreditScore),
		RewardType:     r.RewardType,
		RewardRates:    make(map[recommend.Category]decimal.Decimal, len(r.RewardRates)),
		AnnualFee:      r.AnnualFee,
		SpecialPerks:   r.SpecialPerks,
		ApplyLink:      r.ApplyLink,
		ImageURL:       r.ImageURL,
	}
	if r.MinIncome != nil {
		card.MinIncome = decimal.NewNullDecimal(*r.MinIncome)
	}
	for cat, rate := range r.RewardRates {
		card.RewardRates[recommend.Category(cat)] = rate
	}
	return card
}

// ImportRequest is the body of POST /api/v1/cards/import
type ImportRequest struct {
	URL    string `json:"url" binding:"required,url"`
	Issuer string `json:"issuer"`
	DryRun bool   `json:"dry_run"`
}
