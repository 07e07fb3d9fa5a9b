package repository

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/ajharbinger/card-recommender/internal/recommend"
)

var (
	// ErrNotFound is returned when no card matches the lookup
	ErrNotFound = errors.New("card not found")
	// ErrConflict is returned when a card with the same issuer and name exists
	ErrConflict = errors.New("card already exists")
)

// CardRepository defines the interface for card catalog access. Read methods
// return records in catalog order.
type CardRepository interface {
	List(ctx context.Context, query CatalogQuery) ([]recommend.CardRecord, error)
	GetByID(ctx context.Context, id string) (*recommend.CardRecord, error)
	Create(ctx context.Context, card *recommend.CardRecord) error
	Update(ctx context.Context, card *recommend.CardRecord) error
	// Upsert inserts the card or replaces the one with the same issuer and name
	Upsert(ctx context.Context, card *recommend.CardRecord) error
	Delete(ctx context.Context, id string) error
}

// TransactionManager defines the interface for atomic multi-card writes
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(repos *Repositories) error) error
}

// Repositories groups all repository interfaces
type Repositories struct {
	Cards CardRepository
	Tx    TransactionManager
}

// CatalogQuery narrows a catalog read. Every field is optional and only a
// hint: sources may return more than asked, and records with missing or
// invalid constraint fields are still returned so the caller can report them.
type CatalogQuery struct {
	MaxMinIncome      *decimal.Decimal
	MaxMinCreditScore *int
	RewardType        string
	Limit             int
	Offset            int
}

// QueryForProfile builds the push-down query matching a profile's constraints
func QueryForProfile(profile recommend.UserProfile) CatalogQuery {
	annual := profile.AnnualIncome()
	score := profile.CreditScore
	q := CatalogQuery{
		MaxMinIncome:      &annual,
		MaxMinCreditScore: &score,
	}
	if !recommend.IsNoRewardFilter(profile.PreferredRewardType) {
		q.RewardType = profile.PreferredRewardType
	}
	return q
}

// admits applies a query to one record in process with the same semantics
// the SQL push-down uses
func (q CatalogQuery) admits(card recommend.CardRecord) bool {
	if q.MaxMinIncome != nil && card.MinIncome.Valid && card.MinIncome.Decimal.GreaterThan(*q.MaxMinIncome) {
		return false
	}
	if q.MaxMinCreditScore != nil {
		if minScore, ok := card.MinCreditScore.Get(); ok && minScore > *q.MaxMinCreditScore {
			return false
		}
	}
	if q.RewardType != "" && !recommend.MatchRewardType(q.RewardType, card.RewardType) {
		return false
	}
	return true
}

// page applies Limit and Offset to an in-memory result
func (q CatalogQuery) page(cards []recommend.CardRecord) []recommend.CardRecord {
	if q.Offset > 0 {
		if q.Offset >= len(cards) {
			return []recommend.CardRecord{}
		}
		cards = cards[q.Offset:]
	}
	if q.Limit > 0 && len(cards) > q.Limit {
		cards = cards[:q.Limit]
	}
	return cards
}
