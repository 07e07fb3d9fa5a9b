package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/ajharbinger/card-recommender/internal/errors"
	"github.com/ajharbinger/card-recommender/internal/logger"
	"github.com/ajharbinger/card-recommender/internal/recommend"
	"github.com/ajharbinger/card-recommender/internal/repository"
)

// catalogServiceImpl implements CatalogService
type catalogServiceImpl struct {
	repos  *repository.Repositories
	bounds recommend.Bounds
	logger logger.Logger
}

// NewCatalogService creates a catalog service. bounds supplies the credit
// score scale cards are checked against.
func NewCatalogService(repos *repository.Repositories, bounds recommend.Bounds, log logger.Logger) CatalogService {
	return &catalogServiceImpl{
		repos:  repos,
		bounds: bounds,
		logger: log,
	}
}

// List retrieves cards in catalog order
func (s *catalogServiceImpl) List(ctx context.Context, query repository.CatalogQuery) ([]recommend.CardRecord, error) {
	cards, err := s.repos.Cards.List(ctx, query)
	if err != nil {
		s.logger.Error("Failed to list cards", err)
		return nil, errors.CatalogUnavailable("failed to list cards", err).WithOperation("List")
	}
	return cards, nil
}

// Search lists the cards whose reward type matches, the same way the
// recommendation filter does
func (s *catalogServiceImpl) Search(ctx context.Context, rewardType string) ([]recommend.CardRecord, error) {
	if recommend.IsNoRewardFilter(rewardType) {
		return s.List(ctx, repository.CatalogQuery{})
	}
	cards, err := s.List(ctx, repository.CatalogQuery{RewardType: strings.TrimSpace(rewardType)})
	if err != nil {
		return nil, err
	}

	// Sources may over-return; the matcher decides
	matched := make([]recommend.CardRecord, 0, len(cards))
	for _, card := range cards {
		if recommend.MatchRewardType(rewardType, card.RewardType) {
			matched = append(matched, card)
		}
	}
	return matched, nil
}

// Get retrieves a card by ID
func (s *catalogServiceImpl) Get(ctx context.Context, id string) (*recommend.CardRecord, error) {
	card, err := s.repos.Cards.GetByID(ctx, id)
	if err != nil {
		return nil, repositoryError("Get", err)
	}
	return card, nil
}

// Create validates and stores a new card
func (s *catalogServiceImpl) Create(ctx context.Context, card *recommend.CardRecord) error {
	if err := ValidateCard(card, s.bounds); err != nil {
		return err
	}
	if err := s.repos.Cards.Create(ctx, card); err != nil {
		return repositoryError("Create", err)
	}
	s.logger.Info("Card created", "card_id", card.ID, "name", card.Name)
	return nil
}

// Update validates and replaces an existing card
func (s *catalogServiceImpl) Update(ctx context.Context, card *recommend.CardRecord) error {
	if err := ValidateCard(card, s.bounds); err != nil {
		return err
	}
	if err := s.repos.Cards.Update(ctx, card); err != nil {
		return repositoryError("Update", err)
	}
	s.logger.Info("Card updated", "card_id", card.ID)
	return nil
}

// Delete removes a card
func (s *catalogServiceImpl) Delete(ctx context.Context, id string) error {
	if err := s.repos.Cards.Delete(ctx, id); err != nil {
		return repositoryError("Delete", err)
	}
	s.logger.Info("Card deleted", "card_id", id)
	return nil
}

// Seed upserts cards by issuer and name. Invalid cards abort the seed
// before anything is written.
func (s *catalogServiceImpl) Seed(ctx context.Context, cards []recommend.CardRecord) (int, error) {
	for i := range cards {
		if err := ValidateCard(&cards[i], s.bounds); err != nil {
			return 0, err.WithDetails(fmt.Sprintf("card %d (%s)", i, cards[i].Name)).WithOperation("Seed")
		}
	}

	err := s.repos.Tx.WithTransaction(ctx, func(repos *repository.Repositories) error {
		for i := range cards {
			if err := repos.Cards.Upsert(ctx, &cards[i]); err != nil {
				return fmt.Errorf("failed to upsert card %s: %w", cards[i].Name, err)
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to seed catalog", err, "cards", len(cards))
		return 0, errors.DatabaseError("failed to seed catalog", err).WithOperation("Seed")
	}

	s.logger.Info("Catalog seeded", "cards", len(cards))
	return len(cards), nil
}

// ValidateCard checks a card before it is written. Stored records must be
// usable by the eligibility filter.
func ValidateCard(card *recommend.CardRecord, bounds recommend.Bounds) *errors.AppError {
	var faults []recommend.ValidationFault
	add := func(field, value, reason string) {
		faults = append(faults, recommend.ValidationFault{Field: field, Value: value, Reason: reason})
	}

	if strings.TrimSpace(card.Name) == "" {
		add("name", "", "is required")
	}
	if strings.TrimSpace(card.Issuer) == "" {
		add("issuer", "", "is required")
	}
	for _, fault := range card.QualityFaults() {
		add(fault.Field, "", fault.Reason)
	}
	if score, ok := card.MinCreditScore.Get(); ok && bounds.MaxCreditScore > 0 && score > bounds.MaxCreditScore {
		add("min_credit_score", card.MinCreditScore.String(), fmt.Sprintf("must be at most %d", bounds.MaxCreditScore))
	}
	if card.AnnualFee.IsNegative() {
		add("annual_fee", card.AnnualFee.String(), "must not be negative")
	}

	if len(faults) == 0 {
		return nil
	}
	return errors.ValidationError("invalid card", nil).WithFaults(faults)
}

func repositoryError(operation string, err error) error {
	switch {
	case stderrors.Is(err, repository.ErrNotFound):
		return errors.NotFound("card not found", err).WithOperation(operation)
	case stderrors.Is(err, repository.ErrConflict):
		return errors.Conflict("a card with this issuer and name already exists", err).WithOperation(operation)
	default:
		return errors.DatabaseError("catalog write failed", err).WithOperation(operation)
	}
}
