package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/ajharbinger/card-recommender/internal/recommend"
)

const cardColumns = `id, name, issuer, min_income, min_credit_score, reward_type,
		   reward_rates, annual_fee, special_perks, apply_link, image_url`

// uniqueViolation is the Postgres error code for unique constraint failures
const uniqueViolation = "23505"

// cardRepository implements CardRepository on Postgres
type cardRepository struct {
	db dbExecutor
}

// NewCardRepository creates a new Postgres card repository
func NewCardRepository(db dbExecutor) CardRepository {
	return &cardRepository{db: db}
}

// List retrieves cards in catalog order, applying the query as a push-down filter
func (r *cardRepository) List(ctx context.Context, q CatalogQuery) ([]recommend.CardRecord, error) {
	query, args := buildListQuery(q)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query cards: %w", err)
	}
	defer rows.Close()

	cards := []recommend.CardRecord{}
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cards: %w", err)
	}

	return cards, nil
}

// buildListQuery renders the SQL for a catalog query. Rows with a NULL
// constraint column always pass so the engine can report them.
func buildListQuery(q CatalogQuery) (string, []interface{}) {
	query := `SELECT ` + cardColumns + ` FROM credit_cards`

	var whereClauses []string
	var args []interface{}
	argIndex := 1

	if q.MaxMinIncome != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("(min_income IS NULL OR min_income <= $%d)", argIndex))
		args = append(args, *q.MaxMinIncome)
		argIndex++
	}

	if q.MaxMinCreditScore != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("(min_credit_score IS NULL OR min_credit_score <= $%d)", argIndex))
		args = append(args, *q.MaxMinCreditScore)
		argIndex++
	}

	if q.RewardType != "" && !recommend.IsNoRewardFilter(q.RewardType) {
		whereClauses = append(whereClauses, fmt.Sprintf(`reward_type ILIKE $%d ESCAPE '\'`, argIndex))
		args = append(args, "%"+escapeLike(strings.TrimSpace(q.RewardType))+"%")
		argIndex++
	}

	if len(whereClauses) > 0 {
		query += " WHERE " + strings.Join(whereClauses, " AND ")
	}

	query += " ORDER BY seq"

	if q.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, q.Limit)
		argIndex++
	}

	if q.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIndex)
		args = append(args, q.Offset)
	}

	return query, args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// GetByID retrieves a card by ID
func (r *cardRepository) GetByID(ctx context.Context, id string) (*recommend.CardRecord, error) {
	cardID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrNotFound
	}

	query := `SELECT ` + cardColumns + ` FROM credit_cards WHERE id = $1`
	card, err := scanCard(r.db.QueryRowContext(ctx, query, cardID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &card, nil
}

// Create inserts a new card, assigning an ID when none is set
func (r *cardRepository) Create(ctx context.Context, card *recommend.CardRecord) error {
	if card.ID == "" {
		card.ID = uuid.New().String()
	}
	cardID, err := uuid.Parse(card.ID)
	if err != nil {
		return fmt.Errorf("invalid card id %q: %w", card.ID, err)
	}

	values, err := cardValues(card)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO credit_cards (
			id, name, issuer, min_income, min_credit_score, reward_type,
			reward_rates, annual_fee, special_perks, apply_link, image_url
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = r.db.ExecContext(ctx, query, append([]interface{}{cardID}, values...)...)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("failed to create card: %w", err)
	}
	return nil
}

// Update replaces an existing card's fields
func (r *cardRepository) Update(ctx context.Context, card *recommend.CardRecord) error {
	cardID, err := uuid.Parse(card.ID)
	if err != nil {
		return ErrNotFound
	}

	values, err := cardValues(card)
	if err != nil {
		return err
	}

	query := `
		UPDATE credit_cards SET
			name = $2, issuer = $3, min_income = $4, min_credit_score = $5,
			reward_type = $6, reward_rates = $7, annual_fee = $8,
			special_perks = $9, apply_link = $10, image_url = $11,
			updated_at = NOW()
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, append([]interface{}{cardID}, values...)...)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("failed to update card: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Upsert inserts a card or updates the existing one with the same issuer and name
func (r *cardRepository) Upsert(ctx context.Context, card *recommend.CardRecord) error {
	if card.ID == "" {
		card.ID = uuid.New().String()
	}
	cardID, err := uuid.Parse(card.ID)
	if err != nil {
		return fmt.Errorf("invalid card id %q: %w", card.ID, err)
	}

	values, err := cardValues(card)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO credit_cards (
			id, name, issuer, min_income, min_credit_score, reward_type,
			reward_rates, annual_fee, special_perks, apply_link, image_url
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (issuer, name) DO UPDATE SET
			min_income = EXCLUDED.min_income,
			min_credit_score = EXCLUDED.min_credit_score,
			reward_type = EXCLUDED.reward_type,
			reward_rates = EXCLUDED.reward_rates,
			annual_fee = EXCLUDED.annual_fee,
			special_perks = EXCLUDED.special_perks,
			apply_link = EXCLUDED.apply_link,
			image_url = EXCLUDED.image_url,
			updated_at = NOW()
		RETURNING id
	`
	var storedID uuid.UUID
	if err := r.db.QueryRowContext(ctx, query, append([]interface{}{cardID}, values...)...).Scan(&storedID); err != nil {
		return fmt.Errorf("failed to upsert card: %w", err)
	}
	card.ID = storedID.String()
	return nil
}

// Delete removes a card
func (r *cardRepository) Delete(ctx context.Context, id string) error {
	cardID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM credit_cards WHERE id = $1`, cardID)
	if err != nil {
		return fmt.Errorf("failed to delete card: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCard(row rowScanner) (recommend.CardRecord, error) {
	var (
		card      recommend.CardRecord
		id        uuid.UUID
		minScore  sql.NullInt64
		ratesJSON []byte
		perks     pq.StringArray
	)

	err := row.Scan(
		&id, &card.Name, &card.Issuer, &card.MinIncome, &minScore, &card.RewardType,
		&ratesJSON, &card.AnnualFee, &perks, &card.ApplyLink, &card.ImageURL,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return card, err
		}
		return card, fmt.Errorf("failed to scan card: %w", err)
	}

	card.ID = id.String()
	if minScore.Valid {
		card.MinCreditScore = recommend.Some(int(minScore.Int64))
	}
	card.SpecialPerks = []string(perks)
	card.RewardRates, card.MalformedFields = decodeRates(ratesJSON)
	return card, nil
}

// decodeRates reads the reward_rates JSON object. Values that are not
// numbers are reported as malformed rather than dropped or zeroed.
func decodeRates(data []byte) (map[recommend.Category]decimal.Decimal, []string) {
	rates := make(map[recommend.Category]decimal.Decimal)
	if len(data) == 0 {
		return rates, nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return rates, []string{"reward_rates"}
	}

	var malformed []string
	for _, key := range sortedKeys(raw) {
		value := raw[key]
		if string(value) == "null" {
			continue
		}
		var rate decimal.Decimal
		if err := rate.UnmarshalJSON(value); err != nil {
			malformed = append(malformed, "reward_rates."+key)
			continue
		}
		rates[recommend.Category(key)] = rate
	}
	return rates, malformed
}

func cardValues(card *recommend.CardRecord) ([]interface{}, error) {
	ratesJSON, err := json.Marshal(encodeRates(card.RewardRates))
	if err != nil {
		return nil, fmt.Errorf("failed to encode reward rates: %w", err)
	}

	var minScore sql.NullInt64
	if v, ok := card.MinCreditScore.Get(); ok {
		minScore = sql.NullInt64{Int64: int64(v), Valid: true}
	}

	perks := card.SpecialPerks
	if perks == nil {
		perks = []string{}
	}

	return []interface{}{
		card.Name, card.Issuer, card.MinIncome, minScore, card.RewardType,
		ratesJSON, card.AnnualFee, pq.Array(perks), card.ApplyLink, card.ImageURL,
	}, nil
}

// encodeRates stores rates as JSON numbers
func encodeRates(rates map[recommend.Category]decimal.Decimal) map[string]json.Number {
	out := make(map[string]json.Number, len(rates))
	for cat, rate := range rates {
		out[string(cat)] = json.Number(rate.String())
	}
	return out
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
