package repository

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/ajharbinger/card-recommender/internal/recommend"
)

// CatalogFile is the YAML catalog document
type CatalogFile struct {
	Cards []CatalogEntry `yaml:"cards"`
}

// CatalogEntry is one card as written in a catalog file. Numeric fields are
// kept as raw nodes so a malformed value is reported instead of guessed.
type CatalogEntry struct {
	ID             string               `yaml:"id"`
	Name           string               `yaml:"name"`
	Issuer         string               `yaml:"issuer"`
	MinIncome      yaml.Node            `yaml:"min_income"`
	MinCreditScore yaml.Node            `yaml:"min_credit_score"`
	RewardType     string               `yaml:"reward_type"`
	RewardRates    map[string]yaml.Node `yaml:"reward_rates"`
	AnnualFee      yaml.Node            `yaml:"annual_fee"`
	SpecialPerks   []string             `yaml:"special_perks"`
	ApplyLink      string               `yaml:"apply_link"`
	ImageURL       string               `yaml:"image_url"`
}

// LoadCatalogFile reads a YAML catalog from disk
func LoadCatalogFile(path string) ([]recommend.CardRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes a YAML catalog document in file order
func ParseCatalog(data []byte) ([]recommend.CardRecord, error) {
	var doc CatalogFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}

	cards := make([]recommend.CardRecord, 0, len(doc.Cards))
	for i, entry := range doc.Cards {
		if strings.TrimSpace(entry.Name) == "" {
			return nil, fmt.Errorf("card %d: name is required", i)
		}
		cards = append(cards, entry.toRecord())
	}
	return cards, nil
}

func (e CatalogEntry) toRecord() recommend.CardRecord {
	card := recommend.CardRecord{
		ID:           e.ID,
		Name:         e.Name,
		Issuer:       e.Issuer,
		RewardType:   e.RewardType,
		RewardRates:  make(map[recommend.Category]decimal.Decimal, len(e.RewardRates)),
		SpecialPerks: e.SpecialPerks,
		ApplyLink:    e.ApplyLink,
		ImageURL:     e.ImageURL,
	}

	malformed := func(field string) {
		card.MalformedFields = append(card.MalformedFields, field)
	}

	if v, ok, err := nodeDecimal(e.MinIncome); err != nil {
		malformed("min_income")
	} else if ok {
		card.MinIncome = decimal.NewNullDecimal(v)
	}

	if isNullNode(e.MinCreditScore) {
		card.MinCreditScore = recommend.None[int]()
	} else if score, err := strconv.Atoi(strings.TrimSpace(e.MinCreditScore.Value)); err != nil {
		malformed("min_credit_score")
	} else {
		card.MinCreditScore = recommend.Some(score)
	}

	for _, key := range sortedKeys(e.RewardRates) {
		v, ok, err := nodeDecimal(e.RewardRates[key])
		if err != nil {
			malformed("reward_rates." + key)
			continue
		}
		if ok {
			card.RewardRates[recommend.Category(key)] = v
		}
	}

	if v, ok, err := nodeDecimal(e.AnnualFee); err != nil {
		malformed("annual_fee")
	} else if ok {
		card.AnnualFee = v
	}

	return card
}

func isNullNode(n yaml.Node) bool {
	return n.Kind == 0 || (n.Kind == yaml.ScalarNode && n.Tag == "!!null")
}

// nodeDecimal reads a scalar node as an exact decimal. ok is false when the
// node is absent or null.
func nodeDecimal(n yaml.Node) (decimal.Decimal, bool, error) {
	if isNullNode(n) {
		return decimal.Zero, false, nil
	}
	if n.Kind != yaml.ScalarNode {
		return decimal.Zero, false, fmt.Errorf("line %d: expected a number", n.Line)
	}
	v, err := decimal.NewFromString(strings.TrimSpace(n.Value))
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("line %d: %w", n.Line, err)
	}
	return v, true, nil
}

// MemoryRepository is an in-memory CardRepository that keeps insertion order
type MemoryRepository struct {
	mu    sync.RWMutex
	cards []recommend.CardRecord
}

// NewMemoryRepository creates an in-memory repository holding a copy of cards
func NewMemoryRepository(cards []recommend.CardRecord) *MemoryRepository {
	r := &MemoryRepository{cards: make([]recommend.CardRecord, 0, len(cards))}
	for _, card := range cards {
		if card.ID == "" {
			card.ID = uuid.New().String()
		}
		r.cards = append(r.cards, card)
	}
	return r
}

// NewFileRepositories loads a YAML catalog into an in-memory repository set
func NewFileRepositories(path string) (*Repositories, error) {
	cards, err := LoadCatalogFile(path)
	if err != nil {
		return nil, err
	}
	return NewMemoryRepositories(NewMemoryRepository(cards)), nil
}

// NewMemoryRepositories wraps a memory repository with its transaction manager
func NewMemoryRepositories(repo *MemoryRepository) *Repositories {
	return &Repositories{Cards: repo, Tx: repo}
}

// List returns the cards the query admits, in catalog order
func (r *MemoryRepository) List(ctx context.Context, q CatalogQuery) ([]recommend.CardRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	cards := make([]recommend.CardRecord, 0, len(r.cards))
	for _, card := range r.cards {
		if q.admits(card) {
			cards = append(cards, card)
		}
	}
	return q.page(cards), nil
}

// GetByID returns a card by ID
func (r *MemoryRepository) GetByID(ctx context.Context, id string) (*recommend.CardRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if i := r.indexOf(id); i >= 0 {
		card := r.cards[i]
		return &card, nil
	}
	return nil, ErrNotFound
}

// Create appends a new card
func (r *MemoryRepository) Create(ctx context.Context, card *recommend.CardRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if card.ID == "" {
		card.ID = uuid.New().String()
	}
	if r.indexOf(card.ID) >= 0 || r.indexOfName(card.Issuer, card.Name) >= 0 {
		return ErrConflict
	}
	r.cards = append(r.cards, *card)
	return nil
}

// Update replaces a card in place, keeping its catalog position
func (r *MemoryRepository) Update(ctx context.Context, card *recommend.CardRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(card.ID)
	if i < 0 {
		return ErrNotFound
	}
	if j := r.indexOfName(card.Issuer, card.Name); j >= 0 && j != i {
		return ErrConflict
	}
	r.cards[i] = *card
	return nil
}

// Upsert inserts a card or replaces the one with the same issuer and name
func (r *MemoryRepository) Upsert(ctx context.Context, card *recommend.CardRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if i := r.indexOfName(card.Issuer, card.Name); i >= 0 {
		card.ID = r.cards[i].ID
		r.cards[i] = *card
		return nil
	}
	if card.ID == "" {
		card.ID = uuid.New().String()
	}
	r.cards = append(r.cards, *card)
	return nil
}

// Delete removes a card
func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	r.cards = append(r.cards[:i], r.cards[i+1:]...)
	return nil
}

// WithTransaction runs fn against the repository and restores the previous
// contents if fn fails. Concurrent writes made while fn runs are lost on
// rollback.
func (r *MemoryRepository) WithTransaction(ctx context.Context, fn func(repos *Repositories) error) error {
	r.mu.RLock()
	snapshot := make([]recommend.CardRecord, len(r.cards))
	copy(snapshot, r.cards)
	r.mu.RUnlock()

	if err := fn(NewMemoryRepositories(r)); err != nil {
		r.mu.Lock()
		r.cards = snapshot
		r.mu.Unlock()
		return fmt.Errorf("transaction failed: %w", err)
	}
	return nil
}

func (r *MemoryRepository) indexOf(id string) int {
	for i, card := range r.cards {
		if card.ID == id {
			return i
		}
	}
	return -1
}

func (r *MemoryRepository) indexOfName(issuer, name string) int {
	for i, card := range r.cards {
		if strings.EqualFold(card.Issuer, issuer) && strings.EqualFold(card.Name, name) {
			return i
		}
	}
	return -1
}
