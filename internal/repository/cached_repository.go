package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/ajharbinger/card-recommender/internal/recommend"
)

const (
	cacheKeyPrefix  = "catalog:"
	cacheVersionKey = cacheKeyPrefix + "version"
)

// CachedRepository serves catalog reads from a cache and falls through to
// the wrapped repository on a miss. Writes bump a version key so every
// cached list becomes unreachable at once.
type CachedRepository struct {
	next  CardRepository
	cache CacheRepository
	ttl   time.Duration
}

// NewCachedRepository wraps next with a read-through cache
func NewCachedRepository(next CardRepository, cache CacheRepository, ttl time.Duration) *CachedRepository {
	return &CachedRepository{next: next, cache: cache, ttl: ttl}
}

// List returns the cached result for the query or loads and stores it
func (r *CachedRepository) List(ctx context.Context, q CatalogQuery) ([]recommend.CardRecord, error) {
	key := r.listKey(ctx, q)

	if raw, ok := r.cache.Get(ctx, key); ok {
		var cards []recommend.CardRecord
		if err := json.Unmarshal([]byte(raw), &cards); err == nil {
			return cards, nil
		}
	}

	cards, err := r.next.List(ctx, q)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(cards); err == nil {
		// A failed cache write only costs a later miss
		_ = r.cache.Set(ctx, key, string(data), r.ttl)
	}
	return cards, nil
}

func (r *CachedRepository) GetByID(ctx context.Context, id string) (*recommend.CardRecord, error) {
	return r.next.GetByID(ctx, id)
}

func (r *CachedRepository) Create(ctx context.Context, card *recommend.CardRecord) error {
	return r.afterWrite(ctx, r.next.Create(ctx, card))
}

func (r *CachedRepository) Update(ctx context.Context, card *recommend.CardRecord) error {
	return r.afterWrite(ctx, r.next.Update(ctx, card))
}

func (r *CachedRepository) Upsert(ctx context.Context, card *recommend.CardRecord) error {
	return r.afterWrite(ctx, r.next.Upsert(ctx, card))
}

func (r *CachedRepository) Delete(ctx context.Context, id string) error {
	return r.afterWrite(ctx, r.next.Delete(ctx, id))
}

// Invalidate drops every cached list
func (r *CachedRepository) Invalidate(ctx context.Context) error {
	// The version never expires; stale lists age out on their own TTL.
	if err := r.cache.Set(ctx, cacheVersionKey, uuid.New().String(), 0); err != nil {
		return fmt.Errorf("failed to invalidate catalog cache: %w", err)
	}
	return nil
}

func (r *CachedRepository) afterWrite(ctx context.Context, err error) error {
	if err != nil {
		return err
	}
	return r.Invalidate(ctx)
}

func (r *CachedRepository) listKey(ctx context.Context, q CatalogQuery) string {
	version, _ := r.cache.Get(ctx, cacheVersionKey)

	income := "-"
	if q.MaxMinIncome != nil {
		income = q.MaxMinIncome.String()
	}
	score := "-"
	if q.MaxMinCreditScore != nil {
		score = strconv.Itoa(*q.MaxMinCreditScore)
	}
	return fmt.Sprintf("%slist:%s:%s:%s:%q:%d:%d", cacheKeyPrefix, version, income, score, q.RewardType, q.Limit, q.Offset)
}

// WithCache wraps the card repository of repos with a cache. Transactions
// run against the uncached repositories and invalidate on commit.
func WithCache(repos *Repositories, cache CacheRepository, ttl time.Duration) *Repositories {
	cached := NewCachedRepository(repos.Cards, cache, ttl)
	return &Repositories{
		Cards: cached,
		Tx:    &cachedTransactionManager{next: repos.Tx, cached: cached},
	}
}

type cachedTransactionManager struct {
	next   TransactionManager
	cached *CachedRepository
}

func (tm *cachedTransactionManager) WithTransaction(ctx context.Context, fn func(repos *Repositories) error) error {
	if err := tm.next.WithTransaction(ctx, fn); err != nil {
		return err
	}
	return tm.cached.Invalidate(ctx)
}
