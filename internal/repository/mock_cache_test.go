package repository

import (
	"context"
	"sync"
	"time"

	"github.com/ajharbinger/card-recommender/internal/recommend"
)

type MockCache struct {
	mu   sync.Mutex
	Data map[string]string
	Sets int
}

func NewMockCache() *MockCache {
	return &MockCache{
		Data: make(map[string]string),
	}
}

func (m *MockCache) Get(ctx context.Context, key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.Data[key]
	return val, ok
}

func (m *MockCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = value
	m.Sets++
	return nil
}

// countingRepository records how often reads reach the wrapped repository
type countingRepository struct {
	*MemoryRepository
	lists int
}

func (c *countingRepository) List(ctx context.Context, q CatalogQuery) ([]recommend.CardRecord, error) {
	c.lists++
	return c.MemoryRepository.List(ctx, q)
}
