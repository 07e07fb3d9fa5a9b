package repository

import (
	"context"
	"time"
)

// CacheRepository is a string key/value cache with expiry
type CacheRepository interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
}
