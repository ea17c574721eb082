package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Cache provides typed caching utilities
// Cache helpers live here and nowhere else.
type Cache struct {
	client *Client
	prefix string
}

// NewCache creates a new cache helper
func NewCache(client *Client, prefix string) *Cache {
	return &Cache{
		client: client,
		prefix: prefix,
	}
}

// Get retrieves a cached value
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !c.client.Enabled() {
		return false, nil
	}

	fullKey := fmt.Sprintf("%s:cache:%s", c.prefix, key)
	data, err := c.client.Redis().Get(ctx, fullKey).Bytes()
	if err != nil {
		// Key not found is not an error
		return false, nil
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("cache unmarshal failed: %w", err)
	}

	return true, nil
}

// Set stores a value in cache with TTL
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !c.client.Enabled() {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal failed: %w", err)
	}

	fullKey := fmt.Sprintf("%s:cache:%s", c.prefix, key)
	return c.client.Redis().Set(ctx, fullKey, data, ttl).Err()
}

// Delete removes a cached value
func (c *Cache) Delete(ctx context.Context, key string) error {
	if !c.client.Enabled() {
		return nil
	}

	fullKey := fmt.Sprintf("%s:cache:%s", c.prefix, key)
	return c.client.Redis().Del(ctx, fullKey).Err()
}

// GetOrSet retrieves from cache or calls fn to populate it
func (c *Cache) GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration, fn func() (interface{}, error)) error {
	// Try cache first
	found, err := c.Get(ctx, key, dest)
	if err != nil {
		return err
	}
	if found {
		return nil
	}

	// Cache miss - call function
	value, err := fn()
	if err != nil {
		return err
	}

	// Unmarshal into dest before caching so a failed Set still
	// hands the caller the computed value
	data, _ := json.Marshal(value)
	if err := json.Unmarshal(data, dest); err != nil {
		return err
	}

	// Store in cache; a write failure degrades to uncached reads
	_ = c.Set(ctx, key, value, ttl)
	return nil
}

// Predefined TTLs
const (
	TTLShort  = 1 * time.Minute  // hot API reads
	TTLMedium = 10 * time.Minute // gold metric tables
	TTLLong   = 1 * time.Hour    // quality snapshots
	TTLDaily  = 24 * time.Hour   // run history
)

// Common cache key generators
func MetricKey(metric string) string {
	return fmt.Sprintf("gold:metric:%s", metric)
}

func QualityReportKey(runID string) string {
	return fmt.Sprintf("quality:report:%s", runID)
}

func LatestRunKey() string {
	return "pipeline:run:latest"
}
