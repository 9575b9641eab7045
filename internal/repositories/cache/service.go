package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cardvault/internal/models"

	"github.com/redis/go-redis/v9"
)

// CacheService is a thin JSON cache over redis used for read-heavy
// lookups (a user's cards, a user's limits). Writers invalidate; the
// database stays the source of truth.
type CacheService struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCacheService(client *redis.Client, defaultTTL time.Duration) *CacheService {
	return &CacheService{
		client: client,
		ttl:    defaultTTL,
	}
}

// Base operations
func (s *CacheService) Set(ctx context.Context, key string, value interface{}) error {
	return s.SetWithTTL(ctx, key, value, s.ttl)
}

func (s *CacheService) SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	return s.client.Set(ctx, key, data, ttl).Err()
}

func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, fmt.Errorf("failed to get cache value: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}
	return true, nil
}

func (s *CacheService) Delete(ctx context.Context, keys ...string) error {
	return s.client.Del(ctx, keys...).Err()
}

// Key generation
func (s *CacheService) GenerateKey(entityType, keyType string, value interface{}) string {
	return fmt.Sprintf("%s:%s:%v", entityType, keyType, value)
}

// Card caching
func (s *CacheService) CacheUserCards(ctx context.Context, ownerID uint, cards []*models.Card) error {
	key := s.GenerateKey("cards", "owner", ownerID)
	return s.Set(ctx, key, cards)
}

func (s *CacheService) GetUserCards(ctx context.Context, ownerID uint) ([]*models.Card, bool) {
	key := s.GenerateKey("cards", "owner", ownerID)
	var cards []*models.Card
	found, err := s.Get(ctx, key, &cards)
	if err != nil || !found {
		return nil, false
	}
	return cards, true
}

func (s *CacheService) InvalidateUserCards(ctx context.Context, ownerID uint) error {
	return s.Delete(ctx, s.GenerateKey("cards", "owner", ownerID))
}

// Limit caching
func (s *CacheService) CacheUserLimits(ctx context.Context, userID uint, limits []*models.Limit) error {
	key := s.GenerateKey("limits", "user", userID)
	return s.Set(ctx, key, limits)
}

func (s *CacheService) GetUserLimits(ctx context.Context, userID uint) ([]*models.Limit, bool) {
	key := s.GenerateKey("limits", "user", userID)
	var limits []*models.Limit
	found, err := s.Get(ctx, key, &limits)
	if err != nil || !found {
		return nil, false
	}
	return limits, true
}

func (s *CacheService) InvalidateUserLimits(ctx context.Context, userID uint) error {
	return s.Delete(ctx, s.GenerateKey("limits", "user", userID))
}

// FlushAll clears the whole cache, used on startup so stale entries never
// survive a redeploy.
func (s *CacheService) FlushAll(ctx context.Context) error {
	return s.client.FlushAll(ctx).Err()
}

func (s *CacheService) Close() error {
	return s.client.Close()
}
