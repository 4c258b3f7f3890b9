package session

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/SAP-F-2025/thesis-review-portal/internal/cache"
	"github.com/SAP-F-2025/thesis-review-portal/internal/models"
)

// RedisStore keeps credentials in redis under session:<sid>:token and
// session:<sid>:user, without expiry.
type RedisStore struct {
	helper *cache.CacheHelper
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{helper: cache.NewCacheHelper(client, cache.SessionCacheConfig.Prefix)}
}

func tokenKey(sid string) string { return sid + ":token" }
func userKey(sid string) string  { return sid + ":user" }

func (s *RedisStore) GetToken(ctx context.Context, sid string) (string, error) {
	token, err := s.helper.GetString(ctx, tokenKey(sid))
	if errors.Is(err, cache.ErrCacheNotFound) {
		return "", nil
	}
	return token, err
}

func (s *RedisStore) SetToken(ctx context.Context, sid, token string) error {
	return s.helper.SetString(ctx, tokenKey(sid), token, cache.SessionCacheConfig.TTL)
}

func (s *RedisStore) RemoveToken(ctx context.Context, sid string) error {
	return s.helper.Delete(ctx, tokenKey(sid))
}

func (s *RedisStore) GetUser(ctx context.Context, sid string) (*models.User, error) {
	var user models.User
	err := s.helper.Get(ctx, userKey(sid), &user)
	if errors.Is(err, cache.ErrCacheNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *RedisStore) SetUser(ctx context.Context, sid string, user *models.User) error {
	if user == nil {
		return s.RemoveUser(ctx, sid)
	}
	return s.helper.Set(ctx, userKey(sid), user, cache.SessionCacheConfig.TTL)
}

func (s *RedisStore) RemoveUser(ctx context.Context, sid string) error {
	return s.helper.Delete(ctx, userKey(sid))
}

// Ping reports whether redis is reachable.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.helper.HealthCheck(ctx)
}
