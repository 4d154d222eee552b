package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/communityos/community-platform/shared/models"
)

var (
	RedisClient *redis.Client
	ctx         = context.Background()
)

// InitRedis initializes the Redis client
func InitRedis() error {
	redisHost := os.Getenv("REDIS_HOST")
	if redisHost == "" {
		redisHost = "localhost"
	}

	redisPort := os.Getenv("REDIS_PORT")
	if redisPort == "" {
		redisPort = "6379"
	}

	addr := fmt.Sprintf("%s:%s", redisHost, redisPort)

	RedisClient = redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     "",
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	if _, err := RedisClient.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return nil
}

// CacheSet stores a value in Redis with expiration
func CacheSet(key string, value string, expiration time.Duration) error {
	if RedisClient == nil {
		return fmt.Errorf("Redis client not initialized")
	}
	return RedisClient.Set(ctx, key, value, expiration).Err()
}

// CacheGet retrieves a value from Redis
func CacheGet(key string) (string, error) {
	if RedisClient == nil {
		return "", fmt.Errorf("Redis client not initialized")
	}
	val, err := RedisClient.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", fmt.Errorf("key not found")
	}
	return val, err
}

// CacheDelete removes a key from Redis
func CacheDelete(key string) error {
	if RedisClient == nil {
		return fmt.Errorf("Redis client not initialized")
	}
	return RedisClient.Del(ctx, key).Err()
}

// CloseRedis closes the Redis connection
func CloseRedis() error {
	if RedisClient != nil {
		return RedisClient.Close()
	}
	return nil
}

// Token denylist cache. The database table is the source of truth; Redis
// keeps the hot path off the database for every authenticated request.

func denylistKey(jti string) string {
	return "token:denylist:" + jti
}

// CacheDenylistToken records a revoked jti until its natural expiry.
func CacheDenylistToken(jti string, exp time.Time) error {
	ttl := time.Until(exp)
	if ttl <= 0 {
		// Already expired, nothing to deny.
		return nil
	}
	return CacheSet(denylistKey(jti), "1", ttl)
}

// CachedTokenDenylisted reports whether the jti is known-revoked in cache.
// found=false means the caller must fall back to the database.
func CachedTokenDenylisted(jti string) (denied bool, found bool) {
	if RedisClient == nil {
		return false, false
	}
	_, err := RedisClient.Get(ctx, denylistKey(jti)).Result()
	if err == redis.Nil {
		return false, false
	}
	if err != nil {
		return false, false
	}
	return true, true
}

// Community lookup cache for the public by-domain endpoint.

const communityCacheTTL = 5 * time.Minute

func communityDomainKey(domain string) string {
	return "community:domain:" + domain
}

// CacheCommunity stores a resolved community under its domain.
func CacheCommunity(community *models.Community) {
	data, err := json.Marshal(community)
	if err != nil {
		return
	}
	_ = CacheSet(communityDomainKey(community.Domain), string(data), communityCacheTTL)
}

// CachedCommunityByDomain retrieves a cached community for a domain, if any.
func CachedCommunityByDomain(domain string) (*models.Community, bool) {
	raw, err := CacheGet(communityDomainKey(domain))
	if err != nil {
		return nil, false
	}
	var community models.Community
	if err := json.Unmarshal([]byte(raw), &community); err != nil {
		return nil, false
	}
	return &community, true
}

// InvalidateCommunityCache drops the cached lookup for a domain, used after
// updates that change visibility or configuration.
func InvalidateCommunityCache(domain string) {
	_ = CacheDelete(communityDomainKey(domain))
}
