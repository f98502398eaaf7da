package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	Client *redis.Client
	Ctx    = context.Background()
)

// TTLs for cached payloads
const (
	DashboardTTL = 30 * time.Second
	UserTTL      = 5 * time.Minute
)

// Init connects to Redis. If REDIS_ADDR is unset or the server is not
// reachable, caching is disabled and every lookup is a miss.
func Init() {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		log.Println("[Cache] REDIS_ADDR not set, caching disabled")
		return
	}

	Client = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})

	if err := Client.Ping(Ctx).Err(); err != nil {
		log.Printf("[Cache] Redis unavailable (%v), caching disabled", err)
		Client = nil
		return
	}

	log.Println("[Cache] Redis connected")
}

// DashboardKey builds the cache key for a user's dashboard summary.
func DashboardKey(userID int64, rangeName, startDate, endDate string) string {
	return fmt.Sprintf("dashboard:%d:%s:%s:%s", userID, rangeName, startDate, endDate)
}

// GetJSON loads a cached JSON value into dest. Returns false on miss,
// on decode failure, or when caching is disabled.
func GetJSON(key string, dest interface{}) bool {
	if Client == nil {
		return false
	}
	data, err := Client.Get(Ctx, key).Bytes()
	if err != nil {
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false
	}
	return true
}

// SetJSON stores a value as JSON with the given TTL. Errors are logged
// and swallowed; the cache is best effort.
func SetJSON(key string, value interface{}, ttl time.Duration) {
	if Client == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := Client.Set(Ctx, key, data, ttl).Err(); err != nil {
		log.Printf("[Cache] set %s failed: %v", key, err)
	}
}

// InvalidateDashboard drops all cached dashboard summaries for a user.
func InvalidateDashboard(userID int64) {
	if Client == nil {
		return
	}
	pattern := fmt.Sprintf("dashboard:%d:*", userID)
	iter := Client.Scan(Ctx, 0, pattern, 100).Iterator()
	for iter.Next(Ctx) {
		Client.Del(Ctx, iter.Val())
	}
}
