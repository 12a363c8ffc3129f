// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"github.com/SNS-EUGENE/sto-mediacenter-sub001/config"

	"github.com/go-redis/redis/v8"
)

// CodeCacheClient caches verification codes pulled from the mailbox so the
// one-shot and bounded-wait endpoints don't hammer the IMAP server.
var CodeCacheClient *redis.Client

// InitCodeCache initializes the Redis client for verification-code caching.
func InitCodeCache() {
	CodeCacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisCacheDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := CodeCacheClient.Ping(ctx).Result()
	if err != nil {
		log.Fatalf("Failed to connect to Redis (Code Cache): %v", err)
	}
}

// GetCodeCacheClient returns the verification-code cache client.
func GetCodeCacheClient() *redis.Client {
	if CodeCacheClient == nil {
		InitCodeCache()
	}
	return CodeCacheClient
}
