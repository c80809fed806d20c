package redis

import (
	"context"
	"log"
	"os"

	"github.com/redis/go-redis/v9"
)

var (
	Client *redis.Client
	Ctx    = context.Background()
)

func InitRedis() {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	Client = redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   0,
	})

	// Test connection. Redis only backs the push-token registry, so a
	// missing server degrades push delivery rather than killing the app.
	if _, err := Client.Ping(Ctx).Result(); err != nil {
		log.Printf("Warning: failed to connect to Redis at %s: %v (push notifications disabled)", addr, err)
		return
	}
	log.Println("✅ Connected to Redis")
}
