package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

var Ctx = context.Background()
var Redis *redis.Client

// Connect wires the optional read cache. The service works without it, so
// an unreachable redis only logs a warning.
func Connect(addr, password string, db int) {
	if addr == "" {
		return
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if _, err := client.Ping(Ctx).Result(); err != nil {
		log.Printf("Redis unavailable, running without cache: %v", err)
		return
	}

	Redis = client
	log.Println("Redis connected")
}

func Enabled() bool {
	return Redis != nil
}

func GetJSON(key string, dest interface{}) bool {
	if !Enabled() {
		return false
	}
	val, err := Redis.Get(Ctx, key).Result()
	if err != nil {
		return false
	}
	return json.Unmarshal([]byte(val), dest) == nil
}

func SetJSON(key string, value interface{}, ttl time.Duration) {
	if !Enabled() {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	Redis.Set(Ctx, key, data, ttl)
}

func Delete(keys ...string) {
	if !Enabled() || len(keys) == 0 {
		return
	}
	Redis.Del(Ctx, keys...)
}
