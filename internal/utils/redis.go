package utils

import (
	"net"

	"github.com/redis/go-redis/v9"

	"geodata/internal/logger"
)

// RedisOptionsFromEnv：REDIS_HOST/REDIS_PORT/REDIS_PASS/REDIS_DB；REDIS_DB 非法时回退到 0
func RedisOptionsFromEnv() *redis.Options {
	return &redis.Options{
		Addr:     net.JoinHostPort(envOr("REDIS_HOST", "127.0.0.1"), envOr("REDIS_PORT", "6379")),
		Password: envOr("REDIS_PASS", ""),
		DB:       envInt("REDIS_DB", 0),
	}
}

func OpenRedisFromEnv() *redis.Client {
	opt := RedisOptionsFromEnv()
	logger.L().Debug("redis_env", "addr", opt.Addr, "db", opt.DB)
	return redis.NewClient(opt)
}
