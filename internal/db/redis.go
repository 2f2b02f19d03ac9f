package db

import (
	"github.com/Dilhara2002/lak-travelers-sub000/internal/config"

	"github.com/redis/go-redis/v9"
)

// ConnectRedis returns nil without REDIS_ADDR. OTPs then live in go-cache and
// booking events reach only this instance's websockets.
func ConnectRedis(cfg config.Config) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}

	return redis.NewClient(&redis.Options{
		Addr:       cfg.RedisAddr,
		Password:   cfg.RedisPassword,
		DB:         cfg.RedisDB,
		ClientName: applicationName,
	})
}
