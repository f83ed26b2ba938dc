// Package db содержит конструкторы подключений к инфраструктуре.
package db

import (
	"github.com/redis/go-redis/v9"

	"github.com/LoaiSaberC4r/GrpcDemo/pkg/config"
)

// ConnectRedis создает клиент Redis для blacklist токенов и rate limiting.
func ConnectRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}
