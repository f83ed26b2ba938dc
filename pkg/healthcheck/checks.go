// Package healthcheck предоставляет проверки готовности для /readyz.
package healthcheck

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// CheckRedis проверяет доступность Redis.
func CheckRedis(ctx context.Context, rdb *redis.Client) error {
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Composite объединяет несколько проверок в одну.
// Возвращает первую ошибку либо nil, если все проверки пройдены.
func Composite(checks ...func(context.Context) error) func(context.Context) error {
	return func(ctx context.Context) error {
		for _, check := range checks {
			if err := check(ctx); err != nil {
				return err
			}
		}
		return nil
	}
}
