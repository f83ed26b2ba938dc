// Файл blacklist.go - отзыв токенов через Redis.
package jwt

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// prefixToken - префикс ключей отозванных токенов: jwt:blacklist:{jti}.
const prefixToken = "jwt:blacklist:"

// Blacklist хранит отозванные токены в Redis.
type Blacklist struct {
	redis *redis.Client
}

// NewBlacklist создает blacklist.
func NewBlacklist(client *redis.Client) *Blacklist {
	return &Blacklist{redis: client}
}

// Add добавляет токен в blacklist.
// TTL ключа равен оставшемуся времени жизни токена (автоочистка).
func (b *Blacklist) Add(ctx context.Context, jti string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil // токен уже истек
	}

	if err := b.redis.Set(ctx, prefixToken+jti, "1", ttl).Err(); err != nil {
		return fmt.Errorf("ошибка добавления токена в blacklist: %w", err)
	}
	return nil
}

// Check проверяет, отозван ли токен.
func (b *Blacklist) Check(ctx context.Context, jti string) (bool, error) {
	exists, err := b.redis.Exists(ctx, prefixToken+jti).Result()
	if err != nil {
		return false, fmt.Errorf("ошибка проверки blacklist: %w", err)
	}
	return exists > 0, nil
}
