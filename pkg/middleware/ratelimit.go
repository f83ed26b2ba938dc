package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	"github.com/LoaiSaberC4r/GrpcDemo/pkg/circuitbreaker"
	"github.com/LoaiSaberC4r/GrpcDemo/pkg/logger"
)

// RateLimiter ограничивает частоту вызовов по адресу клиента.
// Счетчики хранятся в Redis (fixed window counter), при недоступности
// Redis запросы пропускаются (fail-open). Обращения к Redis идут через
// Circuit Breaker: после серии сбоев Redis перестает дергаться вовсе,
// вызовы пропускаются мгновенно до восстановления.
type RateLimiter struct {
	redis   *redis.Client
	limit   int
	window  time.Duration
	breaker *circuitbreaker.Breaker
}

// RateLimiterConfig - конфигурация rate limiter.
type RateLimiterConfig struct {
	Redis   *redis.Client
	Limit   int                     // лимит вызовов в окне, по умолчанию 100
	Window  time.Duration           // временное окно, по умолчанию 1 минута
	Breaker *circuitbreaker.Breaker // защита Redis, по умолчанию создается свой
}

// NewRateLimiter создает rate limiter.
func NewRateLimiter(cfg RateLimiterConfig) *RateLimiter {
	if cfg.Limit <= 0 {
		cfg.Limit = 100
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.Breaker == nil {
		cfg.Breaker = circuitbreaker.New("ratelimit-redis")
	}

	return &RateLimiter{
		redis:   cfg.Redis,
		limit:   cfg.Limit,
		window:  cfg.Window,
		breaker: cfg.Breaker,
	}
}

// incrScript атомарно увеличивает счетчик окна и выставляет TTL
// при первом обращении.
var incrScript = redis.NewScript(`
	local current = redis.call("INCR", KEYS[1])
	if current == 1 then
		redis.call("EXPIRE", KEYS[1], ARGV[1])
	end
	return current
`)

// Allow проверяет и увеличивает счетчик вызовов для ключа.
func (rl *RateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	windowSec := int(rl.window.Seconds())

	var current int
	err := rl.breaker.Do(func() error {
		var runErr error
		current, runErr = incrScript.Run(ctx, rl.redis, []string{key}, windowSec).Int()
		return runErr
	})
	if err != nil {
		return true, err // fail-open
	}
	return current <= rl.limit, nil
}

// UnaryInterceptor возвращает interceptor ограничения unary вызовов.
func (rl *RateLimiter) UnaryInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		if err := rl.check(ctx, info.FullMethod); err != nil {
			return nil, err
		}
		return handler(ctx, req)
	}
}

// StreamInterceptor возвращает interceptor ограничения стримов.
// Лимит проверяется один раз при открытии стрима.
func (rl *RateLimiter) StreamInterceptor() grpc.StreamServerInterceptor {
	return func(
		srv any,
		ss grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) error {
		if err := rl.check(ss.Context(), info.FullMethod); err != nil {
			return err
		}
		return handler(srv, ss)
	}
}

// check применяет лимит к вызову. Превышение - ResourceExhausted.
func (rl *RateLimiter) check(ctx context.Context, method string) error {
	log := logger.FromContext(ctx)

	addr := "unknown"
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		addr = p.Addr.String()
	}
	key := fmt.Sprintf("rate:%s:%s", method, addr)

	allowed, err := rl.Allow(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("grpc_method", method).Msg("Ошибка проверки rate limit")
		return nil
	}

	if !allowed {
		log.Warn().
			Str("grpc_method", method).
			Str("peer", addr).
			Int("limit", rl.limit).
			Msg("Rate limit превышен")
		return status.Errorf(codes.ResourceExhausted,
			"превышен лимит запросов, повторите через %d секунд", int(rl.window.Seconds()))
	}

	return nil
}
