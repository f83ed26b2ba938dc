package auth

import (
	"context"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/LoaiSaberC4r/GrpcDemo/pkg/jwt"
	"github.com/LoaiSaberC4r/GrpcDemo/pkg/logger"
)

// AuthorizationKey — metadata ключ с bearer токеном.
const AuthorizationKey = "authorization"

const bearerPrefix = "bearer "

// TokenValidator — интерфейс для валидации токенов.
// Позволяет мокировать в тестах вместо реального jwt.Manager.
type TokenValidator interface {
	ValidateWithBlacklist(ctx context.Context, tokenString string) (*jwt.Claims, error)
}

type claimsCtxKey struct{}

// WithClaims сохраняет данные токена в контекст.
func WithClaims(ctx context.Context, claims *jwt.Claims) context.Context {
	return context.WithValue(ctx, claimsCtxKey{}, claims)
}

// ClaimsFromContext возвращает данные токена из контекста.
// Для анонимных вызовов возвращает nil.
func ClaimsFromContext(ctx context.Context) *jwt.Claims {
	claims, _ := ctx.Value(claimsCtxKey{}).(*jwt.Claims)
	return claims
}

// Interceptor проверяет токены и роли по таблице methodPolicy.
type Interceptor struct {
	validator TokenValidator
}

// NewInterceptor создает авторизационный interceptor.
func NewInterceptor(validator TokenValidator) *Interceptor {
	return &Interceptor{validator: validator}
}

// Unary возвращает interceptor для унарных методов.
func (i *Interceptor) Unary() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		ctx, err := i.authorize(ctx, info.FullMethod)
		if err != nil {
			return nil, err
		}
		return handler(ctx, req)
	}
}

// Stream возвращает interceptor для стриминговых методов.
func (i *Interceptor) Stream() grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		ctx, err := i.authorize(ss.Context(), info.FullMethod)
		if err != nil {
			return err
		}
		return handler(srv, &authServerStream{ServerStream: ss, ctx: ctx})
	}
}

// authorize проверяет токен согласно политике метода и кладет
// данные токена в контекст. Отсутствующий или невалидный токен —
// Unauthenticated, недостаточная роль — PermissionDenied.
func (i *Interceptor) authorize(ctx context.Context, fullMethod string) (context.Context, error) {
	log := logger.FromContext(ctx)
	tier := PolicyFor(fullMethod)

	token := extractBearerToken(ctx)
	if token == "" {
		if tier == TierAnonymous {
			return ctx, nil
		}
		log.Debug().Str("method", fullMethod).Msg("Отсутствует токен авторизации")
		return nil, status.Error(codes.Unauthenticated, "требуется авторизация")
	}

	claims, err := i.validator.ValidateWithBlacklist(ctx, token)
	if err != nil {
		log.Warn().Err(err).Str("method", fullMethod).Msg("Ошибка валидации токена")
		return nil, status.Error(codes.Unauthenticated, "невалидный токен")
	}

	if !satisfies(tier, claims) {
		log.Warn().
			Str("method", fullMethod).
			Str("user_id", claims.UserID).
			Str("role", claims.Role).
			Msg("Недостаточно прав для вызова метода")
		return nil, status.Error(codes.PermissionDenied, "недостаточно прав")
	}

	log.Debug().
		Str("user_id", claims.UserID).
		Str("role", claims.Role).
		Msg("Пользователь аутентифицирован")

	return WithClaims(ctx, claims), nil
}

// extractBearerToken достает bearer токен из metadata входящего вызова.
func extractBearerToken(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	for _, value := range md.Get(AuthorizationKey) {
		if len(value) > len(bearerPrefix) && strings.EqualFold(value[:len(bearerPrefix)], bearerPrefix) {
			return strings.TrimSpace(value[len(bearerPrefix):])
		}
	}
	return ""
}

// authServerStream подменяет контекст стрима на контекст с данными токена.
type authServerStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *authServerStream) Context() context.Context {
	return s.ctx
}
