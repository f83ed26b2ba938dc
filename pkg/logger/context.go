package logger

import (
	"context"

	"github.com/rs/zerolog"
)

// ctxKey - приватный тип ключей контекста, чтобы исключить коллизии
// с другими пакетами.
type ctxKey string

const (
	// correlationIDKey - ключ для хранения correlation_id в контексте.
	// Correlation ID присваивается каждому RPC вызову ровно один раз
	// и связывает клиентские ошибки с серверными логами.
	correlationIDKey ctxKey = "correlation_id"

	// loggerKey - ключ для хранения логгера в контексте.
	loggerKey ctxKey = "logger"
)

// WithCorrelationID добавляет correlation_id в контекст.
// Вызывается interceptor'ом на входе вызова; дальше идентификатор
// передается только через контекст, без глобального состояния.
func WithCorrelationID(ctx context.Context, correlationID string) context.Context {
	return context.WithValue(ctx, correlationIDKey, correlationID)
}

// CorrelationIDFromContext извлекает correlation_id из контекста.
// Возвращает пустую строку, если идентификатор не установлен.
func CorrelationIDFromContext(ctx context.Context) string {
	if correlationID, ok := ctx.Value(correlationIDKey).(string); ok {
		return correlationID
	}
	return ""
}

// WithLogger добавляет настроенный логгер в контекст.
func WithLogger(ctx context.Context, l zerolog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext извлекает логгер из контекста и дополняет его
// correlation_id, если тот присутствует.
//
// Это основной способ получения логгера в обработчиках:
//
//	log := logger.FromContext(ctx)
//	log.Info().Str("order_id", orderID).Msg("Заказ получен")
func FromContext(ctx context.Context) zerolog.Logger {
	var l zerolog.Logger
	if ctxLogger, ok := ctx.Value(loggerKey).(zerolog.Logger); ok {
		l = ctxLogger
	} else {
		l = log
	}

	if correlationID := CorrelationIDFromContext(ctx); correlationID != "" {
		l = l.With().Str("correlation_id", correlationID).Logger()
	}

	return l
}

// Ctx возвращает указатель на логгер из контекста, по аналогии с zerolog.Ctx.
func Ctx(ctx context.Context) *zerolog.Logger {
	l := FromContext(ctx)
	return &l
}
