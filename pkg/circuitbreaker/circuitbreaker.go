// Package circuitbreaker предоставляет Circuit Breaker для защиты от каскадных сбоев.
// Используется в двух местах: в gRPC клиентах (быстрый отказ при недоступности
// сервера) и вокруг обращений к Redis из серверных interceptors.
//
// Состояния Circuit Breaker:
//   - Closed: нормальная работа, запросы проходят
//   - Open: зависимость недоступна, запросы отклоняются мгновенно
//   - Half-Open: пробный период, пропускаем часть запросов для проверки восстановления
//
// Использование:
//
//	cb := circuitbreaker.New("order-service")
//	conn, _ := grpc.NewClient(addr,
//	    grpc.WithUnaryInterceptor(circuitbreaker.UnaryClientInterceptor(cb)),
//	)
package circuitbreaker

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/LoaiSaberC4r/GrpcDemo/pkg/logger"
)

// Settings - настройки Circuit Breaker.
type Settings struct {
	MaxRequests  uint32        // Макс. запросов в Half-Open состоянии (по умолчанию 1)
	Interval     time.Duration // Интервал сброса счётчика в Closed (по умолчанию 60s)
	Timeout      time.Duration // Время в Open до перехода в Half-Open (по умолчанию 30s)
	FailureRatio float64       // Доля ошибок для перехода в Open (по умолчанию 0.5)
	MinRequests  uint32        // Мин. запросов для расчёта ratio (по умолчанию 5)
}

// DefaultSettings возвращает настройки по умолчанию.
func DefaultSettings() Settings {
	return Settings{
		MaxRequests:  1,
		Interval:     60 * time.Second,
		Timeout:      30 * time.Second,
		FailureRatio: 0.5,
		MinRequests:  5,
	}
}

// Breaker - обёртка над gobreaker с логированием смены состояний.
type Breaker struct {
	cb   *gobreaker.CircuitBreaker[any]
	name string
}

// New создаёт новый Circuit Breaker с настройками по умолчанию.
func New(name string) *Breaker {
	return NewWithSettings(name, DefaultSettings())
}

// NewWithSettings создаёт Circuit Breaker с пользовательскими настройками.
func NewWithSettings(name string, s Settings) *Breaker {
	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        name,
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,

		// Открываем, если доля ошибок >= FailureRatio
		// при >= MinRequests запросов.
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < s.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= s.FailureRatio
		},

		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log := logger.With().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Logger()

			switch to {
			case gobreaker.StateOpen:
				log.Warn().Msg("Circuit Breaker ОТКРЫТ. Зависимость недоступна")
			case gobreaker.StateHalfOpen:
				log.Info().Msg("Circuit Breaker ПОЛУОТКРЫТ. Пробуем восстановить")
			case gobreaker.StateClosed:
				log.Info().Msg("Circuit Breaker ЗАКРЫТ. Зависимость восстановлена")
			}
		},
	})

	return &Breaker{cb: cb, name: name}
}

// Do выполняет fn через Circuit Breaker. В состоянии Open возвращает
// ошибку мгновенно, без обращения к зависимости. Подходит для
// оборачивания вызовов Redis и других внешних хранилищ.
func (b *Breaker) Do(fn func() error) error {
	_, err := b.cb.Execute(func() (any, error) {
		return nil, fn()
	})
	return err
}

// IsOpen сообщает, что ошибка означает отклонение самим breaker:
// вызов даже не дошёл до зависимости.
func IsOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) ||
		errors.Is(err, gobreaker.ErrTooManyRequests)
}

// State возвращает текущее состояние breaker.
func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}

// Name возвращает имя breaker.
func (b *Breaker) Name() string {
	return b.name
}

// UnaryClientInterceptor оборачивает каждый unary RPC вызов клиента
// в Circuit Breaker.
func UnaryClientInterceptor(b *Breaker) grpc.UnaryClientInterceptor {
	return func(
		ctx context.Context,
		method string,
		req, reply any,
		cc *grpc.ClientConn,
		invoker grpc.UnaryInvoker,
		opts ...grpc.CallOption,
	) error {
		var invokeErr error

		_, cbErr := b.cb.Execute(func() (any, error) {
			invokeErr = invoker(ctx, method, req, reply, cc, opts...)
			// В breaker учитываются только инфраструктурные ошибки.
			// Бизнес-ошибки (NotFound, InvalidArgument) его не открывают.
			if invokeErr != nil && isInfrastructureFailure(invokeErr) {
				return nil, invokeErr
			}
			return nil, nil
		})

		if errors.Is(cbErr, gobreaker.ErrOpenState) {
			return status.Error(codes.Unavailable, "сервис временно недоступен (circuit breaker open)")
		}
		if errors.Is(cbErr, gobreaker.ErrTooManyRequests) {
			return status.Error(codes.Unavailable, "слишком много запросов (circuit breaker half-open)")
		}

		return invokeErr
	}
}

// isInfrastructureFailure определяет, учитывается ли ошибка в Circuit Breaker.
func isInfrastructureFailure(err error) bool {
	st, ok := status.FromError(err)
	if !ok {
		return true
	}

	switch st.Code() {
	case codes.Unavailable,
		codes.DeadlineExceeded,
		codes.Aborted,
		codes.Internal,
		codes.Unknown:
		return true
	default:
		return false
	}
}
