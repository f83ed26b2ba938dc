package middleware

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/LoaiSaberC4r/GrpcDemo/pkg/logger"
	"github.com/LoaiSaberC4r/GrpcDemo/pkg/metrics"
)

// InternalErrorMessage - единственный текст, который видит клиент при
// неклассифицированной ошибке. Детали остаются в серверных логах.
const InternalErrorMessage = "внутренняя ошибка сервера"

// CallKind - топология RPC вызова.
type CallKind string

const (
	CallKindUnary        CallKind = "unary"
	CallKindServerStream CallKind = "server_stream"
	CallKindClientStream CallKind = "client_stream"
	CallKindBidiStream   CallKind = "bidi_stream"
)

// callTrack - состояние одного отслеживаемого вызова.
// Значение живет ровно один вызов и передается параметром,
// без глобального состояния. Жизненный цикл: начат -> выполняется ->
// завершен либо провален; trailer с correlation id добавляется ровно
// один раз при переходе в терминальное состояние.
type callTrack struct {
	method        string
	kind          CallKind
	correlationID string
	start         time.Time
	span          trace.Span
}

// beginCall открывает фазу входа: резолвит correlation id и язык,
// кладет их в контекст, открывает span и логирует старт вызова.
func beginCall(ctx context.Context, method string, kind CallKind) (context.Context, *callTrack) {
	md, _ := metadata.FromIncomingContext(ctx)

	t := &callTrack{
		method:        method,
		kind:          kind,
		correlationID: ResolveCorrelationID(md),
		start:         time.Now(),
	}

	ctx = logger.WithCorrelationID(ctx, t.correlationID)
	ctx = WithLanguage(ctx, ResolveLanguage(md))

	ctx, t.span = otel.Tracer("order-rpc/middleware").Start(ctx, method,
		trace.WithSpanKind(trace.SpanKindServer))

	log := logger.FromContext(ctx)
	log.Info().
		Str("grpc_method", method).
		Str("call_kind", string(kind)).
		Msg("Начат gRPC вызов")

	return ctx, t
}

// finish закрывает фазу выхода: считает длительность, ровно один раз
// добавляет correlation id в trailers, транслирует ошибку и логирует итог.
// setTrailer - функция транспорта (grpc.SetTrailer для unary,
// ServerStream.SetTrailer для стримов).
func (t *callTrack) finish(ctx context.Context, setTrailer func(metadata.MD), err error) error {
	duration := time.Since(t.start)

	trailer := metadata.MD{}
	AppendCorrelationTrailer(trailer, t.correlationID)
	setTrailer(trailer)

	err = t.translate(ctx, err, duration)

	code := status.Code(err)
	metrics.RPCRequestsTotal.WithLabelValues(t.method, code.String()).Inc()
	metrics.RPCDuration.WithLabelValues(t.method).Observe(duration.Seconds())

	log := logger.FromContext(ctx)
	if err == nil {
		t.span.SetStatus(otelcodes.Ok, "")
		log.Info().
			Str("grpc_method", t.method).
			Str("call_kind", string(t.kind)).
			Str("grpc_code", code.String()).
			Dur("duration", duration).
			Msg("gRPC вызов завершен успешно")
	} else {
		t.span.RecordError(err)
		t.span.SetStatus(otelcodes.Error, code.String())
	}
	t.span.End()

	return err
}

// translate применяет политику трансляции ошибок:
//   - статусные (классифицированные) ошибки проходят без изменений
//     и логируются на уровне warn;
//   - ошибки контекста превращаются в Cancelled / DeadlineExceeded;
//   - все остальное логируется на уровне error с полными деталями
//     и подменяется на общий Internal статус.
func (t *callTrack) translate(ctx context.Context, err error, duration time.Duration) error {
	if err == nil {
		return nil
	}

	log := logger.FromContext(ctx)

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		translated := status.FromContextError(err).Err()
		log.Warn().
			Err(err).
			Str("grpc_method", t.method).
			Str("call_kind", string(t.kind)).
			Str("grpc_code", status.Code(translated).String()).
			Dur("duration", duration).
			Msg("gRPC вызов прерван контекстом")
		return translated
	}

	if _, ok := status.FromError(err); ok {
		log.Warn().
			Err(err).
			Str("grpc_method", t.method).
			Str("call_kind", string(t.kind)).
			Str("grpc_code", status.Code(err).String()).
			Dur("duration", duration).
			Msg("gRPC вызов завершился статусной ошибкой")
		return err
	}

	// Неклассифицированная ошибка: детали только в лог,
	// клиенту - общий Internal.
	log.Error().
		Err(err).
		Str("grpc_method", t.method).
		Str("call_kind", string(t.kind)).
		Dur("duration", duration).
		Msg("Неклассифицированная ошибка в gRPC обработчике")

	return status.Error(codes.Internal, InternalErrorMessage)
}
