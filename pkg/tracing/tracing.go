// Package tracing инициализирует distributed tracing через OpenTelemetry.
// Spans отправляются в Jaeger по OTLP gRPC; сам span на каждый RPC вызов
// открывает tracking interceptor (pkg/middleware).
package tracing

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/LoaiSaberC4r/GrpcDemo/pkg/logger"
)

// Config содержит настройки tracing.
type Config struct {
	ServiceName  string // имя сервиса в Jaeger UI
	OTLPEndpoint string // OTLP gRPC endpoint, например "localhost:4317"
	Enabled      bool   // false - spans не записываются (тесты, локальный запуск)
}

// ShutdownFunc - graceful shutdown трейсера.
type ShutdownFunc func(ctx context.Context) error

// InitTracer настраивает глобальный TracerProvider.
// Возвращает shutdown функцию; при выключенном tracing - no-op.
func InitTracer(cfg Config) (ShutdownFunc, error) {
	log := logger.With().Str("service", cfg.ServiceName).Logger()

	if !cfg.Enabled || cfg.OTLPEndpoint == "" {
		log.Info().Msg("Tracing отключен")
		return func(ctx context.Context) error { return nil }, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, err := grpc.NewClient(
		cfg.OTLPEndpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, err
	}

	exporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, err
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
		),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	otel.SetTracerProvider(tp)

	// W3C TraceContext - стандартный формат передачи trace id между
	// сервисами (header traceparent).
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	log.Info().Str("endpoint", cfg.OTLPEndpoint).Msg("Tracing инициализирован")

	return func(ctx context.Context) error {
		if err := tp.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("Ошибка завершения TracerProvider")
		}
		if err := conn.Close(); err != nil {
			return err
		}
		return nil
	}, nil
}
