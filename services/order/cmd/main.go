// Order Service — gRPC сервис управления заказами.
// Демонстрирует четыре формы вызова: унарные методы, серверный стрим,
// клиентский стрим и двунаправленный стрим.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"

	orderv1 "github.com/LoaiSaberC4r/GrpcDemo/api/order/v1"
	"github.com/LoaiSaberC4r/GrpcDemo/pkg/config"
	"github.com/LoaiSaberC4r/GrpcDemo/pkg/db"
	"github.com/LoaiSaberC4r/GrpcDemo/pkg/healthcheck"
	"github.com/LoaiSaberC4r/GrpcDemo/pkg/jwt"
	"github.com/LoaiSaberC4r/GrpcDemo/pkg/logger"
	"github.com/LoaiSaberC4r/GrpcDemo/pkg/metrics"
	"github.com/LoaiSaberC4r/GrpcDemo/pkg/middleware"
	"github.com/LoaiSaberC4r/GrpcDemo/pkg/tracing"
	"github.com/LoaiSaberC4r/GrpcDemo/services/order/internal/auth"
	ordergrpc "github.com/LoaiSaberC4r/GrpcDemo/services/order/internal/grpc"
	"github.com/LoaiSaberC4r/GrpcDemo/services/order/internal/service"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка загрузки конфигурации: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	logger.Init(logger.Config{
		Level:  cfg.App.LogLevel,
		Pretty: cfg.App.LogPretty,
	})

	log := logger.With().Str("service", "order-service").Logger()

	log.Info().
		Str("env", cfg.App.Env).
		Int("port", cfg.GRPC.Port).
		Msg("Запуск Order Service")

	// Инициализируем трассировку
	shutdownTracer, err := tracing.InitTracer(tracing.Config{
		ServiceName:  cfg.App.Name,
		OTLPEndpoint: cfg.Jaeger.OTLPEndpoint(),
		Enabled:      cfg.Jaeger.Enabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Ошибка инициализации трассировки")
	}

	// Подключаемся к Redis (blacklist токенов, rate limit)
	rdb := db.ConnectRedis(cfg.Redis)
	log.Info().Str("addr", cfg.Redis.Addr()).Msg("Подключение к Redis установлено")

	// Менеджер токенов: сервер заказов только валидирует,
	// приватный ключ не обязателен.
	jwtManager, err := jwt.NewManager(jwt.Config{
		PrivateKeyPath: cfg.JWT.PrivateKeyPath,
		PublicKeyPath:  cfg.JWT.PublicKeyPath,
		Issuer:         cfg.JWT.Issuer,
		TokenTTL:       cfg.JWT.AccessTokenTTL,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Ошибка создания JWT менеджера")
	}
	jwtManager.SetBlacklist(jwt.NewBlacklist(rdb))

	// Создаём слои приложения
	orderService := service.NewOrderService()
	orderHandler := ordergrpc.NewHandler(orderService, cfg.Order.StreamInterval)
	authInterceptor := auth.NewInterceptor(jwtManager)

	// Дополнительные interceptors внутри цепочки трекинга:
	// их отказы тоже получают трейлер корреляции и метрики.
	extraUnary := []grpc.UnaryServerInterceptor{authInterceptor.Unary()}
	extraStream := []grpc.StreamServerInterceptor{authInterceptor.Stream()}

	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Redis:  rdb,
			Limit:  cfg.RateLimit.Limit,
			Window: cfg.RateLimit.Window,
		})
		extraUnary = append(extraUnary, limiter.UnaryInterceptor())
		extraStream = append(extraStream, limiter.StreamInterceptor())
	}

	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(middleware.ChainUnaryInterceptors(extraUnary...)...),
		grpc.ChainStreamInterceptor(middleware.ChainStreamInterceptors(extraStream...)...),
	)

	orderv1.RegisterOrderServiceServer(grpcServer, orderHandler)

	// HTTP сервер метрик и health checks
	var metricsServer *metrics.Server
	if cfg.Metrics.Enabled {
		metricsServer = metrics.NewServer(cfg.Metrics.Addr(), cfg.App.Name,
			metrics.WithReadinessCheck(func(ctx context.Context) error {
				return healthcheck.CheckRedis(ctx, rdb)
			}),
		)
		go func() {
			log.Info().Str("addr", cfg.Metrics.Addr()).Msg("Сервер метрик запущен")
			if err := metricsServer.Start(); err != nil {
				log.Error().Err(err).Msg("Ошибка сервера метрик")
			}
		}()
	}

	// Запускаем gRPC сервер
	addr := cfg.GRPC.Addr()
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatal().Err(err).Str("addr", addr).Msg("Ошибка создания listener")
	}

	go func() {
		log.Info().Str("addr", addr).Msg("gRPC сервер запущен")
		if err := grpcServer.Serve(listener); err != nil {
			log.Fatal().Err(err).Msg("Ошибка gRPC сервера")
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Получен сигнал завершения, останавливаем сервер...")

	grpcServer.GracefulStop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Ошибка остановки сервера метрик")
		}
	}

	if err := shutdownTracer(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Ошибка остановки трассировки")
	}

	if err := rdb.Close(); err != nil {
		log.Error().Err(err).Msg("Ошибка закрытия Redis")
	}

	log.Info().Msg("Order Service остановлен")
}
