// Package metrics предоставляет Prometheus метрики RPC вызовов и HTTP
// сервер для их экспорта вместе с liveness/readiness probe.
//
// Использование:
//
//	srv := metrics.NewServer(":9090", "order-rpc")
//	go srv.Start()
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/LoaiSaberC4r/GrpcDemo/pkg/logger"
)

var (
	// RPCRequestsTotal - счетчик завершенных RPC вызовов по методу
	// и итоговому статус-коду.
	// PromQL: rate(rpc_requests_total{grpc_code!="OK"}[5m]) - частота ошибок.
	RPCRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rpc_requests_total",
			Help: "Количество завершенных RPC вызовов по методу и статус-коду",
		},
		[]string{"grpc_method", "grpc_code"},
	)

	// RPCDuration - гистограмма длительности вызовов.
	// Для стримов измеряется полное время жизни стрима, поэтому верхние
	// границы шире типичных API bucket'ов.
	RPCDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rpc_duration_seconds",
			Help:    "Длительность RPC вызова в секундах",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"grpc_method"},
	)
)

// ReadinessChecker - проверка готовности сервиса принимать трафик.
type ReadinessChecker func(ctx context.Context) error

// Server - HTTP сервер метрик и health probe.
type Server struct {
	httpServer     *http.Server
	service        string
	readinessCheck ReadinessChecker
}

// Option - функциональная опция Server.
type Option func(*Server)

// WithReadinessCheck добавляет проверку готовности для /readyz.
// При ошибке checker'а /readyz возвращает 503.
func WithReadinessCheck(checker ReadinessChecker) Option {
	return func(s *Server) {
		s.readinessCheck = checker
	}
}

// NewServer создает сервер метрик на указанном адресе.
func NewServer(addr, service string, opts ...Option) *Server {
	s := &Server{service: service}
	for _, opt := range opts {
		opt(s)
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// /metrics - сюда приходит Prometheus за метриками.
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// /healthz - liveness probe: процесс жив, раз отвечает.
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "alive"})
	})

	// /readyz - readiness probe: зависимости доступны.
	router.GET("/readyz", func(c *gin.Context) {
		if s.readinessCheck == nil {
			c.JSON(http.StatusOK, gin.H{"status": "ready"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if err := s.readinessCheck(ctx); err != nil {
			// Детали ошибки наружу не выводим.
			logger.Warn().Err(err).Str("service", s.service).Msg("Readiness check провален")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	return s
}

// Start запускает HTTP сервер. Блокирующий вызов - запускать в горутине.
func (s *Server) Start() error {
	log := logger.With().Str("service", s.service).Logger()
	log.Info().Str("addr", s.httpServer.Addr).Msg("Запуск metrics сервера")

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully останавливает сервер.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
