// Package config предоставляет загрузку конфигурации из переменных окружения.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config содержит полную конфигурацию приложения.
type Config struct {
	App       AppConfig
	GRPC      GRPCConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Jaeger    JaegerConfig
	Metrics   MetricsConfig
	Order     OrderConfig
	RateLimit RateLimitConfig
}

// AppConfig содержит общие настройки приложения.
type AppConfig struct {
	Name      string `env:"APP_NAME" envDefault:"order-rpc"`
	Env       string `env:"APP_ENV" envDefault:"development"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogPretty bool   `env:"LOG_PRETTY" envDefault:"false"`
}

// GRPCConfig содержит настройки gRPC сервера заказов.
type GRPCConfig struct {
	Host string `env:"GRPC_HOST" envDefault:"0.0.0.0"`
	Port int    `env:"GRPC_PORT" envDefault:"50051"`
}

// Addr возвращает адрес gRPC сервера.
func (c GRPCConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// RedisConfig содержит настройки подключения к Redis.
// Redis используется для blacklist токенов и счетчиков rate limit.
type RedisConfig struct {
	Host     string `env:"REDIS_HOST" envDefault:"localhost"`
	Port     int    `env:"REDIS_PORT" envDefault:"6379"`
	Password string `env:"REDIS_PASSWORD" envDefault:""`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

// Addr возвращает адрес Redis сервера.
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// JWTConfig содержит настройки валидации JWT токенов (RS256).
// PrivateKeyPath нужен только для выпуска токенов (демо клиент);
// сервер заказов валидирует по публичному ключу.
type JWTConfig struct {
	PrivateKeyPath string        `env:"JWT_PRIVATE_KEY_PATH"`
	PublicKeyPath  string        `env:"JWT_PUBLIC_KEY_PATH,required,notEmpty"`
	Issuer         string        `env:"JWT_ISSUER" envDefault:"demo-identity-server"`
	AccessTokenTTL time.Duration `env:"JWT_ACCESS_TOKEN_TTL" envDefault:"15m"`
}

// JaegerConfig содержит настройки трассировки.
type JaegerConfig struct {
	Enabled  bool   `env:"JAEGER_ENABLED" envDefault:"false"`
	Host     string `env:"JAEGER_HOST" envDefault:"localhost"`
	OTLPPort int    `env:"JAEGER_OTLP_PORT" envDefault:"4317"`
}

// OTLPEndpoint возвращает OTLP gRPC endpoint.
func (c JaegerConfig) OTLPEndpoint() string {
	return fmt.Sprintf("%s:%d", c.Host, c.OTLPPort)
}

// MetricsConfig содержит настройки Prometheus метрик.
type MetricsConfig struct {
	Enabled bool `env:"METRICS_ENABLED" envDefault:"true"`
	Port    int  `env:"METRICS_PORT" envDefault:"9090"`
}

// Addr возвращает адрес HTTP сервера метрик.
func (c MetricsConfig) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// OrderConfig содержит настройки обработчиков заказов.
type OrderConfig struct {
	// StreamInterval - пауза между кадрами StreamOrders.
	// В тестах уменьшается, чтобы не ждать реальные секунды.
	StreamInterval time.Duration `env:"ORDER_STREAM_INTERVAL" envDefault:"1s"`
}

// RateLimitConfig содержит настройки ограничения частоты вызовов.
type RateLimitConfig struct {
	Enabled bool          `env:"RATE_LIMIT_ENABLED" envDefault:"false"`
	Limit   int           `env:"RATE_LIMIT_REQUESTS" envDefault:"100"`
	Window  time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подхватывает .env файл, если он существует.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("ошибка парсинга конфигурации: %w", err)
	}

	return cfg, nil
}

// IsDevelopment возвращает true в development режиме.
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

// IsProduction возвращает true в production режиме.
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
