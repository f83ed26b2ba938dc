// Demo Client — консольный сценарий, прогоняющий все методы Order Service:
// унарные вызовы, серверный стрим с отменой, клиентский стрим и
// двунаправленный стрим.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	orderv1 "github.com/LoaiSaberC4r/GrpcDemo/api/order/v1"
	"github.com/LoaiSaberC4r/GrpcDemo/pkg/circuitbreaker"
	"github.com/LoaiSaberC4r/GrpcDemo/pkg/config"
	"github.com/LoaiSaberC4r/GrpcDemo/pkg/jwt"
	"github.com/LoaiSaberC4r/GrpcDemo/pkg/logger"
	"github.com/LoaiSaberC4r/GrpcDemo/services/client/internal/client"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка загрузки конфигурации: %v\n", err)
		os.Exit(1)
	}

	logger.Init(logger.Config{
		Level:  cfg.App.LogLevel,
		Pretty: cfg.App.LogPretty,
	})

	log := logger.With().Str("service", "demo-client").Logger()

	// Демо выпускает себе токен супервизора локально.
	// В реальной системе токен выдает identity provider.
	token, err := issueSupervisorToken(cfg.JWT)
	if err != nil {
		log.Fatal().Err(err).Msg("Ошибка выпуска токена")
	}

	orderClient, err := client.New(client.Config{
		Addr:           cfg.GRPC.Addr(),
		Token:          token,
		Language:       "ar",
		CircuitBreaker: circuitbreaker.New("order-service"),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Ошибка подключения к Order Service")
	}
	defer orderClient.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	// Унарный вызов: создание заказа.
	created, err := orderClient.CreateOrder(ctx, "Демо заказ", []*orderv1.OrderItem{
		{ItemName: "Клавиатура", Quantity: 1},
		{ItemName: "Мышь", Quantity: 2},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("CreateOrder завершился ошибкой")
	}

	// Унарный вызов: чтение заказа.
	order, err := orderClient.GetOrder(ctx, created.OrderId)
	if err != nil {
		log.Fatal().Err(err).Msg("GetOrder завершился ошибкой")
	}
	log.Info().
		Str("order_id", order.OrderId).
		Str("order_name", order.OrderName).
		Int("items", len(order.Items)).
		Msg("Заказ получен")

	// Серверный стрим: вычитываем серию кадров целиком.
	frames, err := orderClient.StreamOrders(ctx, "Стрим заказов")
	if err != nil {
		log.Fatal().Err(err).Msg("StreamOrders завершился ошибкой")
	}
	log.Info().Int("frames", len(frames)).Msg("Серверный стрим завершен")

	// Серверный стрим с отменой: прерываем вызов, не дождавшись конца.
	streamCtx, cancelStream := context.WithCancel(ctx)
	go func() {
		time.Sleep(1500 * time.Millisecond)
		cancelStream()
	}()
	if _, err := orderClient.StreamOrders(streamCtx, "Прерванный стрим"); err != nil {
		log.Info().Err(err).Msg("Стрим отменен клиентом")
	}

	// Клиентский стрим: пакетная загрузка заказов.
	summary, err := orderClient.UploadOrders(ctx, []*orderv1.CreateOrderRequest{
		{OrderName: "Партия 1", Items: []*orderv1.OrderItem{{ItemName: "Монитор", Quantity: 1}}},
		{OrderName: "Партия 2", Items: []*orderv1.OrderItem{{ItemName: "Кабель", Quantity: 3}, {ItemName: "Хаб", Quantity: 1}}},
		{OrderName: "Партия 3", Items: []*orderv1.OrderItem{{ItemName: "Наушники", Quantity: 2}}},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("UploadOrders завершился ошибкой")
	}
	log.Info().
		Int32("total_orders", summary.TotalOrders).
		Int32("total_items", summary.TotalItems).
		Msg("Клиентский стрим завершен")

	// Двунаправленный стрим: подписка на обновления заказов.
	updates, err := orderClient.LiveOrders(ctx, []string{created.OrderId, "order-2", "order-3"})
	if err != nil {
		log.Fatal().Err(err).Msg("LiveOrders завершился ошибкой")
	}
	log.Info().Int("updates", len(updates)).Msg("Двунаправленный стрим завершен")

	log.Info().Msg("Демо сценарий выполнен")
}

// issueSupervisorToken выпускает токен с ролью supervisor.
// Требует настроенного приватного ключа (JWT_PRIVATE_KEY_PATH).
func issueSupervisorToken(cfg config.JWTConfig) (string, error) {
	manager, err := jwt.NewManager(jwt.Config{
		PrivateKeyPath: cfg.PrivateKeyPath,
		PublicKeyPath:  cfg.PublicKeyPath,
		Issuer:         cfg.Issuer,
		TokenTTL:       cfg.AccessTokenTTL,
	})
	if err != nil {
		return "", err
	}
	if !manager.CanSign() {
		return "", fmt.Errorf("не задан JWT_PRIVATE_KEY_PATH, выпуск токена невозможен")
	}
	return manager.Generate("demo-user", jwt.RoleSupervisor)
}
