// Package client содержит gRPC клиент демо-сценария сервиса заказов.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"

	orderv1 "github.com/LoaiSaberC4r/GrpcDemo/api/order/v1"
	"github.com/LoaiSaberC4r/GrpcDemo/pkg/circuitbreaker"
	"github.com/LoaiSaberC4r/GrpcDemo/pkg/logger"
	"github.com/LoaiSaberC4r/GrpcDemo/pkg/middleware"
)

// OrderClient — клиент Order Service.
// Токен и язык передаются в metadata каждого вызова.
type OrderClient struct {
	conn   *grpc.ClientConn
	client orderv1.OrderServiceClient

	token    string
	language string
}

// Config — конфигурация клиента.
type Config struct {
	Addr           string                  // адрес Order Service (host:port)
	Token          string                  // bearer токен; пустой - анонимные вызовы
	Language       string                  // значение accept-language, опционально
	CircuitBreaker *circuitbreaker.Breaker // Circuit Breaker (опционально)
}

// New создает gRPC клиент к Order Service.
func New(cfg Config) (*OrderClient, error) {
	opts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}
	if cfg.CircuitBreaker != nil {
		opts = append(opts, grpc.WithUnaryInterceptor(
			circuitbreaker.UnaryClientInterceptor(cfg.CircuitBreaker),
		))
	}

	conn, err := grpc.NewClient(cfg.Addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания gRPC клиента (%s): %w", cfg.Addr, err)
	}

	logger.Info().
		Str("addr", cfg.Addr).
		Msg("Подключено к Order Service")

	return &OrderClient{
		conn:     conn,
		client:   orderv1.NewOrderServiceClient(conn),
		token:    cfg.Token,
		language: cfg.Language,
	}, nil
}

// Close закрывает соединение с Order Service.
func (c *OrderClient) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// withMetadata добавляет токен и язык в metadata исходящего вызова.
func (c *OrderClient) withMetadata(ctx context.Context) context.Context {
	if c.token != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+c.token)
	}
	if c.language != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, middleware.AcceptLanguageKey, c.language)
	}
	return ctx
}

// CreateOrder создает заказ и возвращает его идентификатор.
// Трейлер с correlation id логируется для наглядности демо.
func (c *OrderClient) CreateOrder(ctx context.Context, orderName string, items []*orderv1.OrderItem) (*orderv1.CreateOrderResponse, error) {
	ctx = c.withMetadata(ctx)

	var trailer metadata.MD
	resp, err := c.client.CreateOrder(ctx, &orderv1.CreateOrderRequest{
		OrderName: orderName,
		Items:     items,
	}, grpc.Trailer(&trailer))
	if err != nil {
		return nil, err
	}

	logger.Info().
		Str("order_id", resp.OrderId).
		Str("status", resp.Status).
		Strs("correlation_id", trailer.Get(middleware.CorrelationIDKey)).
		Msg("Заказ создан")

	return resp, nil
}

// GetOrder возвращает заказ по идентификатору.
func (c *OrderClient) GetOrder(ctx context.Context, orderID string) (*orderv1.GetOrderResponse, error) {
	return c.client.GetOrder(c.withMetadata(ctx), &orderv1.GetOrderRequest{OrderId: orderID})
}

// StreamOrders вычитывает серверный стрим до конца и возвращает
// полученные кадры.
func (c *OrderClient) StreamOrders(ctx context.Context, orderName string) ([]*orderv1.GetOrderResponse, error) {
	stream, err := c.client.StreamOrders(c.withMetadata(ctx), &orderv1.CreateOrderRequest{
		OrderName: orderName,
	})
	if err != nil {
		return nil, err
	}

	var frames []*orderv1.GetOrderResponse
	for {
		frame, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return frames, nil
		}
		if err != nil {
			return frames, err
		}

		logger.Info().
			Str("order_id", frame.OrderId).
			Str("order_name", frame.OrderName).
			Msg("Получен кадр StreamOrders")
		frames = append(frames, frame)
	}
}

// UploadOrders отправляет пакет заказов и возвращает итог сервера.
func (c *OrderClient) UploadOrders(ctx context.Context, orders []*orderv1.CreateOrderRequest) (*orderv1.UploadOrdersResponse, error) {
	stream, err := c.client.UploadOrders(c.withMetadata(ctx))
	if err != nil {
		return nil, err
	}

	for _, order := range orders {
		if err := stream.Send(order); err != nil {
			return nil, err
		}
	}

	summary, err := stream.CloseAndRecv()
	if err != nil {
		return nil, err
	}

	logger.Info().
		Int32("total_orders", summary.TotalOrders).
		Int32("total_items", summary.TotalItems).
		Msg("Загрузка заказов завершена")

	return summary, nil
}

// liveRecvResult - итог читающей горутины LiveOrders: накопленные
// обновления и ошибка, завершившая чтение.
type liveRecvResult struct {
	updates []*orderv1.LiveOrderServerMessage
	err     error
}

// LiveOrders подписывается на список заказов и собирает ответные
// обновления. Чтение идет параллельно с отправкой, как и положено
// двунаправленному стриму. Накопленные обновления принадлежат читающей
// горутине и передаются наружу одним результатом, поэтому любой путь
// выхода сначала дожидается ее завершения.
func (c *OrderClient) LiveOrders(ctx context.Context, orderIDs []string) ([]*orderv1.LiveOrderServerMessage, error) {
	stream, err := c.client.LiveOrders(c.withMetadata(ctx))
	if err != nil {
		return nil, err
	}

	done := make(chan liveRecvResult, 1)

	go func() {
		var updates []*orderv1.LiveOrderServerMessage
		for {
			update, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				done <- liveRecvResult{updates: updates}
				return
			}
			if err != nil {
				done <- liveRecvResult{updates: updates, err: err}
				return
			}

			logger.Info().
				Str("order_id", update.OrderId).
				Str("status", update.Status).
				Str("message", update.Message).
				Msg("Получено обновление LiveOrders")
			updates = append(updates, update)
		}
	}()

	for _, orderID := range orderIDs {
		if err := stream.Send(&orderv1.LiveOrderClientMessage{
			OrderId: orderID,
			Action:  orderv1.ActionSubscribe,
		}); err != nil {
			// Ошибка Send рвет стрим, Recv в горутине тоже завершится.
			result := <-done
			return result.updates, err
		}
		time.Sleep(100 * time.Millisecond)
	}

	if err := stream.CloseSend(); err != nil {
		result := <-done
		return result.updates, err
	}

	result := <-done
	return result.updates, result.err
}
