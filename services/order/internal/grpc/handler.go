// Package grpc содержит gRPC обработчики сервиса заказов.
package grpc

import (
	"context"
	"errors"
	"io"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	orderv1 "github.com/LoaiSaberC4r/GrpcDemo/api/order/v1"
	"github.com/LoaiSaberC4r/GrpcDemo/pkg/logger"
	"github.com/LoaiSaberC4r/GrpcDemo/pkg/middleware"
	"github.com/LoaiSaberC4r/GrpcDemo/services/order/internal/domain"
	"github.com/LoaiSaberC4r/GrpcDemo/services/order/internal/service"
)

// Handler реализует orderv1.OrderServiceServer.
// Обработчики отвечают за форму вызова (стримы, отмена), бизнес-логика
// живет в service.OrderService.
type Handler struct {
	orderService   service.OrderService
	streamInterval time.Duration
}

// NewHandler создает gRPC обработчик.
// streamInterval - пауза между кадрами StreamOrders; в тестах
// уменьшается до миллисекунд.
func NewHandler(orderService service.OrderService, streamInterval time.Duration) *Handler {
	if streamInterval <= 0 {
		streamInterval = time.Second
	}
	return &Handler{
		orderService:   orderService,
		streamInterval: streamInterval,
	}
}

// CreateOrder создает заказ. Пустое имя заказа - InvalidArgument.
func (h *Handler) CreateOrder(ctx context.Context, req *orderv1.CreateOrderRequest) (*orderv1.CreateOrderResponse, error) {
	order, err := h.orderService.CreateOrder(ctx, req.OrderName, protoItemsToDomain(req.Items))
	if err != nil {
		return nil, h.mapError(ctx, err, "CreateOrder")
	}

	return &orderv1.CreateOrderResponse{
		OrderId: order.ID,
		Status:  order.Status,
	}, nil
}

// GetOrder возвращает заказ по идентификатору.
// Проверки существования нет: метод отдает синтетический заказ.
func (h *Handler) GetOrder(ctx context.Context, req *orderv1.GetOrderRequest) (*orderv1.GetOrderResponse, error) {
	order, err := h.orderService.GetOrder(ctx, req.OrderId)
	if err != nil {
		return nil, h.mapError(ctx, err, "GetOrder")
	}

	return domainOrderToProto(order), nil
}

// StreamOrders отдает фиксированную серию кадров с паузой между ними.
// Отмена вызова прерывает и паузу, и саму серию: после отмены кадры
// не отправляются.
func (h *Handler) StreamOrders(req *orderv1.CreateOrderRequest, stream orderv1.OrderService_StreamOrdersServer) error {
	ctx := stream.Context()
	log := logger.FromContext(ctx)

	for seq := 1; seq <= service.StreamOrderCount; seq++ {
		// Отмена проверяется перед каждым кадром, в том числе перед первым.
		if err := ctx.Err(); err != nil {
			return status.FromContextError(err).Err()
		}

		order := h.orderService.StreamOrder(seq)
		if err := stream.Send(domainOrderToProto(order)); err != nil {
			return err
		}

		log.Debug().
			Str("order_id", order.ID).
			Int("seq", seq).
			Msg("Отправлен кадр StreamOrders")

		if seq < service.StreamOrderCount {
			select {
			case <-ctx.Done():
				return status.FromContextError(ctx.Err()).Err()
			case <-time.After(h.streamInterval):
			}
		}
	}

	return nil
}

// UploadOrders вычитывает клиентский стрим до конца и возвращает
// накопленные счетчики. Итог отдается только при естественном
// завершении стрима клиентом; отмена посреди приема - Cancelled,
// частичный итог не возвращается.
func (h *Handler) UploadOrders(stream orderv1.OrderService_UploadOrdersServer) error {
	ctx := stream.Context()
	log := logger.FromContext(ctx)

	var summary domain.UploadSummary
	for {
		req, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			log.Info().
				Int32("total_orders", summary.TotalOrders).
				Int32("total_items", summary.TotalItems).
				Msg("Прием заказов завершен")

			return stream.SendAndClose(&orderv1.UploadOrdersResponse{
				TotalOrders: summary.TotalOrders,
				TotalItems:  summary.TotalItems,
			})
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return status.FromContextError(ctxErr).Err()
			}
			return err
		}

		summary.Add(int32(len(req.Items)))
	}
}

// LiveOrders отвечает ровно одним обновлением на каждое сообщение
// клиента, сохраняя порядок. Завершение стрима клиентом - чистый выход;
// отмена только логируется: статус Cancelled доносит сам транспорт.
func (h *Handler) LiveOrders(stream orderv1.OrderService_LiveOrdersServer) error {
	ctx := stream.Context()
	log := logger.FromContext(ctx)
	lang := middleware.LanguageFromContext(ctx)

	for {
		msg, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			log.Info().Msg("Клиент закрыл стрим LiveOrders")
			return nil
		}
		if err != nil {
			if ctx.Err() != nil {
				log.Warn().Msg("Стрим LiveOrders прерван отменой вызова")
				return nil
			}
			return err
		}

		update := h.orderService.LiveUpdate(msg.OrderId, lang)
		if err := stream.Send(&orderv1.LiveOrderServerMessage{
			OrderId: update.OrderID,
			Status:  update.Status,
			Message: update.Message,
		}); err != nil {
			return err
		}

		log.Debug().
			Str("order_id", msg.OrderId).
			Str("action", msg.Action).
			Msg("Отправлено обновление LiveOrders")
	}
}

// domainOrderToProto конвертирует заказ в wire представление.
func domainOrderToProto(order *domain.Order) *orderv1.GetOrderResponse {
	if order == nil {
		return nil
	}

	items := make([]*orderv1.OrderItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, &orderv1.OrderItem{
			ItemName: item.Name,
			Quantity: item.Quantity,
		})
	}

	return &orderv1.GetOrderResponse{
		OrderId:   order.ID,
		OrderName: order.Name,
		Items:     items,
	}
}

// protoItemsToDomain конвертирует позиции заказа из wire представления.
func protoItemsToDomain(items []*orderv1.OrderItem) []domain.OrderItem {
	domainItems := make([]domain.OrderItem, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		domainItems = append(domainItems, domain.OrderItem{
			Name:     item.ItemName,
			Quantity: item.Quantity,
		})
	}
	return domainItems
}

// mapError отображает доменные ошибки в статус-коды.
// Неизвестные ошибки возвращаются как есть: их переклассифицирует
// tracking interceptor.
func (h *Handler) mapError(ctx context.Context, err error, method string) error {
	switch {
	case errors.Is(err, domain.ErrEmptyOrderName):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		log := logger.FromContext(ctx)
		log.Error().
			Err(err).
			Str("method", method).
			Msg("gRPC: необработанная ошибка обработчика")
		return err
	}
}
