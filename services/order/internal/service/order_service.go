// Package service содержит бизнес-логику сервиса заказов.
package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/text/language"

	"github.com/LoaiSaberC4r/GrpcDemo/pkg/logger"
	"github.com/LoaiSaberC4r/GrpcDemo/services/order/internal/domain"
)

// StreamOrderCount - фиксированное число кадров StreamOrders.
const StreamOrderCount = 5

// OrderService определяет бизнес-логику заказов.
// Вся логика детерминирована относительно входа, кроме генерации
// идентификаторов; состояние между вызовами не разделяется.
type OrderService interface {
	// CreateOrder создает заказ. Пустое имя - domain.ErrEmptyOrderName.
	CreateOrder(ctx context.Context, name string, items []domain.OrderItem) (*domain.Order, error)

	// GetOrder возвращает синтетический заказ по идентификатору.
	// Проверки существования нет: хранилище заказов вне рамок сервиса.
	GetOrder(ctx context.Context, orderID string) (*domain.Order, error)

	// StreamOrder синтезирует seq-й (начиная с 1) кадр StreamOrders.
	StreamOrder(seq int) *domain.Order

	// LiveUpdate формирует ответ на сообщение клиента LiveOrders.
	// Текст сообщения локализуется по языку тега lang.
	LiveUpdate(orderID string, lang language.Tag) domain.LiveOrderUpdate
}

// orderService - реализация OrderService.
type orderService struct{}

// NewOrderService создает сервис заказов.
func NewOrderService() OrderService {
	return &orderService{}
}

// CreateOrder создает заказ с новым идентификатором.
func (s *orderService) CreateOrder(ctx context.Context, name string, items []domain.OrderItem) (*domain.Order, error) {
	order := &domain.Order{
		ID:     uuid.New().String(),
		Name:   name,
		Status: domain.StatusCreated,
		Items:  items,
	}

	if err := order.Validate(); err != nil {
		return nil, err
	}

	log := logger.FromContext(ctx)
	log.Info().
		Str("order_id", order.ID).
		Str("order_name", order.Name).
		Int32("items_count", order.ItemCount()).
		Msg("Заказ создан")

	return order, nil
}

// GetOrder возвращает синтетический заказ: идентификатор эхом,
// остальное - фиксированный образец.
func (s *orderService) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	log := logger.FromContext(ctx)
	log.Debug().
		Str("order_id", orderID).
		Msg("Запрошен заказ")

	return &domain.Order{
		ID:     orderID,
		Name:   "Sample Order",
		Status: domain.StatusCreated,
		Items: []domain.OrderItem{
			{Name: "Item1", Quantity: 2},
		},
	}, nil
}

// StreamOrder синтезирует очередной кадр серверного стрима.
func (s *orderService) StreamOrder(seq int) *domain.Order {
	return &domain.Order{
		ID:     uuid.New().String(),
		Name:   fmt.Sprintf("Order %d", seq),
		Status: domain.StatusCreated,
		Items: []domain.OrderItem{
			{Name: fmt.Sprintf("Item%d", seq), Quantity: 1},
		},
	}
}

// liveMessages - локализованные шаблоны ответа LiveOrders.
// Арабский текст сохранен за исходной формулировкой сервиса.
var liveMessages = map[language.Tag]string{
	language.Russian: "получен запрос на отслеживание заказа %s",
	language.English: "subscription request received for order %s",
	language.Arabic:  "تم استقبال طلب متابعة الأوردر %s",
}

// LiveUpdate формирует ровно один ответ на сообщение клиента.
// Статус всегда Created: независимого канала обновлений в текущей
// версии нет.
func (s *orderService) LiveUpdate(orderID string, lang language.Tag) domain.LiveOrderUpdate {
	format, ok := liveMessages[lang]
	if !ok {
		format = liveMessages[language.Russian]
	}

	return domain.LiveOrderUpdate{
		OrderID: orderID,
		Status:  domain.StatusCreated,
		Message: fmt.Sprintf(format, orderID),
	}
}
