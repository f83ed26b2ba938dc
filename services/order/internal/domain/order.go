package domain

import "strings"

// StatusCreated - статус только что созданного заказа.
// Другие статусы в текущей версии не выдаются.
const StatusCreated = "Created"

// OrderItem - позиция заказа.
// Quantity намеренно не валидируется: допустимы ноль и отрицательные
// значения, пока бизнес-правила не потребуют иного.
type OrderItem struct {
	Name     string
	Quantity int32
}

// Order - заказ. Сущность живет в рамках одного RPC вызова:
// никакого хранилища за ней нет.
type Order struct {
	ID     string
	Name   string
	Status string
	Items  []OrderItem
}

// Validate проверяет корректность заказа перед созданием.
func (o *Order) Validate() error {
	if strings.TrimSpace(o.Name) == "" {
		return ErrEmptyOrderName
	}
	return nil
}

// ItemCount возвращает количество позиций заказа.
func (o *Order) ItemCount() int32 {
	return int32(len(o.Items))
}

// UploadSummary - счетчики клиентского стрима UploadOrders.
// Накапливается по мере приема кадров; выдается наружу только после
// естественного завершения стрима клиентом.
type UploadSummary struct {
	TotalOrders int32
	TotalItems  int32
}

// Add учитывает один принятый заказ с itemCount позициями.
func (s *UploadSummary) Add(itemCount int32) {
	s.TotalOrders++
	s.TotalItems += itemCount
}

// LiveOrderUpdate - обновление, отправляемое сервером в LiveOrders.
type LiveOrderUpdate struct {
	OrderID string
	Status  string
	Message string
}
