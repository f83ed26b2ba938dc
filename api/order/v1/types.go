// Package orderv1 описывает wire-контракт сервиса заказов.
//
// Контракт написан вручную: сообщения - обычные структуры с json тегами
// (сериализация через pkg/codec), топологии вызовов - через grpc.ServiceDesc.
// Все сущности живут в рамках одного вызова и не разделяются между вызовами.
package orderv1

// OrderItem - позиция заказа.
// Quantity намеренно не валидируется: отрицательные и нулевые значения
// допускаются, пока бизнес-правила не потребуют иного.
type OrderItem struct {
	ItemName string `json:"item_name"`
	Quantity int32  `json:"quantity"`
}

// CreateOrderRequest - запрос создания заказа.
// OrderName обязателен и не может состоять из одних пробелов.
type CreateOrderRequest struct {
	OrderName string       `json:"order_name"`
	Items     []*OrderItem `json:"items"`
}

// CreateOrderResponse - результат создания заказа.
type CreateOrderResponse struct {
	OrderId string `json:"order_id"`
	Status  string `json:"status"`
}

// GetOrderRequest - запрос заказа по идентификатору.
type GetOrderRequest struct {
	OrderId string `json:"order_id"`
}

// GetOrderResponse - заказ. Используется и как единичный ответ GetOrder,
// и как кадр серверного стрима StreamOrders.
type GetOrderResponse struct {
	OrderId   string       `json:"order_id"`
	OrderName string       `json:"order_name"`
	Items     []*OrderItem `json:"items"`
}

// UploadOrdersResponse - итог клиентского стрима UploadOrders.
// Счетчики накапливаются по мере приема кадров и отдаются только после
// того, как клиент закрыл свой стрим.
type UploadOrdersResponse struct {
	TotalOrders int32 `json:"total_orders"`
	TotalItems  int32 `json:"total_items"`
}

// LiveOrderClientMessage - сообщение клиента в двунаправленном стриме.
type LiveOrderClientMessage struct {
	OrderId string `json:"order_id"`
	Action  string `json:"action"`
}

// ActionSubscribe - единственное известное действие LiveOrders.
const ActionSubscribe = "subscribe"

// LiveOrderServerMessage - ответ сервера в двунаправленном стриме.
// Сервер отправляет ровно одно такое сообщение на каждое полученное
// сообщение клиента.
type LiveOrderServerMessage struct {
	OrderId string `json:"order_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}
