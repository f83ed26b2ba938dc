package orderv1

import (
	"context"

	"google.golang.org/grpc"
)

// Полные имена методов сервиса. Используются в policy таблице авторизации
// и при клиентских вызовах.
const (
	OrderService_CreateOrder_FullMethodName  = "/order.v1.OrderService/CreateOrder"
	OrderService_GetOrder_FullMethodName     = "/order.v1.OrderService/GetOrder"
	OrderService_StreamOrders_FullMethodName = "/order.v1.OrderService/StreamOrders"
	OrderService_UploadOrders_FullMethodName = "/order.v1.OrderService/UploadOrders"
	OrderService_LiveOrders_FullMethodName   = "/order.v1.OrderService/LiveOrders"
)

// OrderServiceServer - серверный интерфейс сервиса заказов.
// Покрывает четыре топологии вызова: unary, server-stream, client-stream
// и bidi-stream.
type OrderServiceServer interface {
	// CreateOrder создает заказ. Пустое имя заказа - InvalidArgument.
	CreateOrder(context.Context, *CreateOrderRequest) (*CreateOrderResponse, error)

	// GetOrder возвращает заказ по идентификатору.
	GetOrder(context.Context, *GetOrderRequest) (*GetOrderResponse, error)

	// StreamOrders отдает фиксированную серию обновлений заказа.
	StreamOrders(*CreateOrderRequest, OrderService_StreamOrdersServer) error

	// UploadOrders принимает пакет заказов и возвращает итоговые счетчики.
	UploadOrders(OrderService_UploadOrdersServer) error

	// LiveOrders - двунаправленный обмен: один ответ на каждое сообщение клиента.
	LiveOrders(OrderService_LiveOrdersServer) error
}

// RegisterOrderServiceServer регистрирует реализацию сервиса на gRPC сервере
// (или любом другом grpc.ServiceRegistrar).
func RegisterOrderServiceServer(s grpc.ServiceRegistrar, srv OrderServiceServer) {
	s.RegisterService(&OrderService_ServiceDesc, srv)
}

// OrderService_ServiceDesc - описание сервиса для gRPC runtime.
var OrderService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "order.v1.OrderService",
	HandlerType: (*OrderServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "CreateOrder",
			Handler:    createOrderHandler,
		},
		{
			MethodName: "GetOrder",
			Handler:    getOrderHandler,
		},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "StreamOrders",
			Handler:       streamOrdersHandler,
			ServerStreams: true,
		},
		{
			StreamName:    "UploadOrders",
			Handler:       uploadOrdersHandler,
			ClientStreams: true,
		},
		{
			StreamName:    "LiveOrders",
			Handler:       liveOrdersHandler,
			ServerStreams: true,
			ClientStreams: true,
		},
	},
	Metadata: "api/order/v1",
}

func createOrderHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(CreateOrderRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OrderServiceServer).CreateOrder(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: OrderService_CreateOrder_FullMethodName,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(OrderServiceServer).CreateOrder(ctx, req.(*CreateOrderRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func getOrderHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetOrderRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OrderServiceServer).GetOrder(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: OrderService_GetOrder_FullMethodName,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(OrderServiceServer).GetOrder(ctx, req.(*GetOrderRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func streamOrdersHandler(srv any, stream grpc.ServerStream) error {
	in := new(CreateOrderRequest)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(OrderServiceServer).StreamOrders(in, &orderServiceStreamOrdersServer{ServerStream: stream})
}

func uploadOrdersHandler(srv any, stream grpc.ServerStream) error {
	return srv.(OrderServiceServer).UploadOrders(&orderServiceUploadOrdersServer{ServerStream: stream})
}

func liveOrdersHandler(srv any, stream grpc.ServerStream) error {
	return srv.(OrderServiceServer).LiveOrders(&orderServiceLiveOrdersServer{ServerStream: stream})
}

// OrderService_StreamOrdersServer - серверная сторона StreamOrders.
type OrderService_StreamOrdersServer interface {
	Send(*GetOrderResponse) error
	grpc.ServerStream
}

type orderServiceStreamOrdersServer struct {
	grpc.ServerStream
}

func (x *orderServiceStreamOrdersServer) Send(m *GetOrderResponse) error {
	return x.ServerStream.SendMsg(m)
}

// OrderService_UploadOrdersServer - серверная сторона UploadOrders.
// SendAndClose завершает вызов единственным ответом после io.EOF от клиента.
type OrderService_UploadOrdersServer interface {
	SendAndClose(*UploadOrdersResponse) error
	Recv() (*CreateOrderRequest, error)
	grpc.ServerStream
}

type orderServiceUploadOrdersServer struct {
	grpc.ServerStream
}

func (x *orderServiceUploadOrdersServer) SendAndClose(m *UploadOrdersResponse) error {
	return x.ServerStream.SendMsg(m)
}

func (x *orderServiceUploadOrdersServer) Recv() (*CreateOrderRequest, error) {
	m := new(CreateOrderRequest)
	if err := x.ServerStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

// OrderService_LiveOrdersServer - серверная сторона LiveOrders.
type OrderService_LiveOrdersServer interface {
	Send(*LiveOrderServerMessage) error
	Recv() (*LiveOrderClientMessage, error)
	grpc.ServerStream
}

type orderServiceLiveOrdersServer struct {
	grpc.ServerStream
}

func (x *orderServiceLiveOrdersServer) Send(m *LiveOrderServerMessage) error {
	return x.ServerStream.SendMsg(m)
}

func (x *orderServiceLiveOrdersServer) Recv() (*LiveOrderClientMessage, error) {
	m := new(LiveOrderClientMessage)
	if err := x.ServerStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}
