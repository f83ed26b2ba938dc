package orderv1

import (
	"context"

	"google.golang.org/grpc"

	"github.com/LoaiSaberC4r/GrpcDemo/pkg/codec"
)

// OrderServiceClient - клиентский интерфейс сервиса заказов.
type OrderServiceClient interface {
	CreateOrder(ctx context.Context, in *CreateOrderRequest, opts ...grpc.CallOption) (*CreateOrderResponse, error)
	GetOrder(ctx context.Context, in *GetOrderRequest, opts ...grpc.CallOption) (*GetOrderResponse, error)
	StreamOrders(ctx context.Context, in *CreateOrderRequest, opts ...grpc.CallOption) (OrderService_StreamOrdersClient, error)
	UploadOrders(ctx context.Context, opts ...grpc.CallOption) (OrderService_UploadOrdersClient, error)
	LiveOrders(ctx context.Context, opts ...grpc.CallOption) (OrderService_LiveOrdersClient, error)
}

type orderServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewOrderServiceClient создает клиент сервиса заказов.
// Каждый вызов идет через JSON codec (content-subtype "json").
func NewOrderServiceClient(cc grpc.ClientConnInterface) OrderServiceClient {
	return &orderServiceClient{cc: cc}
}

// withJSONCodec добавляет опцию content-subtype ко всем вызовам.
func withJSONCodec(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.CallContentSubtype(codec.Name)}, opts...)
}

func (c *orderServiceClient) CreateOrder(ctx context.Context, in *CreateOrderRequest, opts ...grpc.CallOption) (*CreateOrderResponse, error) {
	out := new(CreateOrderResponse)
	if err := c.cc.Invoke(ctx, OrderService_CreateOrder_FullMethodName, in, out, withJSONCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *orderServiceClient) GetOrder(ctx context.Context, in *GetOrderRequest, opts ...grpc.CallOption) (*GetOrderResponse, error) {
	out := new(GetOrderResponse)
	if err := c.cc.Invoke(ctx, OrderService_GetOrder_FullMethodName, in, out, withJSONCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *orderServiceClient) StreamOrders(ctx context.Context, in *CreateOrderRequest, opts ...grpc.CallOption) (OrderService_StreamOrdersClient, error) {
	stream, err := c.cc.NewStream(ctx, &OrderService_ServiceDesc.Streams[0], OrderService_StreamOrders_FullMethodName, withJSONCodec(opts)...)
	if err != nil {
		return nil, err
	}
	x := &orderServiceStreamOrdersClient{ClientStream: stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

func (c *orderServiceClient) UploadOrders(ctx context.Context, opts ...grpc.CallOption) (OrderService_UploadOrdersClient, error) {
	stream, err := c.cc.NewStream(ctx, &OrderService_ServiceDesc.Streams[1], OrderService_UploadOrders_FullMethodName, withJSONCodec(opts)...)
	if err != nil {
		return nil, err
	}
	return &orderServiceUploadOrdersClient{ClientStream: stream}, nil
}

func (c *orderServiceClient) LiveOrders(ctx context.Context, opts ...grpc.CallOption) (OrderService_LiveOrdersClient, error) {
	stream, err := c.cc.NewStream(ctx, &OrderService_ServiceDesc.Streams[2], OrderService_LiveOrders_FullMethodName, withJSONCodec(opts)...)
	if err != nil {
		return nil, err
	}
	return &orderServiceLiveOrdersClient{ClientStream: stream}, nil
}

// OrderService_StreamOrdersClient - клиентская сторона StreamOrders.
type OrderService_StreamOrdersClient interface {
	Recv() (*GetOrderResponse, error)
	grpc.ClientStream
}

type orderServiceStreamOrdersClient struct {
	grpc.ClientStream
}

func (x *orderServiceStreamOrdersClient) Recv() (*GetOrderResponse, error) {
	m := new(GetOrderResponse)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

// OrderService_UploadOrdersClient - клиентская сторона UploadOrders.
type OrderService_UploadOrdersClient interface {
	Send(*CreateOrderRequest) error
	CloseAndRecv() (*UploadOrdersResponse, error)
	grpc.ClientStream
}

type orderServiceUploadOrdersClient struct {
	grpc.ClientStream
}

func (x *orderServiceUploadOrdersClient) Send(m *CreateOrderRequest) error {
	return x.ClientStream.SendMsg(m)
}

func (x *orderServiceUploadOrdersClient) CloseAndRecv() (*UploadOrdersResponse, error) {
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	m := new(UploadOrdersResponse)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

// OrderService_LiveOrdersClient - клиентская сторона LiveOrders.
type OrderService_LiveOrdersClient interface {
	Send(*LiveOrderClientMessage) error
	Recv() (*LiveOrderServerMessage, error)
	grpc.ClientStream
}

type orderServiceLiveOrdersClient struct {
	grpc.ClientStream
}

func (x *orderServiceLiveOrdersClient) Send(m *LiveOrderClientMessage) error {
	return x.ClientStream.SendMsg(m)
}

func (x *orderServiceLiveOrdersClient) Recv() (*LiveOrderServerMessage, error) {
	m := new(LiveOrderServerMessage)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}
