// Package middleware содержит unit тесты interceptors сервиса заказов.
package middleware

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/LoaiSaberC4r/GrpcDemo/pkg/logger"
)

// fakeTransportStream перехватывает trailers unary вызова.
type fakeTransportStream struct {
	method  string
	trailer metadata.MD
}

func (f *fakeTransportStream) Method() string                  { return f.method }
func (f *fakeTransportStream) SetHeader(metadata.MD) error     { return nil }
func (f *fakeTransportStream) SendHeader(metadata.MD) error    { return nil }
func (f *fakeTransportStream) SetTrailer(md metadata.MD) error { f.trailer = md; return nil }

// fakeServerStream перехватывает trailers стримингового вызова.
type fakeServerStream struct {
	ctx     context.Context
	trailer metadata.MD
}

func (s *fakeServerStream) SetHeader(metadata.MD) error  { return nil }
func (s *fakeServerStream) SendHeader(metadata.MD) error { return nil }
func (s *fakeServerStream) SetTrailer(md metadata.MD)    { s.trailer = md }
func (s *fakeServerStream) Context() context.Context     { return s.ctx }
func (s *fakeServerStream) SendMsg(any) error            { return nil }
func (s *fakeServerStream) RecvMsg(any) error            { return nil }

var _ grpc.ServerStream = (*fakeServerStream)(nil)

// unaryCtx создает контекст unary вызова с transport stream и metadata.
func unaryCtx(md metadata.MD) (context.Context, *fakeTransportStream) {
	ts := &fakeTransportStream{method: "/order.v1.OrderService/CreateOrder"}
	ctx := grpc.NewContextWithServerTransportStream(context.Background(), ts)
	if md != nil {
		ctx = metadata.NewIncomingContext(ctx, md)
	}
	return ctx, ts
}

var unaryInfo = &grpc.UnaryServerInfo{FullMethod: "/order.v1.OrderService/CreateOrder"}

// TestTrackingUnary_CorrelationPassthrough тестирует эхо входящего
// correlation id в trailer и контекст обработчика.
func TestTrackingUnary_CorrelationPassthrough(t *testing.T) {
	interceptor := TrackingUnaryInterceptor()
	md := metadata.Pairs(CorrelationIDKey, "corr-42")
	ctx, ts := unaryCtx(md)

	var handlerCorrelationID string
	resp, err := interceptor(ctx, "req", unaryInfo, func(ctx context.Context, req any) (any, error) {
		handlerCorrelationID = logger.CorrelationIDFromContext(ctx)
		return "resp", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "resp", resp)
	assert.Equal(t, "corr-42", handlerCorrelationID)
	assert.Equal(t, []string{"corr-42"}, ts.trailer.Get(CorrelationIDKey))
}

// TestTrackingUnary_CorrelationGenerated тестирует генерацию нового
// идентификатора при отсутствии заголовка.
func TestTrackingUnary_CorrelationGenerated(t *testing.T) {
	interceptor := TrackingUnaryInterceptor()
	ctx, ts := unaryCtx(nil)

	_, err := interceptor(ctx, "req", unaryInfo, func(ctx context.Context, req any) (any, error) {
		return "resp", nil
	})

	require.NoError(t, err)
	values := ts.trailer.Get(CorrelationIDKey)
	require.Len(t, values, 1)
	_, parseErr := uuid.Parse(values[0])
	assert.NoError(t, parseErr, "сгенерированный correlation id должен быть UUID")
}

// TestTrackingUnary_StatusErrorPassthrough тестирует, что
// классифицированная ошибка доходит до клиента без изменений.
func TestTrackingUnary_StatusErrorPassthrough(t *testing.T) {
	interceptor := TrackingUnaryInterceptor()
	ctx, ts := unaryCtx(nil)

	original := status.Error(codes.InvalidArgument, "имя заказа не может быть пустым")
	resp, err := interceptor(ctx, "req", unaryInfo, func(ctx context.Context, req any) (any, error) {
		return nil, original
	})

	assert.Nil(t, resp)
	require.Error(t, err)
	st, ok := status.FromError(err)
	require.True(t, ok)
	assert.Equal(t, codes.InvalidArgument, st.Code())
	assert.Equal(t, "имя заказа не может быть пустым", st.Message())
	// Trailer добавляется и на ошибочном пути.
	assert.Len(t, ts.trailer.Get(CorrelationIDKey), 1)
}

// TestTrackingUnary_UnclassifiedError тестирует подмену неклассифицированной
// ошибки общим Internal статусом без утечки деталей.
func TestTrackingUnary_UnclassifiedError(t *testing.T) {
	interceptor := TrackingUnaryInterceptor()
	ctx, ts := unaryCtx(nil)

	resp, err := interceptor(ctx, "req", unaryInfo, func(ctx context.Context, req any) (any, error) {
		return nil, errors.New("sql: connection refused at 10.0.0.5")
	})

	assert.Nil(t, resp)
	require.Error(t, err)
	st, ok := status.FromError(err)
	require.True(t, ok)
	assert.Equal(t, codes.Internal, st.Code())
	assert.Equal(t, InternalErrorMessage, st.Message())
	assert.NotContains(t, st.Message(), "10.0.0.5")
	assert.Len(t, ts.trailer.Get(CorrelationIDKey), 1)
}

// TestTrackingUnary_ContextErrors тестирует трансляцию ошибок контекста
// в Cancelled и DeadlineExceeded.
func TestTrackingUnary_ContextErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode codes.Code
	}{
		{"отмена", context.Canceled, codes.Canceled},
		{"дедлайн", context.DeadlineExceeded, codes.DeadlineExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			interceptor := TrackingUnaryInterceptor()
			ctx, _ := unaryCtx(nil)

			_, err := interceptor(ctx, "req", unaryInfo, func(ctx context.Context, req any) (any, error) {
				return nil, tt.err
			})

			require.Error(t, err)
			assert.Equal(t, tt.wantCode, status.Code(err))
		})
	}
}

// TestTrackingStream_TrailerAndContext тестирует trailer и обогащение
// контекста для стриминговых вызовов.
func TestTrackingStream_TrailerAndContext(t *testing.T) {
	interceptor := TrackingStreamInterceptor()

	md := metadata.Pairs(CorrelationIDKey, "stream-corr-7")
	ss := &fakeServerStream{ctx: metadata.NewIncomingContext(context.Background(), md)}
	info := &grpc.StreamServerInfo{
		FullMethod:     "/order.v1.OrderService/StreamOrders",
		IsServerStream: true,
	}

	var handlerCorrelationID string
	err := interceptor(nil, ss, info, func(srv any, stream grpc.ServerStream) error {
		handlerCorrelationID = logger.CorrelationIDFromContext(stream.Context())
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, "stream-corr-7", handlerCorrelationID)
	assert.Equal(t, []string{"stream-corr-7"}, ss.trailer.Get(CorrelationIDKey))
}

// TestTrackingStream_UnclassifiedError тестирует трансляцию ошибок
// для стриминговой топологии.
func TestTrackingStream_UnclassifiedError(t *testing.T) {
	interceptor := TrackingStreamInterceptor()

	ss := &fakeServerStream{ctx: context.Background()}
	info := &grpc.StreamServerInfo{
		FullMethod:     "/order.v1.OrderService/LiveOrders",
		IsClientStream: true,
		IsServerStream: true,
	}

	err := interceptor(nil, ss, info, func(srv any, stream grpc.ServerStream) error {
		return errors.New("внутренняя авария")
	})

	require.Error(t, err)
	st, ok := status.FromError(err)
	require.True(t, ok)
	assert.Equal(t, codes.Internal, st.Code())
	assert.Equal(t, InternalErrorMessage, st.Message())
	assert.Len(t, ss.trailer.Get(CorrelationIDKey), 1)
}

// TestStreamKind тестирует определение топологии по StreamServerInfo.
func TestStreamKind(t *testing.T) {
	tests := []struct {
		name string
		info *grpc.StreamServerInfo
		want CallKind
	}{
		{"server stream", &grpc.StreamServerInfo{IsServerStream: true}, CallKindServerStream},
		{"client stream", &grpc.StreamServerInfo{IsClientStream: true}, CallKindClientStream},
		{"bidi stream", &grpc.StreamServerInfo{IsClientStream: true, IsServerStream: true}, CallKindBidiStream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, streamKind(tt.info))
		})
	}
}
