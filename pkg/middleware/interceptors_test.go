package middleware

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/LoaiSaberC4r/GrpcDemo/pkg/logger"
)

// composeUnary сворачивает цепочку unary interceptors в один, в том же
// порядке, в котором их применяет grpc.ChainUnaryInterceptor.
func composeUnary(chain []grpc.UnaryServerInterceptor) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		wrapped := handler
		for i := len(chain) - 1; i >= 0; i-- {
			interceptor := chain[i]
			next := wrapped
			wrapped = func(ctx context.Context, req any) (any, error) {
				return interceptor(ctx, req, info, next)
			}
		}
		return wrapped(ctx, req)
	}
}

// composeStream сворачивает цепочку stream interceptors в один.
func composeStream(chain []grpc.StreamServerInterceptor) grpc.StreamServerInterceptor {
	return func(
		srv any,
		ss grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) error {
		wrapped := handler
		for i := len(chain) - 1; i >= 0; i-- {
			interceptor := chain[i]
			next := wrapped
			wrapped = func(srv any, ss grpc.ServerStream) error {
				return interceptor(srv, ss, info, next)
			}
		}
		return wrapped(srv, ss)
	}
}

// TestChainUnary_PanicGetsCorrelationTrailer тестирует, что паника
// обработчика проходит фазу завершения: клиент получает Internal,
// а trailer по-прежнему содержит входящий correlation id.
func TestChainUnary_PanicGetsCorrelationTrailer(t *testing.T) {
	composed := composeUnary(ChainUnaryInterceptors())

	md := metadata.Pairs(CorrelationIDKey, "panic-corr")
	ctx, ts := unaryCtx(md)

	resp, err := composed(ctx, "req", unaryInfo, func(ctx context.Context, req any) (any, error) {
		panic("nil map write")
	})

	assert.Nil(t, resp)
	require.Error(t, err)
	st, ok := status.FromError(err)
	require.True(t, ok)
	assert.Equal(t, codes.Internal, st.Code())
	assert.Equal(t, InternalErrorMessage, st.Message())
	assert.Equal(t, []string{"panic-corr"}, ts.trailer.Get(CorrelationIDKey))
}

// TestChainStream_PanicGetsCorrelationTrailer тестирует тот же контракт
// для стриминговой топологии.
func TestChainStream_PanicGetsCorrelationTrailer(t *testing.T) {
	composed := composeStream(ChainStreamInterceptors())

	md := metadata.Pairs(CorrelationIDKey, "stream-panic-corr")
	ss := &fakeServerStream{ctx: metadata.NewIncomingContext(context.Background(), md)}
	info := &grpc.StreamServerInfo{
		FullMethod:     "/order.v1.OrderService/StreamOrders",
		IsServerStream: true,
	}

	err := composed(nil, ss, info, func(srv any, stream grpc.ServerStream) error {
		panic("index out of range")
	})

	require.Error(t, err)
	st, ok := status.FromError(err)
	require.True(t, ok)
	assert.Equal(t, codes.Internal, st.Code())
	assert.Equal(t, InternalErrorMessage, st.Message())
	assert.Equal(t, []string{"stream-panic-corr"}, ss.trailer.Get(CorrelationIDKey))
}

// TestChainUnary_ExtraFailureGetsTrailer тестирует, что отказ
// дополнительного interceptor (авторизация, rate limit) тоже попадает
// в фазу завершения и получает correlation trailer.
func TestChainUnary_ExtraFailureGetsTrailer(t *testing.T) {
	denying := func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		return nil, status.Error(codes.PermissionDenied, "недостаточно прав")
	}
	composed := composeUnary(ChainUnaryInterceptors(denying))

	md := metadata.Pairs(CorrelationIDKey, "denied-corr")
	ctx, ts := unaryCtx(md)

	_, err := composed(ctx, "req", unaryInfo, func(ctx context.Context, req any) (any, error) {
		t.Fatal("обработчик не должен вызываться при отказе interceptor")
		return nil, nil
	})

	require.Error(t, err)
	assert.Equal(t, codes.PermissionDenied, status.Code(err))
	assert.Equal(t, []string{"denied-corr"}, ts.trailer.Get(CorrelationIDKey))
}

// TestTrackingUnary_FailureLogFields тестирует, что логи ошибочного
// завершения несут duration и call_kind наравне с успешными.
func TestTrackingUnary_FailureLogFields(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{"неклассифицированная ошибка", errors.New("авария хранилища"), "Неклассифицированная ошибка в gRPC обработчике"},
		{"статусная ошибка", status.Error(codes.NotFound, "заказ не найден"), "gRPC вызов завершился статусной ошибкой"},
		{"отмена контекста", context.Canceled, "gRPC вызов прерван контекстом"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			interceptor := TrackingUnaryInterceptor()
			ctx, _ := unaryCtx(nil)
			ctx = logger.WithLogger(ctx, zerolog.New(&buf))

			_, err := interceptor(ctx, "req", unaryInfo, func(ctx context.Context, req any) (any, error) {
				return nil, tt.err
			})

			require.Error(t, err)
			out := buf.String()
			assert.Contains(t, out, tt.wantMsg)
			assert.Contains(t, out, `"duration"`)
			assert.Contains(t, out, `"call_kind"`)
			assert.Contains(t, out, `"grpc_method"`)
		})
	}
}

// TestTrackingUnary_TrailerFailureLogged тестирует, что ошибка установки
// trailer при отсутствии transport stream попадает в лог, а сам вызов
// завершается штатно.
func TestTrackingUnary_TrailerFailureLogged(t *testing.T) {
	var buf bytes.Buffer
	interceptor := TrackingUnaryInterceptor()
	ctx := logger.WithLogger(context.Background(), zerolog.New(&buf))

	resp, err := interceptor(ctx, "req", unaryInfo, func(ctx context.Context, req any) (any, error) {
		return "resp", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "resp", resp)
	assert.Contains(t, buf.String(), "Не удалось установить trailer")
}
