package middleware

import (
	"context"
	"runtime/debug"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/LoaiSaberC4r/GrpcDemo/pkg/logger"
)

// RecoveryUnaryInterceptor перехватывает паники в unary обработчиках.
// Stack trace попадает в лог, клиент получает общий codes.Internal:
// детали паники не пересекают доверенную границу.
func RecoveryUnaryInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				logPanic(ctx, info.FullMethod, r)
				err = status.Error(codes.Internal, InternalErrorMessage)
			}
		}()

		return handler(ctx, req)
	}
}

// RecoveryStreamInterceptor перехватывает паники в stream обработчиках.
func RecoveryStreamInterceptor() grpc.StreamServerInterceptor {
	return func(
		srv any,
		ss grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logPanic(ss.Context(), info.FullMethod, r)
				err = status.Error(codes.Internal, InternalErrorMessage)
			}
		}()

		return handler(srv, ss)
	}
}

// logPanic пишет панику с полным stack trace в серверный лог.
func logPanic(ctx context.Context, method string, r any) {
	log := logger.FromContext(ctx)
	log.Error().
		Str("grpc_method", method).
		Interface("panic", r).
		Str("stack", string(debug.Stack())).
		Msg("Перехвачена паника в gRPC обработчике")
}
