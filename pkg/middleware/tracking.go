package middleware

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"github.com/LoaiSaberC4r/GrpcDemo/pkg/logger"
)

// TrackingUnaryInterceptor возвращает interceptor сквозного наблюдения
// unary вызовов. Для всех топологий действует один и тот же контракт
// из трех фаз (вход, выполнение, выход), реализованный в callTrack;
// здесь только unary-адаптер.
func TrackingUnaryInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		ctx, track := beginCall(ctx, info.FullMethod, CallKindUnary)

		resp, err := handler(ctx, req)

		err = track.finish(ctx, func(md metadata.MD) {
			if trErr := grpc.SetTrailer(ctx, md); trErr != nil {
				log := logger.FromContext(ctx)
				log.Warn().
					Err(trErr).
					Str("grpc_method", info.FullMethod).
					Msg("Не удалось установить trailer вызова")
			}
		}, err)
		if err != nil {
			return nil, err
		}
		return resp, nil
	}
}

// TrackingStreamInterceptor возвращает interceptor сквозного наблюдения
// стриминговых вызовов: server-stream, client-stream и bidi.
// Топология определяется по StreamServerInfo.
func TrackingStreamInterceptor() grpc.StreamServerInterceptor {
	return func(
		srv any,
		ss grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) error {
		ctx, track := beginCall(ss.Context(), info.FullMethod, streamKind(info))

		err := handler(srv, &trackedServerStream{ServerStream: ss, ctx: ctx})

		return track.finish(ctx, ss.SetTrailer, err)
	}
}

// streamKind выводит топологию стримингового вызова.
func streamKind(info *grpc.StreamServerInfo) CallKind {
	switch {
	case info.IsClientStream && info.IsServerStream:
		return CallKindBidiStream
	case info.IsClientStream:
		return CallKindClientStream
	default:
		return CallKindServerStream
	}
}

// trackedServerStream - обертка над grpc.ServerStream с контекстом,
// обогащенным correlation id и языком вызова.
type trackedServerStream struct {
	grpc.ServerStream
	ctx context.Context
}

// Context возвращает обогащенный контекст вызова.
func (s *trackedServerStream) Context() context.Context {
	return s.ctx
}
