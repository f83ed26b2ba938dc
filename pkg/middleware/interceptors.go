package middleware

import (
	"google.golang.org/grpc"
)

// ChainUnaryInterceptors собирает цепочку unary interceptors в рабочем
// порядке:
//  1. Tracking - внешний слой: correlation id, тайминги, трансляция
//     ошибок, trailers. Любой исход внутренних слоев, включая панику,
//     превращенную recovery в Internal, проходит через фазу завершения
//     и получает correlation trailer и метрики;
//  2. Recovery - ловит паники обработчиков и внутренних interceptors;
//  3. остальные (rate limit, авторизация) - до обработчика.
func ChainUnaryInterceptors(extra ...grpc.UnaryServerInterceptor) []grpc.UnaryServerInterceptor {
	chain := []grpc.UnaryServerInterceptor{
		TrackingUnaryInterceptor(),
		RecoveryUnaryInterceptor(),
	}
	return append(chain, extra...)
}

// ChainStreamInterceptors собирает цепочку stream interceptors
// в том же порядке, что и ChainUnaryInterceptors.
func ChainStreamInterceptors(extra ...grpc.StreamServerInterceptor) []grpc.StreamServerInterceptor {
	chain := []grpc.StreamServerInterceptor{
		TrackingStreamInterceptor(),
		RecoveryStreamInterceptor(),
	}
	return append(chain, extra...)
}
