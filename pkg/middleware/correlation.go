// Package middleware предоставляет gRPC interceptors сервиса заказов:
// перехват паник, сквозной call tracking (correlation id, тайминги,
// трансляция ошибок) и rate limiting.
package middleware

import (
	"github.com/google/uuid"
	"google.golang.org/grpc/metadata"
)

// CorrelationIDKey - ключ metadata для correlation ID.
// Входящий заголовок с этим ключом эхом возвращается в trailers;
// при его отсутствии генерируется новый идентификатор.
const CorrelationIDKey = "x-correlation-id"

// ResolveCorrelationID возвращает correlation id вызова.
// Берет первое непустое значение заголовка x-correlation-id,
// иначе генерирует новый UUID. Идентификатор присваивается вызову
// ровно один раз и не меняется до его завершения.
func ResolveCorrelationID(md metadata.MD) string {
	for _, v := range md.Get(CorrelationIDKey) {
		if v != "" {
			return v
		}
	}
	return uuid.New().String()
}

// AppendCorrelationTrailer добавляет correlation id в набор trailers.
// Повторный вызов с уже присутствующим ключом ничего не меняет:
// trailer должен содержать ровно одну запись.
func AppendCorrelationTrailer(md metadata.MD, correlationID string) {
	if len(md.Get(CorrelationIDKey)) > 0 {
		return
	}
	md.Set(CorrelationIDKey, correlationID)
}
