// Package codec регистрирует JSON codec для gRPC.
//
// Сервис не использует сгенерированный protobuf код: сообщения описаны
// обычными Go структурами с json тегами, а сериализацию выполняет этот
// codec. Сервер выбирает его автоматически по content-subtype входящего
// вызова; клиент включает его опцией grpc.CallContentSubtype(codec.Name).
package codec

import (
	"encoding/json"
	"fmt"

	"google.golang.org/grpc/encoding"
)

// Name - имя codec'а в реестре gRPC (content-subtype "json").
const Name = "json"

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

// jsonCodec реализует encoding.Codec поверх encoding/json.
type jsonCodec struct{}

// Marshal сериализует сообщение в JSON.
func (jsonCodec) Marshal(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("json codec: ошибка сериализации %T: %w", v, err)
	}
	return data, nil
}

// Unmarshal десериализует JSON в сообщение.
func (jsonCodec) Unmarshal(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("json codec: ошибка десериализации в %T: %w", v, err)
	}
	return nil
}

// Name возвращает имя codec'а.
func (jsonCodec) Name() string {
	return Name
}
