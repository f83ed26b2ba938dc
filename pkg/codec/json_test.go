package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/encoding"
)

type sampleMessage struct {
	OrderID string `json:"order_id"`
	Items   []int  `json:"items"`
}

// TestCodec_Registered тестирует регистрацию codec в gRPC runtime.
func TestCodec_Registered(t *testing.T) {
	c := encoding.GetCodec(Name)

	require.NotNil(t, c, "codec должен регистрироваться при импорте пакета")
	assert.Equal(t, Name, c.Name())
}

// TestCodec_Roundtrip тестирует сериализацию сообщения.
func TestCodec_Roundtrip(t *testing.T) {
	c := encoding.GetCodec(Name)

	in := &sampleMessage{OrderID: "order-1", Items: []int{1, 2, 3}}
	data, err := c.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"order_id":"order-1","items":[1,2,3]}`, string(data))

	out := &sampleMessage{}
	require.NoError(t, c.Unmarshal(data, out))
	assert.Equal(t, in, out)
}

// TestCodec_UnmarshalInvalid тестирует ошибку на некорректном JSON.
func TestCodec_UnmarshalInvalid(t *testing.T) {
	c := encoding.GetCodec(Name)

	assert.Error(t, c.Unmarshal([]byte("{не json"), &sampleMessage{}))
}
