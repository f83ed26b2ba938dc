// Package domain содержит сущности и доменные ошибки сервиса заказов.
package domain

import "errors"

// Доменные ошибки. На gRPC границе отображаются в статус-коды;
// любая другая ошибка считается неклассифицированной и превращается
// interceptor'ом в общий Internal статус.
var (
	// ErrEmptyOrderName возвращается при пустом или пробельном имени заказа.
	ErrEmptyOrderName = errors.New("имя заказа не может быть пустым")
)
