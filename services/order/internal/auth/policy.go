// Package auth содержит авторизацию gRPC методов сервиса заказов.
package auth

import (
	orderv1 "github.com/LoaiSaberC4r/GrpcDemo/api/order/v1"
	"github.com/LoaiSaberC4r/GrpcDemo/pkg/jwt"
)

// Tier — уровень доступа, требуемый методом.
type Tier int

const (
	// TierAnonymous — метод доступен без токена.
	TierAnonymous Tier = iota
	// TierAuthenticated — требуется валидный токен, роль не важна.
	TierAuthenticated
	// TierSupervisor — требуется токен с ролью supervisor.
	TierSupervisor
)

// methodPolicy — уровень доступа по полному имени метода.
// Метод, отсутствующий в таблице, требует TierAuthenticated.
var methodPolicy = map[string]Tier{
	orderv1.OrderService_GetOrder_FullMethodName:     TierAnonymous,
	orderv1.OrderService_CreateOrder_FullMethodName:  TierAuthenticated,
	orderv1.OrderService_UploadOrders_FullMethodName: TierAuthenticated,
	orderv1.OrderService_StreamOrders_FullMethodName: TierSupervisor,
	orderv1.OrderService_LiveOrders_FullMethodName:   TierSupervisor,
}

// PolicyFor возвращает требуемый уровень доступа для метода.
func PolicyFor(fullMethod string) Tier {
	if tier, ok := methodPolicy[fullMethod]; ok {
		return tier
	}
	return TierAuthenticated
}

// satisfies проверяет, достаточно ли роли из токена для уровня доступа.
func satisfies(tier Tier, claims *jwt.Claims) bool {
	switch tier {
	case TierAnonymous:
		return true
	case TierAuthenticated:
		return claims != nil
	case TierSupervisor:
		return claims != nil && claims.Role == jwt.RoleSupervisor
	default:
		return false
	}
}
