// Package jwt предоставляет выпуск и валидацию JWT токенов на RS256.
// Сервер заказов валидирует токены по публичному ключу; приватный ключ
// нужен только стороне, выпускающей токены (демо клиент).
package jwt

import (
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// RoleSupervisor - роль, открывающая доступ к StreamOrders и LiveOrders.
const RoleSupervisor = "supervisor"

// Claims содержит данные JWT токена.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
	Role   string `json:"role,omitempty"`
}

// Manager выпускает и валидирует токены.
type Manager struct {
	privateKey *rsa.PrivateKey // только для issuer
	publicKey  *rsa.PublicKey
	blacklist  *Blacklist // опционально
	issuer     string
	tokenTTL   time.Duration
}

// Config содержит параметры создания Manager.
type Config struct {
	PrivateKeyPath string        // опционально, только для выпуска токенов
	PublicKeyPath  string        // обязательно
	Issuer         string
	TokenTTL       time.Duration
}

// NewManager создает менеджер токенов.
// Без приватного ключа менеджер работает только в режиме валидации.
func NewManager(cfg Config) (*Manager, error) {
	m := &Manager{
		issuer:   cfg.Issuer,
		tokenTTL: cfg.TokenTTL,
	}

	publicKey, err := LoadPublicKey(cfg.PublicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки публичного ключа: %w", err)
	}
	m.publicKey = publicKey

	if cfg.PrivateKeyPath != "" {
		privateKey, err := LoadPrivateKey(cfg.PrivateKeyPath)
		if err != nil {
			return nil, fmt.Errorf("ошибка загрузки приватного ключа: %w", err)
		}
		m.privateKey = privateKey
	}

	return m, nil
}

// NewManagerFromKeys создает менеджер из готовых ключей.
// Используется в тестах, где ключи генерируются на лету.
func NewManagerFromKeys(publicKey *rsa.PublicKey, privateKey *rsa.PrivateKey, issuer string, ttl time.Duration) *Manager {
	return &Manager{
		privateKey: privateKey,
		publicKey:  publicKey,
		issuer:     issuer,
		tokenTTL:   ttl,
	}
}

// Generate выпускает access token для пользователя с ролью.
// Требует приватный ключ.
func (m *Manager) Generate(userID, role string) (string, error) {
	if m.privateKey == nil {
		return "", fmt.Errorf("приватный ключ не загружен: выпуск токенов недоступен")
	}

	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(), // jti
			Issuer:    m.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenTTL)),
		},
		UserID: userID,
		Role:   role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(m.privateKey)
	if err != nil {
		return "", fmt.Errorf("ошибка подписи токена: %w", err)
	}
	return signed, nil
}

// ValidateToken проверяет подпись и claims токена.
func (m *Manager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("неожиданный алгоритм подписи: %v", token.Header["alg"])
		}
		return m.publicKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка валидации токена: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("невалидные claims токена")
	}

	return claims, nil
}

// ValidateWithBlacklist проверяет токен и, если настроен blacklist,
// его наличие среди отозванных.
func (m *Manager) ValidateWithBlacklist(ctx context.Context, tokenString string) (*Claims, error) {
	claims, err := m.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	if m.blacklist == nil {
		return claims, nil
	}

	blacklisted, err := m.blacklist.Check(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("ошибка проверки blacklist: %w", err)
	}
	if blacklisted {
		return nil, fmt.Errorf("токен отозван")
	}

	return claims, nil
}

// SetBlacklist подключает blacklist отозванных токенов.
func (m *Manager) SetBlacklist(bl *Blacklist) {
	m.blacklist = bl
}

// CanSign возвращает true, если менеджер может выпускать токены.
func (m *Manager) CanSign() bool {
	return m.privateKey != nil
}

// LoadPrivateKey загружает RSA приватный ключ из PEM файла.
func LoadPrivateKey(path string) (*rsa.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения файла %s: %w", path, err)
	}

	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("не удалось декодировать PEM блок из %s", path)
	}

	if block.Type == "RSA PRIVATE KEY" {
		return x509.ParsePKCS1PrivateKey(block.Bytes)
	}

	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("ошибка парсинга приватного ключа: %w", err)
	}

	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("ключ в %s не является RSA ключом", path)
	}
	return rsaKey, nil
}

// LoadPublicKey загружает RSA публичный ключ из PEM файла.
func LoadPublicKey(path string) (*rsa.PublicKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения файла %s: %w", path, err)
	}

	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("не удалось декодировать PEM блок из %s", path)
	}

	key, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("ошибка парсинга публичного ключа: %w", err)
	}

	rsaKey, ok := key.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("ключ в %s не является RSA ключом", path)
	}
	return rsaKey, nil
}
