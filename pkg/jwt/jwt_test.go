// Package jwt — тесты менеджера токенов.
// RSA ключи генерируются в тестах, blacklist поднимается на miniredis.
package jwt

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// generateTestKey генерирует RSA ключ для тестов.
func generateTestKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err, "не удалось сгенерировать RSA ключ")
	return key
}

// newTestManager создает менеджер с готовыми ключами.
func newTestManager(t *testing.T) *Manager {
	t.Helper()

	key := generateTestKey(t)
	return NewManagerFromKeys(&key.PublicKey, key, "test-issuer", 15*time.Minute)
}

// writeKeyToTempFile записывает PEM данные во временный файл.
func writeKeyToTempFile(t *testing.T, keyData []byte, name string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name+".pem")
	require.NoError(t, os.WriteFile(path, keyData, 0600))
	return path
}

// TestManager_GenerateAndValidate тестирует полный цикл: выпуск и валидация.
func TestManager_GenerateAndValidate(t *testing.T) {
	manager := newTestManager(t)

	token, err := manager.Generate("user-1", RoleSupervisor)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := manager.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, RoleSupervisor, claims.Role)
	assert.Equal(t, "test-issuer", claims.Issuer)
	assert.NotEmpty(t, claims.ID, "jti должен быть заполнен")
}

// TestManager_ValidateToken_WrongKey тестирует отказ токену, подписанному
// другим ключом.
func TestManager_ValidateToken_WrongKey(t *testing.T) {
	issuer := newTestManager(t)
	validator := newTestManager(t) // другая пара ключей

	token, err := issuer.Generate("user-1", "")
	require.NoError(t, err)

	_, err = validator.ValidateToken(token)
	assert.Error(t, err)
}

// TestManager_ValidateToken_Expired тестирует отказ просроченному токену.
func TestManager_ValidateToken_Expired(t *testing.T) {
	key := generateTestKey(t)
	manager := NewManagerFromKeys(&key.PublicKey, key, "test-issuer", -time.Minute)

	token, err := manager.Generate("user-1", "")
	require.NoError(t, err)

	_, err = manager.ValidateToken(token)
	assert.Error(t, err)
}

// TestManager_ValidateToken_Garbage тестирует отказ строке, не являющейся
// токеном.
func TestManager_ValidateToken_Garbage(t *testing.T) {
	manager := newTestManager(t)

	_, err := manager.ValidateToken("не.токен.вовсе")
	assert.Error(t, err)
}

// TestManager_ValidationOnly тестирует режим без приватного ключа.
func TestManager_ValidationOnly(t *testing.T) {
	key := generateTestKey(t)
	issuer := NewManagerFromKeys(&key.PublicKey, key, "test-issuer", 15*time.Minute)
	validator := NewManagerFromKeys(&key.PublicKey, nil, "test-issuer", 15*time.Minute)

	assert.False(t, validator.CanSign())

	_, err := validator.Generate("user-1", "")
	assert.Error(t, err)

	token, err := issuer.Generate("user-1", "")
	require.NoError(t, err)

	claims, err := validator.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
}

// TestManager_ValidateWithBlacklist тестирует отказ отозванному токену.
func TestManager_ValidateWithBlacklist(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = redisClient.Close() })

	manager := newTestManager(t)
	manager.SetBlacklist(NewBlacklist(redisClient))

	token, err := manager.Generate("user-1", "")
	require.NoError(t, err)

	ctx := context.Background()

	claims, err := manager.ValidateWithBlacklist(ctx, token)
	require.NoError(t, err)

	// Отзываем токен.
	require.NoError(t, manager.blacklist.Add(ctx, claims.ID, claims.ExpiresAt.Time))

	_, err = manager.ValidateWithBlacklist(ctx, token)
	assert.Error(t, err)
}

// TestNewManager_FromFiles тестирует загрузку ключей из PEM файлов
// в обоих форматах приватного ключа.
func TestNewManager_FromFiles(t *testing.T) {
	key := generateTestKey(t)

	publicDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	publicPath := writeKeyToTempFile(t, pem.EncodeToMemory(&pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: publicDER,
	}), "public")

	pkcs8, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)

	tests := []struct {
		name    string
		pemData []byte
	}{
		{"PKCS#1", pem.EncodeToMemory(&pem.Block{
			Type:  "RSA PRIVATE KEY",
			Bytes: x509.MarshalPKCS1PrivateKey(key),
		})},
		{"PKCS#8", pem.EncodeToMemory(&pem.Block{
			Type:  "PRIVATE KEY",
			Bytes: pkcs8,
		})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			privatePath := writeKeyToTempFile(t, tt.pemData, "private")

			manager, err := NewManager(Config{
				PrivateKeyPath: privatePath,
				PublicKeyPath:  publicPath,
				Issuer:         "test-issuer",
				TokenTTL:       15 * time.Minute,
			})
			require.NoError(t, err)
			assert.True(t, manager.CanSign())

			token, err := manager.Generate("user-1", "")
			require.NoError(t, err)

			_, err = manager.ValidateToken(token)
			assert.NoError(t, err)
		})
	}
}

// TestNewManager_MissingPublicKey тестирует ошибку при отсутствии файла
// публичного ключа.
func TestNewManager_MissingPublicKey(t *testing.T) {
	_, err := NewManager(Config{PublicKeyPath: "/nonexistent/public.pem"})
	assert.Error(t, err)
}
