package security

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
)

// CSRFGuard связывает CSRF-токен с серверным секретом через HMAC.
// Где хранить хеш (сессия или кука) решает вызывающий.
type CSRFGuard struct {
	secret []byte
}

func NewCSRFGuard(secret []byte) (*CSRFGuard, error) {
	if len(secret) == 0 {
		return nil, errors.New("csrf guard: empty secret")
	}
	key := make([]byte, len(secret))
	copy(key, secret)
	return &CSRFGuard{secret: key}, nil
}

// Generate — 32 случайных байта в base64url.
func (g *CSRFGuard) Generate() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func (g *CSRFGuard) Hash(token string) string {
	mac := hmac.New(sha256.New, g.secret)
	mac.Write([]byte(token))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify сравнивает за постоянное время.
func (g *CSRFGuard) Verify(token, expectedHash string) bool {
	if token == "" || expectedHash == "" {
		return false
	}
	return hmac.Equal([]byte(g.Hash(token)), []byte(expectedHash))
}
