package security

import "errors"

// Ошибки ядра аутентификации. Наружу клиенту уходит единый отказ,
// различие нужно только для логов и выбора HTTP-статуса.
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrExpired         = errors.New("expired")
	ErrInvalid         = errors.New("invalid")
	ErrAlreadyUsed     = errors.New("already used")
	ErrRateLimited     = errors.New("rate limited")
)
