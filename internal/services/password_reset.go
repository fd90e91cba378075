package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"dentalcms/internal/clock"
	"dentalcms/internal/logger"
	"dentalcms/internal/models"
	"dentalcms/internal/repository"
	"dentalcms/internal/security"
	"encoding/base64"
	"errors"
	"time"

	"go.uber.org/zap"
)

const defaultResetTTL = 30 * time.Minute

// PasswordResetLedger — одноразовые токены сброса пароля.
// В базе лежит только sha256 от токена; у пользователя не больше одного активного токена.
type PasswordResetLedger struct {
	repo  repository.PasswordResetRepo
	clock clock.Clock
	ttl   time.Duration
}

func NewPasswordResetLedger(repo repository.PasswordResetRepo, clk clock.Clock, ttl time.Duration) *PasswordResetLedger {
	if clk == nil {
		clk = clock.System{}
	}
	if ttl <= 0 {
		ttl = defaultResetTTL
	}
	return &PasswordResetLedger{repo: repo, clock: clk, ttl: ttl}
}

func (l *PasswordResetLedger) TTL() time.Duration { return l.ttl }

// CreateToken выпускает новый токен и гасит все прежние токены пользователя.
// Возвращает открытый токен — он уходит только в письмо.
func (l *PasswordResetLedger) CreateToken(ctx context.Context, userID int) (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	token := base64.RawURLEncoding.EncodeToString(raw)

	expires := l.clock.Now().Add(l.ttl)
	if _, err := l.repo.ReplaceForUser(ctx, userID, hashResetToken(token), expires); err != nil {
		return "", err
	}
	return token, nil
}

// FindValid ищет действующий токен. Причину отказа (нет, истёк, использован)
// наружу не отдаём.
func (l *PasswordResetLedger) FindValid(ctx context.Context, token string) (*models.PasswordResetToken, bool) {
	if token == "" {
		return nil, false
	}
	rec, err := l.repo.GetByHash(ctx, hashResetToken(token))
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			logger.WithCtx(ctx).Error("Ошибка поиска токена сброса", zap.Error(err))
		}
		return nil, false
	}
	if !rec.ValidAt(l.clock.Now()) {
		return nil, false
	}
	return rec, true
}

// MarkUsed идемпотентна: повторный вызов для уже использованного токена не ошибка.
func (l *PasswordResetLedger) MarkUsed(ctx context.Context, id int64) error {
	_, err := l.repo.MarkUsed(ctx, id, l.clock.Now())
	return err
}

// claim гасит токен и сообщает, достался ли он именно этому вызову.
// Из двух одновременных подтверждений выигрывает одно.
func (l *PasswordResetLedger) claim(ctx context.Context, id int64) error {
	ok, err := l.repo.MarkUsed(ctx, id, l.clock.Now())
	if err != nil {
		return err
	}
	if !ok {
		return security.ErrAlreadyUsed
	}
	return nil
}

// Purge удаляет истёкшие и использованные токены.
func (l *PasswordResetLedger) Purge(ctx context.Context) (int64, error) {
	return l.repo.DeleteExpired(ctx, l.clock.Now())
}

func hashResetToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(hash[:])
}
