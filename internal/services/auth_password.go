package services

import (
	"context"
	"dentalcms/internal/logger"
	"dentalcms/internal/models"
	"dentalcms/internal/repository"
	"dentalcms/internal/security"
	"dentalcms/internal/utils"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const minPasswordLength = 8

var (
	ErrPasswordTooShort  = errors.New("password too short")
	ErrInvalidResetToken = fmt.Errorf("%w: invalid or expired token", security.ErrInvalid)
	ErrOldPasswordWrong  = fmt.Errorf("%w: old password incorrect", security.ErrInvalid)
)

// EmailSender — интерфейс отправки писем.
type EmailSender interface {
	SendPasswordReset(ctx context.Context, to, resetLink string, ttl time.Duration) error
	SendPasswordChanged(ctx context.Context, to string, at time.Time) error
}

// PasswordUsers — то, что сервису паролей нужно от хранилища пользователей.
type PasswordUsers interface {
	GetUserByID(ctx context.Context, id int) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUserPassword(ctx context.Context, userID int, passwordHash string) error
}

type PasswordService struct {
	ledger      *PasswordResetLedger
	users       PasswordUsers
	emailSender EmailSender
	appURL      string // фронтовый URL: https://example.com  (ссылка вида /reset?token=...)
	exposeToken bool
}

// NewPasswordService. exposeToken=true (только вне prod) возвращает открытый
// токен из RequestReset для отладки без почты.
func NewPasswordService(ledger *PasswordResetLedger, users PasswordUsers, emailSender EmailSender, appURL string, exposeToken bool) *PasswordService {
	return &PasswordService{
		ledger:      ledger,
		users:       users,
		emailSender: emailSender,
		appURL:      strings.TrimRight(appURL, "/"),
		exposeToken: exposeToken,
	}
}

// RequestReset генерирует одноразовый токен и отправляет письмо со ссылкой.
// Ошибку не возвращает никогда (не раскрываем, существует ли такой e-mail).
func (s *PasswordService) RequestReset(ctx context.Context, email string) string {
	log := logger.WithCtx(ctx)
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		// Не раскрываем наличие почты пользователю, но логируем для нас:
		if errors.Is(err, repository.ErrNotFound) {
			log.Info("Сброс пароля для несуществующего email", zap.String("email_masked", MaskEmail(email)))
		} else {
			log.Error("Ошибка поиска пользователя при запросе сброса", zap.Error(err))
		}
		return ""
	}

	token, err := s.ledger.CreateToken(ctx, user.ID)
	if err != nil {
		log.Error("Ошибка создания токена сброса пароля", zap.Int("user_id", user.ID), zap.Error(err))
		return ""
	}

	resetLink := fmt.Sprintf("%s/reset?token=%s", s.appURL, url.QueryEscape(token))
	if err := s.emailSender.SendPasswordReset(ctx, user.Email, resetLink, s.ledger.TTL()); err != nil {
		// Не фейлим намеренно — чтобы нельзя было брутить наличие e-mail
		log.Error("Ошибка постановки письма для сброса пароля", zap.Int("user_id", user.ID), zap.Error(err))
	}

	log.Info("Письмо со ссылкой на сброс пароля поставлено на отправку", zap.Int("user_id", user.ID))
	if s.exposeToken {
		return token
	}
	return ""
}

// ResetPassword подтверждает токен и устанавливает новый пароль.
// Токен гасится до записи пароля: одноразовость важнее повторной попытки.
func (s *PasswordService) ResetPassword(ctx context.Context, token, newPassword string) error {
	log := logger.WithCtx(ctx)

	if len(newPassword) < minPasswordLength {
		log.Warn("Слишком короткий новый пароль")
		return ErrPasswordTooShort
	}

	rec, ok := s.ledger.FindValid(ctx, token)
	if !ok {
		log.Warn("Неверный, просроченный или использованный токен при сбросе пароля")
		return ErrInvalidResetToken
	}

	if err := s.ledger.claim(ctx, rec.ID); err != nil {
		if errors.Is(err, security.ErrAlreadyUsed) {
			log.Warn("Токен сброса уже использован параллельным запросом", zap.Int64("token_id", rec.ID))
		} else {
			log.Error("Не удалось погасить токен сброса", zap.Int64("token_id", rec.ID), zap.Error(err))
		}
		return ErrInvalidResetToken
	}

	pwHash, err := utils.HashPassword(newPassword)
	if err != nil {
		log.Error("Ошибка генерации хеша пароля", zap.Error(err), zap.Int("user_id", rec.UserID))
		return err
	}

	if err := s.users.UpdateUserPassword(ctx, rec.UserID, pwHash); err != nil {
		log.Error("Ошибка обновления пароля пользователя", zap.Int("user_id", rec.UserID), zap.Error(err))
		return err
	}

	s.notifyChanged(ctx, rec.UserID)
	log.Info("Пароль успешно сброшен", zap.Int("user_id", rec.UserID))
	return nil
}

// ChangePassword меняет пароль для авторизованного пользователя по старому паролю.
func (s *PasswordService) ChangePassword(ctx context.Context, userID int, oldPassword, newPassword string) error {
	log := logger.WithCtx(ctx)

	if len(newPassword) < minPasswordLength {
		log.Warn("Слишком короткий новый пароль")
		return ErrPasswordTooShort
	}

	u, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		log.Warn("Пользователь не найден при смене пароля", zap.Error(err))
		return fmt.Errorf("%w: user not found", security.ErrInvalid)
	}

	if !utils.CheckPasswordHash(oldPassword, u.PasswordHash) {
		log.Warn("Старый пароль не совпадает")
		return ErrOldPasswordWrong
	}

	newHash, err := utils.HashPassword(newPassword)
	if err != nil {
		log.Error("Ошибка генерации нового хеша пароля", zap.Error(err))
		return err
	}

	if err := s.users.UpdateUserPassword(ctx, userID, newHash); err != nil {
		log.Error("Ошибка обновления пароля пользователя", zap.Error(err))
		return err
	}

	s.notifyChanged(ctx, userID)
	log.Info("Пароль успешно изменён")
	return nil
}

func (s *PasswordService) notifyChanged(ctx context.Context, userID int) {
	u, err := s.users.GetUserByID(ctx, userID)
	if err != nil || u.Email == "" {
		return
	}
	if err := s.emailSender.SendPasswordChanged(ctx, u.Email, s.ledger.clock.Now()); err != nil {
		logger.WithCtx(ctx).Warn("Не удалось поставить уведомление о смене пароля", zap.Error(err))
	}
}

// MaskEmail оставляет первую букву локальной части и домен: j***@example.com.
func MaskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return "***"
	}
	return email[:1] + "***" + email[at:]
}
