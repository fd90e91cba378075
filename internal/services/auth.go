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
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrInvalidCredentials — один ответ и для неизвестного логина, и для неверного пароля.
var ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", security.ErrUnauthenticated)

type UserRepo interface {
	GetUserByID(ctx context.Context, id int) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateUserPassword(ctx context.Context, userID int, passwordHash string) error
}

type AuthService struct {
	repo         UserRepo
	codec        *security.TokenCodec
	failureDelay time.Duration
	sleep        func(time.Duration)
}

func NewAuthService(repo UserRepo, codec *security.TokenCodec, failureDelay time.Duration) *AuthService {
	return &AuthService{
		repo:         repo,
		codec:        codec,
		failureDelay: failureDelay,
		sleep:        time.Sleep,
	}
}

var (
	dummyHashOnce sync.Once
	dummyHash     string
)

// dummyPasswordHash — хеш, с которым сравниваем пароль, когда пользователя нет,
// чтобы оба пути отказа стоили одинаково.
func dummyPasswordHash() string {
	dummyHashOnce.Do(func() {
		dummyHash, _ = utils.HashPassword("dental-cms-dummy-password")
	})
	return dummyHash
}

func (s *AuthService) findUserByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	id := strings.TrimSpace(identifier)
	if id == "" {
		return nil, repository.ErrNotFound
	}
	if strings.Contains(id, "@") {
		return s.repo.GetUserByEmail(ctx, id)
	}
	return s.repo.GetByUsername(ctx, id)
}

// Login проверяет логин (email или username) и пароль и выпускает сессионный токен.
// На любой отказ выдерживается фиксированная пауза; прервать её нельзя.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*models.User, string, error) {
	log := logger.WithCtx(ctx)

	user, err := s.findUserByIdentifier(ctx, identifier)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			log.Error("Ошибка поиска пользователя при входе", zap.Error(err))
			return nil, "", err
		}
		utils.CheckPasswordHash(password, dummyPasswordHash())
		s.sleep(s.failureDelay)
		log.Warn("Вход: пользователь не найден")
		return nil, "", ErrInvalidCredentials
	}

	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		s.sleep(s.failureDelay)
		log.Warn("Вход: неверный пароль", zap.Int("user_id", user.ID))
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.codec.Issue(strconv.Itoa(user.ID))
	if err != nil {
		log.Error("Ошибка выпуска сессионного токена", zap.Error(err))
		return nil, "", err
	}

	log.Info("Вход выполнен", zap.Int("user_id", user.ID), zap.String("role", user.Role))
	return user, token, nil
}
