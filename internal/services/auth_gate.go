package services

import (
	"context"
	"dentalcms/internal/models"
	"dentalcms/internal/repository"
	"dentalcms/internal/security"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// UserLookup — единственное чтение, которое делает AuthGate.
type UserLookup interface {
	GetUserByID(ctx context.Context, id int) (*models.User, error)
}

// AuthGate решает, кто стоит за запросом. Токены не выпускает, лимиты не считает.
type AuthGate struct {
	codec      *security.TokenCodec
	users      UserLookup
	maxAge     time.Duration
	cookieName string
}

func NewAuthGate(codec *security.TokenCodec, users UserLookup, maxAge time.Duration, cookieName string) *AuthGate {
	return &AuthGate{codec: codec, users: users, maxAge: maxAge, cookieName: cookieName}
}

// Authorize: Bearer-заголовок, иначе сессионная кука; затем токен (текущий формат,
// потом legacy) и поиск пользователя. Наружу — только публичный профиль.
func (g *AuthGate) Authorize(r *http.Request) (*models.PublicUser, error) {
	token := g.tokenFrom(r)
	if token == "" {
		return nil, security.ErrUnauthenticated
	}

	session, err := g.codec.Decode(token, g.maxAge)
	if err != nil {
		return nil, err
	}

	id, err := strconv.Atoi(session.SubjectID)
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("%w: malformed subject", security.ErrInvalid)
	}

	user, err := g.users.GetUserByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown subject", security.ErrInvalid)
		}
		return nil, fmt.Errorf("user lookup: %w", err)
	}
	return user.Public(), nil
}

func (g *AuthGate) tokenFrom(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if c, err := r.Cookie(g.cookieName); err == nil {
		return c.Value
	}
	return ""
}
