package middleware

import (
	"dentalcms/internal/logger"
	"dentalcms/internal/models"
	"dentalcms/internal/security"
	"dentalcms/internal/utils/helpers"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

// Authorizer — решение "кто стоит за запросом" (services.AuthGate).
type Authorizer interface {
	Authorize(r *http.Request) (*models.PublicUser, error)
}

// SessionAuth пропускает только запросы с действующей сессией.
// Все причины отказа отдаются клиенту одинаковым 401.
func SessionAuth(gate Authorizer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			user, err := gate.Authorize(r)
			if err != nil {
				log := logger.WithCtx(r.Context())
				switch {
				case errors.Is(err, security.ErrExpired):
					log.Info("SessionAuth: сессия истекла")
				case errors.Is(err, security.ErrInvalid):
					log.Warn("SessionAuth: недействительный токен", zap.Error(err))
				case errors.Is(err, security.ErrUnauthenticated):
					log.Debug("SessionAuth: нет сессии")
				default:
					log.Error("SessionAuth: ошибка проверки сессии", zap.Error(err))
				}
				helpers.Error(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			next.ServeHTTP(w, r.WithContext(withUser(r.Context(), user)))
		})
	}
}
