package middleware

import (
	"dentalcms/internal/logger"
	"dentalcms/internal/utils/helpers"
	"net/http"
	"strings"
)

const (
	CSRFCookieName = "csrf_hash"
	CSRFHeaderName = "X-CSRF-Token"
)

// CSRFVerifier — проверка токена против хеша из куки (security.CSRFGuard).
type CSRFVerifier interface {
	Verify(token, expectedHash string) bool
}

// CSRF защищает изменяющие запросы, авторизованные кукой сессии.
// Безопасные методы и запросы с Bearer-заголовком не проверяются:
// чужой сайт не может выставить заголовок.
func CSRF(guard CSRFVerifier, sessionCookie string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}
			if strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
				next.ServeHTTP(w, r)
				return
			}
			if _, err := r.Cookie(sessionCookie); err != nil {
				next.ServeHTTP(w, r)
				return
			}

			hash, err := r.Cookie(CSRFCookieName)
			token := r.Header.Get(CSRFHeaderName)
			if err != nil || hash.Value == "" || token == "" || !guard.Verify(token, hash.Value) {
				logger.WithCtx(r.Context()).Warn("CSRF: токен отсутствует или не совпадает")
				helpers.Error(w, http.StatusForbidden, "invalid csrf token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
