package middleware

import (
	"dentalcms/internal/logger"
	"dentalcms/internal/ratelimit"
	"dentalcms/internal/reqctx"
	"dentalcms/internal/utils/helpers"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// RateLimit считает запросы по паре (клиент, маршрут) в рамках политики лимитера.
// Маршрут — шаблон пути из mux, чтобы /x/1 и /x/2 делили одно окно.
// Отказ — всегда 429 с Retry-After, не 401.
func RateLimit(l *ratelimit.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			client, ok := reqctx.GetClientIP(r.Context())
			if !ok {
				client = clientIPFrom(r, nil)
			}
			route := routeKey(r)

			d := l.Allow(client, route)
			if err := d.Err(); err != nil {
				logger.WithCtx(r.Context()).Warn("Превышен лимит запросов",
					zap.String("policy", l.Policy().Name),
					zap.String("route", route),
					zap.String("client_ip", client),
					zap.Error(err),
				)
				helpers.TooManyRequests(w, d.RetryAfter)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func routeKey(r *http.Request) string {
	if cur := mux.CurrentRoute(r); cur != nil {
		if tpl, err := cur.GetPathTemplate(); err == nil {
			return r.Method + " " + tpl
		}
	}
	return r.Method + " " + r.URL.Path
}
