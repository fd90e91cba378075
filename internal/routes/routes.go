package routes

import (
	"dentalcms/internal/handlers"
	"dentalcms/internal/middleware"
	"dentalcms/internal/ratelimit"
	"net/http"
	"net/netip"

	"github.com/gorilla/mux"
)

// Limiters — по одному лимитеру на класс маршрутов.
type Limiters struct {
	Login    *ratelimit.Limiter
	API      *ratelimit.Limiter
	Upload   *ratelimit.Limiter
	Password *ratelimit.Limiter
}

func (l Limiters) All() []*ratelimit.Limiter {
	return []*ratelimit.Limiter{l.Login, l.API, l.Upload, l.Password}
}

type Deps struct {
	Auth     *handlers.AuthHandler
	Password *handlers.PasswordHandler
	CSRF     *handlers.CSRFHandler
	Admin    *handlers.AdminHandler

	Gate           middleware.Authorizer
	CSRFGuard      middleware.CSRFVerifier
	SessionCookie  string
	TrustedProxies []netip.Prefix
	Limiters       Limiters
}

type mw = func(http.Handler) http.Handler

// chain оборачивает h так, что первый middleware выполняется первым.
func chain(h http.HandlerFunc, mws ...mw) http.Handler {
	var out http.Handler = h
	for i := len(mws) - 1; i >= 0; i-- {
		out = mws[i](out)
	}
	return out
}

// InitRoutes: RequestID → ClientIP → Logging → Recoverer на всём роутере,
// дальше на каждом маршруте лимит класса, сессия, CSRF и роль.
func InitRoutes(router *mux.Router, d Deps) {
	router.Use(middleware.RequestID, middleware.ClientIP(d.TrustedProxies), middleware.Logging, middleware.Recoverer)

	var (
		loginLimit    = middleware.RateLimit(d.Limiters.Login)
		apiLimit      = middleware.RateLimit(d.Limiters.API)
		uploadLimit   = middleware.RateLimit(d.Limiters.Upload)
		passwordLimit = middleware.RateLimit(d.Limiters.Password)

		session   = middleware.SessionAuth(d.Gate)
		csrf      = middleware.CSRF(d.CSRFGuard, d.SessionCookie)
		adminOnly = middleware.OnlyRole("admin")
	)

	api := router.PathPrefix("/api").Subrouter()

	// --- Публичные маршруты ---
	api.Handle("/login", chain(d.Auth.Login, loginLimit)).Methods("POST")
	api.Handle("/logout", chain(d.Auth.Logout, apiLimit)).Methods("POST")
	api.Handle("/csrf", chain(d.CSRF.Issue, apiLimit)).Methods("GET")
	api.Handle("/password/forgot", chain(d.Password.Forgot, passwordLimit)).Methods("POST")
	api.Handle("/password/reset", chain(d.Password.Reset, passwordLimit)).Methods("POST")

	// --- Защищённые сессией ---
	api.Handle("/profile", chain(d.Auth.Profile, apiLimit, session)).Methods("GET")
	api.Handle("/password/change", chain(d.Password.Change, apiLimit, session, csrf)).Methods("POST")

	// --- Админ ---
	api.Handle("/admin/uploads", chain(d.Admin.Upload, uploadLimit, session, csrf, adminOnly)).Methods("POST")
	api.Handle("/admin/ratelimit", chain(d.Admin.RateLimitStats, apiLimit, session, adminOnly)).Methods("GET")
}
