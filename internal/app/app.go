package app

import (
	"context"
	"dentalcms/internal/clock"
	"dentalcms/internal/config"
	"dentalcms/internal/db"
	"dentalcms/internal/handlers"
	"dentalcms/internal/logger"
	"dentalcms/internal/ratelimit"
	"dentalcms/internal/repository"
	"dentalcms/internal/routes"
	"dentalcms/internal/security"
	"dentalcms/internal/services"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const (
	emailWorkers       = 3
	resetPurgeInterval = time.Hour
)

// InitApp поднимает пул БД, схему, сервисы и фоновые задачи.
// Всё фоновое живёт до отмены ctx.
func InitApp(ctx context.Context, cfg *config.Config) (*mux.Router, error) {
	conn, err := db.NewPostgresConnection(ctx, cfg)
	if err != nil {
		return nil, err
	}
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	if err := db.Migrate(ctx, conn); err != nil {
		return nil, err
	}

	clk := clock.System{}

	// Репозитории
	userRepo := repository.NewUserRepository(conn)
	resetRepo := repository.NewPasswordResetRepository(conn)

	// Безопасность
	codec, err := security.NewTokenCodec([]byte(cfg.SessionSecret), clk, security.WithLegacy(cfg.LegacyTokens))
	if err != nil {
		return nil, err
	}
	csrfGuard, err := security.NewCSRFGuard([]byte(cfg.CSRFSecret))
	if err != nil {
		return nil, err
	}
	limiters := NewLimiters(cfg, clk)

	// Сервисы
	emailService := services.NewEmailService(cfg)
	ledger := services.NewPasswordResetLedger(resetRepo, clk, cfg.PasswordResetTTL)
	authService := services.NewAuthService(userRepo, codec, cfg.LoginFailureDelay)
	passwordService := services.NewPasswordService(ledger, userRepo, emailService, cfg.FrontendURL, !cfg.IsProd())
	gate := services.NewAuthGate(codec, userRepo, cfg.SessionMaxAge, cfg.SessionCookieName)

	// Фоновые задачи
	emailService.StartWorkers(ctx, emailWorkers)
	go ratelimit.RunSweeper(ctx, cfg.RateLimitSweep, func(removed int) {
		if removed > 0 {
			logger.Log.Debug("Очищены истёкшие окна лимитера", zap.Int("removed", removed))
		}
	}, sweepers(limiters)...)
	StartResetTokenPurger(ctx, ledger, resetPurgeInterval)

	logger.Log.Info("Форматы сессионных токенов", zap.Strings("formats", codec.Formats()))

	// Хендлеры
	cookies := handlers.CookieSettings{
		SessionName: cfg.SessionCookieName,
		MaxAge:      cfg.SessionMaxAge,
		Secure:      cfg.SecureCookies(),
		SameSite:    cfg.SameSite(),
	}

	router := mux.NewRouter()
	routes.InitRoutes(router, routes.Deps{
		Auth:           handlers.NewAuthHandler(authService, csrfGuard, cookies),
		Password:       handlers.NewPasswordHandler(passwordService),
		CSRF:           handlers.NewCSRFHandler(csrfGuard, cookies),
		Admin:          handlers.NewAdminHandler(cfg.UploadDir, limiters.All()...),
		Gate:           gate,
		CSRFGuard:      csrfGuard,
		SessionCookie:  cfg.SessionCookieName,
		TrustedProxies: cfg.TrustedProxies,
		Limiters:       limiters,
	})

	return router, nil
}

// NewLimiters собирает лимитеры по политикам из конфига. У каждой политики свой Store.
func NewLimiters(cfg *config.Config, clk clock.Clock) routes.Limiters {
	policy := func(p ratelimit.Policy, l config.RateLimit) ratelimit.Policy {
		p.MaxRequests, p.Window = l.MaxRequests, l.Window
		return p
	}
	return routes.Limiters{
		Login:    ratelimit.NewLimiter(policy(ratelimit.LoginPolicy, cfg.RateLimitLogin), clk),
		API:      ratelimit.NewLimiter(policy(ratelimit.APIPolicy, cfg.RateLimitAPI), clk),
		Upload:   ratelimit.NewLimiter(policy(ratelimit.UploadPolicy, cfg.RateLimitUpload), clk),
		Password: ratelimit.NewLimiter(policy(ratelimit.PasswordPolicy, cfg.RateLimitPassword), clk),
	}
}

func sweepers(l routes.Limiters) []ratelimit.Sweeper {
	out := make([]ratelimit.Sweeper, 0, 4)
	for _, lim := range l.All() {
		out = append(out, lim)
	}
	return out
}

// StartResetTokenPurger периодически удаляет просроченные и использованные токены сброса.
func StartResetTokenPurger(ctx context.Context, ledger *services.PasswordResetLedger, interval time.Duration) {
	t := time.NewTicker(interval)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				n, err := ledger.Purge(ctx)
				if err != nil {
					logger.Log.Error("Ошибка очистки токенов сброса", zap.Error(err))
					continue
				}
				if n > 0 {
					logger.Log.Info("Удалены старые токены сброса", zap.Int64("count", n))
				}
			}
		}
	}()
}
