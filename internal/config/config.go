package config

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port      string
	DbHost    string
	DbPort    string
	DbUser    string
	DbPass    string
	DbName    string
	DbSSLMode string

	SessionSecret     string
	CSRFSecret        string
	SessionMaxAge     time.Duration
	SessionCookieName string
	CookieSameSite    string
	CookieSecure      bool
	LegacyTokens      bool

	LoginFailureDelay time.Duration
	PasswordResetTTL  time.Duration

	RateLimitLogin    RateLimit
	RateLimitAPI      RateLimit
	RateLimitUpload   RateLimit
	RateLimitPassword RateLimit
	RateLimitSweep    time.Duration
	TrustedProxies    []netip.Prefix

	Log      string
	LogLevel string
	Env      string // dev|prod

	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPassword string

	FrontendURL string
	UploadDir   string
}

// RateLimit — лимит запросов на окно для одного класса маршрутов.
type RateLimit struct {
	MaxRequests int
	Window      time.Duration
}

// ConfigurationError — фатальная ошибка конфигурации, проверяется при старте.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

// LoadConfig загружает .env, читает переменные окружения и выставляет дефолты.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load(".env")

	def := func(v, d string) string {
		v = strings.TrimSpace(v)
		if v == "" {
			return d
		}
		return v
	}

	cfg := &Config{
		Port:      def(os.Getenv("PORT"), "8080"),
		DbHost:    os.Getenv("DB_HOST"),
		DbPort:    def(os.Getenv("DB_PORT"), "5432"),
		DbUser:    os.Getenv("DB_USER"),
		DbPass:    os.Getenv("DB_PASSWORD"),
		DbName:    os.Getenv("DB_NAME"),
		DbSSLMode: def(os.Getenv("DB_SSLMODE"), "disable"),

		SessionSecret:     strings.TrimSpace(os.Getenv("SESSION_SECRET")),
		CSRFSecret:        strings.TrimSpace(os.Getenv("CSRF_SECRET")),
		SessionCookieName: def(os.Getenv("SESSION_COOKIE_NAME"), "session"),
		CookieSameSite:    strings.ToLower(def(os.Getenv("COOKIE_SAMESITE"), "lax")),

		Log:      os.Getenv("LOG"),
		LogLevel: strings.ToLower(def(os.Getenv("LOGLEVEL"), "info")),
		Env:      strings.ToLower(def(os.Getenv("ENV"), "prod")),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     def(os.Getenv("SMTP_PORT"), "587"),
		SMTPUser:     os.Getenv("SMTP_USER"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),

		FrontendURL: strings.TrimRight(os.Getenv("FRONTEND_URL"), "/"),
		UploadDir:   def(os.Getenv("UPLOAD_DIR"), "uploaded"),
	}

	var err error
	durations := []struct {
		dst *time.Duration
		env string
		def string
	}{
		{&cfg.SessionMaxAge, "SESSION_MAX_AGE", "168h"},
		{&cfg.LoginFailureDelay, "LOGIN_FAILURE_DELAY", "1s"},
		{&cfg.PasswordResetTTL, "PASSWORD_RESET_TTL", "30m"},
		{&cfg.RateLimitSweep, "RATE_LIMIT_SWEEP_INTERVAL", "1m"},
	}
	for _, d := range durations {
		if *d.dst, err = time.ParseDuration(def(os.Getenv(d.env), d.def)); err != nil {
			return nil, fmt.Errorf("%s: %w", d.env, err)
		}
	}

	limits := []struct {
		dst       *RateLimit
		prefix    string
		defMax    string
		defWindow string
	}{
		{&cfg.RateLimitLogin, "RATE_LIMIT_LOGIN", "5", "15m"},
		{&cfg.RateLimitAPI, "RATE_LIMIT_API", "100", "1m"},
		{&cfg.RateLimitUpload, "RATE_LIMIT_UPLOAD", "20", "1m"},
		{&cfg.RateLimitPassword, "RATE_LIMIT_PASSWORD", "5", "15m"},
	}
	for _, l := range limits {
		if l.dst.MaxRequests, err = strconv.Atoi(def(os.Getenv(l.prefix+"_MAX"), l.defMax)); err != nil {
			return nil, fmt.Errorf("%s_MAX: %w", l.prefix, err)
		}
		if l.dst.Window, err = time.ParseDuration(def(os.Getenv(l.prefix+"_WINDOW"), l.defWindow)); err != nil {
			return nil, fmt.Errorf("%s_WINDOW: %w", l.prefix, err)
		}
	}

	if cfg.LegacyTokens, err = strconv.ParseBool(def(os.Getenv("LEGACY_SESSION_TOKENS"), "true")); err != nil {
		return nil, fmt.Errorf("LEGACY_SESSION_TOKENS: %w", err)
	}
	if cfg.CookieSecure, err = strconv.ParseBool(def(os.Getenv("COOKIE_SECURE"), "false")); err != nil {
		return nil, fmt.Errorf("COOKIE_SECURE: %w", err)
	}

	if cfg.TrustedProxies, err = parsePrefixes(os.Getenv("TRUSTED_PROXIES")); err != nil {
		return nil, fmt.Errorf("TRUSTED_PROXIES: %w", err)
	}

	return cfg, nil
}

func parsePrefixes(raw string) ([]netip.Prefix, error) {
	var out []netip.Prefix
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		// одиночный адрес без маски трактуем как /32 или /128
		if !strings.Contains(part, "/") {
			addr, err := netip.ParseAddr(part)
			if err != nil {
				return nil, err
			}
			out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
			continue
		}
		p, err := netip.ParsePrefix(part)
		if err != nil {
			return nil, err
		}
		out = append(out, p.Masked())
	}
	return out, nil
}

// IsProd — боевое окружение.
func (c *Config) IsProd() bool {
	return c.Env == "prod" || c.Env == "production"
}

// Validate возвращает предупреждения и фатальную ошибку (если критично).
// Вне prod пустой SESSION_SECRET заменяется случайным секретом на время жизни процесса.
func (c *Config) Validate() (warnings []string, err error) {
	if c.SessionSecret == "" {
		if c.IsProd() {
			return nil, &ConfigurationError{Field: "SESSION_SECRET", Reason: "must be set in production"}
		}
		c.SessionSecret = randomSecret()
		warnings = append(warnings, "SESSION_SECRET is empty, using an ephemeral random secret")
	}
	if c.IsProd() && len(c.SessionSecret) < 32 {
		return nil, &ConfigurationError{Field: "SESSION_SECRET", Reason: "must be at least 32 characters"}
	}
	if c.CSRFSecret == "" {
		c.CSRFSecret = deriveKey(c.SessionSecret, "csrf")
		warnings = append(warnings, "CSRF_SECRET is empty, deriving it from SESSION_SECRET")
	}
	if c.IsProd() && c.LegacyTokens {
		warnings = append(warnings, "LEGACY_SESSION_TOKENS is enabled in production: unsigned legacy sessions are accepted")
	}

	if c.SessionMaxAge <= 0 {
		return nil, &ConfigurationError{Field: "SESSION_MAX_AGE", Reason: "must be positive"}
	}
	for name, l := range map[string]RateLimit{
		"RATE_LIMIT_LOGIN":    c.RateLimitLogin,
		"RATE_LIMIT_API":      c.RateLimitAPI,
		"RATE_LIMIT_UPLOAD":   c.RateLimitUpload,
		"RATE_LIMIT_PASSWORD": c.RateLimitPassword,
	} {
		if l.MaxRequests <= 0 || l.Window <= 0 {
			return nil, &ConfigurationError{Field: name, Reason: "max and window must be positive"}
		}
	}

	// Критичные: БД
	if c.DbHost == "" || c.DbUser == "" || c.DbName == "" {
		return nil, &ConfigurationError{Field: "DB_HOST/DB_USER/DB_NAME", Reason: "incomplete DB config"}
	}

	// SMTP — предупреждение, письма о сбросе пароля не уйдут
	if c.SMTPHost == "" || c.SMTPUser == "" {
		warnings = append(warnings, "SMTP is not fully configured")
	}
	if c.FrontendURL == "" {
		warnings = append(warnings, "FRONTEND_URL is empty, reset links will be relative")
	}

	return warnings, nil
}

// SecureCookies — ставить ли Secure на куки.
func (c *Config) SecureCookies() bool {
	return c.CookieSecure || c.IsProd()
}

// SameSite переводит строку из конфига в http.SameSite.
func (c *Config) SameSite() http.SameSite {
	switch c.CookieSameSite {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

// GetDSN — полная DSN (с паролем)
func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DbUser, c.DbPass, c.DbHost, c.DbPort, c.DbName, c.DbSSLMode,
	)
}

// GetDSNSafe — DSN без пароля (для логов)
func (c *Config) GetDSNSafe() string {
	return fmt.Sprintf(
		"postgres://%s:***@%s:%s/%s?sslmode=%s",
		c.DbUser, c.DbHost, c.DbPort, c.DbName, c.DbSSLMode,
	)
}

// deriveKey отделяет ключ под конкретное назначение от общего секрета.
func deriveKey(secret, label string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(label))
	return hex.EncodeToString(mac.Sum(nil))
}

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic("crypto/rand: " + err.Error())
	}
	return hex.EncodeToString(b)
}
