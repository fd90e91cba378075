package handlers

import (
	"dentalcms/internal/middleware"
	"net/http"
	"time"
)

// CookieSettings — параметры сессионной и CSRF-кук, собираются из конфига.
type CookieSettings struct {
	SessionName string
	MaxAge      time.Duration
	Secure      bool
	SameSite    http.SameSite
}

func (c CookieSettings) setSession(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.SessionName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(c.MaxAge / time.Second),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: c.SameSite,
	})
}

func (c CookieSettings) setCSRFHash(w http.ResponseWriter, hash string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.CSRFCookieName,
		Value:    hash,
		Path:     "/",
		MaxAge:   int(c.MaxAge / time.Second),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: c.SameSite,
	})
}

func (c CookieSettings) clear(w http.ResponseWriter) {
	for _, name := range []string{c.SessionName, middleware.CSRFCookieName} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   c.Secure,
			SameSite: c.SameSite,
		})
	}
}
