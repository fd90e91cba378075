package handlers

import (
	"dentalcms/internal/middleware"
	"dentalcms/internal/security"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCookies = CookieSettings{SessionName: "session", MaxAge: 2 * time.Hour, Secure: true, SameSite: http.SameSiteStrictMode}

func TestCookieSettings_SessionAttributes(t *testing.T) {
	rec := httptest.NewRecorder()
	testCookies.setSession(rec, "tok")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, "session", c.Name)
	assert.Equal(t, "tok", c.Value)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
	assert.Equal(t, "/", c.Path)
	assert.Equal(t, 7200, c.MaxAge)
}

func TestCookieSettings_Clear(t *testing.T) {
	rec := httptest.NewRecorder()
	testCookies.clear(rec)

	names := map[string]bool{}
	for _, c := range rec.Result().Cookies() {
		names[c.Name] = true
		assert.Equal(t, -1, c.MaxAge)
		assert.Empty(t, c.Value)
	}
	assert.True(t, names["session"])
	assert.True(t, names[middleware.CSRFCookieName])
}

func TestCSRFHandler_IssueSetsVerifiableHash(t *testing.T) {
	guard, err := security.NewCSRFGuard([]byte("handlers-csrf"))
	require.NoError(t, err)
	h := NewCSRFHandler(guard, testCookies)

	rec := httptest.NewRecorder()
	h.Issue(rec, httptest.NewRequest(http.MethodGet, "/api/csrf", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	var hash string
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.CSRFCookieName {
			hash = c.Value
		}
	}
	require.NotEmpty(t, hash)

	start := strings.Index(body, `"csrf_token":"`) + len(`"csrf_token":"`)
	token := body[start : start+strings.Index(body[start:], `"`)]
	assert.True(t, guard.Verify(token, hash))
}

func TestHandlers_RejectBadPayloads(t *testing.T) {
	auth := NewAuthHandler(nil, nil, testCookies)
	pw := NewPasswordHandler(nil)

	cases := []struct {
		name string
		h    http.HandlerFunc
		body string
	}{
		{"login not json", auth.Login, "{"},
		{"login empty identifier", auth.Login, `{"identifier":" ","password":"x"}`},
		{"forgot empty email", pw.Forgot, `{"email":""}`},
		{"reset no token", pw.Reset, `{"new_password":"long-enough"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tc.h(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body)))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.JSONEq(t, `{"error":"invalid payload"}`, rec.Body.String())
		})
	}
}

func TestProfile_WithoutUserIs401(t *testing.T) {
	rec := httptest.NewRecorder()
	NewAuthHandler(nil, nil, testCookies).Profile(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
