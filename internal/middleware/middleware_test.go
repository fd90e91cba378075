package middleware

import (
	"dentalcms/internal/clock"
	"dentalcms/internal/models"
	"dentalcms/internal/ratelimit"
	"dentalcms/internal/reqctx"
	"dentalcms/internal/security"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = reqctx.GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))

	// не-uuid из заголовка заменяется
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(RequestIDHeader, "<script>")
	h.ServeHTTP(httptest.NewRecorder(), r)
	assert.NotEqual(t, "<script>", seen)
}

func TestClientIP(t *testing.T) {
	trusted := []netip.Prefix{netip.MustParsePrefix("10.0.0.0/8")}

	tests := []struct {
		name    string
		remote  string
		headers map[string]string
		trusted []netip.Prefix
		want    string
	}{
		{"no proxies configured", "203.0.113.5:4000", map[string]string{"X-Forwarded-For": "1.1.1.1"}, nil, "203.0.113.5"},
		{"untrusted peer", "203.0.113.5:4000", map[string]string{"X-Forwarded-For": "1.1.1.1"}, trusted, "203.0.113.5"},
		{"trusted xff", "10.1.2.3:4000", map[string]string{"X-Forwarded-For": "garbage, 198.51.100.7, 10.1.2.3"}, trusted, "198.51.100.7"},
		{"trusted forwarded", "10.1.2.3:4000", map[string]string{"Forwarded": `for="[2001:db8::1]:443";proto=https`}, trusted, "2001:db8::1"},
		{"trusted real ip", "10.1.2.3:4000", map[string]string{"X-Real-IP": "198.51.100.9"}, trusted, "198.51.100.9"},
		{"trusted no headers", "10.1.2.3:4000", nil, trusted, "10.1.2.3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, clientIPFrom(r, tt.trusted))
		})
	}
}

func TestRateLimit_429WithRetryAfter(t *testing.T) {
	clk := clock.NewFake(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	l := ratelimit.NewLimiter(ratelimit.Policy{Name: "login", MaxRequests: 2, Window: time.Minute}, clk)

	router := mux.NewRouter()
	router.Use(ClientIP(nil))
	router.Handle("/api/login", RateLimit(l)(okHandler)).Methods(http.MethodPost)

	do := func(remote string) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodPost, "/api/login", nil)
		r.RemoteAddr = remote
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, r)
		return rec
	}

	assert.Equal(t, http.StatusOK, do("192.0.2.1:1000").Code)
	assert.Equal(t, http.StatusOK, do("192.0.2.1:1001").Code)

	clk.Advance(20 * time.Second)
	rec := do("192.0.2.1:1002")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "40", rec.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"error":"too many requests"}`, rec.Body.String())

	// другой клиент не затронут
	assert.Equal(t, http.StatusOK, do("192.0.2.2:1000").Code)
}

type stubGate struct {
	user *models.PublicUser
	err  error
}

func (g stubGate) Authorize(*http.Request) (*models.PublicUser, error) { return g.user, g.err }

func TestSessionAuth(t *testing.T) {
	for _, err := range []error{
		security.ErrUnauthenticated,
		security.ErrExpired,
		fmt.Errorf("%w: unknown subject", security.ErrInvalid),
	} {
		rec := httptest.NewRecorder()
		SessionAuth(stubGate{err: err})(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error":"unauthorized"}`, rec.Body.String())
	}

	user := &models.PublicUser{ID: 3, Email: "a@x.example", Role: models.RoleAdmin}
	var gotUser *models.PublicUser
	var gotID int
	var gotRole string
	h := SessionAuth(stubGate{user: user})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, _ = UserFromContext(r.Context())
		gotID, _ = UserIDFromContext(r.Context())
		gotRole, _ = RoleFromContext(r.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, user, gotUser)
	assert.Equal(t, 3, gotID)
	assert.Equal(t, models.RoleAdmin, gotRole)
}

func TestCSRF(t *testing.T) {
	guard, err := security.NewCSRFGuard([]byte("csrf-secret"))
	require.NoError(t, err)
	token, err := guard.Generate()
	require.NoError(t, err)
	h := CSRF(guard, "session")(okHandler)

	newReq := func(method string) *http.Request {
		r := httptest.NewRequest(method, "/api/password/change", nil)
		r.AddCookie(&http.Cookie{Name: "session", Value: "tok"})
		return r
	}
	serve := func(r *http.Request) int {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, serve(newReq(http.MethodGet)), "safe method")

	bearer := httptest.NewRequest(http.MethodPost, "/", nil)
	bearer.Header.Set("Authorization", "Bearer tok")
	assert.Equal(t, http.StatusOK, serve(bearer), "header auth")

	assert.Equal(t, http.StatusOK, serve(httptest.NewRequest(http.MethodPost, "/", nil)), "no session cookie")

	assert.Equal(t, http.StatusForbidden, serve(newReq(http.MethodPost)), "missing token")

	wrong := newReq(http.MethodPost)
	wrong.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: guard.Hash(token)})
	wrong.Header.Set(CSRFHeaderName, token+"x")
	assert.Equal(t, http.StatusForbidden, serve(wrong), "mismatched token")

	good := newReq(http.MethodPost)
	good.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: guard.Hash(token)})
	good.Header.Set(CSRFHeaderName, token)
	assert.Equal(t, http.StatusOK, serve(good))
}

func TestOnlyRole(t *testing.T) {
	h := OnlyRole(models.RoleAdmin)(okHandler)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	for role, want := range map[string]int{models.RoleUser: http.StatusForbidden, models.RoleAdmin: http.StatusOK} {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r = r.WithContext(withUser(r.Context(), &models.PublicUser{ID: 1, Role: role}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		assert.Equal(t, want, rec.Code, role)
	}
}

func TestRecoverer(t *testing.T) {
	h := Recoverer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
