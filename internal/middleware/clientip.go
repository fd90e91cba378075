package middleware

import (
	"dentalcms/internal/reqctx"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// ClientIP определяет адрес клиента и кладёт его в контекст.
// Заголовки прокси (X-Forwarded-For, Forwarded, X-Real-IP) учитываются, только
// если RemoteAddr входит в trusted. Без trusted всегда берётся RemoteAddr.
func ClientIP(trusted []netip.Prefix) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIPFrom(r, trusted)
			next.ServeHTTP(w, r.WithContext(reqctx.WithClientIP(r.Context(), ip)))
		})
	}
}

func clientIPFrom(r *http.Request, trusted []netip.Prefix) string {
	remote, _ := parseIP(r.RemoteAddr)

	if remote.IsValid() && isTrusted(remote, trusted) {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			for _, part := range strings.Split(xff, ",") {
				if ip, ok := parseIP(part); ok {
					return ip.String()
				}
			}
		}
		if fwd := r.Header.Get("Forwarded"); fwd != "" {
			for _, elem := range strings.Split(fwd, ",") {
				for _, param := range strings.Split(elem, ";") {
					param = strings.TrimSpace(param)
					if len(param) < 4 || !strings.EqualFold(param[:4], "for=") {
						continue
					}
					if ip, ok := parseIP(param[4:]); ok {
						return ip.String()
					}
				}
			}
		}
		if ip, ok := parseIP(r.Header.Get("X-Real-IP")); ok {
			return ip.String()
		}
	}

	if remote.IsValid() {
		return remote.String()
	}
	return r.RemoteAddr
}

func isTrusted(addr netip.Addr, trusted []netip.Prefix) bool {
	for _, p := range trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// parseIP принимает "1.2.3.4", "1.2.3.4:80", "[::1]:80" и "\"[::1]\"".
func parseIP(raw string) (netip.Addr, bool) {
	s := strings.Trim(strings.TrimSpace(raw), "\"")
	if s == "" {
		return netip.Addr{}, false
	}
	if host, _, err := net.SplitHostPort(s); err == nil {
		s = host
	}
	s = strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return netip.Addr{}, false
	}
	return addr.Unmap(), true
}
