package middleware

import (
	"net"
	"net/http"
	"strings"
)

const hstsValue = "max-age=31536000; includeSubDomains"

// HSTS tells browsers to use HTTPS for a year, subdomains included
func HSTS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Strict-Transport-Security", hstsValue)
		next.ServeHTTP(w, r)
	})
}

// SecureCookies adds Secure, HttpOnly and SameSite=Strict to every cookie the
// wrapped handler sets, unless the cookie already carries the attribute.
func SecureCookies(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(&secureCookieWriter{ResponseWriter: w}, r)
	})
}

type secureCookieWriter struct {
	http.ResponseWriter
	wroteHeader bool
}

func (w *secureCookieWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

func (w *secureCookieWriter) WriteHeader(statusCode int) {
	if w.wroteHeader {
		return
	}
	w.wroteHeader = true

	h := w.ResponseWriter.Header()
	if cookies := h.Values("Set-Cookie"); len(cookies) > 0 {
		h.Del("Set-Cookie")
		for _, c := range cookies {
			h.Add("Set-Cookie", secureCookie(c))
		}
	}
	w.ResponseWriter.WriteHeader(statusCode)
}

func secureCookie(cookie string) string {
	parts := strings.Split(cookie, ";")
	var secure, httpOnly, sameSite bool
	for i, p := range parts {
		p = strings.TrimSpace(p)
		parts[i] = p
		switch lower := strings.ToLower(p); {
		case lower == "secure":
			secure = true
		case lower == "httponly":
			httpOnly = true
		case strings.HasPrefix(lower, "samesite"):
			sameSite = true
		}
	}
	if !secure {
		parts = append(parts, "Secure")
	}
	if !httpOnly {
		parts = append(parts, "HttpOnly")
	}
	if !sameSite {
		parts = append(parts, "SameSite=Strict")
	}
	return strings.Join(parts, "; ")
}

// RedirectHTTPS answers every request with a permanent redirect to the same
// path over HTTPS. Hosts outside allowedHosts get 400 so a forged Host header
// cannot steer the redirect.
func RedirectHTTPS(allowedHosts []string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host := r.Header.Get("X-Forwarded-Host")
		if host == "" {
			host = r.Host
		}
		if !IsHostAllowed(host, allowedHosts) {
			http.Error(w, "Invalid host", http.StatusBadRequest)
			return
		}
		if h, _, err := net.SplitHostPort(host); err == nil {
			host = h
			if strings.Contains(h, ":") {
				host = "[" + h + "]"
			}
		}
		http.Redirect(w, r, "https://"+host+r.RequestURI, http.StatusMovedPermanently)
	})
}

// IsHostAllowed reports whether host, with or without a port, is in allowedHosts.
// An empty list allows every host.
func IsHostAllowed(host string, allowedHosts []string) bool {
	if len(allowedHosts) == 0 {
		return true
	}

	host = strings.ToLower(strings.TrimSpace(host))
	bare, _, err := net.SplitHostPort(host)
	if err != nil {
		bare = host
	}

	for _, allowed := range allowedHosts {
		allowed = strings.ToLower(strings.TrimSpace(allowed))
		allowedBare, _, err := net.SplitHostPort(allowed)
		if err != nil {
			allowedBare = allowed
		}
		if host == allowed || bare == allowedBare {
			return true
		}
	}
	return false
}
