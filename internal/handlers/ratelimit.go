package handlers

import (
	"net"
	"net/http"
	"strings"
)

// RateLimiter decides whether a client key may make another request.
type RateLimiter interface {
	Allow(key string) bool
}

// limited reports whether the request exceeded its budget and, if so, has
// already written the 429 response.
func limited(limiter RateLimiter, trustedHops int, w http.ResponseWriter, r *http.Request, scope string) bool {
	if limiter == nil || limiter.Allow(scope+":"+clientIP(r, trustedHops)) {
		return false
	}
	w.Header().Set("Retry-After", "60")
	respondError(w, r, http.StatusTooManyRequests, "rate_limited", "Too many requests.")
	return true
}

// clientIP returns the peer address, or with trustedHops > 0 the
// X-Forwarded-For entry appended by the outermost trusted proxy. Entries to the
// left of it are client supplied and never used.
func clientIP(r *http.Request, trustedHops int) string {
	if trustedHops > 0 {
		var hops []string
		for _, header := range r.Header.Values("X-Forwarded-For") {
			for _, hop := range strings.Split(header, ",") {
				hops = append(hops, strings.TrimSpace(hop))
			}
		}
		if len(hops) >= trustedHops {
			if ip := hops[len(hops)-trustedHops]; ip != "" {
				return ip
			}
		}
	}

	remote := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(remote); err == nil && host != "" {
		return host
	}
	return remote
}
