package server

import "net/http"

// corsMiddleware applies the configured origin allowlist. Origins are matched
// exactly; an entry of "*" allows any origin. Preflight OPTIONS requests are
// answered directly. Requests without an Origin header (same-origin, curl)
// pass through untouched.
func corsMiddleware(allowed []string, next http.Handler) http.Handler {
	allowAll := false
	allowSet := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			allowAll = true
		}
		allowSet[o] = struct{}{}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" {
			_, ok := allowSet[origin]
			if allowAll {
				w.Header().Set("Access-Control-Allow-Origin", "*")
			} else if ok {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Vary", "Origin")
			}
			if allowAll || ok {
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, HEAD, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
			}
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// maxBytesHandler caps the request body at limit bytes before invoking next.
// Oversize bodies surface as a read error inside the handler, which maps it
// to 413 Request Entity Too Large.
func maxBytesHandler(limit int64, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, limit)
		next(w, r)
	}
}
