package auth

import (
	"log/slog"
	"net/http"
)

// Middleware creates HTTP middleware from an AuthChain. It attaches the
// authenticated identity to the request context but never rejects: the
// request handlers enforce authentication so that parse errors can take
// precedence over auth errors in the response taxonomy.
func Middleware(chain *AuthChain) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			result := chain.Authenticate(r.Context(), r)

			switch result.Decision {
			case Yes:
				if result.Identity == nil || result.Identity.Subject == "" {
					slog.Error("authenticator returned identity with empty subject")
					break
				}
				slog.Debug("authentication succeeded",
					"subject", result.Identity.Subject,
					"tier", result.Identity.Tier,
					"path", r.URL.Path,
				)
				r = r.WithContext(SetIdentity(r.Context(), result.Identity))
			case No:
				slog.Warn("authentication failed",
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
					"error", result.Err,
				)
			}

			next.ServeHTTP(w, r)
		})
	}
}
