package auth

import (
	"log/slog"
	"net/http"

	"github.com/starlink-stock/stockpro/internal/platform/httpx"
	"github.com/starlink-stock/stockpro/internal/shared"
)

// RequireUser rejects requests without an authenticated session.
func RequireUser(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := shared.SessionFromContext(r.Context())
			if sess == nil || sess.User() == "" {
				if logger != nil {
					logger.Info("unauthenticated request", slog.String("path", r.URL.Path))
				}
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "login necessário")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
