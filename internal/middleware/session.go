package middleware

import (
	"context"
	"net/http"
	"strings"
)

const HeaderSessionID = "X-Session-Id"

// RequireSession enforces X-Session-Id on shopper routes and stores it in context.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sid := strings.TrimSpace(r.Header.Get(HeaderSessionID))
		if sid == "" {
			writeError(w, r, http.StatusBadRequest, "missing required header: X-Session-Id")
			return
		}
		ctx := context.WithValue(r.Context(), ctxSessionID, sid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GetSessionID(ctx context.Context) string {
	if v := ctx.Value(ctxSessionID); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
