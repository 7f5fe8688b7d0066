package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const RoleAdmin = "admin"

// AdminClaims is the token body issued to back-office users.
type AdminClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// RequireAdmin verifies an HS256 bearer token and rejects anything without the admin role.
func RequireAdmin(secret string) func(http.Handler) http.Handler {
	key := []byte(secret)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				writeError(w, r, http.StatusUnauthorized, "missing bearer token")
				return
			}

			claims, err := ParseAdminToken(key, raw)
			if err != nil {
				writeError(w, r, http.StatusUnauthorized, "invalid token")
				return
			}
			if claims.Role != RoleAdmin {
				writeError(w, r, http.StatusForbidden, "admin role required")
				return
			}

			ctx := context.WithValue(r.Context(), ctxAdminEmail, claims.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func ParseAdminToken(key []byte, raw string) (*AdminClaims, error) {
	if len(key) == 0 {
		return nil, errors.New("jwt secret not configured")
	}
	claims := &AdminClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// SignAdminToken issues a token for email that expires after ttl.
func SignAdminToken(secret, email, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := AdminClaims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func GetAdminEmail(ctx context.Context) string {
	if v := ctx.Value(ctxAdminEmail); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
