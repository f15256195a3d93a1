package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
)

type contextKey string

const (
	authKey contextKey = "auth"
	slotKey contextKey = "auth-slot"
)

// authSlot lets middleware running outside the route-level auth see who was authenticated.
type authSlot struct {
	auth AuthContext
	set  bool
}

// AuthContext identifies the administrator behind a request.
type AuthContext struct {
	UserID string
	Role   string
}

// AuthMiddleware validates HMAC-signed bearer tokens and stores an AuthContext
// built from the user_id and role claims.
func AuthMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(w, r)
			if !ok {
				return
			}

			claims := jwt.MapClaims{}
			token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrTokenSignatureInvalid
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				writeError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			userID, err := claimString(claims, "user_id")
			if err != nil {
				writeError(w, http.StatusUnauthorized, "user id not found")
				return
			}
			role, _ := claimString(claims, "role")

			auth := AuthContext{UserID: userID, Role: role}
			if slot, ok := r.Context().Value(slotKey).(*authSlot); ok {
				slot.auth, slot.set = auth, true
			}
			next.ServeHTTP(w, r.WithContext(WithAuth(r.Context(), auth)))
		})
	}
}

// bearerToken reads the Authorization header. Browsers cannot set headers on websocket
// handshakes, so upgrades may pass the token as access_token instead.
func bearerToken(w http.ResponseWriter, r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		if websocket.IsWebSocketUpgrade(r) {
			if token := strings.TrimSpace(r.URL.Query().Get("access_token")); token != "" {
				return token, true
			}
		}
		writeError(w, http.StatusUnauthorized, "missing authorization header")
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		writeError(w, http.StatusUnauthorized, "invalid authorization header")
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

func claimString(claims jwt.MapClaims, key string) (string, error) {
	switch v := claims[key].(type) {
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case string:
		if v = strings.TrimSpace(v); v != "" {
			return v, nil
		}
	}
	return "", errors.New(key + " not present")
}

// WithAuth returns a copy of ctx carrying auth.
func WithAuth(ctx context.Context, auth AuthContext) context.Context {
	return context.WithValue(ctx, authKey, auth)
}

// AuthFromContext retrieves the AuthContext stored by AuthMiddleware.
func AuthFromContext(ctx context.Context) (AuthContext, bool) {
	auth, ok := ctx.Value(authKey).(AuthContext)
	return auth, ok
}
