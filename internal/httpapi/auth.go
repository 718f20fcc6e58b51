package httpapi

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"jobboard-engine/internal/domain"
	"jobboard-engine/internal/store"
	"jobboard-engine/pkg/logging"
)

const userKey ctxKey = "user"

// Claims is what the identity provider puts in its tokens. Subject is the
// provider-side user id.
type Claims struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture,omitempty"`
	jwt.RegisteredClaims
}

// Authenticator validates bearer tokens and lazily provisions the matching
// user row, so the rest of the API only ever sees domain.User.
type Authenticator struct {
	DB     *sql.DB
	Secret []byte
	Log    *logging.Logger
}

// Require wraps a handler that needs an authenticated caller.
func (a *Authenticator) Require(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tokenString, err := bearerToken(r.Header.Get("Authorization"))
		if err != nil {
			WriteError(w, r, http.StatusUnauthorized, "unauthorized", err.Error())
			return
		}

		var claims Claims
		token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return a.Secret, nil
		})
		if err != nil || !token.Valid || claims.Subject == "" {
			WriteError(w, r, http.StatusUnauthorized, "unauthorized", "invalid token")
			return
		}

		user, err := store.EnsureUser(r.Context(), a.DB, domain.User{
			AuthID:         claims.Subject,
			Name:           claims.Name,
			Email:          claims.Email,
			ProfilePicture: claims.Picture,
		})
		if err != nil {
			a.Log.Error("ensure user failed", "auth_id", claims.Subject, "err", err)
			WriteError(w, r, http.StatusInternalServerError, "internal_error", "internal server error")
			return
		}

		next(w, r.WithContext(withUser(r.Context(), user)))
	}
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", errors.New("authorization header is required")
	}
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return header[7:], nil
	}
	return "", errors.New("invalid authorization header format")
}

func withUser(ctx context.Context, u domain.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// UserFrom returns the authenticated caller placed in the context by Require.
func UserFrom(ctx context.Context) (domain.User, bool) {
	u, ok := ctx.Value(userKey).(domain.User)
	return u, ok
}
