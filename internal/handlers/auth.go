package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/bioenroll/gateway/config"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// operatorActor is the identity recorded when a caller authenticates
// with the static operator key instead of a JWT.
const operatorActor = "operator"

// RequireAuth verifies inbound bearer credentials. A token is accepted
// if it is a valid HS256 JWT signed with the shared secret, or if it
// matches the configured bcrypt operator key hash. The gateway never
// issues tokens; that stays with the identity provider.
func RequireAuth(cfg config.AuthConfig) func(http.Handler) http.Handler {
	secret := []byte(cfg.JWTSecret)
	keyHash := []byte(strings.TrimSpace(cfg.OperatorKeyHash))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := bearerToken(r)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			actor, err := authenticate(token, secret, keyHash)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			ctx := context.WithValue(r.Context(), contextActorKey, actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func authenticate(token string, secret, keyHash []byte) (string, error) {
	if len(secret) > 0 {
		if subject, err := parseTokenSubject(token, secret); err == nil {
			return subject, nil
		}
	}
	if len(keyHash) > 0 {
		if err := bcrypt.CompareHashAndPassword(keyHash, []byte(token)); err == nil {
			return operatorActor, nil
		}
	}
	return "", errors.New("invalid credentials")
}

func parseTokenSubject(tokenString string, secret []byte) (string, error) {
	claims := jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return secret, nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", errors.New("invalid token")
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return "", errors.New("missing subject")
	}
	return claims.Subject, nil
}

func bearerToken(r *http.Request) (string, error) {
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if auth == "" {
		return "", errors.New("missing authorization")
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization")
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", errors.New("invalid authorization")
	}
	return token, nil
}
