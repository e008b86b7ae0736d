// Package auth issues and verifies signed bearer tokens and provides the
// HTTP middleware that guards every protected route.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"

	"github.com/patric-chuzhbe/mesto/internal/logger"
)

// ErrInvalidTokenOrJwtParsing is returned when a token is absent, malformed,
// expired or signed with another key.
var ErrInvalidTokenOrJwtParsing = errors.New("invalid token")

// Auth signs tokens carrying a user id and verifies them on each request.
type Auth struct {
	// signingSecretKey is the HMAC key used to sign and verify tokens.
	signingSecretKey []byte

	// tokenTTL is added to the issue time to produce the exp claim.
	tokenTTL time.Duration

	now func() time.Time
}

// Claims represents the token payload: the registered claims plus the user id.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"_id"`
}

// ContextKey is a custom type for storing values in context to avoid collisions.
type ContextKey string

// UserIDKey is the context key used to store and retrieve the authenticated user's ID.
const UserIDKey ContextKey = "userID"

// New creates an Auth that signs with signingSecretKey and issues tokens valid for tokenTTL.
func New(signingSecretKey []byte, tokenTTL time.Duration) *Auth {
	return &Auth{
		signingSecretKey: signingSecretKey,
		tokenTTL:         tokenTTL,
		now:              time.Now,
	}
}

// BuildJWTString issues an HS256 token for userID.
func (a *Auth) BuildJWTString(userID string) (string, error) {
	issuedAt := a.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(a.tokenTTL)),
		},
		UserID: userID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(a.signingSecretKey)
	if err != nil {
		return "", fmt.Errorf("in internal/auth/auth.go/BuildJWTString(): error while `token.SignedString()` calling: %w", err)
	}

	return tokenString, nil
}

// GetUserIDFromToken verifies tokenString and returns the user id it carries.
func (a *Auth) GetUserIDFromToken(tokenString string) (string, error) {
	if tokenString == "" {
		return "", ErrInvalidTokenOrJwtParsing
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(t *jwt.Token) (interface{}, error) {
			return a.signingSecretKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil || !token.Valid {
		return "", ErrInvalidTokenOrJwtParsing
	}

	if claims.UserID == "" || claims.ExpiresAt == nil {
		return "", ErrInvalidTokenOrJwtParsing
	}

	return claims.UserID, nil
}

// AuthenticateUser rejects requests that lack a valid `Authorization: Bearer <token>`
// header with 401 and otherwise stores the user id in the request context.
func (a *Auth) AuthenticateUser(h http.Handler) http.Handler {
	middleware := func(response http.ResponseWriter, request *http.Request) {
		tokenString, err := BearerToken(request.Header.Get("Authorization"))
		if err != nil {
			logger.Log.Debugln("Error calling the `BearerToken()`: ", zap.Error(err))
			writeUnauthorized(response)
			return
		}

		userID, err := a.GetUserIDFromToken(tokenString)
		if err != nil {
			logger.Log.Debugln("Error calling the `a.GetUserIDFromToken()`: ", zap.Error(err))
			writeUnauthorized(response)
			return
		}

		h.ServeHTTP(response, request.WithContext(WithUserID(request.Context(), userID)))
	}

	return http.HandlerFunc(middleware)
}

// WithUserID returns a copy of ctx carrying the authenticated user id.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// UserIDFromContext returns the user id stored by AuthenticateUser.
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok && userID != ""
}
