package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/patric-chuzhbe/mesto/internal/models"
)

const bearerPrefix = "Bearer "

// UnauthorizedMessage is the only detail a rejected client ever sees.
const UnauthorizedMessage = "Необходима авторизация"

var (
	errMissingAuthorizationHeader = errors.New("missing authorization header")
	errNotBearer                  = errors.New("authorization header is not a bearer token")
)

// BearerToken extracts the token from an Authorization header value.
// The scheme must be exactly "Bearer " and the token must not be empty.
func BearerToken(header string) (string, error) {
	if header == "" {
		return "", errMissingAuthorizationHeader
	}

	if !strings.HasPrefix(header, bearerPrefix) {
		return "", errNotBearer
	}

	token := strings.TrimPrefix(header, bearerPrefix)
	if token == "" {
		return "", ErrInvalidTokenOrJwtParsing
	}

	return token, nil
}

func writeUnauthorized(response http.ResponseWriter) {
	response.Header().Set("Content-Type", "application/json")
	response.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(response).Encode(models.MessageResponse{Message: UnauthorizedMessage})
}
