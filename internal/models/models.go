package models

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

type SignUpRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=1,maxbytes=72"`
	Name     string `json:"name" validate:"omitempty,min=2,max=30"`
	About    string `json:"about" validate:"omitempty,min=2,max=30"`
	Avatar   string `json:"avatar" validate:"omitempty,httpurl"`
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

type UpdateProfileRequest struct {
	Name  string `json:"name" validate:"required,min=2,max=30"`
	About string `json:"about" validate:"required,min=2,max=30"`
}

type UpdateAvatarRequest struct {
	Avatar string `json:"avatar" validate:"required,httpurl"`
}

type CreateCardRequest struct {
	Name string `json:"name" validate:"required,min=2,max=30"`
	Link string `json:"link" validate:"required,httpurl"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type InternalStatsResponse struct {
	Users int64 `json:"users"`
	Cards int64 `json:"cards"`
}

const (
	StorageTypeUnknown = iota
	StorageTypePostgresql
	StorageTypeFile
	StorageTypeMemory
)

var (
	// ErrNotFound is returned when the referenced user or card does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrForbidden is returned when the authenticated user may not mutate the resource.
	ErrForbidden = errors.New("forbidden")

	// ErrUnauthorized is returned for missing or wrong credentials and for invalid tokens.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrEmailTaken is returned when registering an email that already exists.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidID is returned when a path id is not a well-formed UUID.
	ErrInvalidID = errors.New("malformed id")
)

// ValidationError describes malformed client input. Message is safe to show to the client.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError builds a ValidationError from the error returned by validator.Struct.
func NewValidationError(err error) *ValidationError {
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return &ValidationError{Message: "Переданы некорректные данные"}
	}

	messages := make([]string, 0, len(fieldErrors))
	for _, fieldError := range fieldErrors {
		messages = append(messages, describeFieldError(fieldError))
	}

	return &ValidationError{Message: strings.Join(messages, "; ")}
}

func describeFieldError(fieldError validator.FieldError) string {
	field := strings.ToLower(fieldError.Field())
	switch fieldError.Tag() {
	case "required":
		return field + ": Заполните поле"
	case "email":
		return field + ": Введите верный email"
	case "httpurl":
		return field + ": Неверный URL"
	case "min":
		return field + ": Минимальная длина поля - " + fieldError.Param()
	case "max":
		return field + ": Максимальная длина поля - " + fieldError.Param()
	case "maxbytes":
		return field + ": Максимальная длина поля в байтах - " + fieldError.Param()
	}

	return field + ": Некорректное значение"
}
