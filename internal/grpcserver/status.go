package grpcserver

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/patric-chuzhbe/mesto/internal/logger"
	"github.com/patric-chuzhbe/mesto/internal/models"
)

const (
	messageInvalidID        = "Некорректный id"
	messageWrongCredentials = "Неправильные почта или пароль"
	messageForbidden        = "Нельзя изменять чужие данные"
	messageNotFound         = "Запрашиваемый ресурс не найден"
	messageEmailTaken       = "Пользователь с таким email уже зарегистрирован"
	messageInternal         = "На сервере произошла ошибка"
)

// toStatus maps an error kind onto a gRPC status. Unknown errors are logged
// and reported as Internal with a generic message.
func toStatus(method string, err error) error {
	var validationErr *models.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return status.Error(codes.InvalidArgument, validationErr.Message)
	case errors.Is(err, models.ErrInvalidID):
		return status.Error(codes.InvalidArgument, messageInvalidID)
	case errors.Is(err, models.ErrUnauthorized):
		return status.Error(codes.Unauthenticated, messageWrongCredentials)
	case errors.Is(err, models.ErrForbidden):
		return status.Error(codes.PermissionDenied, messageForbidden)
	case errors.Is(err, models.ErrNotFound):
		return status.Error(codes.NotFound, messageNotFound)
	case errors.Is(err, models.ErrEmailTaken):
		return status.Error(codes.AlreadyExists, messageEmailTaken)
	}

	logger.Log.Errorw("gRPC call failed",
		"method", method,
		"error", err,
	)
	return status.Error(codes.Internal, messageInternal)
}
