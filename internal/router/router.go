// Package router exposes the mesto operations over HTTP with chi.
// Every failure goes through writeError, which alone decides the status code
// and the message the client sees.
package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/patric-chuzhbe/mesto/internal/auth"
	"github.com/patric-chuzhbe/mesto/internal/card"
	"github.com/patric-chuzhbe/mesto/internal/gzippedhttp"
	"github.com/patric-chuzhbe/mesto/internal/logger"
	"github.com/patric-chuzhbe/mesto/internal/models"
	"github.com/patric-chuzhbe/mesto/internal/user"
)

const (
	messageBadRequest       = "Переданы некорректные данные"
	messageInvalidID        = "Некорректный id"
	messageWrongCredentials = "Неправильные почта или пароль"
	messageForbidden        = "Нельзя изменять чужие данные"
	messageNotFound         = "Запрашиваемый ресурс не найден"
	messagePageNotFound     = "Страница не найдена"
	messageEmailTaken       = "Пользователь с таким email уже зарегистрирован"
	messageInternal         = "На сервере произошла ошибка"
	messageCardDeleted      = "Карточка удалена"
)

type accountService interface {
	Register(ctx context.Context, request models.SignUpRequest) (*user.User, error)

	Login(ctx context.Context, request models.SignInRequest) (string, error)

	GetUser(ctx context.Context, userID string) (*user.User, error)

	GetUsers(ctx context.Context) ([]*user.User, error)

	UpdateProfile(ctx context.Context, userID string, request models.UpdateProfileRequest) (*user.User, error)

	UpdateAvatar(ctx context.Context, userID string, request models.UpdateAvatarRequest) (*user.User, error)
}

type cardService interface {
	ListCards(ctx context.Context) ([]*card.Card, error)

	CreateCard(ctx context.Context, userID string, request models.CreateCardRequest) (*card.Card, error)

	DeleteCard(ctx context.Context, userID, cardID string) error

	LikeCard(ctx context.Context, userID, cardID string) (*card.Card, error)

	UnlikeCard(ctx context.Context, userID, cardID string) (*card.Card, error)
}

type maintenanceService interface {
	Ping(ctx context.Context) error

	GetInternalStats(ctx context.Context) (models.InternalStatsResponse, error)
}

type service interface {
	accountService
	cardService
	maintenanceService
}

type authenticator interface {
	AuthenticateUser(h http.Handler) http.Handler
}

type subnetGate interface {
	TrustedSubnetOnly(h http.Handler) http.Handler
}

// Router holds the collaborators of the HTTP handlers.
type Router struct {
	service service
}

type initOptions struct {
	allowedOrigins []string
	tracing        bool
}

// InitOption configures New.
type InitOption func(*initOptions)

// WithAllowedOrigins sets the origins allowed by CORS.
func WithAllowedOrigins(origins []string) InitOption {
	return func(options *initOptions) {
		options.allowedOrigins = origins
	}
}

// WithTracing wraps the router in an otelhttp handler.
func WithTracing(value bool) InitOption {
	return func(options *initOptions) {
		options.tracing = value
	}
}

func writeJSON(response http.ResponseWriter, statusCode int, payload interface{}) {
	response.Header().Set("Content-Type", "application/json")
	response.WriteHeader(statusCode)
	if err := json.NewEncoder(response).Encode(payload); err != nil {
		logger.Log.Debugln("Error encoding the response: ", zap.Error(err))
	}
}

func writeMessage(response http.ResponseWriter, statusCode int, message string) {
	writeJSON(response, statusCode, models.MessageResponse{Message: message})
}

// writeError translates an error kind into a status code. Unknown errors are
// logged and answered with a generic message.
func writeError(response http.ResponseWriter, request *http.Request, err error) {
	var validationErr *models.ValidationError
	switch {
	case errors.As(err, &validationErr):
		writeMessage(response, http.StatusBadRequest, validationErr.Message)
	case errors.Is(err, models.ErrInvalidID):
		writeMessage(response, http.StatusBadRequest, messageInvalidID)
	case errors.Is(err, models.ErrUnauthorized):
		writeMessage(response, http.StatusUnauthorized, messageWrongCredentials)
	case errors.Is(err, models.ErrForbidden):
		writeMessage(response, http.StatusForbidden, messageForbidden)
	case errors.Is(err, models.ErrNotFound):
		writeMessage(response, http.StatusNotFound, messageNotFound)
	case errors.Is(err, models.ErrEmailTaken):
		writeMessage(response, http.StatusConflict, messageEmailTaken)
	default:
		logger.Log.Errorw("request failed",
			"method", request.Method,
			"uri", request.RequestURI,
			"error", err,
		)
		writeMessage(response, http.StatusInternalServerError, messageInternal)
	}
}

func decodeJSON(request *http.Request, target interface{}) error {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		return &models.ValidationError{Message: messageBadRequest}
	}

	return nil
}

func identity(response http.ResponseWriter, request *http.Request) (string, bool) {
	userID, ok := auth.UserIDFromContext(request.Context())
	if !ok {
		writeMessage(response, http.StatusUnauthorized, auth.UnauthorizedMessage)
	}

	return userID, ok
}

func (router *Router) PostSignup(response http.ResponseWriter, request *http.Request) {
	var payload models.SignUpRequest
	if err := decodeJSON(request, &payload); err != nil {
		writeError(response, request, err)
		return
	}

	usr, err := router.service.Register(request.Context(), payload)
	if err != nil {
		writeError(response, request, err)
		return
	}

	writeJSON(response, http.StatusCreated, usr)
}

func (router *Router) PostSignin(response http.ResponseWriter, request *http.Request) {
	var payload models.SignInRequest
	if err := decodeJSON(request, &payload); err != nil {
		writeError(response, request, err)
		return
	}

	token, err := router.service.Login(request.Context(), payload)
	if err != nil {
		writeError(response, request, err)
		return
	}

	writeJSON(response, http.StatusOK, models.TokenResponse{Token: token})
}

func (router *Router) GetPing(response http.ResponseWriter, request *http.Request) {
	ctx, cancel := context.WithTimeout(request.Context(), 5*time.Second)
	defer cancel()

	if err := router.service.Ping(ctx); err != nil {
		writeError(response, request, err)
		return
	}

	writeMessage(response, http.StatusOK, "OK")
}

func (router *Router) GetApiinternalstats(response http.ResponseWriter, request *http.Request) {
	stats, err := router.service.GetInternalStats(request.Context())
	if err != nil {
		writeError(response, request, err)
		return
	}

	writeJSON(response, http.StatusOK, stats)
}

func (router *Router) GetUsers(response http.ResponseWriter, request *http.Request) {
	users, err := router.service.GetUsers(request.Context())
	if err != nil {
		writeError(response, request, err)
		return
	}

	writeJSON(response, http.StatusOK, users)
}

func (router *Router) GetUsersme(response http.ResponseWriter, request *http.Request) {
	userID, ok := identity(response, request)
	if !ok {
		return
	}

	usr, err := router.service.GetUser(request.Context(), userID)
	if err != nil {
		writeError(response, request, err)
		return
	}

	writeJSON(response, http.StatusOK, usr)
}

func (router *Router) GetUsersuserid(response http.ResponseWriter, request *http.Request) {
	usr, err := router.service.GetUser(request.Context(), chi.URLParam(request, "userID"))
	if err != nil {
		writeError(response, request, err)
		return
	}

	writeJSON(response, http.StatusOK, usr)
}

func (router *Router) PatchUsersme(response http.ResponseWriter, request *http.Request) {
	userID, ok := identity(response, request)
	if !ok {
		return
	}

	var payload models.UpdateProfileRequest
	if err := decodeJSON(request, &payload); err != nil {
		writeError(response, request, err)
		return
	}

	usr, err := router.service.UpdateProfile(request.Context(), userID, payload)
	if err != nil {
		writeError(response, request, err)
		return
	}

	writeJSON(response, http.StatusOK, usr)
}

func (router *Router) PatchUsersmeavatar(response http.ResponseWriter, request *http.Request) {
	userID, ok := identity(response, request)
	if !ok {
		return
	}

	var payload models.UpdateAvatarRequest
	if err := decodeJSON(request, &payload); err != nil {
		writeError(response, request, err)
		return
	}

	usr, err := router.service.UpdateAvatar(request.Context(), userID, payload)
	if err != nil {
		writeError(response, request, err)
		return
	}

	writeJSON(response, http.StatusOK, usr)
}

func (router *Router) GetCards(response http.ResponseWriter, request *http.Request) {
	cards, err := router.service.ListCards(request.Context())
	if err != nil {
		writeError(response, request, err)
		return
	}

	writeJSON(response, http.StatusOK, cards)
}

func (router *Router) PostCards(response http.ResponseWriter, request *http.Request) {
	userID, ok := identity(response, request)
	if !ok {
		return
	}

	var payload models.CreateCardRequest
	if err := decodeJSON(request, &payload); err != nil {
		writeError(response, request, err)
		return
	}

	crd, err := router.service.CreateCard(request.Context(), userID, payload)
	if err != nil {
		writeError(response, request, err)
		return
	}

	writeJSON(response, http.StatusCreated, crd)
}

func (router *Router) DeleteCardscardid(response http.ResponseWriter, request *http.Request) {
	userID, ok := identity(response, request)
	if !ok {
		return
	}

	if err := router.service.DeleteCard(request.Context(), userID, chi.URLParam(request, "cardID")); err != nil {
		writeError(response, request, err)
		return
	}

	writeMessage(response, http.StatusOK, messageCardDeleted)
}

func (router *Router) PutCardscardidlikes(response http.ResponseWriter, request *http.Request) {
	userID, ok := identity(response, request)
	if !ok {
		return
	}

	crd, err := router.service.LikeCard(request.Context(), userID, chi.URLParam(request, "cardID"))
	if err != nil {
		writeError(response, request, err)
		return
	}

	writeJSON(response, http.StatusOK, crd)
}

func (router *Router) DeleteCardscardidlikes(response http.ResponseWriter, request *http.Request) {
	userID, ok := identity(response, request)
	if !ok {
		return
	}

	crd, err := router.service.UnlikeCard(request.Context(), userID, chi.URLParam(request, "cardID"))
	if err != nil {
		writeError(response, request, err)
		return
	}

	writeJSON(response, http.StatusOK, crd)
}

// New builds the HTTP handler tree. Routes other than signup, signin, ping and
// the internal stats require a bearer token checked by authMiddleware.
func New(
	svc service,
	authMiddleware authenticator,
	trustedSubnet subnetGate,
	optionsProto ...InitOption,
) http.Handler {
	options := &initOptions{}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	myRouter := &Router{
		service: svc,
	}

	router := chi.NewRouter()
	router.Use(
		logger.WithLoggingHTTPMiddleware,
		cors.Handler(cors.Options{
			AllowedOrigins: options.allowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "Content-Type", "Content-Encoding", "Accept-Encoding"},
			MaxAge:         300,
		}),
		gzippedhttp.UngzipRequest,
		gzippedhttp.GzipResponse,
	)

	router.Post(`/signup`, myRouter.PostSignup)
	router.Post(`/signin`, myRouter.PostSignin)
	router.Get(`/ping`, myRouter.GetPing)
	router.With(trustedSubnet.TrustedSubnetOnly).Get(`/api/internal/stats`, myRouter.GetApiinternalstats)

	router.Group(func(protected chi.Router) {
		protected.Use(authMiddleware.AuthenticateUser)

		protected.Get(`/users`, myRouter.GetUsers)
		protected.Get(`/users/me`, myRouter.GetUsersme)
		protected.Patch(`/users/me`, myRouter.PatchUsersme)
		protected.Patch(`/users/me/avatar`, myRouter.PatchUsersmeavatar)
		protected.Get(`/users/{userID}`, myRouter.GetUsersuserid)

		protected.Get(`/cards`, myRouter.GetCards)
		protected.Post(`/cards`, myRouter.PostCards)
		protected.Delete(`/cards/{cardID}`, myRouter.DeleteCardscardid)
		protected.Put(`/cards/{cardID}/likes`, myRouter.PutCardscardidlikes)
		protected.Delete(`/cards/{cardID}/likes`, myRouter.DeleteCardscardidlikes)
	})

	router.NotFound(func(response http.ResponseWriter, request *http.Request) {
		writeMessage(response, http.StatusNotFound, messagePageNotFound)
	})

	if options.tracing {
		return otelhttp.NewHandler(router, "mesto.http")
	}

	return router
}
