package interceptor

import (
	"context"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/patric-chuzhbe/mesto/internal/auth"
	"github.com/patric-chuzhbe/mesto/internal/logger"
)

type tokenVerifier interface {
	GetUserIDFromToken(tokenString string) (string, error)
}

// AuthInterceptor applies the bearer token rules of the HTTP gateway to gRPC calls.
type AuthInterceptor struct {
	verifier tokenVerifier
}

func NewAuthInterceptor(verifier tokenVerifier) *AuthInterceptor {
	return &AuthInterceptor{verifier: verifier}
}

var errUnauthenticated = status.Error(codes.Unauthenticated, auth.UnauthorizedMessage)

func (a *AuthInterceptor) authenticate(ctx context.Context) (context.Context, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return nil, errUnauthenticated
	}

	values := md.Get("authorization")
	if len(values) == 0 {
		return nil, errUnauthenticated
	}

	tokenString, err := auth.BearerToken(values[0])
	if err != nil {
		logger.Log.Debugln("Error calling the `auth.BearerToken()`: ", zap.Error(err))
		return nil, errUnauthenticated
	}

	userID, err := a.verifier.GetUserIDFromToken(tokenString)
	if err != nil {
		logger.Log.Debugln("Error calling the `a.verifier.GetUserIDFromToken()`: ", zap.Error(err))
		return nil, errUnauthenticated
	}

	return auth.WithUserID(ctx, userID), nil
}

// UnaryAuthInterceptor rejects calls to protectedMethods that carry no valid
// "authorization: Bearer <token>" metadata and attaches the user id otherwise.
func (a *AuthInterceptor) UnaryAuthInterceptor(protectedMethods []string) grpc.UnaryServerInterceptor {
	protected := make(map[string]struct{}, len(protectedMethods))
	for _, m := range protectedMethods {
		protected[m] = struct{}{}
	}

	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		if _, ok := protected[info.FullMethod]; !ok {
			return handler(ctx, req)
		}

		ctxWithUser, err := a.authenticate(ctx)
		if err != nil {
			return nil, err
		}

		return handler(ctxWithUser, req)
	}
}
