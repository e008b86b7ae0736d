// Package grpcserver serves the mesto operations over gRPC. The service is
// described by hand over protobuf well-known types, so no generated code is needed.
package grpcserver

import (
	"net"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/patric-chuzhbe/mesto/internal/grpcserver/interceptor"
)

type tokenVerifier interface {
	GetUserIDFromToken(tokenString string) (string, error)
}

// New builds a gRPC server with mesto.Mesto and the standard health service registered.
func New(handler MestoServer, verifier tokenVerifier) *grpc.Server {
	authInterceptor := interceptor.NewAuthInterceptor(verifier)

	server := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			interceptor.UnaryLoggingInterceptor("/"+ServiceName+"/"),
			authInterceptor.UnaryAuthInterceptor(ProtectedMethods),
		),
	)
	RegisterMestoServer(server, handler)

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(server, healthServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)

	return server
}

// NewGRPCServer is New plus a TCP listener bound to addr.
func NewGRPCServer(
	addr string,
	handler MestoServer,
	verifier tokenVerifier,
) (*grpc.Server, net.Listener, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, err
	}

	return New(handler, verifier), lis, nil
}
