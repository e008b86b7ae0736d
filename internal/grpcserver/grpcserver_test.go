package grpcserver

import (
	"context"
	"crypto/rand"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/patric-chuzhbe/mesto/internal/auth"
	"github.com/patric-chuzhbe/mesto/internal/db/memorystorage"
	"github.com/patric-chuzhbe/mesto/internal/db/storage"
	"github.com/patric-chuzhbe/mesto/internal/mockstorage"
	"github.com/patric-chuzhbe/mesto/internal/passhash"
	"github.com/patric-chuzhbe/mesto/internal/service"
)

const bufSize = 1024 * 1024

type initOptions struct {
	mockStorage storage.Storage
}

type initOption func(*initOptions)

func withMockStorage(db storage.Storage) initOption {
	return func(options *initOptions) {
		options.mockStorage = db
	}
}

// startTestGRPCServer boots a server on an in-memory listener and returns a client for it.
func startTestGRPCServer(t *testing.T, optionsProto ...initOption) (*MestoClient, *grpc.ClientConn, *auth.Auth) {
	options := &initOptions{}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	var db storage.Storage
	if options.mockStorage != nil {
		db = options.mockStorage
	} else {
		memory, err := memorystorage.New()
		require.NoError(t, err)
		db = memory
	}

	secret := make([]byte, 32)
	_, err := rand.Read(secret)
	require.NoError(t, err)
	theAuth := auth.New(secret, time.Hour)

	hasher, err := passhash.New(4)
	require.NoError(t, err)

	server := New(NewMestoHandler(service.New(db, hasher, theAuth)), theAuth)

	lis := bufconn.Listen(bufSize)
	go func() {
		if err := server.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			t.Logf("gRPC server stopped: %v", err)
		}
	}()

	conn, err := grpc.NewClient(
		"passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = conn.Close()
		server.Stop()
		_ = lis.Close()
	})

	return NewMestoClient(conn), conn, theAuth
}

func mustStruct(t *testing.T, fields map[string]interface{}) *structpb.Struct {
	t.Helper()

	result, err := structpb.NewStruct(fields)
	require.NoError(t, err)

	return result
}

func withToken(ctx context.Context, token string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+token)
}

func signUpAndSignIn(t *testing.T, client *MestoClient, email, password string) (string, string) {
	t.Helper()
	ctx := context.Background()

	registered, err := client.SignUp(ctx, mustStruct(t, map[string]interface{}{"email": email, "password": password}))
	require.NoError(t, err)

	token, err := client.SignIn(ctx, mustStruct(t, map[string]interface{}{"email": email, "password": password}))
	require.NoError(t, err)

	return registered.GetFields()["_id"].GetStringValue(), token.GetValue()
}

func TestSignUpSignInMe(t *testing.T) {
	client, _, _ := startTestGRPCServer(t)

	userID, token := signUpAndSignIn(t, client, "a@b.com", "secret1")
	require.NotEmpty(t, userID)

	me, err := client.Me(withToken(context.Background(), token))
	require.NoError(t, err)
	assert.Equal(t, userID, me.GetFields()["_id"].GetStringValue())
	assert.NotContains(t, me.GetFields(), "password")
}

func TestSignInWrongCredentials(t *testing.T) {
	client, _, _ := startTestGRPCServer(t)
	signUpAndSignIn(t, client, "a@b.com", "secret1")

	for _, email := range []string{"a@b.com", "nobody@b.com"} {
		_, err := client.SignIn(context.Background(), mustStruct(t, map[string]interface{}{"email": email, "password": "wrong"}))
		st, ok := status.FromError(err)
		require.True(t, ok)
		assert.Equal(t, codes.Unauthenticated, st.Code())
		assert.Equal(t, messageWrongCredentials, st.Message())
	}
}

func TestSignUpDuplicateAndInvalid(t *testing.T) {
	client, _, _ := startTestGRPCServer(t)
	signUpAndSignIn(t, client, "a@b.com", "secret1")

	_, err := client.SignUp(context.Background(), mustStruct(t, map[string]interface{}{"email": "a@b.com", "password": "x"}))
	assert.Equal(t, codes.AlreadyExists, status.Code(err))

	_, err = client.SignUp(context.Background(), mustStruct(t, map[string]interface{}{"email": "bad", "password": "x"}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestProtectedMethodsRequireBearerToken(t *testing.T) {
	client, _, theAuth := startTestGRPCServer(t)

	validToken, err := theAuth.BuildJWTString(uuid.NewString())
	require.NoError(t, err)

	type tTestCase struct {
		name string
		ctx  context.Context
	}
	tests := []tTestCase{
		{name: "no metadata", ctx: context.Background()},
		{name: "raw token without scheme", ctx: metadata.AppendToOutgoingContext(context.Background(), "authorization", validToken)},
		{name: "garbage token", ctx: withToken(context.Background(), "garbage")},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := client.ListCards(test.ctx)
			st, ok := status.FromError(err)
			require.True(t, ok)
			assert.Equal(t, codes.Unauthenticated, st.Code())
			assert.Equal(t, auth.UnauthorizedMessage, st.Message())
		})
	}

	_, err = client.ListCards(withToken(context.Background(), validToken))
	assert.NoError(t, err)
}

func TestCardOwnershipOverGRPC(t *testing.T) {
	client, _, _ := startTestGRPCServer(t)
	_, ownerToken := signUpAndSignIn(t, client, "u1@b.com", "secret1")
	strangerID, strangerToken := signUpAndSignIn(t, client, "u2@b.com", "secret2")

	ownerCtx := withToken(context.Background(), ownerToken)
	strangerCtx := withToken(context.Background(), strangerToken)

	created, err := client.CreateCard(ownerCtx, mustStruct(t, map[string]interface{}{
		"name": "Архыз",
		"link": "https://example.com/a.jpg",
	}))
	require.NoError(t, err)
	cardID := created.GetFields()["_id"].GetStringValue()

	liked, err := client.LikeCard(strangerCtx, cardID)
	require.NoError(t, err)
	liked, err = client.LikeCard(strangerCtx, cardID)
	require.NoError(t, err)
	likes := liked.GetFields()["likes"].GetListValue().AsSlice()
	assert.Equal(t, []interface{}{strangerID}, likes)

	unliked, err := client.UnlikeCard(ownerCtx, cardID)
	require.NoError(t, err)
	assert.Len(t, unliked.GetFields()["likes"].GetListValue().GetValues(), 1)

	assert.Equal(t, codes.PermissionDenied, status.Code(client.DeleteCard(strangerCtx, cardID)))
	assert.NoError(t, client.DeleteCard(ownerCtx, cardID))
	assert.Equal(t, codes.NotFound, status.Code(client.DeleteCard(ownerCtx, cardID)))
	assert.Equal(t, codes.InvalidArgument, status.Code(client.DeleteCard(ownerCtx, "nope")))

	cards, err := client.ListCards(ownerCtx)
	require.NoError(t, err)
	assert.Empty(t, cards.GetValues())
}

func TestInternalErrorIsGeneric(t *testing.T) {
	db := &mockstorage.StorageMock{}
	db.On("GetCards", mock.Anything).Return(nil, errors.New("dial tcp 10.0.0.5:5432: connection refused"))

	client, _, theAuth := startTestGRPCServer(t, withMockStorage(db))
	token, err := theAuth.BuildJWTString(uuid.NewString())
	require.NoError(t, err)

	_, err = client.ListCards(withToken(context.Background(), token))
	st, ok := status.FromError(err)
	require.True(t, ok)
	assert.Equal(t, codes.Internal, st.Code())
	assert.Equal(t, messageInternal, st.Message())
}

func TestHealth(t *testing.T) {
	_, conn, _ := startTestGRPCServer(t)

	resp, err := healthpb.NewHealthClient(conn).Check(context.Background(), &healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}
