package grpcserver

import (
	"context"
	"encoding/json"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/patric-chuzhbe/mesto/internal/auth"
	"github.com/patric-chuzhbe/mesto/internal/card"
	"github.com/patric-chuzhbe/mesto/internal/models"
	"github.com/patric-chuzhbe/mesto/internal/user"
)

type mestoService interface {
	Register(ctx context.Context, request models.SignUpRequest) (*user.User, error)

	Login(ctx context.Context, request models.SignInRequest) (string, error)

	GetUser(ctx context.Context, userID string) (*user.User, error)

	ListCards(ctx context.Context) ([]*card.Card, error)

	CreateCard(ctx context.Context, userID string, request models.CreateCardRequest) (*card.Card, error)

	DeleteCard(ctx context.Context, userID, cardID string) error

	LikeCard(ctx context.Context, userID, cardID string) (*card.Card, error)

	UnlikeCard(ctx context.Context, userID, cardID string) (*card.Card, error)
}

// MestoHandler serves mesto.Mesto on top of the service layer.
type MestoHandler struct {
	svc mestoService
}

func NewMestoHandler(svc mestoService) *MestoHandler {
	return &MestoHandler{svc: svc}
}

var errMissingIdentity = status.Error(codes.Unauthenticated, auth.UnauthorizedMessage)

func fromStruct(in *structpb.Struct, target interface{}) error {
	raw, err := protojson.Marshal(in)
	if err != nil {
		return &models.ValidationError{Message: "Переданы некорректные данные"}
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return &models.ValidationError{Message: "Переданы некорректные данные"}
	}

	return nil
}

func toStruct(value interface{}) (*structpb.Struct, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}

	result := &structpb.Struct{}
	if err := protojson.Unmarshal(raw, result); err != nil {
		return nil, err
	}

	return result, nil
}

func toList(value interface{}) (*structpb.ListValue, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}

	result := &structpb.ListValue{}
	if err := protojson.Unmarshal(raw, result); err != nil {
		return nil, err
	}

	return result, nil
}

func (h *MestoHandler) SignUp(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var request models.SignUpRequest
	if err := fromStruct(in, &request); err != nil {
		return nil, toStatus(MethodSignUp, err)
	}

	usr, err := h.svc.Register(ctx, request)
	if err != nil {
		return nil, toStatus(MethodSignUp, err)
	}

	result, err := toStruct(usr)
	if err != nil {
		return nil, toStatus(MethodSignUp, err)
	}

	return result, nil
}

func (h *MestoHandler) SignIn(ctx context.Context, in *structpb.Struct) (*wrapperspb.StringValue, error) {
	var request models.SignInRequest
	if err := fromStruct(in, &request); err != nil {
		return nil, toStatus(MethodSignIn, err)
	}

	token, err := h.svc.Login(ctx, request)
	if err != nil {
		return nil, toStatus(MethodSignIn, err)
	}

	return wrapperspb.String(token), nil
}

func (h *MestoHandler) Me(ctx context.Context, in *emptypb.Empty) (*structpb.Struct, error) {
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return nil, errMissingIdentity
	}

	usr, err := h.svc.GetUser(ctx, userID)
	if err != nil {
		return nil, toStatus(MethodMe, err)
	}

	result, err := toStruct(usr)
	if err != nil {
		return nil, toStatus(MethodMe, err)
	}

	return result, nil
}

func (h *MestoHandler) ListCards(ctx context.Context, in *emptypb.Empty) (*structpb.ListValue, error) {
	cards, err := h.svc.ListCards(ctx)
	if err != nil {
		return nil, toStatus(MethodListCards, err)
	}

	result, err := toList(cards)
	if err != nil {
		return nil, toStatus(MethodListCards, err)
	}

	return result, nil
}

func (h *MestoHandler) CreateCard(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return nil, errMissingIdentity
	}

	var request models.CreateCardRequest
	if err := fromStruct(in, &request); err != nil {
		return nil, toStatus(MethodCreateCard, err)
	}

	crd, err := h.svc.CreateCard(ctx, userID, request)
	if err != nil {
		return nil, toStatus(MethodCreateCard, err)
	}

	return h.cardStruct(MethodCreateCard, crd)
}

func (h *MestoHandler) DeleteCard(ctx context.Context, in *wrapperspb.StringValue) (*emptypb.Empty, error) {
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return nil, errMissingIdentity
	}

	if err := h.svc.DeleteCard(ctx, userID, in.GetValue()); err != nil {
		return nil, toStatus(MethodDeleteCard, err)
	}

	return &emptypb.Empty{}, nil
}

func (h *MestoHandler) LikeCard(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error) {
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return nil, errMissingIdentity
	}

	crd, err := h.svc.LikeCard(ctx, userID, in.GetValue())
	if err != nil {
		return nil, toStatus(MethodLikeCard, err)
	}

	return h.cardStruct(MethodLikeCard, crd)
}

func (h *MestoHandler) UnlikeCard(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error) {
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return nil, errMissingIdentity
	}

	crd, err := h.svc.UnlikeCard(ctx, userID, in.GetValue())
	if err != nil {
		return nil, toStatus(MethodUnlikeCard, err)
	}

	return h.cardStruct(MethodUnlikeCard, crd)
}

func (h *MestoHandler) cardStruct(method string, crd *card.Card) (*structpb.Struct, error) {
	result, err := toStruct(crd)
	if err != nil {
		return nil, toStatus(method, err)
	}

	return result, nil
}
