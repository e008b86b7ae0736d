// Package service implements the mesto operations on top of a storage backend:
// registration, login, profile reads and updates, and card management with
// ownership enforcement.
package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/patric-chuzhbe/mesto/internal/card"
	"github.com/patric-chuzhbe/mesto/internal/models"
	"github.com/patric-chuzhbe/mesto/internal/user"
)

type transactioner interface {
	BeginTransaction() (*sql.Tx, error)

	RollbackTransaction(transaction *sql.Tx) error

	CommitTransaction(transaction *sql.Tx) error
}

type userKeeper interface {
	CreateUser(ctx context.Context, usr *user.User, transaction *sql.Tx) (string, error)

	GetUserByID(ctx context.Context, userID string, transaction *sql.Tx) (*user.User, error)

	GetUserByEmail(ctx context.Context, email string, transaction *sql.Tx) (*user.User, error)

	GetUsers(ctx context.Context) ([]*user.User, error)

	UpdateUserProfile(ctx context.Context, userID, name, about string) (*user.User, error)

	UpdateUserAvatar(ctx context.Context, userID, avatar string) (*user.User, error)

	GetNumberOfUsers(ctx context.Context) (int64, error)
}

type cardKeeper interface {
	CreateCard(ctx context.Context, crd *card.Card, transaction *sql.Tx) (*card.Card, error)

	GetCards(ctx context.Context) ([]*card.Card, error)

	GetCardByID(ctx context.Context, cardID string, transaction *sql.Tx) (*card.Card, error)

	DeleteCard(ctx context.Context, cardID string, transaction *sql.Tx) error

	AddCardLike(ctx context.Context, cardID, userID string) (*card.Card, error)

	RemoveCardLike(ctx context.Context, cardID, userID string) (*card.Card, error)

	GetNumberOfCards(ctx context.Context) (int64, error)
}

type pinger interface {
	Ping(ctx context.Context) error
}

type storage interface {
	transactioner
	userKeeper
	cardKeeper
	pinger
}

type passwordHasher interface {
	Hash(plaintext string) (string, error)

	Verify(plaintext, hashed string) (bool, error)
}

type tokenIssuer interface {
	BuildJWTString(userID string) (string, error)
}

// absentUserPassword backs the decoy hash checked when the email is unknown.
const absentUserPassword = "mesto-absent-user"

// Service implements the account, card and maintenance operations on top of a storage backend.
type Service struct {
	db        storage
	hasher    passwordHasher
	tokens    tokenIssuer
	validate  *validator.Validate
	decoyOnce sync.Once
	decoyHash string
}

// New creates a Service that stores data in db, hashes passwords with hasher and issues tokens with tokens.
func New(
	db storage,
	hasher passwordHasher,
	tokens tokenIssuer,
) *Service {
	return &Service{
		db:       db,
		hasher:   hasher,
		tokens:   tokens,
		validate: models.NewValidator(),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) validateRequest(request interface{}) error {
	if err := s.validate.Struct(request); err != nil {
		return models.NewValidationError(err)
	}

	return nil
}

// Register creates an account and returns it without the password hash.
// Omitted profile fields get the defaults.
func (s *Service) Register(ctx context.Context, request models.SignUpRequest) (*user.User, error) {
	request.Email = normalizeEmail(request.Email)
	if err := s.validateRequest(request); err != nil {
		return nil, err
	}

	hashed, err := s.hasher.Hash(request.Password)
	if err != nil {
		return nil, fmt.Errorf("in internal/service/service.go/Register(): error while `s.hasher.Hash()` calling: %w", err)
	}

	usr := &user.User{
		Email:        request.Email,
		PasswordHash: hashed,
		Name:         request.Name,
		About:        request.About,
		Avatar:       request.Avatar,
	}
	if usr.Name == "" {
		usr.Name = user.DefaultName
	}
	if usr.About == "" {
		usr.About = user.DefaultAbout
	}
	if usr.Avatar == "" {
		usr.Avatar = user.DefaultAvatar
	}

	usr.ID, err = s.db.CreateUser(ctx, usr, nil)
	if err != nil {
		return nil, fmt.Errorf("in internal/service/service.go/Register(): error while `s.db.CreateUser()` calling: %w", err)
	}

	return usr.Public(), nil
}

func (s *Service) burnDecoyVerification(password string) {
	s.decoyOnce.Do(func() {
		s.decoyHash, _ = s.hasher.Hash(absentUserPassword)
	})
	if s.decoyHash != "" {
		_, _ = s.hasher.Verify(password, s.decoyHash)
	}
}

// Login checks the credentials and issues a token for the matching user.
// An unknown email and a wrong password both yield models.ErrUnauthorized.
func (s *Service) Login(ctx context.Context, request models.SignInRequest) (string, error) {
	request.Email = normalizeEmail(request.Email)
	if err := s.validateRequest(request); err != nil {
		return "", err
	}

	usr, err := s.db.GetUserByEmail(ctx, request.Email, nil)
	if errors.Is(err, models.ErrNotFound) {
		s.burnDecoyVerification(request.Password)
		return "", models.ErrUnauthorized
	}
	if err != nil {
		return "", fmt.Errorf("in internal/service/service.go/Login(): error while `s.db.GetUserByEmail()` calling: %w", err)
	}

	matches, err := s.hasher.Verify(request.Password, usr.PasswordHash)
	if err != nil {
		return "", fmt.Errorf("in internal/service/service.go/Login(): error while `s.hasher.Verify()` calling: %w", err)
	}
	if !matches {
		return "", models.ErrUnauthorized
	}

	token, err := s.tokens.BuildJWTString(usr.ID)
	if err != nil {
		return "", fmt.Errorf("in internal/service/service.go/Login(): error while `s.tokens.BuildJWTString()` calling: %w", err)
	}

	return token, nil
}

// GetUser returns the public view of the user with the given id.
func (s *Service) GetUser(ctx context.Context, userID string) (*user.User, error) {
	if err := ParseID(userID); err != nil {
		return nil, err
	}

	usr, err := s.db.GetUserByID(ctx, userID, nil)
	if err != nil {
		return nil, fmt.Errorf("in internal/service/service.go/GetUser(): error while `s.db.GetUserByID()` calling: %w", err)
	}

	return usr.Public(), nil
}

// GetUsers returns the public view of every user.
func (s *Service) GetUsers(ctx context.Context) ([]*user.User, error) {
	users, err := s.db.GetUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("in internal/service/service.go/GetUsers(): error while `s.db.GetUsers()` calling: %w", err)
	}

	result := make([]*user.User, 0, len(users))
	for _, usr := range users {
		result = append(result, usr.Public())
	}

	return result, nil
}

func (s *Service) UpdateProfile(ctx context.Context, userID string, request models.UpdateProfileRequest) (*user.User, error) {
	if err := s.validateRequest(request); err != nil {
		return nil, err
	}

	usr, err := s.db.UpdateUserProfile(ctx, userID, request.Name, request.About)
	if err != nil {
		return nil, fmt.Errorf("in internal/service/service.go/UpdateProfile(): error while `s.db.UpdateUserProfile()` calling: %w", err)
	}

	return usr.Public(), nil
}

func (s *Service) UpdateAvatar(ctx context.Context, userID string, request models.UpdateAvatarRequest) (*user.User, error) {
	if err := s.validateRequest(request); err != nil {
		return nil, err
	}

	usr, err := s.db.UpdateUserAvatar(ctx, userID, request.Avatar)
	if err != nil {
		return nil, fmt.Errorf("in internal/service/service.go/UpdateAvatar(): error while `s.db.UpdateUserAvatar()` calling: %w", err)
	}

	return usr.Public(), nil
}

func (s *Service) ListCards(ctx context.Context) ([]*card.Card, error) {
	cards, err := s.db.GetCards(ctx)
	if err != nil {
		return nil, fmt.Errorf("in internal/service/service.go/ListCards(): error while `s.db.GetCards()` calling: %w", err)
	}

	return cards, nil
}

// CreateCard stores a new card owned by userID.
func (s *Service) CreateCard(ctx context.Context, userID string, request models.CreateCardRequest) (*card.Card, error) {
	if err := s.validateRequest(request); err != nil {
		return nil, err
	}

	crd, err := s.db.CreateCard(ctx, &card.Card{
		Name:  request.Name,
		Link:  request.Link,
		Owner: userID,
		Likes: []string{},
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("in internal/service/service.go/CreateCard(): error while `s.db.CreateCard()` calling: %w", err)
	}

	return crd, nil
}

// DeleteCard removes the card when userID owns it. The id is checked first,
// then existence, then ownership; nothing is written unless all three pass.
func (s *Service) DeleteCard(ctx context.Context, userID, cardID string) error {
	if err := ParseID(cardID); err != nil {
		return err
	}

	tx, err := s.db.BeginTransaction()
	if err != nil {
		return fmt.Errorf("in internal/service/service.go/DeleteCard(): error while `s.db.BeginTransaction()` calling: %w", err)
	}
	defer func() {
		_ = s.db.RollbackTransaction(tx)
	}()

	crd, err := s.db.GetCardByID(ctx, cardID, tx)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("in internal/service/service.go/DeleteCard(): error while `s.db.GetCardByID()` calling: %w", err)
	}

	if err := AssertOwner(crd, userID); err != nil {
		return err
	}

	if err := s.db.DeleteCard(ctx, cardID, tx); err != nil {
		return fmt.Errorf("in internal/service/service.go/DeleteCard(): error while `s.db.DeleteCard()` calling: %w", err)
	}

	if err := s.db.CommitTransaction(tx); err != nil {
		return fmt.Errorf("in internal/service/service.go/DeleteCard(): error while `s.db.CommitTransaction()` calling: %w", err)
	}

	return nil
}

// LikeCard puts userID into the likers of the card. Any authenticated user may do it.
func (s *Service) LikeCard(ctx context.Context, userID, cardID string) (*card.Card, error) {
	if err := ParseID(cardID); err != nil {
		return nil, err
	}

	crd, err := s.db.AddCardLike(ctx, cardID, userID)
	if err != nil {
		return nil, fmt.Errorf("in internal/service/service.go/LikeCard(): error while `s.db.AddCardLike()` calling: %w", err)
	}

	return crd, nil
}

// UnlikeCard removes userID from the likers of the card.
func (s *Service) UnlikeCard(ctx context.Context, userID, cardID string) (*card.Card, error) {
	if err := ParseID(cardID); err != nil {
		return nil, err
	}

	crd, err := s.db.RemoveCardLike(ctx, cardID, userID)
	if err != nil {
		return nil, fmt.Errorf("in internal/service/service.go/UnlikeCard(): error while `s.db.RemoveCardLike()` calling: %w", err)
	}

	return crd, nil
}

// Ping checks the health of the database/storage layer.
func (s *Service) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// GetInternalStats returns the number of users and cards.
func (s *Service) GetInternalStats(ctx context.Context) (models.InternalStatsResponse, error) {
	cards, err := s.db.GetNumberOfCards(ctx)
	if err != nil {
		return models.InternalStatsResponse{}, err
	}

	users, err := s.db.GetNumberOfUsers(ctx)
	if err != nil {
		return models.InternalStatsResponse{}, err
	}

	return models.InternalStatsResponse{
		Users: users,
		Cards: cards,
	}, nil
}
