// Package mockstorage provides a testify-based mock of storage.Storage.
// Router, grpc and service tests use it to simulate storage behavior and
// failures that real backends do not produce on demand.
package mockstorage

import (
	"context"
	"database/sql"

	"github.com/stretchr/testify/mock"

	"github.com/patric-chuzhbe/mesto/internal/card"
	"github.com/patric-chuzhbe/mesto/internal/user"
)

// StorageMock is a testify mock that implements storage.Storage.
type StorageMock struct {
	mock.Mock

	// OnGetNumberOfUsers is an optional function field that can be assigned
	// to define custom mock behavior for GetNumberOfUsers in tests.
	//
	// If set, GetNumberOfUsers will delegate to this function instead of
	// using testify's generic mock handler.
	OnGetNumberOfUsers func(ctx context.Context) (int64, error)

	// OnGetNumberOfCards works the same way for GetNumberOfCards.
	OnGetNumberOfCards func(ctx context.Context) (int64, error)
}

func userOrNil(value interface{}) *user.User {
	usr, _ := value.(*user.User)
	return usr
}

func cardOrNil(value interface{}) *card.Card {
	crd, _ := value.(*card.Card)
	return crd
}

// Ping mocks the health check.
func (m *StorageMock) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// BeginTransaction mocks the beginning of a transaction.
func (m *StorageMock) BeginTransaction() (*sql.Tx, error) {
	args := m.Called()
	tx, _ := args.Get(0).(*sql.Tx)
	return tx, args.Error(1)
}

// CommitTransaction mocks committing a transaction.
func (m *StorageMock) CommitTransaction(tx *sql.Tx) error {
	args := m.Called(tx)
	return args.Error(0)
}

// RollbackTransaction mocks rolling back a transaction.
func (m *StorageMock) RollbackTransaction(tx *sql.Tx) error {
	args := m.Called(tx)
	return args.Error(0)
}

// CreateUser mocks user creation and returns a generated ID.
func (m *StorageMock) CreateUser(ctx context.Context, usr *user.User, tx *sql.Tx) (string, error) {
	args := m.Called(ctx, usr, tx)
	return args.String(0), args.Error(1)
}

// GetUserByID mocks fetching a user by their ID.
func (m *StorageMock) GetUserByID(ctx context.Context, userID string, tx *sql.Tx) (*user.User, error) {
	args := m.Called(ctx, userID, tx)
	return userOrNil(args.Get(0)), args.Error(1)
}

// GetUserByEmail mocks fetching a user by email.
func (m *StorageMock) GetUserByEmail(ctx context.Context, email string, tx *sql.Tx) (*user.User, error) {
	args := m.Called(ctx, email, tx)
	return userOrNil(args.Get(0)), args.Error(1)
}

// GetUsers mocks listing users.
func (m *StorageMock) GetUsers(ctx context.Context) ([]*user.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]*user.User)
	return users, args.Error(1)
}

// UpdateUserProfile mocks a profile update.
func (m *StorageMock) UpdateUserProfile(ctx context.Context, userID, name, about string) (*user.User, error) {
	args := m.Called(ctx, userID, name, about)
	return userOrNil(args.Get(0)), args.Error(1)
}

// UpdateUserAvatar mocks an avatar update.
func (m *StorageMock) UpdateUserAvatar(ctx context.Context, userID, avatar string) (*user.User, error) {
	args := m.Called(ctx, userID, avatar)
	return userOrNil(args.Get(0)), args.Error(1)
}

// CreateCard mocks card creation.
func (m *StorageMock) CreateCard(ctx context.Context, crd *card.Card, tx *sql.Tx) (*card.Card, error) {
	args := m.Called(ctx, crd, tx)
	return cardOrNil(args.Get(0)), args.Error(1)
}

// GetCards mocks listing cards.
func (m *StorageMock) GetCards(ctx context.Context) ([]*card.Card, error) {
	args := m.Called(ctx)
	cards, _ := args.Get(0).([]*card.Card)
	return cards, args.Error(1)
}

// GetCardByID mocks fetching a card by its ID.
func (m *StorageMock) GetCardByID(ctx context.Context, cardID string, tx *sql.Tx) (*card.Card, error) {
	args := m.Called(ctx, cardID, tx)
	return cardOrNil(args.Get(0)), args.Error(1)
}

// DeleteCard mocks card removal.
func (m *StorageMock) DeleteCard(ctx context.Context, cardID string, tx *sql.Tx) error {
	args := m.Called(ctx, cardID, tx)
	return args.Error(0)
}

// AddCardLike mocks liking a card.
func (m *StorageMock) AddCardLike(ctx context.Context, cardID, userID string) (*card.Card, error) {
	args := m.Called(ctx, cardID, userID)
	return cardOrNil(args.Get(0)), args.Error(1)
}

// RemoveCardLike mocks unliking a card.
func (m *StorageMock) RemoveCardLike(ctx context.Context, cardID, userID string) (*card.Card, error) {
	args := m.Called(ctx, cardID, userID)
	return cardOrNil(args.Get(0)), args.Error(1)
}

// Close mocks closing the storage and releasing resources.
func (m *StorageMock) Close() error {
	args := m.Called()
	return args.Error(0)
}

// GetNumberOfUsers returns the number of users as defined by the mock.
//
// If OnGetNumberOfUsers is non-nil, it will be called to produce the result.
// Otherwise, the method returns 0 and no error by default.
func (m *StorageMock) GetNumberOfUsers(ctx context.Context) (int64, error) {
	if m.OnGetNumberOfUsers != nil {
		return m.OnGetNumberOfUsers(ctx)
	}
	return 0, nil
}

// GetNumberOfCards returns the number of cards as defined by the mock.
func (m *StorageMock) GetNumberOfCards(ctx context.Context) (int64, error) {
	if m.OnGetNumberOfCards != nil {
		return m.OnGetNumberOfCards(ctx)
	}
	return 0, nil
}
