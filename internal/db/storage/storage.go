// Package storage declares the contract every storage backend implements.
package storage

import (
	"context"
	"database/sql"

	"github.com/patric-chuzhbe/mesto/internal/card"
	"github.com/patric-chuzhbe/mesto/internal/user"
)

// Storage is the full set of operations offered by the postgres, JSON file and
// in-memory backends. Lookups of absent records return models.ErrNotFound;
// creating a user with a taken email returns models.ErrEmailTaken.
type Storage interface {
	CreateUser(ctx context.Context, usr *user.User, transaction *sql.Tx) (string, error)

	GetUserByID(ctx context.Context, userID string, transaction *sql.Tx) (*user.User, error)

	GetUserByEmail(ctx context.Context, email string, transaction *sql.Tx) (*user.User, error)

	GetUsers(ctx context.Context) ([]*user.User, error)

	UpdateUserProfile(ctx context.Context, userID, name, about string) (*user.User, error)

	UpdateUserAvatar(ctx context.Context, userID, avatar string) (*user.User, error)

	CreateCard(ctx context.Context, crd *card.Card, transaction *sql.Tx) (*card.Card, error)

	GetCards(ctx context.Context) ([]*card.Card, error)

	GetCardByID(ctx context.Context, cardID string, transaction *sql.Tx) (*card.Card, error)

	DeleteCard(ctx context.Context, cardID string, transaction *sql.Tx) error

	AddCardLike(ctx context.Context, cardID, userID string) (*card.Card, error)

	RemoveCardLike(ctx context.Context, cardID, userID string) (*card.Card, error)

	GetNumberOfUsers(ctx context.Context) (int64, error)

	GetNumberOfCards(ctx context.Context) (int64, error)

	BeginTransaction() (*sql.Tx, error)

	RollbackTransaction(transaction *sql.Tx) error

	CommitTransaction(transaction *sql.Tx) error

	Ping(ctx context.Context) error

	Close() error
}
