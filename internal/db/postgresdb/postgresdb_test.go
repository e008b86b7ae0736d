package postgresdb

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/mesto/internal/card"
	"github.com/patric-chuzhbe/mesto/internal/db/storage"
	"github.com/patric-chuzhbe/mesto/internal/models"
	"github.com/patric-chuzhbe/mesto/internal/user"
)

var _ storage.Storage = (*PostgresDB)(nil)

const migrationsDir = "../../../cmd/mesto/migrations"

func newTestDB(t *testing.T) *PostgresDB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN is not set")
	}

	db, err := New(context.Background(), dsn, 10*time.Second, migrationsDir, WithDBPreReset(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return db
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	userID, err := db.CreateUser(ctx, &user.User{
		Email:        "a@b.com",
		PasswordHash: "$2a$04$hash",
		Name:         user.DefaultName,
		About:        user.DefaultAbout,
		Avatar:       user.DefaultAvatar,
	}, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, userID)

	_, err = db.CreateUser(ctx, &user.User{Email: "a@b.com", PasswordHash: "x"}, nil)
	assert.ErrorIs(t, err, models.ErrEmailTaken)

	usr, err := db.GetUserByEmail(ctx, "a@b.com", nil)
	require.NoError(t, err)
	assert.Equal(t, userID, usr.ID)
	assert.Equal(t, "$2a$04$hash", usr.PasswordHash)

	_, err = db.GetUserByID(ctx, "not-a-uuid", nil)
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = db.GetUserByID(ctx, "6f1c1a52-94a9-4b8e-9d0f-2b7d8e1c0a11", nil)
	assert.ErrorIs(t, err, models.ErrNotFound)

	updated, err := db.UpdateUserProfile(ctx, userID, "Иван", "Фотограф")
	require.NoError(t, err)
	assert.Equal(t, "Иван", updated.Name)

	updated, err = db.UpdateUserAvatar(ctx, userID, "https://example.com/me.png")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/me.png", updated.Avatar)

	users, err := db.GetUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)

	count, err := db.GetNumberOfUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestCardsAndLikes(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	ownerID, err := db.CreateUser(ctx, &user.User{Email: "owner@b.com", PasswordHash: "x"}, nil)
	require.NoError(t, err)
	likerID, err := db.CreateUser(ctx, &user.User{Email: "liker@b.com", PasswordHash: "x"}, nil)
	require.NoError(t, err)

	older, err := db.CreateCard(ctx, &card.Card{
		Name:      "Архыз",
		Link:      "https://example.com/arkhyz.jpg",
		Owner:     ownerID,
		CreatedAt: time.Now().Add(-time.Minute),
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{}, older.Likes)

	newer, err := db.CreateCard(ctx, &card.Card{Name: "Домбай", Link: "https://example.com/d.jpg", Owner: ownerID}, nil)
	require.NoError(t, err)

	cards, err := db.GetCards(ctx)
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, newer.ID, cards[0].ID)

	liked, err := db.AddCardLike(ctx, older.ID, likerID)
	require.NoError(t, err)
	liked, err = db.AddCardLike(ctx, older.ID, likerID)
	require.NoError(t, err)
	assert.Equal(t, []string{likerID}, liked.Likes)

	unliked, err := db.RemoveCardLike(ctx, older.ID, ownerID)
	require.NoError(t, err)
	assert.Equal(t, []string{likerID}, unliked.Likes)

	_, err = db.AddCardLike(ctx, "6f1c1a52-94a9-4b8e-9d0f-2b7d8e1c0a11", likerID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	tx, err := db.BeginTransaction()
	require.NoError(t, err)
	locked, err := db.GetCardByID(ctx, newer.ID, tx)
	require.NoError(t, err)
	assert.True(t, locked.IsOwnedBy(ownerID))
	require.NoError(t, db.DeleteCard(ctx, newer.ID, tx))
	require.NoError(t, db.CommitTransaction(tx))
	assert.NoError(t, db.RollbackTransaction(tx))

	assert.ErrorIs(t, db.DeleteCard(ctx, newer.ID, nil), models.ErrNotFound)

	count, err := db.GetNumberOfCards(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
