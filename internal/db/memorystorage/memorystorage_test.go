package memorystorage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/mesto/internal/card"
	"github.com/patric-chuzhbe/mesto/internal/db/storage"
	"github.com/patric-chuzhbe/mesto/internal/models"
	"github.com/patric-chuzhbe/mesto/internal/user"
)

var _ storage.Storage = (*MemoryStorage)(nil)

func TestMemoryStorage(t *testing.T) {
	ctx := context.Background()

	theStorage, err := New()
	require.NoError(t, err)
	defer func() {
		require.NoError(t, theStorage.Close())
	}()

	require.NoError(t, theStorage.Ping(ctx))

	userID, err := theStorage.CreateUser(ctx, &user.User{Email: "a@b.com", PasswordHash: "hash"}, nil)
	require.NoError(t, err)

	_, err = theStorage.CreateUser(ctx, &user.User{Email: "a@b.com", PasswordHash: "other"}, nil)
	assert.ErrorIs(t, err, models.ErrEmailTaken)

	crd, err := theStorage.CreateCard(ctx, &card.Card{Name: "Байкал", Link: "https://example.com/b.png", Owner: userID}, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, crd.ID)

	cards, err := theStorage.GetCards(ctx)
	require.NoError(t, err)
	assert.Len(t, cards, 1)

	users, err := theStorage.GetNumberOfUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), users)
}
