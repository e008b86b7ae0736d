package service

import (
	"github.com/google/uuid"

	"github.com/patric-chuzhbe/mesto/internal/card"
	"github.com/patric-chuzhbe/mesto/internal/models"
)

// AssertOwner succeeds when crd exists and was created by userID.
// A missing card is reported before ownership is considered.
func AssertOwner(crd *card.Card, userID string) error {
	if crd == nil {
		return models.ErrNotFound
	}
	if !crd.IsOwnedBy(userID) {
		return models.ErrForbidden
	}

	return nil
}

// ParseID checks that id is a well-formed UUID.
func ParseID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return models.ErrInvalidID
	}

	return nil
}
