// Package card defines the card record: an image post owned by a single user
// and liked by any number of users.
package card

import (
	"time"

	"github.com/thoas/go-funk"
)

// Card is an image post.
type Card struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Link      string    `json:"link"`
	Owner     string    `json:"owner"`
	Likes     []string  `json:"likes"`
	CreatedAt time.Time `json:"createdAt"`
}

// IsOwnedBy reports whether userID created the card.
func (c *Card) IsOwnedBy(userID string) bool {
	return c.Owner != "" && c.Owner == userID
}

// AddLike puts userID into the likers set. Adding a present id is a no-op.
func (c *Card) AddLike(userID string) {
	if funk.ContainsString(c.Likes, userID) {
		return
	}
	c.Likes = append(c.Likes, userID)
}

// RemoveLike drops userID from the likers set. Removing an absent id is a no-op.
func (c *Card) RemoveLike(userID string) {
	c.Likes = funk.FilterString(c.Likes, func(id string) bool {
		return id != userID
	})
	if c.Likes == nil {
		c.Likes = []string{}
	}
}

// Clone returns a deep copy so callers never share the likers slice.
func (c *Card) Clone() *Card {
	clone := *c
	clone.Likes = append(make([]string, 0, len(c.Likes)), c.Likes...)
	return &clone
}
