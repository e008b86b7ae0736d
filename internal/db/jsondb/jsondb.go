// Package jsondb keeps users and cards in memory and mirrors them to a JSON
// file after every change.
package jsondb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/patric-chuzhbe/mesto/internal/card"
	"github.com/patric-chuzhbe/mesto/internal/models"
	"github.com/patric-chuzhbe/mesto/internal/user"
)

// JSONDB is a file-backed store. An empty fileName keeps data in memory only.
type JSONDB struct {
	fileName string
	mu       sync.RWMutex
	Cache    CacheStruct
}

// UserRecord is the on-disk form of a user; unlike user.User it keeps the hash.
type UserRecord struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
	Name         string `json:"name"`
	About        string `json:"about"`
	Avatar       string `json:"avatar"`
}

type CacheStruct struct {
	Users map[string]*UserRecord
	Cards map[string]*card.Card
}

// NewCache returns an empty cache ready for use.
func NewCache() CacheStruct {
	return CacheStruct{
		Users: map[string]*UserRecord{},
		Cards: map[string]*card.Card{},
	}
}

func (db *JSONDB) CommitTransaction(transaction *sql.Tx) error {
	return nil
}

func (db *JSONDB) RollbackTransaction(transaction *sql.Tx) error {
	return nil
}

func (db *JSONDB) BeginTransaction() (*sql.Tx, error) {
	return nil, nil
}

func writeToJSONFile(fileName string, cache interface{}) error {
	jsonData, err := json.MarshalIndent(cache, "", "\t")
	if err != nil {
		return fmt.Errorf("error marshaling JSON: %w", err)
	}

	tmpName := fileName + ".tmp"
	if err := os.WriteFile(tmpName, jsonData, 0600); err != nil {
		return fmt.Errorf("error writing file: %w", err)
	}

	if err := os.Rename(tmpName, fileName); err != nil {
		return fmt.Errorf("error replacing file: %w", err)
	}

	return nil
}

func parseJSONFile(fileName string, cache *CacheStruct) error {
	file, err := os.Open(fileName)
	if err != nil {
		return err
	}
	defer file.Close()

	return json.NewDecoder(file).Decode(cache)
}

// New loads fileName, creating it when it does not exist yet.
func New(fileName string) (*JSONDB, error) {
	db := &JSONDB{
		fileName: fileName,
		Cache:    NewCache(),
	}

	err := parseJSONFile(fileName, &db.Cache)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("in internal/db/jsondb/jsondb.go/New(): error while `parseJSONFile()` calling: %w", err)
		}
		if err := writeToJSONFile(fileName, db.Cache); err != nil {
			return nil, fmt.Errorf("in internal/db/jsondb/jsondb.go/New(): error while `writeToJSONFile()` calling: %w", err)
		}
	}

	if db.Cache.Users == nil {
		db.Cache.Users = map[string]*UserRecord{}
	}
	if db.Cache.Cards == nil {
		db.Cache.Cards = map[string]*card.Card{}
	}

	return db, nil
}

// persist must be called with db.mu held for writing.
func (db *JSONDB) persist() error {
	if db.fileName == "" {
		return nil
	}

	return writeToJSONFile(db.fileName, db.Cache)
}

func (db *JSONDB) Ping(ctx context.Context) error {
	return nil
}

func (db *JSONDB) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	return db.persist()
}

func toUser(record *UserRecord) *user.User {
	return &user.User{
		ID:           record.ID,
		Email:        record.Email,
		PasswordHash: record.PasswordHash,
		Name:         record.Name,
		About:        record.About,
		Avatar:       record.Avatar,
	}
}

func (db *JSONDB) CreateUser(ctx context.Context, usr *user.User, transaction *sql.Tx) (string, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, existing := range db.Cache.Users {
		if existing.Email == usr.Email {
			return "", models.ErrEmailTaken
		}
	}

	record := &UserRecord{
		ID:           uuid.New().String(),
		Email:        usr.Email,
		PasswordHash: usr.PasswordHash,
		Name:         usr.Name,
		About:        usr.About,
		Avatar:       usr.Avatar,
	}
	db.Cache.Users[record.ID] = record

	if err := db.persist(); err != nil {
		delete(db.Cache.Users, record.ID)
		return "", err
	}

	return record.ID, nil
}

func (db *JSONDB) GetUserByID(ctx context.Context, userID string, transaction *sql.Tx) (*user.User, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	record, found := db.Cache.Users[userID]
	if !found {
		return nil, models.ErrNotFound
	}

	return toUser(record), nil
}

func (db *JSONDB) GetUserByEmail(ctx context.Context, email string, transaction *sql.Tx) (*user.User, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	for _, record := range db.Cache.Users {
		if record.Email == email {
			return toUser(record), nil
		}
	}

	return nil, models.ErrNotFound
}

func (db *JSONDB) GetUsers(ctx context.Context) ([]*user.User, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	result := make([]*user.User, 0, len(db.Cache.Users))
	for _, record := range db.Cache.Users {
		result = append(result, toUser(record))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Email < result[j].Email
	})

	return result, nil
}

func (db *JSONDB) updateUser(userID string, apply func(record *UserRecord)) (*user.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	record, found := db.Cache.Users[userID]
	if !found {
		return nil, models.ErrNotFound
	}

	previous := *record
	apply(record)

	if err := db.persist(); err != nil {
		*record = previous
		return nil, err
	}

	return toUser(record), nil
}

func (db *JSONDB) UpdateUserProfile(ctx context.Context, userID, name, about string) (*user.User, error) {
	return db.updateUser(userID, func(record *UserRecord) {
		record.Name = name
		record.About = about
	})
}

func (db *JSONDB) UpdateUserAvatar(ctx context.Context, userID, avatar string) (*user.User, error) {
	return db.updateUser(userID, func(record *UserRecord) {
		record.Avatar = avatar
	})
}

func (db *JSONDB) CreateCard(ctx context.Context, crd *card.Card, transaction *sql.Tx) (*card.Card, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	stored := crd.Clone()
	stored.ID = uuid.New().String()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	if stored.Likes == nil {
		stored.Likes = []string{}
	}
	db.Cache.Cards[stored.ID] = stored

	if err := db.persist(); err != nil {
		delete(db.Cache.Cards, stored.ID)
		return nil, err
	}

	return stored.Clone(), nil
}

func (db *JSONDB) GetCards(ctx context.Context) ([]*card.Card, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	result := make([]*card.Card, 0, len(db.Cache.Cards))
	for _, crd := range db.Cache.Cards {
		result = append(result, crd.Clone())
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID > result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result, nil
}

func (db *JSONDB) GetCardByID(ctx context.Context, cardID string, transaction *sql.Tx) (*card.Card, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	crd, found := db.Cache.Cards[cardID]
	if !found {
		return nil, models.ErrNotFound
	}

	return crd.Clone(), nil
}

func (db *JSONDB) DeleteCard(ctx context.Context, cardID string, transaction *sql.Tx) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	crd, found := db.Cache.Cards[cardID]
	if !found {
		return models.ErrNotFound
	}
	delete(db.Cache.Cards, cardID)

	if err := db.persist(); err != nil {
		db.Cache.Cards[cardID] = crd
		return err
	}

	return nil
}

func (db *JSONDB) updateCardLikes(cardID string, apply func(crd *card.Card)) (*card.Card, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	crd, found := db.Cache.Cards[cardID]
	if !found {
		return nil, models.ErrNotFound
	}

	previous := crd.Clone()
	apply(crd)

	if err := db.persist(); err != nil {
		db.Cache.Cards[cardID] = previous
		return nil, err
	}

	return crd.Clone(), nil
}

func (db *JSONDB) AddCardLike(ctx context.Context, cardID, userID string) (*card.Card, error) {
	return db.updateCardLikes(cardID, func(crd *card.Card) {
		crd.AddLike(userID)
	})
}

func (db *JSONDB) RemoveCardLike(ctx context.Context, cardID, userID string) (*card.Card, error) {
	return db.updateCardLikes(cardID, func(crd *card.Card) {
		crd.RemoveLike(userID)
	})
}

func (db *JSONDB) GetNumberOfUsers(ctx context.Context) (int64, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return int64(len(db.Cache.Users)), nil
}

func (db *JSONDB) GetNumberOfCards(ctx context.Context) (int64, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return int64(len(db.Cache.Cards)), nil
}
