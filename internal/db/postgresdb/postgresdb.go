// Package postgresdb provides a PostgreSQL-based implementation of the storage
// interface for users, cards and likes.
// Schema changes are applied with goose on startup.
package postgresdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/patric-chuzhbe/mesto/internal/card"
	"github.com/patric-chuzhbe/mesto/internal/models"
	"github.com/patric-chuzhbe/mesto/internal/user"
)

const (
	pgUniqueViolation           = "23505"
	pgForeignKeyViolation       = "23503"
	pgInvalidTextRepresentation = "22P02"
)

const (
	selectUserColumns       = `SELECT id, email, password_hash, name, about, avatar FROM users`
	selectCardWithLikesBase = `
		SELECT c.id, c.name, c.link, c.owner, c.created_at,
			COALESCE(
				(SELECT array_agg(l.user_id::text ORDER BY l.liked_at, l.user_id)
					FROM card_likes l
					WHERE l.card_id = c.id),
				'{}'::text[]
			)
		FROM cards c`
)

// pgtype.Map is not safe for concurrent use, so array scans borrow one from the pool.
var typeMaps = sync.Pool{
	New: func() interface{} {
		return pgtype.NewMap()
	},
}

// PostgresDB is a PostgreSQL-backed implementation of the mesto storage.
type PostgresDB struct {
	database          *sql.DB
	connectionTimeout time.Duration
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

type rowScanner interface {
	Scan(dest ...any) error
}

type initOptions struct {
	DBPreReset bool
}

// InitOption defines a functional option for configuring database initialization.
type InitOption func(*initOptions)

// WithDBPreReset drops every table before migrating. Meant for tests.
func WithDBPreReset(value bool) InitOption {
	return func(options *initOptions) {
		options.DBPreReset = value
	}
}

// New connects to databaseDSN, applies the migrations from migrationsDir and
// returns a ready PostgresDB.
func New(
	ctx context.Context,
	databaseDSN string,
	connectionTimeout time.Duration,
	migrationsDir string,
	optionsProto ...InitOption,
) (*PostgresDB, error) {
	options := &initOptions{
		DBPreReset: false,
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	database, err := sql.Open("pgx", databaseDSN)
	if err != nil {
		return nil, err
	}

	result := &PostgresDB{
		database:          database,
		connectionTimeout: connectionTimeout,
	}

	if err := result.Ping(ctx); err != nil {
		_ = database.Close()
		return nil,
			fmt.Errorf(
				"in internal/db/postgresdb/postgresdb.go/New(): error while `result.Ping()` calling: %w",
				err,
			)
	}

	if options.DBPreReset {
		if err := result.resetDB(ctx); err != nil {
			_ = database.Close()
			return nil,
				fmt.Errorf(
					"in internal/db/postgresdb/postgresdb.go/New(): error while `result.resetDB()` calling: %w",
					err,
				)
		}
	}

	if err := goose.SetDialect("postgres"); err != nil {
		_ = database.Close()
		return nil,
			fmt.Errorf(
				"in internal/db/postgresdb/postgresdb.go/New(): error while `goose.SetDialect()` calling: %w",
				err,
			)
	}

	if err := goose.UpContext(ctx, result.database, migrationsDir); err != nil {
		_ = database.Close()
		return nil,
			fmt.Errorf(
				"in internal/db/postgresdb/postgresdb.go/New(): error while `goose.UpContext()` calling: %w",
				err,
			)
	}

	return result, nil
}

func (db *PostgresDB) queryerFor(transaction *sql.Tx) queryer {
	if transaction == nil {
		return db.database
	}
	return transaction
}

func (db *PostgresDB) executorFor(transaction *sql.Tx) executor {
	if transaction == nil {
		return db.database
	}
	return transaction
}

// translateError maps driver errors onto the storage sentinels.
func translateError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return models.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return models.ErrEmailTaken
		case pgForeignKeyViolation, pgInvalidTextRepresentation:
			return models.ErrNotFound
		}
	}

	return err
}

func scanUser(row rowScanner) (*user.User, error) {
	usr := &user.User{}
	err := row.Scan(&usr.ID, &usr.Email, &usr.PasswordHash, &usr.Name, &usr.About, &usr.Avatar)
	if err != nil {
		return nil, translateError(err)
	}

	return usr, nil
}

func scanCard(row rowScanner) (*card.Card, error) {
	typeMap := typeMaps.Get().(*pgtype.Map)
	defer typeMaps.Put(typeMap)

	crd := &card.Card{}
	var likes []string
	err := row.Scan(&crd.ID, &crd.Name, &crd.Link, &crd.Owner, &crd.CreatedAt, typeMap.SQLScanner(&likes))
	if err != nil {
		return nil, translateError(err)
	}
	if likes == nil {
		likes = []string{}
	}
	crd.Likes = likes

	return crd, nil
}

// CreateUser inserts usr and returns the generated id.
func (db *PostgresDB) CreateUser(ctx context.Context, usr *user.User, transaction *sql.Tx) (string, error) {
	row := db.queryerFor(transaction).QueryRowContext(
		ctx,
		`
			INSERT INTO users (email, password_hash, name, about, avatar)
				VALUES ($1, $2, $3, $4, $5)
				RETURNING id
		`,
		usr.Email,
		usr.PasswordHash,
		usr.Name,
		usr.About,
		usr.Avatar,
	)
	var userIDFromDB string
	if err := row.Scan(&userIDFromDB); err != nil {
		return "", translateError(err)
	}

	return userIDFromDB, nil
}

// GetUserByID fetches a user by id.
func (db *PostgresDB) GetUserByID(ctx context.Context, userID string, transaction *sql.Tx) (*user.User, error) {
	return scanUser(db.queryerFor(transaction).QueryRowContext(ctx, selectUserColumns+` WHERE id = $1`, userID))
}

// GetUserByEmail fetches a user, including the password hash, by email.
func (db *PostgresDB) GetUserByEmail(ctx context.Context, email string, transaction *sql.Tx) (*user.User, error) {
	return scanUser(db.queryerFor(transaction).QueryRowContext(ctx, selectUserColumns+` WHERE email = $1`, email))
}

// GetUsers returns every user ordered by email.
func (db *PostgresDB) GetUsers(ctx context.Context) ([]*user.User, error) {
	rows, err := db.database.QueryContext(ctx, selectUserColumns+` ORDER BY email`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []*user.User{}
	for rows.Next() {
		usr, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, usr)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// UpdateUserProfile sets name and about and returns the updated user.
func (db *PostgresDB) UpdateUserProfile(ctx context.Context, userID, name, about string) (*user.User, error) {
	return scanUser(db.database.QueryRowContext(
		ctx,
		`
			UPDATE users SET name = $2, about = $3
				WHERE id = $1
				RETURNING id, email, password_hash, name, about, avatar
		`,
		userID,
		name,
		about,
	))
}

// UpdateUserAvatar sets the avatar link and returns the updated user.
func (db *PostgresDB) UpdateUserAvatar(ctx context.Context, userID, avatar string) (*user.User, error) {
	return scanUser(db.database.QueryRowContext(
		ctx,
		`
			UPDATE users SET avatar = $2
				WHERE id = $1
				RETURNING id, email, password_hash, name, about, avatar
		`,
		userID,
		avatar,
	))
}

// CreateCard inserts crd and returns it with the generated id and timestamp.
func (db *PostgresDB) CreateCard(ctx context.Context, crd *card.Card, transaction *sql.Tx) (*card.Card, error) {
	createdAt := crd.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	row := db.queryerFor(transaction).QueryRowContext(
		ctx,
		`
			INSERT INTO cards (name, link, owner, created_at)
				VALUES ($1, $2, $3, $4)
				RETURNING id, created_at
		`,
		crd.Name,
		crd.Link,
		crd.Owner,
		createdAt,
	)

	stored := crd.Clone()
	if err := row.Scan(&stored.ID, &stored.CreatedAt); err != nil {
		return nil, translateError(err)
	}
	stored.Likes = []string{}

	return stored, nil
}

// GetCards returns every card, newest first.
func (db *PostgresDB) GetCards(ctx context.Context) ([]*card.Card, error) {
	rows, err := db.database.QueryContext(ctx, selectCardWithLikesBase+` ORDER BY c.created_at DESC, c.id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []*card.Card{}
	for rows.Next() {
		crd, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, crd)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// GetCardByID fetches a card with its likers. Inside a transaction the card
// row stays locked until commit or rollback.
func (db *PostgresDB) GetCardByID(ctx context.Context, cardID string, transaction *sql.Tx) (*card.Card, error) {
	query := selectCardWithLikesBase + ` WHERE c.id = $1`
	if transaction != nil {
		query += ` FOR UPDATE OF c`
	}

	return scanCard(db.queryerFor(transaction).QueryRowContext(ctx, query, cardID))
}

// DeleteCard removes a card and its likes.
func (db *PostgresDB) DeleteCard(ctx context.Context, cardID string, transaction *sql.Tx) error {
	result, err := db.executorFor(transaction).ExecContext(ctx, `DELETE FROM cards WHERE id = $1`, cardID)
	if err != nil {
		return translateError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrNotFound
	}

	return nil
}

// AddCardLike adds userID to the likers of the card. Liking twice is a no-op.
func (db *PostgresDB) AddCardLike(ctx context.Context, cardID, userID string) (*card.Card, error) {
	_, err := db.database.ExecContext(
		ctx,
		`
			INSERT INTO card_likes (card_id, user_id)
				SELECT $1, $2
				WHERE EXISTS (SELECT 1 FROM cards WHERE id = $1)
				ON CONFLICT (card_id, user_id) DO NOTHING
		`,
		cardID,
		userID,
	)
	if err != nil {
		return nil, translateError(err)
	}

	return db.GetCardByID(ctx, cardID, nil)
}

// RemoveCardLike removes userID from the likers of the card. Removing an absent like is a no-op.
func (db *PostgresDB) RemoveCardLike(ctx context.Context, cardID, userID string) (*card.Card, error) {
	_, err := db.database.ExecContext(
		ctx,
		`DELETE FROM card_likes WHERE card_id = $1 AND user_id = $2`,
		cardID,
		userID,
	)
	if err != nil {
		return nil, translateError(err)
	}

	return db.GetCardByID(ctx, cardID, nil)
}

// GetNumberOfUsers returns the number of registered users.
func (db *PostgresDB) GetNumberOfUsers(ctx context.Context) (int64, error) {
	return db.count(ctx, `SELECT COUNT(*) FROM users`)
}

// GetNumberOfCards returns the number of cards.
func (db *PostgresDB) GetNumberOfCards(ctx context.Context) (int64, error) {
	return db.count(ctx, `SELECT COUNT(*) FROM cards`)
}

func (db *PostgresDB) count(ctx context.Context, query string) (int64, error) {
	var result int64
	if err := db.database.QueryRowContext(ctx, query).Scan(&result); err != nil {
		return 0, err
	}

	return result, nil
}

// CommitTransaction commits the given SQL transaction.
func (db *PostgresDB) CommitTransaction(transaction *sql.Tx) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic occurred while committing transaction: %v", r)
		}
	}()

	return transaction.Commit()
}

// RollbackTransaction rolls back the given SQL transaction.
// Rolling back an already committed transaction is not an error.
func (db *PostgresDB) RollbackTransaction(transaction *sql.Tx) error {
	err := transaction.Rollback()
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return err
}

// BeginTransaction starts a new SQL transaction and returns it.
// The caller is responsible for committing or rolling it back.
func (db *PostgresDB) BeginTransaction() (*sql.Tx, error) {
	return db.database.Begin()
}

// Ping verifies connectivity with the PostgreSQL database within the configured timeout.
func (db *PostgresDB) Ping(ctx context.Context) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, db.connectionTimeout)
	defer cancel()

	return db.database.PingContext(ctxWithTimeout)
}

// Close closes the database connection and releases any associated resources.
func (db *PostgresDB) Close() error {
	return db.database.Close()
}

func (db *PostgresDB) resetDB(ctx context.Context) error {
	_, err := db.database.ExecContext(
		ctx,
		`
			DO $$
			DECLARE
				r RECORD;
			BEGIN
				FOR r IN (SELECT tablename FROM pg_tables WHERE schemaname = 'public') LOOP
					EXECUTE 'DROP TABLE IF EXISTS ' || quote_ident(r.tablename) || ' CASCADE';
				END LOOP;
			END $$;
		`,
	)
	if err != nil {
		return fmt.Errorf(
			"in internal/db/postgresdb/postgresdb.go/resetDB(): error while `db.database.ExecContext()` calling: %w",
			err,
		)
	}
	return nil
}
