package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/krypton/internal/common"
	"github.com/dmitrijs2005/krypton/internal/dbx"
	"github.com/dmitrijs2005/krypton/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation   = "23505"
	pgInvalidTextFormat = "22P02"
	emailConstraint     = "users_email_key"
)

// snapshot makes the user row and both collections one consistent read.
var snapshot = &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}

// PostgresRepository stores users in three tables; embedded collections
// keep their order through a position column.
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		query :=
			`INSERT INTO users (id, name, email, password_hash, created_at)
			 VALUES ($1, $2, $3, $4, $5)
			 RETURNING created_at
			 `
		err := tx.QueryRowContext(ctx, query,
			user.ID, user.Name, user.Email, user.PasswordHash, user.CreatedAt).Scan(&user.CreatedAt)
		if err != nil {
			return err
		}
		return r.writeCollections(ctx, tx, user)
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, common.ErrDuplicateIdentity
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query :=
		`SELECT id, name, email, password_hash, created_at FROM users
		 WHERE email = $1
		 `
	return r.findOne(ctx, query, email)
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	query :=
		`SELECT id, name, email, password_hash, created_at FROM users
		 WHERE id = $1
		 `
	return r.findOne(ctx, query, id)
}

// Save rewrites the user's row and both collections in one transaction.
func (r *PostgresRepository) Save(ctx context.Context, user *models.User) error {
	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		query :=
			`INSERT INTO users (id, name, email, password_hash, created_at)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (id) DO UPDATE SET
			     name = EXCLUDED.name,
			     email = EXCLUDED.email,
			     password_hash = EXCLUDED.password_hash
			 `
		if _, err := tx.ExecContext(ctx, query,
			user.ID, user.Name, user.Email, user.PasswordHash, user.CreatedAt); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM watchlist_entries WHERE user_id = $1`, user.ID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM holdings WHERE user_id = $1`, user.ID); err != nil {
			return err
		}
		return r.writeCollections(ctx, tx, user)
	})
	if err != nil {
		if isUniqueViolation(err) {
			return common.ErrDuplicateIdentity
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) writeCollections(ctx context.Context, tx dbx.DBTX, user *models.User) error {
	for i, e := range user.Watchlist {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO watchlist_entries (user_id, position, crypto_id, added_at) VALUES ($1, $2, $3, $4)`,
			user.ID, i, e.CryptoID, e.AddedAt)
		if err != nil {
			return err
		}
	}
	for i, h := range user.Portfolio {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO holdings (user_id, position, crypto_id, amount, purchase_price, added_at) VALUES ($1, $2, $3, $4, $5, $6)`,
			user.ID, i, h.CryptoID, h.Amount, h.PurchasePrice, h.AddedAt)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *PostgresRepository) findOne(ctx context.Context, query string, arg string) (*models.User, error) {
	user := &models.User{}
	err := dbx.WithTx(ctx, r.db, snapshot, func(ctx context.Context, tx dbx.DBTX) error {
		err := tx.QueryRowContext(ctx, query, arg).
			Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.CreatedAt)
		if err != nil {
			return err
		}
		if user.Watchlist, err = loadWatchlist(ctx, tx, user.ID); err != nil {
			return err
		}
		user.Portfolio, err = loadHoldings(ctx, tx, user.ID)
		return err
	})
	if err != nil {
		// An id that is not a UUID cannot match any row.
		if errors.Is(err, sql.ErrNoRows) || isInvalidText(err) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func loadWatchlist(ctx context.Context, tx dbx.DBTX, userID string) ([]models.WatchlistEntry, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT crypto_id, added_at FROM watchlist_entries WHERE user_id = $1 ORDER BY position`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.WatchlistEntry, 0)
	for rows.Next() {
		var e models.WatchlistEntry
		if err := rows.Scan(&e.CryptoID, &e.AddedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func loadHoldings(ctx context.Context, tx dbx.DBTX, userID string) ([]models.Holding, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT crypto_id, amount, purchase_price, added_at FROM holdings WHERE user_id = $1 ORDER BY position`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.Holding, 0)
	for rows.Next() {
		var h models.Holding
		if err := rows.Scan(&h.CryptoID, &h.Amount, &h.PurchasePrice, &h.AddedAt); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) &&
		pgErr.Code == pgUniqueViolation &&
		pgErr.ConstraintName == emailConstraint
}

func isInvalidText(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgInvalidTextFormat
}
