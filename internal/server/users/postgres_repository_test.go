package users

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/krypton/internal/common"
	"github.com/dmitrijs2005/krypton/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

var (
	qInsertUser   = `(?s)^INSERT\s+INTO\s+users\s*\(id,\s*name,\s*email,\s*password_hash,\s*created_at\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5\)\s*RETURNING\s+created_at\s*$`
	qUpsertUser   = `(?s)^INSERT\s+INTO\s+users.*ON\s+CONFLICT\s+\(id\)\s+DO\s+UPDATE`
	qSelectByID   = `(?s)^SELECT\s+id,\s*name,\s*email,\s*password_hash,\s*created_at\s+FROM\s+users\s+WHERE\s+id\s*=\s*\$1\s*$`
	qSelectByMail = `(?s)^SELECT\s+id,\s*name,\s*email,\s*password_hash,\s*created_at\s+FROM\s+users\s+WHERE\s+email\s*=\s*\$1\s*$`
	qSelectWatch  = `SELECT crypto_id, added_at FROM watchlist_entries WHERE user_id = \$1 ORDER BY position`
	qSelectHold   = `SELECT crypto_id, amount, purchase_price, added_at FROM holdings WHERE user_id = \$1 ORDER BY position`
	qInsertWatch  = `INSERT INTO watchlist_entries`
	qInsertHold   = `INSERT INTO holdings`
)

func sampleUser() *models.User {
	return &models.User{
		ID:           "u-1",
		Name:         "Ada Lovelace",
		Email:        "ada@example.com",
		PasswordHash: "hash",
		CreatedAt:    time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Watchlist:    []models.WatchlistEntry{},
		Portfolio:    []models.Holding{},
	}
}

func TestPostgresCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	u := sampleUser()
	mock.ExpectBegin()
	mock.ExpectQuery(qInsertUser).
		WithArgs(u.ID, u.Name, u.Email, u.PasswordHash, u.CreatedAt).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(u.CreatedAt))
	mock.ExpectCommit()

	got, err := repo.Create(context.Background(), u)
	require.NoError(t, err)
	assert.Equal(t, "u-1", got.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCreate_DuplicateEmail(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	u := sampleUser()
	mock.ExpectBegin()
	mock.ExpectQuery(qInsertUser).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})
	mock.ExpectRollback()

	_, err := repo.Create(context.Background(), u)
	assert.ErrorIs(t, err, common.ErrDuplicateIdentity)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(qInsertUser).WillReturnError(errors.New("db down"))
	mock.ExpectRollback()

	_, err := repo.Create(context.Background(), sampleUser())
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestPostgresFindByID_LoadsCollectionsInOrder(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	u := sampleUser()
	mock.ExpectBegin()
	mock.ExpectQuery(qSelectByID).WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "created_at"}).
			AddRow(u.ID, u.Name, u.Email, u.PasswordHash, u.CreatedAt))
	mock.ExpectQuery(qSelectWatch).WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"crypto_id", "added_at"}).
			AddRow("bitcoin", u.CreatedAt).
			AddRow("ethereum", u.CreatedAt))
	mock.ExpectQuery(qSelectHold).WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"crypto_id", "amount", "purchase_price", "added_at"}).
			AddRow("bitcoin", 0.5, 30000.0, u.CreatedAt))
	mock.ExpectCommit()

	got, err := repo.FindByID(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", got.Name)
	require.Len(t, got.Watchlist, 2)
	assert.Equal(t, "bitcoin", got.Watchlist[0].CryptoID)
	assert.Equal(t, "ethereum", got.Watchlist[1].CryptoID)
	require.Len(t, got.Portfolio, 1)
	assert.Equal(t, 0.5, got.Portfolio[0].Amount)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresFindByEmail_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(qSelectByMail).WithArgs("nobody@example.com").WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := repo.FindByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresFindByID_MalformedIDIsNotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(qSelectByID).WithArgs("abc").
		WillReturnError(&pgconn.PgError{Code: "22P02", Message: `invalid input syntax for type uuid: "abc"`})
	mock.ExpectRollback()

	_, err := repo.FindByID(context.Background(), "abc")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresFindByID_CollectionFailureRollsBack(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	u := sampleUser()
	mock.ExpectBegin()
	mock.ExpectQuery(qSelectByID).WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "created_at"}).
			AddRow(u.ID, u.Name, u.Email, u.PasswordHash, u.CreatedAt))
	mock.ExpectQuery(qSelectWatch).WillReturnError(errors.New("conn reset"))
	mock.ExpectRollback()

	_, err := repo.FindByID(context.Background(), "u-1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrorNotFound)
	assert.Contains(t, err.Error(), "db error: conn reset")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresFindByID_EmptyCollectionsAreNonNil(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	u := sampleUser()
	mock.ExpectBegin()
	mock.ExpectQuery(qSelectByID).WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "created_at"}).
			AddRow(u.ID, u.Name, u.Email, u.PasswordHash, u.CreatedAt))
	mock.ExpectQuery(qSelectWatch).WillReturnRows(sqlmock.NewRows([]string{"crypto_id", "added_at"}))
	mock.ExpectQuery(qSelectHold).WillReturnRows(sqlmock.NewRows([]string{"crypto_id", "amount", "purchase_price", "added_at"}))
	mock.ExpectCommit()

	got, err := repo.FindByID(context.Background(), "u-1")
	require.NoError(t, err)
	assert.NotNil(t, got.Watchlist)
	assert.NotNil(t, got.Portfolio)
	assert.Empty(t, got.Watchlist)
}

func TestPostgresSave_RewritesCollections(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	u := sampleUser()
	u.Watchlist = []models.WatchlistEntry{{CryptoID: "bitcoin", AddedAt: u.CreatedAt}}
	u.Portfolio = []models.Holding{
		{CryptoID: "bitcoin", Amount: 1, PurchasePrice: 100, AddedAt: u.CreatedAt},
		{CryptoID: "bitcoin", Amount: 2, PurchasePrice: 200, AddedAt: u.CreatedAt},
	}

	mock.ExpectBegin()
	mock.ExpectExec(qUpsertUser).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM watchlist_entries WHERE user_id = \$1`).WithArgs("u-1").WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`DELETE FROM holdings WHERE user_id = \$1`).WithArgs("u-1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(qInsertWatch).WithArgs("u-1", 0, "bitcoin", u.CreatedAt).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(qInsertHold).WithArgs("u-1", 0, "bitcoin", 1.0, 100.0, u.CreatedAt).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(qInsertHold).WithArgs("u-1", 1, "bitcoin", 2.0, 200.0, u.CreatedAt).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Save(context.Background(), u))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSave_RollsBackOnFailure(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	u := sampleUser()
	u.Watchlist = []models.WatchlistEntry{{CryptoID: "bitcoin", AddedAt: u.CreatedAt}}

	mock.ExpectBegin()
	mock.ExpectExec(qUpsertUser).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM watchlist_entries`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM holdings`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(qInsertWatch).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := repo.Save(context.Background(), u)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	require.NoError(t, mock.ExpectationsWereMet())
}
