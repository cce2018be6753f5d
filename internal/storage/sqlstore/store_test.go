package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/debtkeeper/internal/common"
	"github.com/dmitrijs2005/debtkeeper/internal/models"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openSQLite(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), SQLite, filepath.Join(t.TempDir(), "debts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLite_EmptyLoad(t *testing.T) {
	s := openSQLite(t)

	debts, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, debts)
}

func TestSQLite_SaveLoad(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t)

	first := []models.Debt{
		{ID: 1, Debtor: "alice", Creditor: "bob", Amount: 500, Status: models.StatusPending},
		{ID: 2, Debtor: "Вася", Creditor: "alice", Amount: 10, Status: models.StatusPending},
	}
	require.NoError(t, s.Save(ctx, first))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, got)

	second := []models.Debt{
		{ID: 1, Debtor: "alice", Creditor: "bob", Amount: 500, Status: models.StatusConfirmed},
	}
	require.NoError(t, s.Save(ctx, second))

	got, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, second, got)
}

func TestSQLite_MigrationsAreIdempotent(t *testing.T) {
	s := openSQLite(t)
	require.NoError(t, s.RunMigrations(context.Background()))
}

func TestSQLite_UnknownStatusIsCorruption(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t)

	// bypass the CHECK constraint; the pragma is per connection
	s.db.SetMaxOpenConns(1)
	_, err := s.db.ExecContext(ctx, `PRAGMA ignore_check_constraints = ON`)
	require.NoError(t, err)
	_, err = s.db.ExecContext(ctx, `INSERT INTO debts (id, debtor, creditor, amount, status) VALUES (1, 'a', 'b', 1, 'lost')`)
	require.NoError(t, err)

	_, err = s.Load(ctx)
	require.ErrorIs(t, err, common.ErrorCorrupted)
}

func newPostgresMock(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return New(db, Postgres), mock
}

func TestPostgres_Save(t *testing.T) {
	s, mock := newPostgresMock(t)

	upsert := regexp.QuoteMeta(`VALUES ($1, $2, $3, $4, $5)`)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO debts .*` + upsert + `.*ON CONFLICT \(id\)`).
		WithArgs(int64(1), "alice", "bob", int64(500), "confirmed").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO debts .*` + upsert).
		WithArgs(int64(2), "bob", "alice", int64(20), "pending").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM debts WHERE id > \$1`).
		WithArgs(int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := s.Save(context.Background(), []models.Debt{
		{ID: 1, Debtor: "alice", Creditor: "bob", Amount: 500, Status: models.StatusConfirmed},
		{ID: 2, Debtor: "bob", Creditor: "alice", Amount: 20, Status: models.StatusPending},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_SaveRollsBackOnError(t *testing.T) {
	s, mock := newPostgresMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO debts`).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := s.Save(context.Background(), []models.Debt{
		{ID: 1, Debtor: "alice", Creditor: "bob", Amount: 500, Status: models.StatusPending},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upsert debt #1")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Load(t *testing.T) {
	s, mock := newPostgresMock(t)

	rows := sqlmock.NewRows([]string{"id", "debtor", "creditor", "amount", "status"}).
		AddRow(int64(1), "alice", "bob", int64(500), "paid").
		AddRow(int64(4), "carol", "alice", int64(30), "pending")
	mock.ExpectQuery(`SELECT id, debtor, creditor, amount, status FROM debts ORDER BY id`).
		WillReturnRows(rows)

	debts, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.Debt{
		{ID: 1, Debtor: "alice", Creditor: "bob", Amount: 500, Status: models.StatusPaid},
		{ID: 4, Debtor: "carol", Creditor: "alice", Amount: 30, Status: models.StatusPending},
	}, debts)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_LoadQueryError(t *testing.T) {
	s, mock := newPostgresMock(t)

	mock.ExpectQuery(`SELECT .* FROM debts`).WillReturnError(sql.ErrConnDone)

	_, err := s.Load(context.Background())
	require.ErrorIs(t, err, sql.ErrConnDone)
}

func TestRunMigrations_UsesDialectDirectory(t *testing.T) {
	s, _ := newPostgresMock(t)

	orig := gooseUpContext
	t.Cleanup(func() { gooseUpContext = orig })

	var gotDir string
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		gotDir = dir
		return nil
	}

	require.NoError(t, s.RunMigrations(context.Background()))
	assert.Equal(t, "postgres", gotDir)
}

func TestRebind(t *testing.T) {
	pg := &Store{dialect: Postgres}
	lite := &Store{dialect: SQLite}

	q := `UPDATE debts SET status = ? WHERE id = ?`
	assert.Equal(t, `UPDATE debts SET status = $1 WHERE id = $2`, pg.rebind(q))
	assert.Equal(t, q, lite.rebind(q))
}
