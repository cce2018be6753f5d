// Package sqlstore persists debts in a relational table through database/sql.
// The same code serves SQLite (modernc.org/sqlite) and PostgreSQL (pgx);
// queries are written with "?" placeholders and rebound for PostgreSQL.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/debtkeeper/internal/common"
	"github.com/dmitrijs2005/debtkeeper/internal/dbx"
	"github.com/dmitrijs2005/debtkeeper/internal/models"
	"github.com/dmitrijs2005/debtkeeper/internal/storage/migrations"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

type Dialect int

const (
	SQLite Dialect = iota
	Postgres
)

// driverName is the database/sql driver registered for the dialect.
func (d Dialect) driverName() string {
	if d == Postgres {
		return "pgx"
	}
	return "sqlite"
}

func (d Dialect) gooseDialect() string {
	if d == Postgres {
		return "pgx"
	}
	return "sqlite3"
}

func (d Dialect) migrationsDir() string {
	if d == Postgres {
		return "postgres"
	}
	return "sqlite"
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

type Store struct {
	db      *sql.DB
	dialect Dialect
}

// New wraps an already opened database.
func New(db *sql.DB, dialect Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

// Open connects with the dialect's driver and applies migrations.
func Open(ctx context.Context, dialect Dialect, dsn string) (*Store, error) {
	db, err := sql.Open(dialect.driverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	s := New(db, dialect)
	if err := s.RunMigrations(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}
	return s, nil
}

// RunMigrations applies the embedded schema for the store's dialect.
func (s *Store) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect(s.dialect.gooseDialect()); err != nil {
		return err
	}
	return gooseUpContext(ctx, s.db, s.dialect.migrationsDir())
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Load(ctx context.Context) ([]models.Debt, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`SELECT id, debtor, creditor, amount, status FROM debts ORDER BY id`))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	debts := []models.Debt{}
	for rows.Next() {
		var (
			d      models.Debt
			status string
		)
		if err := rows.Scan(&d.ID, &d.Debtor, &d.Creditor, &d.Amount, &status); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		st, err := models.ParseStatus(status)
		if err != nil {
			return nil, fmt.Errorf("debt #%d: %v: %w", d.ID, err, common.ErrorCorrupted)
		}
		d.Status = st
		debts = append(debts, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return debts, nil
}

// Save upserts every record and drops rows past the last id in one
// transaction.
func (s *Store) Save(ctx context.Context, debts []models.Debt) error {
	upsert := s.rebind(`
		INSERT INTO debts (id, debtor, creditor, amount, status)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id)
		DO UPDATE SET
			debtor = excluded.debtor,
			creditor = excluded.creditor,
			amount = excluded.amount,
			status = excluded.status`)
	trim := s.rebind(`DELETE FROM debts WHERE id > ?`)

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var last int64
		for _, d := range debts {
			if _, err := tx.ExecContext(ctx, upsert, d.ID, d.Debtor, d.Creditor, d.Amount, string(d.Status)); err != nil {
				return fmt.Errorf("upsert debt #%d: %w", d.ID, err)
			}
			last = d.ID
		}
		if _, err := tx.ExecContext(ctx, trim, last); err != nil {
			return fmt.Errorf("trim debts: %w", err)
		}
		return nil
	})
}

// rebind turns "?" placeholders into "$1", "$2", ... for PostgreSQL.
func (s *Store) rebind(query string) string {
	if s.dialect != Postgres {
		return query
	}

	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
