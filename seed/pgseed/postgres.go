// seed/pgseed/postgres.go

// Package pgseed loads the initial accounts from PostgreSQL.
package pgseed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bankist/model"
	"bankist/seed"

	"github.com/charmbracelet/log"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ErrNoAccounts is returned when the seed tables hold no accounts.
var ErrNoAccounts = errors.New("no seed accounts found")

var _ seed.Source = (*PostgresSource)(nil)

// PostgresSource reads the initial accounts from PostgreSQL.
// It is read-only at runtime: ledger changes are never written back.
type PostgresSource struct {
	db *pgxpool.Pool
}

// NewPostgresSource connects to the database and initializes the seed schema.
func NewPostgresSource(ctx context.Context, connString string) (*PostgresSource, error) {
	var pool *pgxpool.Pool
	var err error

	// Retry connecting to the database for a few seconds
	for i := 0; i < 5; i++ {
		pool, err = pgxpool.New(ctx, connString)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				break
			}
			pool.Close()
		}
		log.Warn("seed database not ready, retrying", "attempt", i+1, "err", err)
		time.Sleep(1 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("could not connect to seed database after retries: %w", err)
	}

	src := &PostgresSource{db: pool}
	if err := src.initSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("could not initialize seed schema: %w", err)
	}
	return src, nil
}

// Close releases the connection pool.
func (s *PostgresSource) Close() {
	s.db.Close()
}

// initSchema creates the seed tables if they don't exist.
func (s *PostgresSource) initSchema(ctx context.Context) error {
	query := `
    CREATE TABLE IF NOT EXISTS seed_accounts (
        position INT PRIMARY KEY,
        owner TEXT NOT NULL,
        pin INT NOT NULL,
        interest_rate NUMERIC(9, 4) NOT NULL
    );
    CREATE TABLE IF NOT EXISTS seed_transactions (
        account_position INT NOT NULL REFERENCES seed_accounts (position) ON DELETE CASCADE,
        seq INT NOT NULL,
        amount NUMERIC(19, 5) NOT NULL,
        PRIMARY KEY (account_position, seq)
    );`
	_, err := s.db.Exec(ctx, query)
	return err
}

// InstallDefaults writes accounts into the seed tables when they are empty.
// It reports whether anything was written.
func (s *PostgresSource) InstallDefaults(ctx context.Context, accounts []model.Account) (bool, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) // Rollback is a no-op if the transaction has been committed.

	// Serialise concurrent installers on the table lock.
	if _, err := tx.Exec(ctx, "LOCK TABLE seed_accounts IN EXCLUSIVE MODE"); err != nil {
		return false, fmt.Errorf("could not lock seed table: %w", err)
	}

	var count int
	if err := tx.QueryRow(ctx, "SELECT COUNT(*) FROM seed_accounts").Scan(&count); err != nil {
		return false, fmt.Errorf("could not count seed accounts: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	batch := &pgx.Batch{}
	for i, acc := range accounts {
		batch.Queue(
			"INSERT INTO seed_accounts (position, owner, pin, interest_rate) VALUES ($1, $2, $3, $4)",
			i, acc.Owner, acc.Pin, acc.InterestRate,
		)
		for seq, amount := range acc.Transactions {
			batch.Queue(
				"INSERT INTO seed_transactions (account_position, seq, amount) VALUES ($1, $2, $3)",
				i, seq, amount,
			)
		}
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return false, fmt.Errorf("could not insert seed accounts: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// Accounts loads every seed account with its ledger, ordered by position.
// Usernames are derived from the owner name, exactly as for the static seed.
func (s *PostgresSource) Accounts(ctx context.Context) ([]model.Account, error) {
	query := `
        SELECT a.position, a.owner, a.pin, a.interest_rate, t.amount
        FROM seed_accounts a
        LEFT JOIN seed_transactions t ON t.account_position = a.position
        ORDER BY a.position, t.seq`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("could not query seed accounts: %w", err)
	}
	defer rows.Close()

	var accounts []model.Account
	lastPosition := -1
	for rows.Next() {
		var (
			position int
			owner    string
			pin      int
			rate     decimal.Decimal
			amount   decimal.NullDecimal
		)
		if err := rows.Scan(&position, &owner, &pin, &rate, &amount); err != nil {
			return nil, fmt.Errorf("could not scan seed row: %w", err)
		}
		if position != lastPosition {
			accounts = append(accounts, model.NewAccount(owner, pin, rate))
			lastPosition = position
		}
		if amount.Valid {
			accounts[len(accounts)-1].Append(amount.Decimal)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("could not read seed rows: %w", err)
	}

	if len(accounts) == 0 {
		return nil, ErrNoAccounts
	}
	return accounts, nil
}
