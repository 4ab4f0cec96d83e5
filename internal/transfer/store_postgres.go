package transfer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"vaultpay/pkg/platform/sentinel"
)

// Schema is the transaction table DDL, applied at startup when the Postgres
// store is configured.
const Schema = `
CREATE TABLE IF NOT EXISTS transactions (
	id               TEXT PRIMARY KEY,
	email            TEXT NOT NULL,
	recipient_id     TEXT NOT NULL,
	recipient_name   TEXT NOT NULL,
	recipient_email  TEXT NOT NULL,
	recipient_number TEXT NOT NULL,
	amount           BIGINT NOT NULL,
	description      TEXT NOT NULL DEFAULT '',
	status           TEXT NOT NULL,
	created_at       TIMESTAMPTZ NOT NULL,
	settled_at       TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_transactions_email ON transactions (email, created_at DESC);
`

// PostgresStore persists transactions in Postgres via a pgx pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, Schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) Create(ctx context.Context, txn Transaction) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO transactions
			(id, email, recipient_id, recipient_name, recipient_email, recipient_number,
			 amount, description, status, created_at, settled_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		txn.ID, txn.Email,
		txn.Recipient.ID, txn.Recipient.Name, txn.Recipient.Email, txn.Recipient.AccountNumber,
		txn.Amount, txn.Description, string(txn.Status), txn.CreatedAt, txn.SettledAt,
	)
	if err != nil {
		return fmt.Errorf("insert transaction %s: %w", txn.ID, err)
	}
	return nil
}

func (s *PostgresStore) MarkCompleted(ctx context.Context, id string, at time.Time) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE transactions SET status = $1, settled_at = $2 WHERE id = $3`,
		string(StatusCompleted), at, id,
	)
	if err != nil {
		return fmt.Errorf("settle transaction %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("transaction %s: %w", id, sentinel.ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) ListByEmail(ctx context.Context, email string) ([]Transaction, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, email, recipient_id, recipient_name, recipient_email, recipient_number,
		       amount, description, status, created_at, settled_at
		FROM transactions
		WHERE email = $1
		ORDER BY created_at DESC`,
		email,
	)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	result := make([]Transaction, 0)
	for rows.Next() {
		var (
			txn    Transaction
			status string
		)
		if err := rows.Scan(
			&txn.ID, &txn.Email,
			&txn.Recipient.ID, &txn.Recipient.Name, &txn.Recipient.Email, &txn.Recipient.AccountNumber,
			&txn.Amount, &txn.Description, &status, &txn.CreatedAt, &txn.SettledAt,
		); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txn.Status = Status(status)
		result = append(result, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return result, nil
}

// Get returns a transaction by ID.
func (s *PostgresStore) Get(ctx context.Context, id string) (Transaction, error) {
	var (
		txn    Transaction
		status string
	)
	err := s.pool.QueryRow(ctx, `
		SELECT id, email, recipient_id, recipient_name, recipient_email, recipient_number,
		       amount, description, status, created_at, settled_at
		FROM transactions WHERE id = $1`,
		id,
	).Scan(
		&txn.ID, &txn.Email,
		&txn.Recipient.ID, &txn.Recipient.Name, &txn.Recipient.Email, &txn.Recipient.AccountNumber,
		&txn.Amount, &txn.Description, &status, &txn.CreatedAt, &txn.SettledAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Transaction{}, fmt.Errorf("transaction %s: %w", id, sentinel.ErrNotFound)
	}
	if err != nil {
		return Transaction{}, fmt.Errorf("get transaction %s: %w", id, err)
	}
	txn.Status = Status(status)
	return txn, nil
}
