// Package accounts provides the PostgreSQL-backed repository for vault
// accounts, including the row-locked reads the login throttle depends on.
package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/passvault-io/passvault/internal/common"
	"github.com/passvault-io/passvault/internal/dbx"
	"github.com/passvault-io/passvault/internal/server/lockout"
	"github.com/passvault-io/passvault/internal/server/models"
)

const uniqueViolationCode = "23505"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {

	query :=
		`INSERT INTO accounts (username, password_hash)
         VALUES ($1, $2)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		account.UserName, account.PasswordHash).Scan(&account.ID)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return account, nil
}

func (r *PostgresRepository) GetByUserName(ctx context.Context, userName string) (*models.Account, error) {
	query :=
		`SELECT id, username, password_hash, failed_attempts, locked_until, last_failed_at FROM accounts
		 WHERE username = $1
		 `
	return r.scanAccount(r.db.QueryRowContext(ctx, query, userName))
}

func (r *PostgresRepository) GetByUserNameForUpdate(ctx context.Context, userName string) (*models.Account, error) {
	query :=
		`SELECT id, username, password_hash, failed_attempts, locked_until, last_failed_at FROM accounts
		 WHERE username = $1
		 FOR UPDATE
		 `
	return r.scanAccount(r.db.QueryRowContext(ctx, query, userName))
}

// UpdateLoginState writes the throttle state back onto the account row.
// Zero timestamps are stored as NULL.
func (r *PostgresRepository) UpdateLoginState(ctx context.Context, accountID string, state lockout.State) error {
	query :=
		`UPDATE accounts SET failed_attempts = $2, locked_until = $3, last_failed_at = $4
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query,
		accountID, state.Attempts, nullTime(state.LockedUntil), nullTime(state.LastFailedAt))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) scanAccount(row *sql.Row) (*models.Account, error) {
	account := &models.Account{}
	var lockedUntil, lastFailedAt sql.NullTime

	err := row.Scan(&account.ID, &account.UserName, &account.PasswordHash,
		&account.FailedAttempts, &lockedUntil, &lastFailedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if lockedUntil.Valid {
		account.LockedUntil = lockedUntil.Time
	}
	if lastFailedAt.Valid {
		account.LastFailedAt = lastFailedAt.Time
	}
	return account, nil
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
