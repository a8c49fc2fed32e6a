// Package records provides the PostgreSQL-backed repository for stored
// credentials. Secret columns hold engine ciphertext; the salt column is
// written once at insert and never updated afterwards.
package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/passvault-io/passvault/internal/common"
	"github.com/passvault-io/passvault/internal/dbx"
	"github.com/passvault-io/passvault/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, record *models.Record) (*models.Record, error) {

	query :=
		`INSERT INTO records (id, account_id, title, username, password, notes, url, salt)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 `

	_, err := r.db.ExecContext(ctx, query,
		record.ID, record.AccountID, record.Title, record.UserName,
		record.Password, record.Notes, record.URL, record.Salt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return record, nil
}

func (r *PostgresRepository) Get(ctx context.Context, accountID, recordID string) (*models.Record, error) {
	query :=
		`SELECT id, account_id, title, username, password, notes, url, salt FROM records
		 WHERE id = $1 AND account_id = $2
		 `

	record := &models.Record{}
	err := r.db.QueryRowContext(ctx, query, recordID, accountID).Scan(
		&record.ID, &record.AccountID, &record.Title, &record.UserName,
		&record.Password, &record.Notes, &record.URL, &record.Salt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return record, nil
}

func (r *PostgresRepository) List(ctx context.Context, accountID string) ([]*models.Record, error) {
	query :=
		`SELECT id, account_id, title, username, password, notes, url, salt FROM records
		 WHERE account_id = $1
		 ORDER BY title
		 `

	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to select records: %w", err)
	}
	defer rows.Close()

	var result []*models.Record
	for rows.Next() {
		var item models.Record
		if err := rows.Scan(
			&item.ID, &item.AccountID, &item.Title, &item.UserName,
			&item.Password, &item.Notes, &item.URL, &item.Salt,
		); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Update rewrites the mutable columns. The salt is deliberately not in the
// SET list: re-encryption always happens under the record's original salt.
func (r *PostgresRepository) Update(ctx context.Context, record *models.Record) error {
	query :=
		`UPDATE records SET title = $3, username = $4, password = $5, notes = $6, url = $7, updated_at = now()
		 WHERE id = $1 AND account_id = $2
		 `

	res, err := r.db.ExecContext(ctx, query,
		record.ID, record.AccountID, record.Title, record.UserName,
		record.Password, record.Notes, record.URL)
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

func (r *PostgresRepository) Delete(ctx context.Context, accountID, recordID string) error {
	query := `DELETE FROM records WHERE id = $1 AND account_id = $2`

	res, err := r.db.ExecContext(ctx, query, recordID, accountID)
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
