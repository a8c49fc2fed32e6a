package services

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/passvault-io/passvault/internal/cryptox"
	"github.com/passvault-io/passvault/internal/dbx"
	"github.com/passvault-io/passvault/internal/logging"
	"github.com/passvault-io/passvault/internal/server/models"
	"github.com/passvault-io/passvault/internal/server/repositories/repomanager"
)

// RecordInput carries the plaintext fields of a record as submitted by the
// owner. Password and Notes are the secret-bearing fields.
type RecordInput struct {
	Title    string
	UserName string
	Password string
	Notes    string
	URL      string
}

// RecordService stores and retrieves credential records, encrypting the
// secret fields on the way in and decrypting them on the way out. Each
// record gets its own salt at creation; the salt never changes, so every
// re-encryption of that record derives the same key while each field and
// each write still gets a fresh IV.
type RecordService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	engine      *cryptox.Engine
	logger      logging.Logger
}

// NewRecordService constructs a RecordService around the encryption engine.
func NewRecordService(db *sql.DB, m repomanager.RepositoryManager, engine *cryptox.Engine, logger logging.Logger) *RecordService {
	return &RecordService{db: db, repomanager: m, engine: engine, logger: logger}
}

// Create stores a new record for the account. The returned record carries
// the plaintext fields, not the stored ciphertext.
func (s *RecordService) Create(ctx context.Context, accountID string, in RecordInput) (*models.Record, error) {
	record := &models.Record{
		ID:        uuid.NewString(),
		AccountID: accountID,
		Title:     in.Title,
		UserName:  in.UserName,
		URL:       in.URL,
		Salt:      cryptox.GenerateSalt(),
	}

	if err := s.sealInto(record, in); err != nil {
		return nil, err
	}

	repo := s.repomanager.Records(s.db)
	if _, err := repo.Create(ctx, record); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "record created", "account", accountID, "record", record.ID)

	record.Password = in.Password
	record.Notes = in.Notes
	return record, nil
}

// Get returns the record with its secret fields decrypted. A decryption
// failure fails the whole read; no partial data is returned.
func (s *RecordService) Get(ctx context.Context, accountID, recordID string) (*models.Record, error) {
	repo := s.repomanager.Records(s.db)
	record, err := repo.Get(ctx, accountID, recordID)
	if err != nil {
		return nil, err
	}

	password, err := s.engine.Decrypt(record.Password, record.Salt)
	if err != nil {
		s.logger.Error(ctx, "record decryption failed", "record", record.ID, "error", err.Error())
		return nil, err
	}
	notes, err := s.engine.Decrypt(record.Notes, record.Salt)
	if err != nil {
		s.logger.Error(ctx, "record decryption failed", "record", record.ID, "error", err.Error())
		return nil, err
	}

	record.Password = password
	record.Notes = notes
	return record, nil
}

// List returns the account's records as overviews: secret fields are
// blanked, not decrypted.
func (s *RecordService) List(ctx context.Context, accountID string) ([]*models.Record, error) {
	repo := s.repomanager.Records(s.db)
	result, err := repo.List(ctx, accountID)
	if err != nil {
		return nil, err
	}
	for _, record := range result {
		record.Password = ""
		record.Notes = ""
	}
	return result, nil
}

// Update re-encrypts the submitted fields under the record's existing salt
// and rewrites the row. Reading the salt and writing the new ciphertext
// happen in one transaction so they cannot interleave with another writer.
func (s *RecordService) Update(ctx context.Context, accountID, recordID string, in RecordInput) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Records(tx)

		existing, err := repo.Get(ctx, accountID, recordID)
		if err != nil {
			return err
		}

		record := &models.Record{
			ID:        existing.ID,
			AccountID: accountID,
			Title:     in.Title,
			UserName:  in.UserName,
			URL:       in.URL,
			Salt:      existing.Salt,
		}
		if err := s.sealInto(record, in); err != nil {
			return err
		}
		return repo.Update(ctx, record)
	})
}

// Delete removes the record.
func (s *RecordService) Delete(ctx context.Context, accountID, recordID string) error {
	repo := s.repomanager.Records(s.db)
	return repo.Delete(ctx, accountID, recordID)
}

// sealInto encrypts the secret fields of in under record.Salt.
func (s *RecordService) sealInto(record *models.Record, in RecordInput) error {
	password, err := s.engine.Encrypt(in.Password, record.Salt)
	if err != nil {
		return err
	}
	notes, err := s.engine.Encrypt(in.Notes, record.Salt)
	if err != nil {
		return err
	}
	record.Password = password
	record.Notes = notes
	return nil
}
