package records

import (
	"context"

	"github.com/passvault-io/passvault/internal/server/models"
)

// Repository stores records with their secret fields already encrypted.
// Every operation is scoped to the owning account.
type Repository interface {
	Create(ctx context.Context, record *models.Record) (*models.Record, error)
	Get(ctx context.Context, accountID, recordID string) (*models.Record, error)
	List(ctx context.Context, accountID string) ([]*models.Record, error)
	Update(ctx context.Context, record *models.Record) error
	Delete(ctx context.Context, accountID, recordID string) error
}
