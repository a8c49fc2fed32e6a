package accounts

import (
	"context"

	"github.com/passvault-io/passvault/internal/server/lockout"
	"github.com/passvault-io/passvault/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	GetByUserName(ctx context.Context, userName string) (*models.Account, error)

	// GetByUserNameForUpdate locks the account row for the duration of the
	// surrounding transaction. The login flow uses it so that concurrent
	// attempts against one account serialize on the throttle state.
	GetByUserNameForUpdate(ctx context.Context, userName string) (*models.Account, error)

	UpdateLoginState(ctx context.Context, accountID string, state lockout.State) error
}
