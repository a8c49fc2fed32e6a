// Package services contains server-side business logic. This file implements
// AccountService, which handles registration and the throttled login flow:
// lockout gate first, then the password comparison, then recording the
// outcome, all against one row-locked view of the account.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/passvault-io/passvault/internal/common"
	"github.com/passvault-io/passvault/internal/dbx"
	"github.com/passvault-io/passvault/internal/logging"
	"github.com/passvault-io/passvault/internal/server/auth"
	"github.com/passvault-io/passvault/internal/server/config"
	"github.com/passvault-io/passvault/internal/server/lockout"
	"github.com/passvault-io/passvault/internal/server/models"
	"github.com/passvault-io/passvault/internal/server/repositories/repomanager"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

// dummyHash is compared against when the account does not exist, so a
// missing username costs the same as a wrong password.
var dummyHash = []byte("$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW")

// timeNow is a test seam for the throttle clock. The server clock is the
// single time source; client-supplied timestamps are never consulted.
var timeNow = time.Now

// LoginResult is returned on successful authentication.
// PreviousFailedAttempts is non-zero only when the success was preceded by
// enough failures to have crossed the first lockout tier.
type LoginResult struct {
	AccessToken            string
	PreviousFailedAttempts int
}

// AccountService provides registration and throttled authentication.
type AccountService struct {
	db                          *sql.DB
	repomanager                 repomanager.RepositoryManager
	logger                      logging.Logger
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
}

// NewAccountService constructs an AccountService using repositories and
// server config.
func NewAccountService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) *AccountService {
	return &AccountService{
		db:                          db,
		repomanager:                 m,
		logger:                      logger,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
	}
}

// Register creates a new account with a bcrypt password hash. A taken
// username yields common.ErrorAlreadyExists.
func (s *AccountService) Register(ctx context.Context, userName, password string) (*models.Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, common.ErrorInternal
	}

	repo := s.repomanager.Accounts(s.db)
	account, err := repo.Create(ctx, &models.Account{UserName: userName, PasswordHash: string(hash)})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating account: %v", err)
	}

	s.logger.Info(ctx, "account registered", "account", account.ID)
	return account, nil
}

// Login authenticates userName/password under the progressive lockout
// policy. The whole read-evaluate-write runs in one transaction holding a
// row lock on the account, so concurrent attempts cannot under-count.
//
// Outcomes: (*LoginResult, nil) on success; *LockoutError while a lock is
// active or when this failure opened one; *InvalidCredentialsError for a
// failure below the first tier; common.ErrorUnauthorized for an unknown
// username.
func (s *AccountService) Login(ctx context.Context, userName, password string) (*LoginResult, error) {
	now := timeNow()

	var result *LoginResult
	var outcome error

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Accounts(tx)

		account, err := repo.GetByUserNameForUpdate(ctx, userName)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				// Burn a comparison so unknown usernames cost the same.
				_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
				outcome = common.ErrorUnauthorized
				return nil
			}
			return common.ErrorInternal
		}

		state := loginState(account)

		// Gate before touching the password. A rejected attempt must not
		// mutate the state, so the lock can never be inflated by hammering.
		if d := lockout.Evaluate(state, now); !d.Allowed {
			s.logger.Info(ctx, "login rejected, lock active",
				"account", account.ID, "remaining_s", d.RemainingSeconds)
			outcome = &LockoutError{RemainingSeconds: d.RemainingSeconds, Attempts: state.Attempts}
			return nil
		}

		if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
			next, res := lockout.RecordFailure(state, now)
			if err := repo.UpdateLoginState(ctx, account.ID, next); err != nil {
				return err
			}
			if res.Locked {
				s.logger.Warn(ctx, "account locked",
					"account", account.ID, "attempts", res.Attempts, "duration_s", res.RemainingSeconds)
				outcome = &LockoutError{RemainingSeconds: res.RemainingSeconds, Attempts: res.Attempts}
			} else {
				outcome = &InvalidCredentialsError{AttemptsRemaining: res.AttemptsRemaining}
			}
			return nil
		}

		next, previous := lockout.RecordSuccess(state)
		if err := repo.UpdateLoginState(ctx, account.ID, next); err != nil {
			return err
		}

		token, err := auth.GenerateToken(account.ID, s.jwtSecret, s.accessTokenValidityDuration)
		if err != nil {
			return common.ErrorInternal
		}
		result = &LoginResult{AccessToken: token, PreviousFailedAttempts: previous}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if outcome != nil {
		return nil, outcome
	}
	return result, nil
}

func loginState(account *models.Account) lockout.State {
	return lockout.State{
		Attempts:     account.FailedAttempts,
		LockedUntil:  account.LockedUntil,
		LastFailedAt: account.LastFailedAt,
	}
}
