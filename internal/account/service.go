package account

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"vaultpay/pkg/platform/sentinel"

	dErrors "vaultpay/pkg/domain-errors"
)

// TokenIssuer mints access tokens for authenticated users.
type TokenIssuer interface {
	GenerateAccessToken(email, deviceName string, expiresIn time.Duration) (string, error)
}

const accessTokenTTL = 24 * time.Hour

// Service handles demo authentication and balance reads.
type Service struct {
	store  Store
	tokens TokenIssuer
	logger *slog.Logger
}

func NewService(store Store, tokens TokenIssuer, logger *slog.Logger) *Service {
	return &Service{store: store, tokens: tokens, logger: logger}
}

// LoginResult is returned on a successful PIN login.
type LoginResult struct {
	AccessToken string
	Account     Account
	DeviceName  string
}

// Login verifies the PIN and issues an access token bound to the device.
func (s *Service) Login(ctx context.Context, email, pin, deviceName string) (LoginResult, error) {
	acct, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			// Same answer as a wrong PIN so accounts can't be enumerated.
			return LoginResult{}, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
		}
		return LoginResult{}, err
	}

	if err := VerifyPIN(pin, acct.PINHash); err != nil {
		return LoginResult{}, err
	}

	token, err := s.tokens.GenerateAccessToken(acct.Email, deviceName, accessTokenTTL)
	if err != nil {
		return LoginResult{}, dErrors.Wrap(dErrors.CodeInternal, "could not issue token", err)
	}

	s.logger.InfoContext(ctx, "user logged in",
		"email", acct.Email,
		"device", deviceName,
	)
	return LoginResult{AccessToken: token, Account: acct, DeviceName: deviceName}, nil
}

// BalanceFor returns the displayed balance for the authenticated user.
func (s *Service) BalanceFor(ctx context.Context, email string) (int64, error) {
	balance, err := s.store.Balance(ctx, email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return 0, dErrors.New(dErrors.CodeNotFound, "account not found")
		}
		return 0, err
	}
	return balance, nil
}
