package account

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "vaultpay/pkg/domain-errors"
)

type stubIssuer struct {
	token string
	err   error

	gotEmail  string
	gotDevice string
}

func (s *stubIssuer) GenerateAccessToken(email, deviceName string, _ time.Duration) (string, error) {
	s.gotEmail = email
	s.gotDevice = deviceName
	return s.token, s.err
}

func newTestService(t *testing.T, issuer TokenIssuer) (*Service, *InMemoryStore) {
	t.Helper()
	hash, err := HashPIN("1234")
	require.NoError(t, err)

	store := NewMemory(SeedAccount(hash))
	return NewService(store, issuer, slog.New(slog.NewTextHandler(io.Discard, nil))), store
}

func TestLogin_Success(t *testing.T) {
	issuer := &stubIssuer{token: "access-token"}
	svc, _ := newTestService(t, issuer)

	result, err := svc.Login(context.Background(), "alex@example.com", "1234", "Chrome 120 on Linux")
	require.NoError(t, err)

	assert.Equal(t, "access-token", result.AccessToken)
	assert.Equal(t, "Alex Thompson", result.Account.Name)
	assert.Equal(t, "alex@example.com", issuer.gotEmail)
	assert.Equal(t, "Chrome 120 on Linux", issuer.gotDevice)
}

func TestLogin_WrongPIN(t *testing.T) {
	svc, _ := newTestService(t, &stubIssuer{token: "unused"})

	_, err := svc.Login(context.Background(), "alex@example.com", "9999", "device")
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeUnauthorized, dErrors.CodeOf(err))
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc, _ := newTestService(t, &stubIssuer{token: "unused"})

	_, err := svc.Login(context.Background(), "nobody@example.com", "1234", "device")
	require.Error(t, err)
	// Unknown accounts look the same as a wrong PIN.
	assert.Equal(t, dErrors.CodeUnauthorized, dErrors.CodeOf(err))
}

func TestBalanceFor(t *testing.T) {
	svc, _ := newTestService(t, &stubIssuer{token: "unused"})

	balance, err := svc.BalanceFor(context.Background(), "alex@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(1_090_050_000), balance)

	_, err = svc.BalanceFor(context.Background(), "nobody@example.com")
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeNotFound, dErrors.CodeOf(err))
}
