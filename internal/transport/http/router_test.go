package httptransport

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaultpay/internal/account"
	"vaultpay/internal/audit"
	"vaultpay/internal/contacts"
	"vaultpay/internal/jwttoken"
	"vaultpay/internal/security"
	"vaultpay/internal/transfer"
	transferhandler "vaultpay/internal/transfer/handler"
	"vaultpay/internal/verification/document"
	"vaultpay/internal/verification/liveness"
	"vaultpay/pkg/testutil"
)

// fakeLivenessAPI implements the session-issuing and result-confirmation
// endpoints of the remote liveness service.
func fakeLivenessAPI(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/auth/start-liveness-session", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"SessionId":"live-session-0001","ClientToken":"tok-1","expires_at":"2099-01-01T00:00:00Z"}}`))
	})
	mux.HandleFunc("GET /v1/auth/liveness-result/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"verified"}`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

type testEnv struct {
	router      http.Handler
	settlements chan transfer.Transaction
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	pinHash, err := account.HashPIN("1234")
	require.NoError(t, err)
	accounts := account.NewMemory(account.SeedAccount(pinHash))
	contactStore := contacts.NewMemory(contacts.Seed())
	securityStore := security.NewMemory()
	txnStore := transfer.NewMemoryStore()

	livenessAPI := fakeLivenessAPI(t)
	livenessCap := liveness.NewCapability(
		liveness.NewClient(livenessAPI.URL, logger),
		liveness.NewSimulatedBridge(10*time.Millisecond, ""),
		"eu-west-1",
		20*time.Millisecond, // confirm grace
		5*time.Second,       // wait timeout
		logger,
	)
	documentCap := document.New(
		document.AutoPicker{Handle: "demo-document"},
		document.SimulatedUploader{Delay: time.Millisecond},
		logger,
	)

	auditInbox := make(chan audit.Event, 64)
	auditStore := audit.NewInMemoryStore()
	publisher := audit.NewPublisher(auditInbox, logger)

	settlements := make(chan transfer.Transaction, 8)
	service := transfer.NewService(
		contactStore, accounts, securityStore,
		transfer.Capabilities{Document: documentCap, Liveness: livenessCap},
		txnStore, settlements, publisher, nil, logger,
	)

	jwtService := jwttoken.NewJWTService("test-signing-key", "vaultpay", "vaultpay-mobile")
	accountService := account.NewService(accounts, jwtService, logger)

	router := NewRouter(Deps{
		Logger:    logger,
		Validator: jwtService,
		Accounts:  account.NewHandler(accountService, logger),
		Contacts:  contacts.NewHandler(contactStore, logger),
		Transfers: transferhandler.New(service, logger),
		Audit:     audit.NewHandler(auditStore, logger),
	})
	return &testEnv{router: router, settlements: settlements}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		req = testutil.NewJSONRequest(t, method, path, body)
	} else {
		req = testutil.NewRequest(t, method, path)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) login(t *testing.T) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/v1/auth/login", "", map[string]string{
		"email": "alex@example.com",
		"pin":   "1234",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotEmpty(t, resp.AccessToken)
	return resp.AccessToken
}

func TestRouter_RejectsMissingToken(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/v1/contacts", "/v1/balance", "/v1/transfers/", "/v1/activity", "/v1/security", "/v1/audit"} {
		rec := env.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestRouter_Health(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestRouter_HighValueTransferEndToEnd(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	rec := env.do(t, http.MethodGet, "/v1/contacts?q=john", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPost, "/v1/transfers/select", token, map[string]string{"contact_id": "1"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPost, "/v1/transfers/amount", token, map[string]any{
		"amount":      500_00,
		"description": "deposit",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	// Runs the whole liveness handshake against the fake session API.
	rec = env.do(t, http.MethodPost, "/v1/transfers/continue", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var cont struct {
		State string `json:"state"`
		Tier  string `json:"tier"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&cont))
	assert.Equal(t, "confirming", cont.State)
	assert.Equal(t, "liveness", cont.Tier)

	rec = env.do(t, http.MethodPost, "/v1/transfers/send", token, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var txn transfer.Transaction
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&txn))
	assert.Equal(t, transfer.StatusPending, txn.Status)
	require.Len(t, env.settlements, 1)

	rec = env.do(t, http.MethodGet, "/v1/security", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"liveness_verified":true`)

	rec = env.do(t, http.MethodGet, "/v1/activity", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), txn.ID)

	rec = env.do(t, http.MethodGet, "/v1/balance", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var balance struct {
		Balance int64 `json:"balance"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&balance))
	assert.Equal(t, int64(1_090_050_000-500_00), balance.Balance)
}

func TestRouter_LowValueTransferSkipsVerification(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	rec := env.do(t, http.MethodPost, "/v1/transfers/select", token, map[string]string{"contact_id": "2"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPost, "/v1/transfers/amount", token, map[string]any{"amount": 30_00})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPost, "/v1/transfers/continue", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"verification_ran":false`)
}

func TestRouter_CancelResetsWorkflow(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	rec := env.do(t, http.MethodPost, "/v1/transfers/select", token, map[string]string{"contact_id": "3"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPost, "/v1/transfers/cancel", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "selecting_contact")
}
