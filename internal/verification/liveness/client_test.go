package liveness

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStartSession_Success(t *testing.T) {
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/auth/start-liveness-session", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]string{
				"SessionId":   "abc123xyz9",
				"ClientToken": "tok-456",
				"expires_at":  "2026-08-30T12:00:00Z",
			},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, discardLogger())
	sess, err := client.StartSession(context.Background(), "alex@example.com")
	require.NoError(t, err)

	assert.Equal(t, "alex@example.com", gotBody["email"])
	assert.Equal(t, "abc123xyz9", sess.SessionID)
	assert.Equal(t, "tok-456", sess.ClientToken)
	assert.Equal(t, "2026-08-30T12:00:00Z", sess.ExpiresAt)
}

func TestStartSession_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, discardLogger())
	_, err := client.StartSession(context.Background(), "alex@example.com")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSessionRequest)
}

func TestStartSession_MissingSessionID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]string{}})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, discardLogger())
	_, err := client.StartSession(context.Background(), "alex@example.com")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSessionRequest)
}

func TestStartSession_ImplausiblyShortSessionID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]string{"SessionId": "short"},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, discardLogger())
	_, err := client.StartSession(context.Background(), "alex@example.com")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSessionRequest)
}

func TestStartSession_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not-json"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, discardLogger())
	_, err := client.StartSession(context.Background(), "alex@example.com")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSessionRequest)
}

func TestConfirmResult_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/v1/auth/liveness-result/abc123xyz9", r.URL.Path)
		require.Equal(t, "alex@example.com", r.URL.Query().Get("email"))
		require.Equal(t, "tok-456", r.URL.Query().Get("client_token"))
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "VERIFIED"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, discardLogger())
	sess := Session{SessionID: "abc123xyz9", ClientToken: "tok-456"}
	require.NoError(t, client.ConfirmResult(context.Background(), sess, "alex@example.com"))
}

func TestConfirmResult_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, discardLogger())
	err := client.ConfirmResult(context.Background(), Session{SessionID: "abc123xyz9"}, "alex@example.com")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfirmation)
}

func TestConfirmResult_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	client := NewClient(srv.URL, discardLogger())
	err := client.ConfirmResult(context.Background(), Session{SessionID: "abc123xyz9"}, "alex@example.com")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfirmation)
}
