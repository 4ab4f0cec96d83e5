package liveness

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// Session is the short-lived, single-use credential pair issued by the
// verification backend to scope one liveness attempt. An expired session is
// never reused; the caller fetches a fresh one instead.
type Session struct {
	SessionID   string `json:"SessionId"`
	ClientToken string `json:"ClientToken"`
	ExpiresAt   string `json:"expires_at"`
}

type sessionResponse struct {
	Data Session `json:"data"`
}

// Session-handshake failures, distinguishable with errors.Is.
var (
	// ErrSessionRequest marks a failed or malformed session-issuing response.
	ErrSessionRequest = errors.New("liveness session request failed")
	// ErrConfirmation marks a failed result-confirmation call. The biometric
	// capture may have succeeded, but an unconfirmed success is still a
	// failure of the verification step.
	ErrConfirmation = errors.New("liveness result confirmation failed")
)

// Session ids shorter than this are implausible and rejected before they
// reach the native capability.
const minSessionIDLength = 10

// Client talks to the remote session-issuing and result-confirmation
// endpoints.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

func NewClient(baseURL string, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
		logger:  logger,
	}
}

// StartSession requests a new liveness session for the given identity.
func (c *Client) StartSession(ctx context.Context, email string) (Session, error) {
	body, err := json.Marshal(map[string]string{"email": email})
	if err != nil {
		return Session{}, fmt.Errorf("marshal session request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/auth/start-liveness-session", bytes.NewReader(body))
	if err != nil {
		return Session{}, fmt.Errorf("build session request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %w", ErrSessionRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Session{}, fmt.Errorf("%w: unexpected status %d", ErrSessionRequest, resp.StatusCode)
	}

	var decoded sessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return Session{}, fmt.Errorf("%w: decode response: %w", ErrSessionRequest, err)
	}

	sess := decoded.Data
	if sess.SessionID == "" {
		return Session{}, fmt.Errorf("%w: no session id in response", ErrSessionRequest)
	}
	if len(sess.SessionID) < minSessionIDLength {
		return Session{}, fmt.Errorf("%w: implausible session id %q", ErrSessionRequest, sess.SessionID)
	}

	c.logger.DebugContext(ctx, "liveness session issued", "session_id", sess.SessionID)
	return sess, nil
}

// ConfirmResult fetches the verification record for a completed session. The
// record itself is opaque; only the HTTP status determines success.
func (c *Client) ConfirmResult(ctx context.Context, sess Session, email string) error {
	q := url.Values{}
	q.Set("email", email)
	q.Set("client_token", sess.ClientToken)
	endpoint := fmt.Sprintf("%s/v1/auth/liveness-result/%s?%s",
		c.baseURL, url.PathEscape(sess.SessionID), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build confirmation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConfirmation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: unexpected status %d", ErrConfirmation, resp.StatusCode)
	}

	c.logger.DebugContext(ctx, "liveness result confirmed", "session_id", sess.SessionID)
	return nil
}
