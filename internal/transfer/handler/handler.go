// Package handler wires the transfer workflow endpoints to the transfer
// service.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"vaultpay/internal/policy"
	"vaultpay/internal/security"
	"vaultpay/internal/transfer"
	"vaultpay/pkg/platform/httputil"
	"vaultpay/pkg/requestcontext"

	dErrors "vaultpay/pkg/domain-errors"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

// Service defines the transfer operations the handler depends on.
type Service interface {
	Select(ctx context.Context, email, contactID string) (transfer.Snapshot, error)
	EnterAmount(ctx context.Context, email string, amount int64, description string) (transfer.Snapshot, error)
	Continue(ctx context.Context, email string) (transfer.ContinueResult, error)
	Send(ctx context.Context, email string) (transfer.Transaction, error)
	Cancel(ctx context.Context, email string) transfer.Snapshot
	Status(ctx context.Context, email string) transfer.Snapshot
	Activity(ctx context.Context, email string) ([]transfer.Transaction, error)
	SecurityStatus(ctx context.Context, email string) (security.State, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the transfer routes. All of them require authentication.
func (h *Handler) Register(r chi.Router) {
	r.Route("/v1/transfers", func(r chi.Router) {
		r.Get("/", h.status)
		r.Post("/select", h.selectRecipient)
		r.Post("/amount", h.enterAmount)
		r.Post("/continue", h.cont)
		r.Post("/send", h.send)
		r.Post("/cancel", h.cancel)
	})
	r.Get("/v1/activity", h.activity)
	r.Get("/v1/security", h.securityStatus)
}

type stateResponse struct {
	State   string           `json:"state"`
	Intent  *transfer.Intent `json:"intent,omitempty"`
	Pending *transfer.Intent `json:"pending,omitempty"`
}

func snapshotResponse(snap transfer.Snapshot) stateResponse {
	return stateResponse{
		State:   snap.State.String(),
		Intent:  snap.Intent,
		Pending: snap.Pending,
	}
}

func (h *Handler) authedEmail(w http.ResponseWriter, r *http.Request) (string, bool) {
	email := requestcontext.UserEmail(r.Context())
	if email == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return "", false
	}
	return email, true
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	email, ok := h.authedEmail(w, r)
	if !ok {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, snapshotResponse(h.service.Status(r.Context(), email)))
}

type selectRequest struct {
	ContactID string `json:"contact_id"`
}

func (h *Handler) selectRecipient(w http.ResponseWriter, r *http.Request) {
	email, ok := h.authedEmail(w, r)
	if !ok {
		return
	}
	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ContactID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "contact_id is required"))
		return
	}

	snap, err := h.service.Select(r.Context(), email, req.ContactID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, snapshotResponse(snap))
}

type amountRequest struct {
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
}

func (h *Handler) enterAmount(w http.ResponseWriter, r *http.Request) {
	email, ok := h.authedEmail(w, r)
	if !ok {
		return
	}
	var req amountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	snap, err := h.service.EnterAmount(r.Context(), email, req.Amount, req.Description)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, snapshotResponse(snap))
}

type continueResponse struct {
	State                 string `json:"state"`
	Tier                  string `json:"tier"`
	VerificationRan       bool   `json:"verification_ran"`
	VerificationCancelled bool   `json:"verification_cancelled,omitempty"`
}

// cont blocks while a verification capability is in flight; the route's
// timeout middleware bounds the wait.
func (h *Handler) cont(w http.ResponseWriter, r *http.Request) {
	email, ok := h.authedEmail(w, r)
	if !ok {
		return
	}

	result, err := h.service.Continue(r.Context(), email)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "security gate failed",
			"request_id", requestcontext.RequestID(r.Context()),
			"tier", result.Tier.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, continueResponse{
		State:                 result.State.String(),
		Tier:                  result.Tier.String(),
		VerificationRan:       result.Gated,
		VerificationCancelled: result.Cancelled,
	})
}

func (h *Handler) send(w http.ResponseWriter, r *http.Request) {
	email, ok := h.authedEmail(w, r)
	if !ok {
		return
	}

	txn, err := h.service.Send(r.Context(), email)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "transfer submission failed",
			"request_id", requestcontext.RequestID(r.Context()),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, txn)
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	email, ok := h.authedEmail(w, r)
	if !ok {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, snapshotResponse(h.service.Cancel(r.Context(), email)))
}

type activityResponse struct {
	Transactions []transfer.Transaction `json:"transactions"`
}

func (h *Handler) activity(w http.ResponseWriter, r *http.Request) {
	email, ok := h.authedEmail(w, r)
	if !ok {
		return
	}

	txns, err := h.service.Activity(r.Context(), email)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, activityResponse{Transactions: txns})
}

type securityResponse struct {
	DocumentVerified   bool   `json:"document_verified"`
	LivenessVerified   bool   `json:"liveness_verified"`
	LastDocumentUpload string `json:"last_document_upload,omitempty"`
	LastLivenessCheck  string `json:"last_liveness_check,omitempty"`
	DocumentThreshold  int64  `json:"document_threshold"`
	LivenessThreshold  int64  `json:"liveness_threshold"`
}

func (h *Handler) securityStatus(w http.ResponseWriter, r *http.Request) {
	email, ok := h.authedEmail(w, r)
	if !ok {
		return
	}

	state, err := h.service.SecurityStatus(r.Context(), email)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	resp := securityResponse{
		DocumentVerified:  state.DocumentVerified,
		LivenessVerified:  state.LivenessVerified,
		DocumentThreshold: policy.DocumentThreshold,
		LivenessThreshold: policy.LivenessThreshold,
	}
	if state.LastDocumentUpload != nil {
		resp.LastDocumentUpload = state.LastDocumentUpload.UTC().Format(time.RFC3339)
	}
	if state.LastLivenessCheck != nil {
		resp.LastLivenessCheck = state.LastLivenessCheck.UTC().Format(time.RFC3339)
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}
