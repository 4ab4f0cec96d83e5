package audit

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"vaultpay/pkg/platform/httputil"
	"vaultpay/pkg/requestcontext"

	dErrors "vaultpay/pkg/domain-errors"
)

// Handler exposes the authenticated user's audit trail.
type Handler struct {
	store  Store
	logger *slog.Logger
}

func NewHandler(store Store, logger *slog.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// Register mounts the audit routes. They require authentication.
func (h *Handler) Register(r chi.Router) {
	r.Get("/v1/audit", h.handleList)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	email := requestcontext.UserEmail(ctx)
	if email == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	events, err := h.store.ListByEmail(ctx, email)
	if err != nil {
		h.logger.ErrorContext(ctx, "audit list failed",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{"events": events})
}
