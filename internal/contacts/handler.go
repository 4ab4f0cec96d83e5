package contacts

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"vaultpay/pkg/platform/httputil"
	"vaultpay/pkg/requestcontext"
)

// Handler exposes the contact directory.
type Handler struct {
	store  Store
	logger *slog.Logger
}

func NewHandler(store Store, logger *slog.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// Register mounts the contact routes.
func (h *Handler) Register(r chi.Router) {
	r.Get("/v1/contacts", h.handleList)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	found, err := h.store.Search(ctx, r.URL.Query().Get("q"))
	if err != nil {
		h.logger.ErrorContext(ctx, "contact search failed",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{"contacts": found})
}
