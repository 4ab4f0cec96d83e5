package account

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mssola/useragent"

	"vaultpay/pkg/platform/httputil"
	"vaultpay/pkg/requestcontext"

	dErrors "vaultpay/pkg/domain-errors"
)

type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterAuth mounts the unauthenticated login route.
func (h *Handler) RegisterAuth(r chi.Router) {
	r.Post("/v1/auth/login", h.login)
}

// Register mounts the routes that require authentication.
func (h *Handler) Register(r chi.Router) {
	r.Get("/v1/balance", h.balance)
}

type loginRequest struct {
	Email string `json:"email"`
	PIN   string `json:"pin"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	DeviceName  string `json:"device_name"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if req.Email == "" || req.PIN == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "email and pin are required"))
		return
	}

	result, err := h.service.Login(r.Context(), req.Email, req.PIN, deviceNameFrom(r))
	if err != nil {
		h.logger.WarnContext(r.Context(), "login rejected",
			"request_id", requestcontext.RequestID(r.Context()),
			"email", req.Email,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, loginResponse{
		AccessToken: result.AccessToken,
		Name:        result.Account.Name,
		Email:       result.Account.Email,
		DeviceName:  result.DeviceName,
	})
}

type balanceResponse struct {
	Balance int64 `json:"balance"`
}

func (h *Handler) balance(w http.ResponseWriter, r *http.Request) {
	email := requestcontext.UserEmail(r.Context())
	if email == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	balance, err := h.service.BalanceFor(r.Context(), email)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, balanceResponse{Balance: balance})
}

// deviceNameFrom derives a human readable device label from the User-Agent.
func deviceNameFrom(r *http.Request) string {
	raw := r.UserAgent()
	if raw == "" {
		return "Unknown device"
	}
	ua := useragent.New(raw)
	name, version := ua.Browser()
	if name == "" {
		return "Unknown device"
	}
	if ua.OS() != "" {
		return name + " " + version + " on " + ua.OS()
	}
	return name + " " + version
}
