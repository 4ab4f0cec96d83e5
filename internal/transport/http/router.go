// Package httptransport assembles the public HTTP surface.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"vaultpay/internal/account"
	"vaultpay/internal/audit"
	"vaultpay/internal/contacts"
	"vaultpay/internal/platform/middleware"
	transferhandler "vaultpay/internal/transfer/handler"
	"vaultpay/pkg/platform/httputil"
)

const requestTimeout = 150 * time.Second

// Deps collects the wired handlers and cross-cutting services the router
// mounts.
type Deps struct {
	Logger    *slog.Logger
	Validator middleware.JWTValidator
	Accounts  *account.Handler
	Contacts  *contacts.Handler
	Transfers *transferhandler.Handler
	Audit     *audit.Handler
	// Health reports readiness of backing stores; nil means always healthy.
	Health func(ctx context.Context) error
}

// NewRouter wires all public endpoints behind the shared middleware stack.
// The request timeout is generous because /v1/transfers/continue blocks while
// a verification attempt is in flight.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/healthz", handleHealth(d.Health))
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		d.Accounts.RegisterAuth(r)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		r.Use(middleware.RequireAuth(d.Validator, d.Logger))
		d.Contacts.Register(r)
		d.Accounts.Register(r)
		d.Transfers.Register(r)
		d.Audit.Register(r)
	})

	return r
}

func handleHealth(check func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(r.Context()); err != nil {
				httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
				return
			}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
