// Command server wires the transfer workflow service: stores, verification
// capabilities, background workers and the HTTP surface. Business logic lives
// in the internal packages.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"vaultpay/internal/account"
	"vaultpay/internal/audit"
	"vaultpay/internal/contacts"
	"vaultpay/internal/jwttoken"
	"vaultpay/internal/platform/config"
	"vaultpay/internal/platform/httpserver"
	"vaultpay/internal/platform/logger"
	platformredis "vaultpay/internal/platform/redis"
	"vaultpay/internal/security"
	"vaultpay/internal/transfer"
	transferhandler "vaultpay/internal/transfer/handler"
	"vaultpay/internal/transfer/metrics"
	httptransport "vaultpay/internal/transport/http"
	"vaultpay/internal/verification/document"
	"vaultpay/internal/verification/liveness"
)

const (
	auditInboxSize      = 256
	settlementInboxSize = 64
	shutdownTimeout     = 10 * time.Second
	simulatedNativeLag  = 3 * time.Second
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	pinHash, err := account.HashPIN(cfg.DemoPIN)
	if err != nil {
		log.Error("hash demo pin", "error", err)
		os.Exit(1)
	}
	accounts := account.NewMemory(account.SeedAccount(pinHash))
	contactStore := contacts.NewMemory(contacts.Seed())

	var securityStore security.Store = security.NewMemory()
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("connect redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
		securityStore = security.NewRedis(redisClient.Client)
		log.Info("verification state in redis")
	}

	var txnStore transfer.Store = transfer.NewMemoryStore()
	if cfg.DatabaseURL != "" {
		pgStore, err := transfer.NewPostgresStore(context.Background(), cfg.DatabaseURL)
		if err != nil {
			log.Error("connect postgres", "error", err)
			os.Exit(1)
		}
		defer pgStore.Close()
		txnStore = pgStore
		log.Info("transactions in postgres")
	}

	// The native biometric surface is simulated in this deployment; the
	// session handshake against the liveness API is real.
	livenessClient := liveness.NewClient(cfg.LivenessBaseURL, log)
	bridge := liveness.NewSimulatedBridge(simulatedNativeLag, "")
	livenessCap := liveness.NewCapability(
		livenessClient, bridge, cfg.LivenessRegion,
		cfg.LivenessConfirmGrace, cfg.LivenessWaitTimeout, log,
	)
	documentCap := document.New(
		document.AutoPicker{Handle: "demo-document"},
		document.SimulatedUploader{Delay: cfg.DocumentUploadDelay},
		log,
	)

	auditInbox := make(chan audit.Event, auditInboxSize)
	auditStore := audit.NewInMemoryStore()
	auditPublisher := audit.NewPublisher(auditInbox, log)
	auditWorker := audit.NewWorker(auditStore, auditInbox, log)

	m := metrics.New()
	settlements := make(chan transfer.Transaction, settlementInboxSize)
	settler := transfer.NewSettlementWorker(txnStore, settlements, cfg.SettlementDelay, m, auditPublisher, log)

	transferService := transfer.NewService(
		contactStore, accounts, securityStore,
		transfer.Capabilities{Document: documentCap, Liveness: livenessCap},
		txnStore, settlements, auditPublisher, m, log,
	)

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, "vaultpay", "vaultpay-mobile")
	accountService := account.NewService(accounts, jwtService, log)

	var health func(ctx context.Context) error
	if redisClient != nil {
		health = redisClient.Health
	}

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:    log,
		Validator: jwtService,
		Accounts:  account.NewHandler(accountService, log),
		Contacts:  contacts.NewHandler(contactStore, log),
		Transfers: transferhandler.New(transferService, log),
		Audit:     audit.NewHandler(auditStore, log),
		Health:    health,
	})

	srv := httpserver.New(cfg.Addr, router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return auditWorker.Run(ctx) })
	g.Go(func() error { return settler.Run(ctx) })
	g.Go(func() error {
		log.Info("starting vaultpay", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}
