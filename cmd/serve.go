package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"MediChain/cache"
	"MediChain/database"
	"MediChain/filestore"
	"MediChain/ledger"
	"MediChain/logger"
	"MediChain/routes"
	"MediChain/utils"

	"github.com/spf13/cobra"
)

const redisMonitorInterval = time.Minute

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log := logger.New(cfg)
	slog.SetDefault(log)
	if !cfg.AdminConfigured() {
		log.Warn("ADMIN_EMAIL or ADMIN_PASSWORD not set, built-in admin login is disabled")
	}

	db, err := database.InitDB(ctx, cfg.DBURL, cfg.IsDevelopment(), log)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Error("failed to close database", "error", err)
		}
	}()
	if err := database.RunMigrations(db); err != nil {
		return err
	}

	redisClient, err := database.NewRedisClient(ctx, database.RedisConfigFrom(cfg), log)
	if err != nil {
		return fmt.Errorf("failed to initialize Redis client: %w", err)
	}
	defer redisClient.Close()

	appCache, err := cache.NewCache(redisClient)
	if err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}

	tokens, err := utils.NewTokenMaker(cfg.SymmetricKey, cfg.TokenTTL)
	if err != nil {
		return err
	}

	files, err := filestore.New(cfg.UploadsDir, cfg.MaxUploadBytes)
	if err != nil {
		return err
	}

	var (
		chain  *ledger.Chain
		mirror ledger.Mirror = ledger.NopMirror{}
	)
	if cfg.LedgerEnabled {
		chain, err = ledger.Open(cfg.LedgerPath)
		if err != nil {
			return fmt.Errorf("failed to open ledger: %w", err)
		}
		defer chain.Close()
		mirror = ledger.NewAsyncMirror(chain, cfg.LedgerQueueSize, log)
	}
	// Runs before chain.Close so queued events are flushed.
	defer mirror.Close()

	handler := routes.SetupRoutes(routes.Dependencies{
		Config: cfg,
		Log:    log,
		DB:     db,
		Cache:  appCache,
		Tokens: tokens,
		Mailer: utils.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass),
		Mirror: mirror,
		Chain:  chain,
		Files:  files,
	})

	srv := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        handler,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		MaxHeaderBytes: 1 << 20,
		IdleTimeout:    30 * time.Second,
	}

	monitorCtx, stopMonitor := context.WithCancel(ctx)
	defer stopMonitor()

	var wg sync.WaitGroup
	wg.Add(2)

	serveErr := make(chan error, 1)
	go func() {
		defer wg.Done()
		log.Info("starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	go func() {
		defer wg.Done()
		ticker := time.NewTicker(redisMonitorInterval)
		defer ticker.Stop()
		for {
			select {
			case <-monitorCtx.Done():
				return
			case <-ticker.C:
				database.MonitorRedisPool(redisClient, log)
			}
		}
	}()

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)

	var runErr error
	select {
	case <-quit:
	case runErr = <-serveErr:
		log.Error("server failed", "error", runErr)
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	log.Info("shutting down server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", "error", err)
	}
	stopMonitor()

	wg.Wait()
	log.Info("server exited gracefully")
	return runErr
}
