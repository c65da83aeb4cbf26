// Package main initializes and starts the submission server, setting up
// configuration, logging, the database, the code store, services, handlers
// and optional TLS.
package main

import (
	"cmp"
	"context"
	"crypto/tls"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"github.com/atinyakov/GophSubmit/internal/codestore"
	"github.com/atinyakov/GophSubmit/internal/config"
	"github.com/atinyakov/GophSubmit/internal/db"
	"github.com/atinyakov/GophSubmit/internal/logger"
	"github.com/atinyakov/GophSubmit/internal/repository"
	"github.com/atinyakov/GophSubmit/internal/server/handler/http"
	"github.com/atinyakov/GophSubmit/internal/service"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

// cleanerInterval is how often the retention cleaner runs.
const cleanerInterval = time.Hour

// submissionRepository is what both SQL backends provide.
type submissionRepository interface {
	service.SubmissionRepository
	db.Purger
}

func newRepository(driver string, conn *sql.DB) submissionRepository {
	if driver == db.DriverMySQL {
		return repository.NewMySQLSubmissionRepository(conn)
	}
	return repository.NewPostgresSubmissionRepository(conn)
}

func main() {
	// Parse command-line and environment configuration.
	options := config.Parse()

	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	zapLogger := log.Log

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Open(options.Driver, options.DatabaseDSN)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.String("driver", options.Driver), zap.Error(err))
	}
	defer conn.Close()

	codes, err := codestore.NewFileStore(options.CodeDir, codestore.DefaultExt)
	if err != nil {
		zapLogger.Fatal("cannot init code store", zap.String("dir", options.CodeDir), zap.Error(err))
	}

	repo := newRepository(options.Driver, conn)
	submissionService := service.NewSubmissionService(repo, codes)

	if options.Retention > 0 {
		db.StartRetentionCleaner(ctx, repo, codes, cleanerInterval, options.Retention, zapLogger)
	}

	submissionHandler := &http.SubmissionHandler{SubmissionService: submissionService, Logger: zapLogger}
	healthHandler := &http.HealthHandler{DB: conn}
	router := http.NewRouter(submissionHandler, healthHandler, zapLogger)

	server := &nethttp.Server{
		Addr:              options.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	useTLS := options.TLSCert != ""
	if useTLS {
		cert, err := tls.LoadX509KeyPair(options.TLSCert, options.TLSKey)
		if err != nil {
			zapLogger.Fatal("failed to load server TLS cert/key", zap.Error(err))
		}
		server.TLSConfig = &tls.Config{
			Certificates: []tls.Certificate{cert},
			MinVersion:   tls.VersionTLS12,
		}
	}

	errCh := make(chan error, 1)
	go func() {
		zapLogger.Info("starting server",
			zap.String("addr", options.Port),
			zap.Bool("tls", useTLS),
			zap.String("driver", options.Driver),
		)
		if useTLS {
			errCh <- server.ListenAndServeTLS("", "")
			return
		}
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, nethttp.ErrServerClosed) {
			zapLogger.Fatal("server failed", zap.Error(err))
		}
	case <-ctx.Done():
		zapLogger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zapLogger.Error("graceful shutdown failed", zap.Error(err))
		}
	}
}
