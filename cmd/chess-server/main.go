// Package main runs the chessduel API server: game hosting over REST with
// long-poll updates, anonymous player identities, an optional sqlite move
// audit log, badger game snapshots and the embedded web UI.
package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chessduel/cmd/chess-server/cli"
	"chessduel/internal/server/http"
	"chessduel/internal/server/processor"
	"chessduel/internal/server/service"
	"chessduel/internal/server/storage"
	"chessduel/internal/server/webserver"

	"go.uber.org/zap"
)

const (
	gracefulShutdownTimeout = time.Second * 5
	devTokenSecret          = "dev-secret-minimum-32-characters-long"
)

func main() {
	// Database maintenance sub-app
	if len(os.Args) > 1 && os.Args[1] == "db" {
		if err := cli.Run(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "CLI error: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	var (
		apiHost     = flag.String("api-host", "localhost", "API server host")
		apiPort     = flag.Int("api-port", 8080, "API server port")
		dev         = flag.Bool("dev", false, "Development mode (debug logging, relaxed rate limits, fixed token secret)")
		storagePath = flag.String("storage-path", "", "Path to SQLite audit database (disabled if empty)")
		snapshotDir = flag.String("snapshot-dir", "", "Directory for game snapshots restored on restart (disabled if empty)")
		workers     = flag.Int("workers", 4, "Game queue shards")
		tokenSecret = flag.String("token-secret", "", "Hex encoded identity token secret (random if empty)")
		pidPath     = flag.String("pid", "", "Optional path to write PID file")
		pidLock     = flag.Bool("pid-lock", false, "Lock PID file to allow only one instance (requires -pid)")
		serve       = flag.Bool("serve", false, "Serve the web UI from the API server")
	)
	flag.Parse()

	logger, err := newLogger(*dev)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(logger, options{
		apiAddr:     fmt.Sprintf("%s:%d", *apiHost, *apiPort),
		dev:         *dev,
		storagePath: *storagePath,
		snapshotDir: *snapshotDir,
		workers:     *workers,
		tokenSecret: *tokenSecret,
		pidPath:     *pidPath,
		pidLock:     *pidLock,
		serve:       *serve,
	}); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

type options struct {
	apiAddr     string
	dev         bool
	storagePath string
	snapshotDir string
	workers     int
	tokenSecret string
	pidPath     string
	pidLock     bool
	serve       bool
}

func newLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run(log *zap.Logger, opts options) error {
	if opts.pidLock && opts.pidPath == "" {
		return fmt.Errorf("-pid-lock requires -pid")
	}
	if opts.pidPath != "" {
		cleanup, err := managePIDFile(opts.pidPath, opts.pidLock)
		if err != nil {
			return fmt.Errorf("pid file: %w", err)
		}
		defer cleanup()
		log.Info("pid file created", zap.String("path", opts.pidPath), zap.Bool("lock", opts.pidLock))
	}

	secret, err := loadSecret(opts.tokenSecret, opts.dev)
	if err != nil {
		return err
	}

	// Audit log (optional)
	var store *storage.Store
	if opts.storagePath != "" {
		store, err = storage.NewStore(opts.storagePath, opts.dev, log)
		if err != nil {
			return fmt.Errorf("storage: %w", err)
		}
		if err := store.InitDB(); err != nil {
			store.Close()
			return fmt.Errorf("storage schema: %w", err)
		}
		log.Info("audit log enabled", zap.String("path", opts.storagePath))
	} else {
		log.Info("audit log disabled (use -storage-path to enable)")
	}

	// Snapshots (optional)
	var snaps *storage.SnapshotStore
	if opts.snapshotDir != "" {
		snaps, err = storage.OpenSnapshotStore(opts.snapshotDir, log)
		if err != nil {
			if store != nil {
				store.Close()
			}
			return fmt.Errorf("snapshots: %w", err)
		}
		log.Info("snapshots enabled", zap.String("dir", opts.snapshotDir))
	}

	// Service owns storage from here on and closes it in Shutdown
	svc := service.New(service.Config{
		TokenSecret: secret,
		Store:       store,
		Snapshots:   snaps,
		Logger:      log,
	})
	if n, err := svc.RestoreGames(); err != nil {
		log.Warn("game restore incomplete", zap.Int("restored", n), zap.Error(err))
	}

	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	go svc.RunCleanupJob(cleanupCtx, service.CleanupJobInterval)

	proc := processor.New(svc, opts.workers, log)
	app := http.NewFiberApp(proc, svc, opts.dev)

	if opts.serve {
		if err := webserver.Register(app); err != nil {
			log.Warn("web UI unavailable", zap.Error(err))
		} else {
			log.Info("web UI enabled", zap.String("url", "http://"+opts.apiAddr+"/"))
		}
	}

	listenErr := make(chan error, 1)
	go func() {
		log.Info("API server starting",
			zap.String("addr", opts.apiAddr),
			zap.Bool("dev", opts.dev),
			zap.Int("workers", opts.workers))
		listenErr <- app.Listen(opts.apiAddr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-quit:
		log.Info("shutting down", zap.Stringer("signal", sig))
	case err := <-listenErr:
		runErr = fmt.Errorf("listen: %w", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Warn("server forced to shut down", zap.Error(err))
	}
	if err := proc.Close(); err != nil {
		log.Warn("processor close", zap.Error(err))
	}
	cleanupCancel()
	if err := svc.Shutdown(gracefulShutdownTimeout); err != nil {
		log.Warn("service shutdown", zap.Error(err))
	}

	log.Info("server exited")
	return runErr
}

// loadSecret decodes the configured secret, or picks one. A random secret
// invalidates every issued identity on restart.
func loadSecret(hexSecret string, dev bool) ([]byte, error) {
	switch {
	case hexSecret != "":
		secret, err := hex.DecodeString(hexSecret)
		if err != nil {
			return nil, fmt.Errorf("-token-secret: %w", err)
		}
		if len(secret) < 32 {
			return nil, fmt.Errorf("-token-secret must decode to at least 32 bytes")
		}
		return secret, nil
	case dev:
		return []byte(devTokenSecret), nil
	default:
		secret := make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("generate token secret: %w", err)
		}
		return secret, nil
	}
}
