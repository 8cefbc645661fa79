package app

import (
	"context"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/addressbook/internal/config"
	"github.com/MrSnakeDoc/addressbook/internal/contacts"
	"github.com/MrSnakeDoc/addressbook/internal/httpserver"
	"github.com/MrSnakeDoc/addressbook/internal/httpserver/deps"
	"github.com/MrSnakeDoc/addressbook/internal/logger"
	"github.com/MrSnakeDoc/addressbook/internal/scheduler"
	"github.com/MrSnakeDoc/addressbook/internal/version"
)

// httpServer is the part of *httpserver.Server that Run drives.
type httpServer interface {
	Start() error
	Stop(ctx context.Context) error
}

type App struct {
	cfg      *config.Config
	logger   logger.Logger
	server   httpServer
	backend  *Backend
	contacts *contacts.Store
	reloader *scheduler.SeedReloader
	backup   *scheduler.BackupWriter
}

// New opens storage and wires the HTTP server and background jobs.
func New(ctx context.Context, cfg *config.Config, loggerClient logger.Logger) (*App, error) {
	st, backend, err := OpenContacts(ctx, cfg, loggerClient)
	if err != nil {
		return nil, fmt.Errorf("failed to open contacts: %w", err)
	}
	loggerClient.Info("contact store ready",
		logger.String("backend", backend.Name),
		logger.Int("contacts", st.Count()))

	// Initialize seed reloader (if a seed file is configured)
	var reloader *scheduler.SeedReloader
	var reloadTrigger chan struct{}
	if cfg.SeedFile != "" {
		loggerClient.Info("seed file configured, initializing seed reloader",
			logger.String("file", cfg.SeedFile))
		reloadTrigger = make(chan struct{}, 1)
		reloader = scheduler.NewSeedReloader(
			cfg.SeedFile,
			st,
			backend.KV,
			scheduler.SeedLedgerKey(cfg.StorageKey),
			loggerClient,
			cfg.ReloadInterval,
			reloadTrigger,
		)
	} else {
		loggerClient.Info("seed file not configured, seeding disabled")
	}

	// Initialize backup writer (if a backup file is configured)
	var backup *scheduler.BackupWriter
	if cfg.BackupFile != "" {
		backup = scheduler.NewBackupWriter(st, loggerClient, cfg.BackupFile, cfg.BackupInterval)
	}

	// Dependencies passed to routes (extend as needed).
	d := deps.Deps{
		Logger:         loggerClient,
		StartTime:      time.Now(),
		Version:        version.Version,
		Commit:         version.Commit,
		BuildDate:      version.BuildDate,
		GoVersion:      version.GoVersion,
		TimeNow:        time.Now,
		AllowedHosts:   cfg.AllowedHosts,
		AllowedCIDRS:   cfg.AllowedCIDRS,
		AllowedOrigins: cfg.AllowedOrigins,
		TrustProxy:     cfg.TrustProxy,
		Contacts:       st,
		StorageBackend: backend.Name,
		SeedFile:       cfg.SeedFile,
		BackupFile:     cfg.BackupFile,
		MaxImportBytes: cfg.MaxImportBytes,
		ImportLimit: deps.ImportRateLimit{
			Burst:     cfg.ImportBurst,
			PerMinute: cfg.ImportRefillPerMn,
		},
		ReloadTrigger: reloadTrigger,
	}

	return &App{
		cfg:      cfg,
		logger:   loggerClient,
		server:   httpserver.New(cfg, loggerClient, d),
		backend:  backend,
		contacts: st,
		reloader: reloader,
		backup:   backup,
	}, nil
}

// Run serves until ctx is cancelled, then shuts everything down: the HTTP
// server drains first, then the background jobs stop, then the final backup
// is written, so no mutation can land after it.
func (a *App) Run(ctx context.Context) error {
	a.logger.Infof("🚀 Starting addressbook v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("addressbook %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	defer a.closeBackend()

	// Start seed reloader (merges the seed file and keeps watching for triggers)
	if a.reloader != nil {
		if err := a.reloader.Start(ctx); err != nil {
			return fmt.Errorf("failed to start seed reloader: %w", err)
		}
		a.logger.Info("seed reloader started",
			logger.Duration("interval", a.cfg.ReloadInterval))
	}

	// Start backup writer
	if a.backup != nil {
		if err := a.backup.Start(ctx); err != nil {
			if a.reloader != nil {
				a.reloader.Stop()
			}
			return fmt.Errorf("failed to start backup writer: %w", err)
		}
		a.logger.Info("backup writer started",
			logger.String("file", a.cfg.BackupFile),
			logger.Duration("interval", a.cfg.BackupInterval))
	}

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
		if err := a.server.Stop(shutdownCtx); err != nil {
			runErr = fmt.Errorf("failed to stop server: %w", err)
		}
		cancel()
	case runErr = <-errCh:
		a.logger.Error("http server failed, shutting down", logger.Error(runErr))
	}

	a.stopJobs()
	if runErr != nil {
		return runErr
	}

	a.logger.Info("✅ addressbook stopped cleanly")
	return nil
}

// stopJobs stops the background jobs and writes the last backup.
func (a *App) stopJobs() {
	if a.reloader != nil {
		a.reloader.Stop()
	}
	if a.backup != nil {
		a.backup.Stop()
		if _, err := a.backup.Backup(context.Background()); err != nil {
			a.logger.Warn("final backup failed", logger.Error(err))
		}
	}
}

func (a *App) closeBackend() {
	if err := a.backend.Close(); err != nil {
		a.logger.Warnf("failed to close %s backend: %v", a.backend.Name, err)
		return
	}
	a.logger.Info("✅ storage closed cleanly", logger.String("backend", a.backend.Name))
}
