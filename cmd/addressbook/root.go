package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/addressbook/internal/app"
	"github.com/MrSnakeDoc/addressbook/internal/config"
	"github.com/MrSnakeDoc/addressbook/internal/contacts"
	"github.com/MrSnakeDoc/addressbook/internal/logger"
	"github.com/MrSnakeDoc/addressbook/internal/utils"
	"github.com/MrSnakeDoc/addressbook/internal/version"
)

// globalFlags override the ADDRESSBOOK_* environment when set.
type globalFlags struct {
	storage    string
	dataDir    string
	sqlitePath string
	key        string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:           "addressbook",
		Short:         "Address book with search, bookmarks, import and export",
		Version:       fmt.Sprintf("%s (commit=%s, built=%s)", version.Version, version.Commit, version.BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&g.storage, "storage", "", "storage backend: file, redis, sqlite or memory (env ADDRESSBOOK_STORAGE)")
	pf.StringVar(&g.dataDir, "data-dir", "", "directory of the file backend (env ADDRESSBOOK_DATA_DIR)")
	pf.StringVar(&g.sqlitePath, "sqlite-path", "", "database file of the sqlite backend (env ADDRESSBOOK_SQLITE_PATH)")
	pf.StringVar(&g.key, "key", "", "storage key holding the collection (env ADDRESSBOOK_STORAGE_KEY)")
	pf.StringVar(&g.logLevel, "log-level", "", "debug, info, warn or error (env ADDRESSBOOK_LOG_LEVEL)")

	root.AddCommand(
		newServeCmd(g),
		newListCmd(g),
		newAddCmd(g),
		newEditCmd(g),
		newDeleteCmd(g),
		newBookmarkCmd(g),
		newImportCmd(g),
		newExportCmd(g),
		newTemplateCmd(),
		newMigrateCmd(g),
	)
	return root
}

// loadConfig reads the environment and applies flag overrides.
func (g *globalFlags) loadConfig() *config.Config {
	// config.Load validates backend-specific variables, so the backend
	// choice must be in the environment before it runs
	if g.storage != "" {
		_ = os.Setenv("ADDRESSBOOK_STORAGE", g.storage)
	}

	cfg := config.Load()
	if g.dataDir != "" {
		cfg.DataDir = g.dataDir
		if _, set := os.LookupEnv("ADDRESSBOOK_SQLITE_PATH"); !set {
			cfg.SQLitePath = filepath.Join(g.dataDir, "addressbook.db")
		}
	}
	if g.sqlitePath != "" {
		cfg.SQLitePath = g.sqlitePath
	}
	if g.key != "" {
		cfg.StorageKey = g.key
	}
	if g.logLevel != "" {
		cfg.LogLevel = g.logLevel
	}
	return cfg
}

// cliLogger is quiet unless a level was asked for; command output goes to stdout.
func (g *globalFlags) cliLogger(cfg *config.Config) logger.Logger {
	if g.logLevel == "" {
		return logger.New("error", cfg.PrettyLog)
	}
	return logger.New(cfg.LogLevel, cfg.PrettyLog)
}

// withStore opens the configured store, runs fn and closes the backend.
func (g *globalFlags) withStore(cmd *cobra.Command, fn func(ctx context.Context, st *contacts.Store) error) error {
	cfg := g.loadConfig()
	log := g.cliLogger(cfg)
	defer func() { _ = log.Sync() }()

	ctx := cmd.Context()
	st, backend, err := app.OpenContacts(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer utils.CloseLogged(log, backend.Name+" backend", backend)

	return fn(ctx, st)
}
