package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/addressbook/internal/app"
	"github.com/MrSnakeDoc/addressbook/internal/config"
	"github.com/MrSnakeDoc/addressbook/internal/contacts"
	"github.com/MrSnakeDoc/addressbook/internal/export"
	"github.com/MrSnakeDoc/addressbook/internal/scheduler"
	"github.com/MrSnakeDoc/addressbook/internal/store/file"
	"github.com/MrSnakeDoc/addressbook/internal/utils"
)

func newImportCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Import a JSON array of contacts (- reads stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("failed to open %s: %w", args[0], err)
				}
				defer func() { _ = f.Close() }()
				r = f
			}

			return g.withStore(cmd, func(ctx context.Context, st *contacts.Store) error {
				res, err := st.ImportJSON(ctx, r)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				_, _ = fmt.Fprintf(out, "imported %d, skipped %d, invalid %d\n", res.Imported, res.Skipped, res.Invalid)
				if len(res.Conflicts) > 0 {
					_, _ = fmt.Fprintf(out, "conflicting ids: %s\n", strings.Join(res.Conflicts, ", "))
				}
				return nil
			})
		},
	}
}

func newExportCmd(g *globalFlags) *cobra.Command {
	var format, output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every contact as xlsx, csv or json",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == "" && output != "" && output != "-" {
				format = strings.TrimPrefix(filepath.Ext(output), ".")
			}
			w, err := export.ByFormat(format)
			if err != nil {
				return err
			}
			if output == "" {
				output = w.FileName()
			}

			return g.withStore(cmd, func(_ context.Context, st *contacts.Store) error {
				var buf bytes.Buffer
				if err := w.Write(&buf, st); err != nil {
					return fmt.Errorf("failed to render export: %w", err)
				}
				return writeOutput(cmd, output, buf.Bytes())
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "xlsx, csv or json (default from the output extension, else xlsx)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "destination file, - for stdout (default contacts.<format>)")
	return cmd
}

func newTemplateCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "template",
		Short: "Write a sample import file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var buf bytes.Buffer
			if err := export.WriteTemplate(&buf, time.Now()); err != nil {
				return err
			}
			return writeOutput(cmd, output, buf.Bytes())
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "-", "destination file, - for stdout")
	return cmd
}

// writeOutput sends data to stdout for "-" and atomically to path otherwise.
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := file.WriteAtomic(path, data); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%d bytes)\n", path, len(data))
	return nil
}

func newMigrateCmd(g *globalFlags) *cobra.Command {
	var (
		target    string
		overwrite bool
	)

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Copy the collection from the configured backend to another one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := g.loadConfig()
			if target == cfg.Storage {
				return fmt.Errorf("source and target backend are both %q", target)
			}
			if target == config.StorageRedis {
				cfg.LoadRedis()
			}
			log := g.cliLogger(cfg)
			defer func() { _ = log.Sync() }()

			ctx := cmd.Context()
			src, err := app.OpenBackend(ctx, cfg, cfg.Storage, log)
			if err != nil {
				return err
			}
			defer utils.CloseLogged(log, src.Name+" backend", src)

			dst, err := app.OpenBackend(ctx, cfg, target, log)
			if err != nil {
				return err
			}
			defer utils.CloseLogged(log, dst.Name+" backend", dst)

			n, err := scheduler.NewStoreSyncer(src.KV, dst.KV, cfg.StorageKey, log).Sync(ctx, overwrite)
			if err != nil {
				return err
			}
			// carry the applied seed ids along so deleted seed entries stay deleted
			if _, err := scheduler.NewStoreSyncer(src.KV, dst.KV, scheduler.SeedLedgerKey(cfg.StorageKey), log).Sync(ctx, true); err != nil {
				return fmt.Errorf("failed to copy seed ledger: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "copied %d contacts from %s to %s\n", n, src.Name, dst.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&target, "to", "", "target backend: file, redis, sqlite or memory")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "replace contacts already stored in the target")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}
