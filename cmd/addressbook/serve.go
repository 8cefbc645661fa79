package main

import (
	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/addressbook/internal/app"
	"github.com/MrSnakeDoc/addressbook/internal/logger"
)

func newServeCmd(g *globalFlags) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := g.loadConfig()
			if listen != "" {
				cfg.ListenPort = listen
			}

			log := logger.New(cfg.LogLevel, cfg.PrettyLog)
			defer func() { _ = log.Sync() }()

			a, err := app.New(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			return a.Run(cmd.Context())
		},
	}
	cmd.Flags().StringVarP(&listen, "listen", "l", "", "listen address, e.g. :8080 (env ADDRESSBOOK_LISTEN_PORT)")
	return cmd
}
