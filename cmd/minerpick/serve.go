package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/0mao0/minerpick/internal/server"
)

func serveCmd() *cobra.Command {
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Start the HTTP server. It blocks until interrupted.

Endpoints:
  GET  /health        health check
  GET  /api/config    upstream settings, with the API key masked
  POST /api/upload    upload a PDF
  POST /api/convert   convert an uploaded PDF
  GET  /results/...   conversion artifacts
  GET  /inputs/...    uploaded PDFs`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("host") {
				cfg.Host = host
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}

			if err := cfg.Ensure(); err != nil {
				return err
			}

			logger := newLogger(os.Stdout, cfg)

			parsers, err := cfg.Parsers(cmd.Context(), logger)
			if err != nil {
				return err
			}

			srv, err := server.New(server.Config{
				Addr: cfg.Addr(),

				InputDir:  cfg.InputDir,
				OutputDir: cfg.OutputDir,
				StaticDir: cfg.StaticDir,

				DefaultProvider: cfg.DefaultProvider,

				MineruAPIURL: cfg.MineruAPIURL,
				MineruAPIKey: cfg.MineruAPIKey,

				Parsers: parsers,
				Logger:  logger,
			})
			if err != nil {
				return err
			}

			return srv.Start(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "host to bind to (default from config)")
	cmd.Flags().IntVar(&port, "port", 0, "port to listen on (default from config)")

	return cmd
}
