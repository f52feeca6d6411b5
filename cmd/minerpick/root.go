package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/0mao0/minerpick/internal/config"
)

var (
	cfgFile      string
	outputFormat string
)

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "minerpick",
		Short: "Convert PDFs into markdown with a click-to-highlight page index",
		Long: `minerpick converts a PDF into markdown plus a content list that maps
every markdown block back to its region on the page, so a viewer can
highlight the source of any paragraph, heading or table.

Layout extraction is delegated to a provider (a MinerU server, the local
text extractor or Gemini); table cells can be enriched by a detector
sidecar.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./minerpick.yaml or ~/.minerpick/minerpick.yaml)")
	root.PersistentFlags().StringVarP(&outputFormat, "output", "o", "json", "output format: json or yaml")

	root.AddCommand(serveCmd())
	root.AddCommand(convertCmd())
	root.AddCommand(alignCmd())
	root.AddCommand(initCmd())
	root.AddCommand(versionCmd())

	return root
}

func loadConfig() (*config.Config, error) {
	return config.Load(cfgFile)
}

func newLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: cfg.Level(),
	}))
}
