package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/0mao0/minerpick/internal/convert"
	"github.com/0mao0/minerpick/internal/parser"
)

func convertCmd() *cobra.Command {
	var out string
	var provider string
	var mineruURL string
	var mineruKey string

	cmd := &cobra.Command{
		Use:   "convert <pdf>",
		Short: "Convert a PDF and write its artifacts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pdfPath := args[0]

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			if provider == "" {
				provider = cfg.DefaultProvider
			}

			if out == "" {
				stem := strings.TrimSuffix(filepath.Base(pdfPath), filepath.Ext(pdfPath))
				out = filepath.Join(cfg.OutputDir, convert.Slugify(stem))
			}

			logger := newLogger(os.Stderr, cfg)

			parsers, err := cfg.Parsers(cmd.Context(), logger)
			if err != nil {
				return err
			}

			p, err := parsers.Get(strings.ToLower(provider))
			if err != nil {
				return err
			}

			res, err := p.Parse(cmd.Context(), pdfPath, out, &parser.Options{
				APIURL: mineruURL,
				APIKey: mineruKey,
			})
			if err != nil {
				return err
			}

			return writeOutput(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "output directory (default: <output_dir>/<pdf name>)")
	cmd.Flags().StringVar(&provider, "provider", "", "layout provider: mineru, pdftext or gemini (default from config)")
	cmd.Flags().StringVar(&mineruURL, "mineru-url", "", "override the MinerU server URL")
	cmd.Flags().StringVar(&mineruKey, "mineru-key", "", "override the MinerU API key")

	return cmd
}
