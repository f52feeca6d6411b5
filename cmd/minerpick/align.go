package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/0mao0/minerpick/internal/align"
	"github.com/0mao0/minerpick/internal/convert"
	"github.com/0mao0/minerpick/internal/layout"
	"github.com/0mao0/minerpick/internal/model"
)

type alignResult struct {
	ContentListFile   string      `json:"content_list_file" yaml:"content_list_file"`
	ContentTablesFile string      `json:"content_tables_file" yaml:"content_tables_file"`
	Stats             align.Stats `json:"stats" yaml:"stats"`
}

func alignCmd() *cobra.Command {
	var tablesFile string
	var out string

	cmd := &cobra.Command{
		Use:   "align <content.md> <raw_content_list.json>",
		Short: "Re-run the alignment on saved artifacts",
		Long: `Align a saved markdown file against a saved layout content list and
write content_list.json and content_tables.json, without calling any
upstream service. Handy for checking how threshold changes affect a
document that was converted before.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			markdown, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			raw, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}

			elements, _, err := layout.DecodeContentList(raw)
			if err != nil {
				return err
			}

			tables := map[string]model.TableDefinition{}

			if tablesFile != "" {
				data, err := os.ReadFile(tablesFile)
				if err != nil {
					return err
				}

				tables = layout.DecodeTables(data)
			}

			if out == "" {
				out = filepath.Dir(args[0])
			}

			if err := os.MkdirAll(out, 0o755); err != nil {
				return err
			}

			res := align.Reconcile(string(markdown), layout.DropDiscarded(elements), tables)

			result := alignResult{
				ContentListFile:   filepath.Join(out, convert.ContentListFile),
				ContentTablesFile: filepath.Join(out, convert.ContentTablesFile),
				Stats:             res.Stats,
			}

			if err := convert.WriteContentList(result.ContentListFile, res.Items); err != nil {
				return err
			}

			if err := convert.WriteJSON(result.ContentTablesFile, res.Tables); err != nil {
				return err
			}

			return writeOutput(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVar(&tablesFile, "tables", "", "content_tables.json with detector results")
	cmd.Flags().StringVar(&out, "out", "", "output directory (default: directory of content.md)")

	return cmd
}
