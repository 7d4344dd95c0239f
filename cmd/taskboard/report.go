package main

import (
	"fmt"
	"os"
	"path/filepath"

	"taskboard/internal/fsutil"
	"taskboard/internal/reports"

	"github.com/spf13/cobra"
)

func (c *cli) reportCmd() *cobra.Command {
	var format, output string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarise every project as Markdown or JSON",
		Args:  cobra.NoArgs,
		RunE: c.withBoard(func(cmd *cobra.Command, args []string) error {
			if format != "markdown" && format != "json" {
				return fmt.Errorf("unknown format %q (want markdown or json)", format)
			}

			report, err := reports.NewGenerator(c.store, c.board.OverduePolicy()).Generate()
			if err != nil {
				return fmt.Errorf("generating report: %w", err)
			}

			var data []byte
			if format == "json" {
				data, err = reports.FormatJSON(report)
				if err != nil {
					return fmt.Errorf("formatting JSON: %w", err)
				}
				data = append(data, '\n')
			} else {
				data = []byte(reports.FormatMarkdown(report))
			}

			if output == "" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			if dir := filepath.Dir(output); dir != "." {
				if err := os.MkdirAll(dir, 0700); err != nil {
					return fmt.Errorf("creating output directory: %w", err)
				}
			}
			if err := fsutil.WriteFileAtomic(output, data, 0600); err != nil {
				return fmt.Errorf("writing report: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", output)
			return nil
		}),
	}
	cmd.Flags().StringVarP(&format, "format", "f", "markdown", "output format: markdown or json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	return cmd
}
