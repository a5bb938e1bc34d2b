package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"topmovies/internal/movies"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every movie to a CSV file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRepo(func(repo *movies.Repo) error {
				if dir := filepath.Dir(out); dir != "." {
					if err := os.MkdirAll(dir, 0o755); err != nil {
						return err
					}
				}
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()

				n, err := exportCSV(cmd.Context(), repo, f)
				if err != nil {
					return fmt.Errorf("export csv failed: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d movies to %s\n", n, out)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&out, "out", "movies.csv", "Output CSV path")
	return cmd
}

func newImportCommand(ctx *commandContext) *cobra.Command {
	var in string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Insert or replace movies from a CSV file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRepo(func(repo *movies.Repo) error {
				f, err := os.Open(in)
				if err != nil {
					return err
				}
				defer f.Close()

				n, err := importCSV(cmd.Context(), repo, f)
				if err != nil {
					return fmt.Errorf("import csv failed after %d rows: %w", n, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d movies from %s\n", n, in)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&in, "in", "movies.csv", "Input CSV path")
	return cmd
}
