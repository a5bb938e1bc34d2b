package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"topmovies/internal/grpcserver"
	"topmovies/pkg/models"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show the ranked list, best first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *grpcserver.Client) error {
				rpcCtx, cancel := context.WithTimeout(cmd.Context(), rpcTimeout)
				defer cancel()

				resp, err := client.ListRanked(rpcCtx)
				if err != nil {
					return fmt.Errorf("list movies: %w", err)
				}
				if len(resp.Items) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No movies yet")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), movieTable(resp.Items))
				return nil
			})
		},
	}
}

func newRateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "rate <id> <rating> <review>",
		Short: "Rate and review a movie",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			review := strings.Join(args[2:], " ")

			return ctx.withClient(func(client *grpcserver.Client) error {
				rpcCtx, cancel := context.WithTimeout(cmd.Context(), rpcTimeout)
				defer cancel()

				resp, err := client.RateMovie(rpcCtx, id, args[1], review)
				if err != nil {
					return fmt.Errorf("rate movie %d: %w", id, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Rated %s %s\n", resp.Movie.Title, formatRating(resp.Movie.Rating))
				return nil
			})
		},
	}
}

func newDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a movie from the list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return ctx.withClient(func(client *grpcserver.Client) error {
				rpcCtx, cancel := context.WithTimeout(cmd.Context(), rpcTimeout)
				defer cancel()

				if _, err := client.DeleteMovie(rpcCtx, id); err != nil {
					return fmt.Errorf("delete movie %d: %w", id, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted movie %d\n", id)
				return nil
			})
		},
	}
}

func movieTable(items []models.RankedMovie) string {
	rows := make([][]string, 0, len(items))
	for _, m := range items {
		review := ""
		if m.Review != nil {
			review = *m.Review
		}
		rows = append(rows, []string{
			strconv.Itoa(m.Ranking),
			strconv.FormatInt(m.ID, 10),
			m.Title,
			strconv.Itoa(m.Year),
			formatRating(m.Rating),
			review,
		})
	}
	return renderTable(
		[]string{"Rank", "ID", "Title", "Year", "Rating", "Review"},
		rows,
		[]columnAlignment{alignRight, alignRight, alignLeft, alignRight, alignRight, alignLeft},
	)
}

func formatRating(r *float64) string {
	if r == nil {
		return "-"
	}
	return strconv.FormatFloat(*r, 'f', -1, 64)
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid movie id %q", raw)
	}
	return id, nil
}
