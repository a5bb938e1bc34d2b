package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"topmovies/internal/grpcserver"
	"topmovies/internal/movies"
	"topmovies/pkg/database"
	"topmovies/pkg/utils"
)

const (
	defaultGRPCTarget = "localhost:9090"
	defaultWSURL      = "ws://localhost:8080/ws"
	rpcTimeout        = 10 * time.Second
)

type commandContext struct {
	grpcTarget string
	wsURL      string
	dbPath     string
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "moviectl",
		Short:         "Manage the top movies list",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return utils.LoadDotEnv()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&ctx.grpcTarget, "grpc", envOr("MOVIECTL_GRPC_TARGET", defaultGRPCTarget), "MovieService address")
	rootCmd.PersistentFlags().StringVar(&ctx.wsURL, "ws", envOr("MOVIECTL_WS_URL", defaultWSURL), "Event feed WebSocket URL")
	rootCmd.PersistentFlags().StringVar(&ctx.dbPath, "db", "", "SQLite path for export/import (defaults to TOPMOVIES_DB_PATH)")

	rootCmd.AddCommand(newListCommand(ctx))
	rootCmd.AddCommand(newRateCommand(ctx))
	rootCmd.AddCommand(newDeleteCommand(ctx))
	rootCmd.AddCommand(newExportCommand(ctx))
	rootCmd.AddCommand(newImportCommand(ctx))
	rootCmd.AddCommand(newWatchCommand(ctx))

	return rootCmd
}

func (c *commandContext) withClient(fn func(*grpcserver.Client) error) error {
	conn, err := grpc.NewClient(c.grpcTarget, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return fmt.Errorf("connect to %s: %w", c.grpcTarget, err)
	}
	defer conn.Close()
	return fn(grpcserver.NewClient(conn))
}

// withRepo opens the database directly; the web server does not need to be running.
func (c *commandContext) withRepo(fn func(*movies.Repo) error) error {
	cfg := database.DefaultConfig()
	if p := strings.TrimSpace(c.dbPath); p != "" {
		cfg.Path = p
	}
	db, err := database.Open(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("db migrate failed: %w", err)
	}
	return fn(movies.NewRepo(db))
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
