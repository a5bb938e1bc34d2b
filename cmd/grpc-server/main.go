package main

import (
	"log/slog"
	"net"
	"os"

	"google.golang.org/grpc"

	"topmovies/internal/grpcserver"
	"topmovies/internal/movies"
	"topmovies/pkg/database"
	"topmovies/pkg/logger"
	"topmovies/pkg/utils"
)

// Standalone MovieService without the HTML app. Changes made here are not
// broadcast to /ws subscribers of a separate web-server process.
func main() {
	if err := utils.LoadDotEnv(); err != nil {
		slog.Error("load .env failed", "error", err)
		os.Exit(1)
	}
	appCfg := utils.LoadAppConfig()
	logger.Init(appCfg.Env, appCfg.LogLevel)

	cfg := database.DefaultConfig()
	db := database.MustOpen(cfg)
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		slog.Error("db migrate failed", "error", err)
		os.Exit(1)
	}

	listener, err := net.Listen("tcp", appCfg.GRPCAddr)
	if err != nil {
		slog.Error("grpc listen failed", "addr", appCfg.GRPCAddr, "error", err)
		os.Exit(1)
	}

	svc := grpcserver.NewServer(movies.NewRepo(db), nil)

	grpcServer := grpc.NewServer()
	grpcserver.RegisterMovieServiceServer(grpcServer, svc)

	slog.Info("gRPC server listening", "addr", appCfg.GRPCAddr)
	if err := grpcServer.Serve(listener); err != nil {
		slog.Error("grpc server stopped", "error", err)
		os.Exit(1)
	}
}
