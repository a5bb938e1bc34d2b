package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"topmovies/internal/grpcserver"
	"topmovies/internal/movies"
	synchub "topmovies/internal/sync"
	"topmovies/internal/telemetry"
	"topmovies/internal/tmdb"
	"topmovies/pkg/database"
	"topmovies/pkg/logger"
	"topmovies/pkg/utils"
)

func main() {
	if err := utils.LoadDotEnv(); err != nil {
		slog.Error("load .env failed", "error", err)
		os.Exit(1)
	}
	appCfg := utils.LoadAppConfig()
	logger.Init(appCfg.Env, appCfg.LogLevel)

	if err := appCfg.Validate(); err != nil {
		slog.Error("config rejected", "error", err)
		os.Exit(1)
	}

	shutdownTracing, err := telemetry.Setup(context.Background(), appCfg.OTLPEndpoint, "topmovies-web")
	if err != nil {
		slog.Error("tracing setup failed", "error", err)
		os.Exit(1)
	}

	dbCfg := database.DefaultConfig()
	db := database.MustOpen(dbCfg)
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		slog.Error("db migrate failed", "error", err)
		os.Exit(1)
	}

	metadata, err := tmdb.New(appCfg.TMDB.APIKey, appCfg.TMDB.BaseURL, appCfg.TMDB.Language,
		tmdb.WithHTTPClient(&http.Client{
			Timeout:   appCfg.TMDB.Timeout,
			Transport: telemetry.Transport(http.DefaultTransport),
		}),
		tmdb.WithImageBaseURL(appCfg.TMDB.ImageBaseURL),
	)
	if err != nil {
		slog.Error("tmdb client failed", "error", err)
		os.Exit(1)
	}

	repo := movies.NewRepo(db)
	hub := synchub.NewHub()
	flash := movies.NewCookieFlasher([]byte(appCfg.SessionSecret), appCfg.IsProduction())

	router, err := newRouter(routerDeps{
		DB:        db,
		DBPath:    dbCfg.Path,
		Repo:      repo,
		Metadata:  metadata,
		Hub:       hub,
		Flash:     flash,
		WSOrigins: appCfg.WSOrigins,
		Release:   appCfg.IsProduction(),
	})
	if err != nil {
		slog.Error("router setup failed", "error", err)
		os.Exit(1)
	}

	httpSrv := &http.Server{
		Addr:              appCfg.HTTPAddr,
		Handler:           telemetry.Handler(router, "topmovies-web"),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// moviectl talks to the same process so its changes reach /ws subscribers
	grpcSrv := grpc.NewServer()
	grpcserver.RegisterMovieServiceServer(grpcSrv, grpcserver.NewServer(repo, hub))
	grpcLis, err := net.Listen("tcp", appCfg.GRPCAddr)
	if err != nil {
		slog.Error("grpc listen failed", "addr", appCfg.GRPCAddr, "error", err)
		os.Exit(1)
	}

	errCh := make(chan error, 2)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		slog.Info("gRPC server listening", "addr", appCfg.GRPCAddr)
		if err := grpcSrv.Serve(grpcLis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errCh <- err
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		slog.Info("HTTP server listening", "addr", appCfg.HTTPAddr, "db", dbCfg.Path)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal received", "signal", sig.String())
	case err := <-errCh:
		slog.Error("server error", "error", err)
	}

	slog.Info("shutting down servers")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http shutdown error", "error", err)
	}
	grpcSrv.GracefulStop()
	hub.Close()

	wg.Wait()
	if err := shutdownTracing(shutdownCtx); err != nil {
		slog.Error("tracing shutdown error", "error", err)
	}
	slog.Info("servers stopped")
}
