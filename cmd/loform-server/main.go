package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/goliatone/go-loform/internal/app"
	"github.com/goliatone/go-loform/internal/config"
	"github.com/goliatone/go-loform/internal/server"
)

func main() {
	flags := pflag.NewFlagSet("loform-server", pflag.ExitOnError)
	config.RegisterFlags(flags)
	_ = flags.Parse(os.Args[1:])

	cfg, err := config.Load(flags)
	if err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(2)
	}
	logger := config.NewLogger(os.Stdout, cfg.General)
	slog.SetDefault(logger)
	slog.Info("loform server is initializing")
	slog.Debug("config loaded", "data", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		slog.Error("failed to assemble service", slog.Any("error", err))
		os.Exit(1)
	}
	if err := a.Start(ctx); err != nil {
		slog.Error("failed to start background work", slog.Any("error", err))
		os.Exit(1)
	}
	defer a.Stop()

	srv := server.New(a.Service,
		server.WithLogger(logger),
		server.WithMetricsHandler(a.Metrics.Handler()),
		server.WithAllowedOrigins(cfg.Server.AllowedOrigins...),
	)
	if err := srv.Run(ctx, cfg.Server.Addr); err != nil {
		slog.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}
	slog.Info("good bye")
}
