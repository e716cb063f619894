package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/realworks/configserver/pkg/logging"
	"github.com/realworks/configserver/server/internal/api"
	"github.com/realworks/configserver/server/internal/config"
	"github.com/realworks/configserver/server/internal/store"
)

func main() {
	configPath := flag.String("config", "", "optional settings file (YAML); PORT and CONFIGMAP_FILE_PATH override it")
	logLevel := flag.String("log-level", "info", "log level: debug|info|warn|error")
	flag.Parse()

	logging.Setup(os.Stdout, *logLevel)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	slog.Info("config loaded",
		"port", cfg.Server.Port,
		"configmap_file_path", cfg.Server.ConfigMapFilePath,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	st := store.New(cfg.Server.ConfigMapFilePath)
	srv := api.NewServer(cfg.Server, api.New(st))

	lis, err := srv.Listen()
	if err != nil {
		slog.Error("failed to start http server", "err", err)
		os.Exit(1)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("serving at port", "port", cfg.Server.Port)
		return srv.Serve(ctx, lis)
	})

	if err := g.Wait(); err != nil {
		slog.Error("http server stopped", "err", err)
		os.Exit(1)
	}
	slog.Info("configserver shut down")
}
