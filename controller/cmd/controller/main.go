package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/realworks/configserver/controller/internal/config"
	"github.com/realworks/configserver/controller/internal/rollout"
	"github.com/realworks/configserver/pkg/logging"
)

func main() {
	configPath := flag.String("config", "", "optional settings file (YAML)")
	logLevel := flag.String("log-level", "info", "log level: debug|info|warn|error")
	flag.Parse()

	logging.Setup(os.Stdout, *logLevel)

	slog.Info("rollout-controller starting", "config", *configPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	slog.Info("config loaded",
		"namespace", cfg.Controller.Namespace,
		"workers", cfg.Controller.Workers,
		"resync", cfg.Controller.Resync,
		"used_annotation", cfg.Controller.UsedAnnotation,
		"version_annotation", cfg.Controller.VersionAnnotation,
	)

	client, err := rollout.NewClient(cfg.Controller.Kubeconfig)
	if err != nil {
		slog.Error("failed to build kubernetes client", "err", err)
		os.Exit(1)
	}

	ctrl, err := rollout.NewController(client, cfg.Controller)
	if err != nil {
		slog.Error("failed to build controller", "err", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := ctrl.Run(ctx, cfg.Controller.Workers); err != nil {
		slog.Error("controller stopped", "err", err)
		os.Exit(1)
	}
	slog.Info("rollout-controller shutting down")
}
