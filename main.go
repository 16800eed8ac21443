package main

import (
	"context"
	"log/slog"
	"os"

	"svarozhits/internal/config"
	"svarozhits/internal/handlers"
	"svarozhits/internal/logger"
	"svarozhits/internal/server"
	"svarozhits/internal/store"
	"svarozhits/internal/web"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	l, err := logger.Setup(cfg.LogLevel)
	if err != nil {
		return err
	}

	ctx := context.Background()

	// Initialize store
	l.Info("connecting to database", "url", store.RedactURL(cfg.DatabaseURL))
	s, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}

	if err := s.Migrate(ctx, l); err != nil {
		s.Close()
		return err
	}

	tmpl, err := web.ParseTemplates()
	if err != nil {
		s.Close()
		return err
	}

	router := handlers.NewRouter(handlers.New(s, tmpl), l)

	srv := server.New(server.Config{
		Addr:            cfg.Addr(),
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, router, l, s)

	ln, err := srv.Listen()
	if err != nil {
		s.Close()
		return err
	}

	signals, stop := server.NotifySignals()
	defer stop()

	return srv.Serve(ctx, ln, signals)
}
