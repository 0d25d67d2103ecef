package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/itchan-dev/threads/frontend/internal/router"
	"github.com/itchan-dev/threads/frontend/internal/setup"
	"github.com/itchan-dev/threads/shared/config"
	"github.com/itchan-dev/threads/shared/logger"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

const (
	defaultPort     = "8081"
	readTimeout     = 5 * time.Second
	writeTimeout    = 10 * time.Second
	shutdownTimeout = 10 * time.Second
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Log.Warn("failed to load .env", "error", err)
	}

	var configFolder, templates, static string
	flag.StringVar(&configFolder, "config_folder", envOr("CONFIG_FOLDER", "backend/config"), "path to folder with configs")
	flag.StringVar(&templates, "templates", envOr("TEMPLATES_PATH", "frontend/templates"), "path to page templates")
	flag.StringVar(&static, "static", envOr("STATIC_PATH", "frontend/static"), "path to static files")
	flag.Parse()

	cfg := config.MustLoad(configFolder)
	logger.Initialize(cfg.Public.LogLevel, cfg.Public.LogJSON)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := setup.SetupDependencies(ctx, cfg, templates, static)
	if err != nil {
		logger.Log.Error("failed to initialize dependencies", "error", err)
		os.Exit(1)
	}

	server := &http.Server{
		Addr:         ":" + envOr("PORT", defaultPort),
		Handler:      router.New(deps),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Log.Info("starting frontend", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Log.Error("frontend stopped with error", "error", err)
		os.Exit(1)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
