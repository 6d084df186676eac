/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/suparena/recipestore"
	"github.com/suparena/recipestore/api"
	"github.com/suparena/recipestore/config"
	"github.com/suparena/recipestore/registry"
)

var (
	configFlag    = flag.String("config", "", "Path to a YAML config file")
	versionFlag   = flag.Bool("version", false, "Show version information")
	vFlag         = flag.Bool("v", false, "Show version information (short)")
	catalogFlag   = flag.Bool("catalog", false, "Print the table catalog as YAML and exit")
	provisionFlag = flag.Bool("provision", false, "Create missing tables and exit")
)

func main() {
	flag.Parse()

	if *versionFlag || *vFlag {
		printVersion(os.Stdout)
		os.Exit(0)
	}

	cfg, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}

	if *catalogFlag {
		if err := printCatalog(os.Stdout, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "catalog: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	logger, err := cfg.Log.NewLogger(os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(2)
	}
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("recipeapi failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	svc, err := recipestore.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}

	if *provisionFlag {
		if err := svc.Provisioner.Provision(ctx); err != nil {
			return err
		}
		logger.Info("tables provisioned", slog.Any("tables", svc.Catalog.TableNames()))
		return nil
	}

	// Provision in the background so /healthz can report progress.
	go svc.Provisioner.EnsureProvisioned(ctx)

	a, err := api.New(svc.Stores, api.WithLogger(logger), api.WithReadiness(svc.Provisioner.Ready))
	if err != nil {
		return err
	}
	return serve(ctx, cfg.HTTP, a.Handler(), logger)
}

func serve(ctx context.Context, cfg config.HTTPConfig, h http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func printVersion(w io.Writer) {
	info := recipestore.GetVersionInfo()
	fmt.Fprintf(w, "recipeapi version %s\n", info.Version)
	fmt.Fprintf(w, "Git commit: %s\n", info.GitCommit)
	fmt.Fprintf(w, "Build date: %s\n", info.BuildDate)
	fmt.Fprintf(w, "Go version: %s\n", info.GoVersion)
}

func printCatalog(w io.Writer, cfg *config.Config) error {
	catalog := registry.DefaultCatalog(recipestore.CatalogOptions(cfg)...)
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(map[string]any{"tables": catalog.Entries()}); err != nil {
		return err
	}
	return enc.Close()
}
