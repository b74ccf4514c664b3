// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// budgetd serves a personal budget ledger over HTTP, backed by a single
// JSON file that is rewritten after every mutation.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/budgetd/internal/config"
	"github.com/AleutianAI/budgetd/internal/ledger"
	"github.com/AleutianAI/budgetd/internal/server"
	"github.com/AleutianAI/budgetd/internal/store"
	"github.com/AleutianAI/budgetd/pkg/logging"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:          "budgetd",
	Short:        "Personal budget ledger service",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "budgetd.yaml", "path to the config file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("budgetd: %v", err)
	}
}

func run() error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := logging.New(logging.Config{
		Level:   cfg.Logging.Level,
		Service: "budgetd",
		JSON:    cfg.Logging.JSON,
	})
	defer logger.Close()
	slog.SetDefault(logger.Slog())

	fileStore := store.NewFileStore(cfg.Storage.DataFile)
	state := fileStore.Load()
	led := ledger.New(state, fileStore)
	slog.Info("ledger loaded", "data_file", fileStore.Path(), "accounts", len(state))

	router := gin.New()
	router.Use(gin.Recovery())
	server.RegisterRoutes(router, server.NewHandlers(led, server.NewMetrics()))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("budget server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		slog.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		// Every mutation already saved; one more write leaves a clean
		// file even if the last save failed transiently.
		if err := fileStore.Save(led.Snapshot()); err != nil {
			slog.Error("final ledger save failed", "error", err)
		}
		return nil
	})
	return g.Wait()
}
