package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/momster-match/internal/httpserver"
	"github.com/spigell/momster-match/internal/logger"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the matching API over HTTP",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 0, "port to listen on (overrides server.port and PORT)")
	viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
}

func serve() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the momster-match server", zap.String("version", version))

	sel, err := newSelector(ctx, config.Ranking, logger)
	if err != nil {
		logger.Fatal("building the selector", zap.Error(err))
	}

	srv, err := httpserver.New(httpserver.Config{
		CandidateLimit:   config.Server.CandidateLimit,
		ExcludedProfiles: config.Filters.ExcludedProfiles,
		RateLimit:        config.Server.RateLimit,
	}, sel, logger)
	if err != nil {
		logger.Fatal("building the server", zap.Error(err))
	}

	st, err := newStore(config.Store, logger)
	switch {
	case err != nil:
		logger.Fatal("building the profile store", zap.Error(err))
	case st == nil:
		logger.Warn("profile store is not configured, store backed routes are disabled")
	default:
		srv.Store = st
	}

	m, err := newMailer(ctx, config.Mailer, logger)
	switch {
	case err != nil:
		logger.Fatal("building the mailer", zap.Error(err))
	case m == nil:
		logger.Warn("mailer is not configured, marketplace confirmations are disabled")
	default:
		srv.Mailer = m
	}

	httpSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", config.Server.Port),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", httpSrv.Addr))
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server stopped", zap.Error(err))
		}
	case <-ctx.Done():
		logger.Info("shutting down", zap.String("reason", "signal received"))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
