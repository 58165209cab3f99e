package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/EasterCompany/dex-runway-service/config"
	"github.com/EasterCompany/dex-runway-service/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const ServiceName = "dex-runway-service"

// Set at build time using -ldflags.
var (
	version   string
	branch    string
	commit    string
	buildDate string
	buildHash string
)

var configPath string

func main() {
	utils.SetVersion(version, branch, commit, buildDate, buildHash)

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           ServiceName,
		Short:         "Dexter Runway Service",
		Long:          "Turns a personal goal and an inspiration image into a four stage roadmap paired with generated garment images.",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runServe,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "path to config file")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the HTTP service (default)",
			RunE:  runServe,
		},
		&cobra.Command{
			Use:   "version",
			Short: "Display version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintln(cmd.OutOrStdout(), utils.GetVersion().Str)
			},
		},
		newListCmd(),
	)
	return root
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := utils.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	logger = logger.With(zap.String("service", ServiceName))

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	svc, err := NewService(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize service", zap.Error(err))
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.Warn("Failed to close store", zap.Error(err))
		}
	}()

	go func() {
		logger.Info("Core logic starting")
		if err := svc.RunCoreLogic(ctx); err != nil {
			logger.Error("Core logic error", zap.Error(err))
			cancel()
		}
		logger.Info("Core logic stopped")
	}()

	srv := svc.httpServer()
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", srv.Addr), zap.String("version", utils.GetVersion().Tag))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	// SIGTERM from systemd or SIGINT from Ctrl+C.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	var runErr error
	select {
	case <-stop:
		logger.Info("Shutting down service")
	case <-ctx.Done():
		logger.Warn("Core logic exited, shutting down")
	case runErr = <-serveErr:
		logger.Error("HTTP server crashed", zap.Error(runErr))
	}

	utils.SetHealthStatus(utils.HealthShuttingDown, "Service is shutting down")
	cancel()

	shutdownCtx, shutdownCancel := shutdownContext(cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP shutdown error", zap.Error(err))
	}

	logger.Info("Service exited cleanly")
	return runErr
}
