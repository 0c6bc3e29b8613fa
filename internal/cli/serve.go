package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/shiftboard/internal/app"
	"github.com/spec-kit/shiftboard/internal/persistence"
	"github.com/spec-kit/shiftboard/internal/worker"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadRuntime()
		if err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		store, closeStore, err := persistence.OpenStore(ctx, cfg, logger)
		if err != nil {
			logger.Error("failed to open store", zap.String("driver", cfg.Store.Driver), zap.Error(err))
			return err
		}
		defer closeStore()

		svc, err := app.New(ctx, cfg, store, logger)
		if err != nil {
			logger.Error("failed to build app", zap.Error(err))
			return err
		}
		if err := worker.StartSessionSweeper(ctx, svc.Schedules, cfg.Editor.SweepSchedule, cfg.Editor.SessionTTL(), logger); err != nil {
			return err
		}

		errCh := make(chan error, 1)
		go func() {
			logger.Info("listening", zap.String("addr", cfg.App.Addr()), zap.String("version", cfg.App.Version))
			errCh <- svc.Fiber.Listen(cfg.App.Addr())
		}()

		select {
		case err := <-errCh:
			logger.Error("fiber listen", zap.Error(err))
			return err
		case <-ctx.Done():
			logger.Info("shutting down")
		}
		return svc.Fiber.ShutdownWithContext(context.Background())
	},
}
