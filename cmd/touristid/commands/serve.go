package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"touristid/internal/app"
	"touristid/internal/platform/config"
	"touristid/internal/platform/logger"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the registration and safety HTTP service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			log := logger.New(cfg.Log.Level, cfg.Log.Format)
			if cfg.Session.SigningKey == config.DevSigningKey {
				log.Warn("using the development session signing key; set TOURISTID_SESSION_SIGNING_KEY")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := app.New(ctx, cfg, log)
			if err != nil {
				log.Error("startup failed", "error", err)
				return err
			}
			defer a.Close()

			if err := a.Run(ctx); err != nil && ctx.Err() == nil {
				log.Error("server stopped", "error", err)
				return err
			}
			log.InfoContext(context.WithoutCancel(ctx), "server stopped")
			return nil
		},
	}
}
