package app

import (
	"context"
	"errors"
	"time"

	"p2h.app/configs"
	"p2h.app/configs/configsdatabase"
	"p2h.app/configs/configslog"
	"p2h.app/pkg/notifier"
	"p2h.app/pkg/sessiontoken"
	"p2h.app/routes"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

func newServeCommand(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := bootstrap()
			if err != nil {
				return err
			}
			defer configslog.SyncLogger()
			return serve(ctx, cfg)
		},
	}
}

func serve(ctx context.Context, cfg *configs.AppConfig) error {
	configsdatabase.InitDB(cfg)
	defer configsdatabase.CloseDB()

	events := notifier.Noop()
	if cfg.MQTT.Enabled() {
		mqttNotifier, err := notifier.NewMQTTNotifier(ctx, cfg.MQTT)
		if err != nil {
			configslog.Log.Error("MQTT notifier could not start, review events will not be published", zap.Error(err))
		} else {
			events = mqttNotifier
		}
	}

	app := routes.NewApp(routes.Dependencies{
		DB:           configsdatabase.GetDB(),
		Issuer:       sessiontoken.NewIssuer(cfg.JWT.Secret, cfg.JWT.TTL),
		Notifier:     events,
		Location:     cfg.Location(),
		SecureCookie: cfg.IsProduction(),
		AccessLog:    true,
	})

	listenErr := make(chan error, 1)
	go func() {
		configslog.SLog.Infof("Listening on :%s (%s)", cfg.Port, cfg.Env)
		listenErr <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-listenErr:
		events.Close(context.Background())
		return err
	case <-ctx.Done():
	}

	configslog.SLog.Info("Shutdown signal received, draining requests...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		configslog.Log.Error("HTTP shutdown failed", zap.Error(err))
	}
	events.Close(shutdownCtx)
	configslog.SLog.Info("Server stopped")
	return nil
}
