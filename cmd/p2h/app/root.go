package app

import (
	"context"

	"p2h.app/configs"
	"p2h.app/configs/configslog"

	"github.com/spf13/cobra"
)

func NewRootCommand(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "p2h",
		Short:         "P2H daily vehicle inspection service",
		Long:          "p2h runs the daily pre-use vehicle inspection API and manages its database.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.AddCommand(newServeCommand(ctx), newMigrateCommand())
	return cmd
}

// bootstrap loads configuration and starts the logger shared by every command.
func bootstrap() (*configs.AppConfig, error) {
	cfg, err := configs.Load()
	if err != nil {
		return nil, err
	}
	configslog.InitLogger()
	return cfg, nil
}
