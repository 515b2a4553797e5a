package app

import (
	"p2h.app/configs/configsdatabase"
	"p2h.app/configs/configslog"
	"p2h.app/database"

	"github.com/spf13/cobra"
)

func newMigrateCommand() *cobra.Command {
	var opts database.Options
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the schema and optionally seed master data",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := bootstrap()
			if err != nil {
				return err
			}
			defer configslog.SyncLogger()

			configsdatabase.InitDB(cfg)
			defer configsdatabase.CloseDB()

			opts.Migrate = true
			opts.Seed = opts.Seed || opts.Demo
			opts.Admin = cfg.Admin
			return database.Initialize(configsdatabase.GetDB(), opts)
		},
	}
	cmd.Flags().BoolVar(&opts.Seed, "seed", false, "seed vehicle types, the checklist and the admin account")
	cmd.Flags().BoolVar(&opts.Demo, "demo", false, "also seed demo drivers, supervisors and vehicles (implies --seed)")
	return cmd
}
