package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/jhoicas/Invoicer-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Invoicer-api/pkg/config"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down]",
	Short:     "Aplica o revierte las migraciones de PostgreSQL",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "down"},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := bootstrap(cmd)
		if err != nil {
			return err
		}
		if cfg.Store.Driver != config.StoreDriverPostgres {
			return errors.New("migrate requiere STORE_DRIVER=postgres")
		}
		mg, err := postgres.NewMigrator(cfg.DB.ConnectionString(), log)
		if err != nil {
			return err
		}
		defer func() {
			if err := mg.Close(); err != nil {
				log.Warn().Err(err).Msg("cerrar migrador")
			}
		}()
		if args[0] == "down" {
			return mg.Down()
		}
		return mg.Up()
	},
}
