package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jhoicas/Invoicer-api/pkg/config"
	"github.com/jhoicas/Invoicer-api/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:   "invoicer-api",
	Short: "API de facturación multiempresa",
	Long: `invoicer-api expone la API HTTP de usuarios, empresas y facturas.

Sin subcomando arranca el servidor (equivale a "serve").`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd, args)
	},
}

// Execute ejecuta el comando raíz; termina el proceso con código 1 si falla.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "", "nivel de log (trace, debug, info, warn, error); por defecto LOG_LEVEL")
	rootCmd.Flags().Bool("seed", false, "cargar datos de demo al arrancar")
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd)
}

// bootstrap carga la configuración y construye el logger para cualquier subcomando.
func bootstrap(cmd *cobra.Command) (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("cargar configuración: %w", err)
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level})
	return cfg, log, nil
}
