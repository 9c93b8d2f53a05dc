package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rdblue/avro/pkg/api"
	"github.com/rdblue/avro/pkg/config"
	"github.com/rdblue/avro/pkg/registry"
)

// serveCmd runs the schema registry service.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the schema registry HTTP service",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger(cmd)
		if err != nil {
			return err
		}
		defer logger.Sync()

		cfg := config.DefaultConfig()
		if configPath, _ := cmd.Flags().GetString("config"); configPath != "" {
			cfg, err = config.LoadConfig(configPath)
			if err != nil {
				return err
			}
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		if err := os.MkdirAll(cfg.DataDir, 0750); err != nil {
			return fmt.Errorf("create data dir: %w", err)
		}
		reg, err := registry.Open(registry.Config{Path: cfg.DataDir})
		if err != nil {
			return err
		}
		defer reg.Close()

		return api.StartServer(reg, api.ServerConfig{
			Port:   cfg.Port,
			Bind:   cfg.Bind,
			APIKey: cfg.APIKey,
		}, logger)
	},
}

func init() {
	serveCmd.Flags().String("config", "", "Path to the service configuration file")
	rootCmd.AddCommand(serveCmd)
}
