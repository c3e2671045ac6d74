package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"droneops-console/internal/config"
)

var (
	validateConfigPath string
	validateSchemaPath string
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a console configuration file",
	Long:  "validate checks the YAML configuration against the CUE schema and the loader's constraints.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(validateConfigPath, validateSchemaPath)
		if err != nil {
			return err
		}
		fmt.Printf("%s OK: %d mission slots, %d layers, %d zones\n",
			validateConfigPath, cfg.MissionSlots, len(cfg.Layers), len(cfg.Zones))
		return nil
	},
}

func init() {
	validateCmd.Flags().StringVar(&validateConfigPath, "config", "config/console.yaml", "Path to console configuration YAML")
	validateCmd.Flags().StringVar(&validateSchemaPath, "schema", "schemas/console.cue", "Path to CUE schema file")
}
