package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agisilaos/todoist-planner/internal/config"
	"github.com/agisilaos/todoist-planner/internal/output"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and initialize the config file",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration (file plus environment)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadEffectiveConfig()
		if err != nil {
			return err
		}
		if cfg.AIKey != "" {
			cfg.AIKey = "<set>"
		}
		if cfg.Token != "" {
			cfg.Token = "<set>"
		}
		return output.WriteJSON(os.Stdout, cfg, output.Meta{})
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file skeleton if none exists",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			var err error
			path, err = config.DefaultUserConfigPath()
			if err != nil {
				return err
			}
		}
		if _, exists, err := config.LoadConfig(path); err != nil {
			return err
		} else if exists {
			return fmt.Errorf("config already exists at %s", path)
		}
		skeleton := config.Config{
			Timezone:       "UTC",
			TimeoutSeconds: 30,
			AIModel:        "gpt-4o-mini",
		}
		if err := config.SaveConfig(path, skeleton); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Wrote %s\n", path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}
