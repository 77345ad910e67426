package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"boardharvest/pkg/config"
	"boardharvest/pkg/session"
	"boardharvest/pkg/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage boardharvest configuration files.

Values are taken, from highest to lowest priority, from command line flags,
BOARDHARVEST_* environment variables, .env files, the configuration file and
built-in defaults.`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file with the default values",
	RunE:  runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE:  runConfigShow,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration",
	RunE:  runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd, configShowCmd, configValidateCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configFile
	if path == "" {
		path = ".boardharvest.yaml"
	}

	if _, err := os.Stat(path); err == nil {
		ui.PrintError("Configuration file already exists", path)
		return fmt.Errorf("%s already exists", path)
	}

	if err := config.DefaultConfig().Save(path); err != nil {
		ui.PrintError("Failed to create configuration file", err)
		return err
	}

	ui.PrintSuccess("Configuration file created: " + path)
	fmt.Fprintln(cmd.OutOrStdout(), "\nNext steps:")
	fmt.Fprintln(cmd.OutOrStdout(), "1. Adjust output.directory and harvest timing to taste")
	fmt.Fprintln(cmd.OutOrStdout(), "2. Run 'boardharvest session set' if you need private boards")
	fmt.Fprintln(cmd.OutOrStdout(), "3. Run 'boardharvest harvest <board-url>'")
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Failed to load configuration", err)
		return err
	}

	display := *cfg
	if display.Pinterest.SessionCookie != "" {
		display.Pinterest.SessionCookie = session.Mask(display.Pinterest.SessionCookie)
	}

	data, err := yaml.Marshal(&display)
	if err != nil {
		return fmt.Errorf("failed to format configuration: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), string(data))
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Configuration is invalid", err)
		return err
	}

	if cfg.Output.Directory != "" {
		if err := os.MkdirAll(cfg.Output.Directory, 0755); err != nil {
			ui.PrintWarning("Output directory cannot be created", err)
		}
	}
	if cfg.Pinterest.SessionCookie == "" {
		ui.PrintWarning("No session cookie configured, only public boards can be harvested")
	}

	ui.PrintSuccess("Configuration is valid")
	ui.PrintInfo("Concurrency", fmt.Sprintf("%d", cfg.Download.Concurrency))
	ui.PrintInfo("Scroll tick", cfg.Harvest.TickInterval.String())
	ui.PrintInfo("Stall threshold", fmt.Sprintf("%d", cfg.Harvest.StallThreshold))
	ui.PrintInfo("Output mode", cfg.Output.Mode)
	return nil
}
