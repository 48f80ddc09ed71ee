package main

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/piwi3910/sheetnest/internal/config"
	"github.com/piwi3910/sheetnest/internal/model"
)

var rootCmd = &cobra.Command{
	Use:   "sheetnest",
	Short: "SheetNest is a rectangular sheet nesting optimizer",
	Long: `SheetNest packs rectangular parts onto stock sheets, derives the saw
cuts for each layout, and exports the result as PDF, DXF, CSV, or Excel.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to the application config file (default ~/.sheetnest/config.json)")
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable debug logging")

	cobra.OnInitialize(func() {
		if verbose, _ := rootCmd.PersistentFlags().GetBool("verbose"); verbose {
			log.SetLevel(log.DebugLevel)
		}
	})
}

// loadConfig resolves the application config from the --config flag or the
// default location. A missing file yields the built-in defaults.
func loadConfig(cmd *cobra.Command) config.AppConfig {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = config.DefaultConfigPath()
	}
	cfg, err := config.LoadAppConfig(path)
	if err != nil {
		log.Warn("Cannot load config, using defaults", "path", path, "err", err)
		return config.DefaultAppConfig()
	}
	return cfg
}

// applySettingsFlags overlays command-line flags onto the resolved settings.
func applySettingsFlags(cmd *cobra.Command, settings model.Settings) model.Settings {
	if cmd.Flags().Changed("strategy") {
		v, _ := cmd.Flags().GetString("strategy")
		settings.Strategy = model.Strategy(v)
	}
	if cmd.Flags().Changed("kerf") {
		settings.Kerf, _ = cmd.Flags().GetFloat64("kerf")
	}
	if cmd.Flags().Changed("margin") {
		settings.Margin, _ = cmd.Flags().GetFloat64("margin")
	}
	return settings
}

func addSettingsFlags(cmd *cobra.Command) {
	cmd.Flags().String("strategy", "", "Nesting strategy: shelf, guillotine, or cut-optimized")
	cmd.Flags().Float64("kerf", 0, "Blade kerf width in mm")
	cmd.Flags().Float64("margin", 0, "Sheet edge margin in mm")
}
