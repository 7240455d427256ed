package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"RSLScreener/internal/config"
	"RSLScreener/internal/logger"
)

const version = "0.3.0"

var (
	configFile string
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "screener",
	Short: "RSL momentum screener",
	Long: `Ranks an equity universe by Relative Strength Levy
(last close / simple moving average) and publishes the top N
with week-over-week rank changes.

Examples:
  screener run
  screener serve --run-on-start
  screener tickers
  screener history --limit 20`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("config validation: %w", err)
		}
		return logger.Init(logger.Config{
			Level:          cfg.Log.Level,
			Format:         cfg.Log.Format,
			FileEnabled:    cfg.Log.Dir != "",
			FilePath:       cfg.Log.Dir,
			RotationSize:   cfg.Log.RotationSize,
			RetentionDays:  cfg.Log.RetentionDays,
			ServiceName:    "rsl-screener",
			ServiceVersion: version,
		})
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	defaultConfig := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultConfig = v
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", defaultConfig, "config file")
}
