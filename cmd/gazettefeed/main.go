package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/guarzo/gazettefeed/common"
)

var (
	logLevel       string
	logDevelopment bool

	cfg    common.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "gazettefeed",
	Short: "Insolvency notice dashboard backend",
	Long: `gazettefeed serves the insolvency dashboard API: recent Gazette notices,
Companies House financials, GA4 conversion analytics and AI-drafted
blog and LinkedIn content with internal links.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = common.LoadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel = logLevel
		}
		if cmd.Flags().Changed("dev") {
			cfg.LogDevelopment = logDevelopment
		}
		logger, err = common.NewLogger(cfg.LogLevel, cfg.LogDevelopment)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logDevelopment, "dev", false, "human-readable console logging")

	rootCmd.AddCommand(serveCmd, linkCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
