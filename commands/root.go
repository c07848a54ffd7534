package commands

import (
	"fmt"
	"log/slog"
	"os"

	"tpv/config"
	"tpv/utils"

	"github.com/spf13/cobra"
)

var (
	cfg     config.Config
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "tpv",
	Short: "TPV - restaurant point-of-sale backend",
	Long: `TPV serves the REST API and websocket feed used by the waiter, kitchen and
cash-register screens of a restaurant.

Running without a subcommand starts the server.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load()
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(utils.NewLogger(os.Stdout, "tpv", level))
		utils.SetSecret(cfg.JWTSecret)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")
}
