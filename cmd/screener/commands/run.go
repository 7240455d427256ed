package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"RSLScreener/internal/notifier"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one ranking now",
	Long: `Fetches prices for the configured universe, ranks it and
writes the snapshot and rank mapping. Exits non-zero when the run fails.`,
	RunE: runOnce,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runOnce(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := newApp(cfg)
	defer a.Close()

	snap, err := a.runner.Run(ctx)
	if err != nil {
		return err
	}
	fmt.Print(notifier.FormatRankingPlain(snap))
	return nil
}
