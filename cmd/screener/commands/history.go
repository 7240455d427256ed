package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"RSLScreener/internal/recorder"
	"RSLScreener/internal/scheduler"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent ranking runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Database.SQLitePath == "" {
			return fmt.Errorf("database.sqlite_path is not configured")
		}
		rec, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			return err
		}
		defer rec.Close()

		runs, err := rec.RecentRuns(historyLimit)
		if err != nil {
			return err
		}
		fmt.Print(scheduler.FormatHistory(runs))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVar(&historyLimit, "limit", 10, "number of runs")
}
