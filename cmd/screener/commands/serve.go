package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"RSLScreener/internal/scheduler"
)

var serveRunOnStart bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the weekly schedule",
	Long: `Starts the cron scheduler and, when Telegram is configured,
polls for /top, /run and /history commands. Ctrl+C to stop.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().BoolVar(&serveRunOnStart, "run-on-start", os.Getenv("RUN_ON_START") == "true", "run a ranking immediately")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	a := newApp(cfg)
	defer a.Close()

	sched := scheduler.NewScheduler(ctx, a.runner, a.snapshots, a.recorder)
	if err := sched.Register(cfg.Schedule.WeeklyCron); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	if a.telegram != nil {
		go a.telegram.StartPolling(ctx, sched.HandleCommand)
		log.Info().Msg("telegram polling started")
	}

	if serveRunOnStart {
		log.Info().Msg("run-on-start enabled, running now")
		sched.Trigger()
	}

	log.Info().Str("cron", cfg.Schedule.WeeklyCron).Msg("screener is running, press Ctrl+C to stop")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutdown signal received, stopping")
	cancel()
	return nil
}
