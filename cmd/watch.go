package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Check prices periodically until interrupted",
	Long:  "Runs an immediate price check, then repeats on the configured interval. This is the reliable foreground path; pair it with a process supervisor for background operation.",
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().Duration("interval", 0, "Check interval (default from config, 1h)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	interval, _ := cmd.Flags().GetDuration("interval")
	if interval <= 0 {
		interval = cfg.CheckInterval
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Watching %d favorites every %v. Ctrl-C to stop.\n", a.store.Count(), interval)
	a.tracker.Watch(ctx, interval)

	fmt.Println("Stopped.")
	return nil
}
