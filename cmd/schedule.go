package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rotaops/rota/core/model"
)

var scheduleDays int

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Schedule related commands",
}

var scheduleLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "Print the effective schedule",
	RunE:  runScheduleLs,
}

func init() {
	scheduleLsCmd.Flags().IntVar(&scheduleDays, "days", 14, "window length in days starting today")
	scheduleCmd.AddCommand(scheduleLsCmd)
	rootCmd.AddCommand(scheduleCmd)
}

func runScheduleLs(cmd *cobra.Command, args []string) error {
	svc, err := newService()
	if err != nil {
		return err
	}
	defer closeService(svc)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	start := model.Day(time.Now())
	end := start.AddDate(0, 0, scheduleDays-1)
	rows, err := svc.Effective(ctx, start, end)
	if err != nil {
		return err
	}
	for _, a := range rows {
		fmt.Printf("%s  %-4s  %s\n", a.Date.Format(model.DateFormat), a.Rotation, a.EngineerKey())
	}
	return nil
}
