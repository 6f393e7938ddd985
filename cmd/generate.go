package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rotaops/rota/core/model"
)

var generateDays int

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Extend the base schedule",
	RunE:  runGenerate,
}

func init() {
	generateCmd.Flags().IntVar(&generateDays, "days", 0, "lookahead window in days, 0 uses the configured default")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := newService()
	if err != nil {
		return err
	}
	defer closeService(svc)

	rows, report, err := svc.Generate(ctx, generateDays)
	if err != nil {
		return err
	}
	fmt.Printf("generated %d assignments for %s to %s\n",
		len(rows),
		report.WindowStart.Format(model.DateFormat),
		report.WindowEnd.Format(model.DateFormat))
	fmt.Printf("hour spread: mean %.1f, stddev %.1f\n", report.MeanHours, report.StddevHours)
	if report.Uncovered > 0 {
		fmt.Printf("uncovered slots: %d\n", report.Uncovered)
	}
	for _, n := range report.Notes {
		fmt.Printf("note: %s %s %s (%s)\n", n.Date.Format(model.DateFormat), n.Rotation, n.Stage, n.Reason)
	}
	return nil
}
