package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rotaops/rota/core/model"
	"github.com/rotaops/rota/infra/kpi"
	"github.com/rotaops/rota/jobs/workloadkpi"
)

var (
	kpiDB   string
	kpiDays int
)

var kpiCmd = &cobra.Command{
	Use:   "kpi",
	Short: "Workload KPI commands",
}

var kpiBackfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Rebuild workload aggregates from schedule history",
	RunE:  runKpiBackfill,
}

func init() {
	kpiBackfillCmd.Flags().StringVar(&kpiDB, "db", "rota-kpi.db", "SQLite database path")
	kpiBackfillCmd.Flags().IntVar(&kpiDays, "days", 90, "history window in days ending today")
	kpiCmd.AddCommand(kpiBackfillCmd)
	rootCmd.AddCommand(kpiCmd)
}

func runKpiBackfill(cmd *cobra.Command, args []string) error {
	svc, err := newService()
	if err != nil {
		return err
	}
	defer closeService(svc)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	end := model.Day(time.Now())
	start := end.AddDate(0, 0, -kpiDays)
	history, err := svc.Effective(ctx, start, end)
	if err != nil {
		return err
	}

	store, err := kpi.NewSQLiteStore(kpiDB)
	if err != nil {
		return fmt.Errorf("open kpi store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "close kpi store: %v\n", err)
		}
	}()

	if err := workloadkpi.Backfill(store, history); err != nil {
		return err
	}
	fmt.Printf("backfilled %d assignments into %s\n", len(history), kpiDB)
	return nil
}
