package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var resetForce bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Wipe the base schedule, keeping overrides",
	RunE:  runReset,
}

var repairCmd = &cobra.Command{
	Use:   "repair",
	Short: "Re-create missing schema objects and drop invalid rows",
	RunE:  runRepair,
}

func init() {
	resetCmd.Flags().BoolVar(&resetForce, "force", false, "confirm the wipe")
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(repairCmd)
}

func runReset(cmd *cobra.Command, args []string) error {
	if !resetForce {
		return fmt.Errorf("refusing to wipe the base schedule without --force")
	}
	svc, err := newService()
	if err != nil {
		return err
	}
	defer closeService(svc)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := svc.Reset(ctx); err != nil {
		return err
	}
	fmt.Println("base schedule cleared, overrides kept")
	return nil
}

func runRepair(cmd *cobra.Command, args []string) error {
	svc, err := newService()
	if err != nil {
		return err
	}
	defer closeService(svc)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := svc.Repair(ctx); err != nil {
		return err
	}
	fmt.Println("store repair completed")
	return nil
}
