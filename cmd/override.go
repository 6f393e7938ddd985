package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rotaops/rota/core/model"
	"github.com/rotaops/rota/core/override"
)

var (
	overrideEngineer string
	overrideRotation string
	overrideStart    string
	overrideEnd      string
)

var overrideCmd = &cobra.Command{
	Use:   "override",
	Short: "Manage manual schedule corrections",
}

var overrideApplyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Assign an engineer over the base schedule",
	RunE:  runOverrideApply,
}

var overrideRmCmd = &cobra.Command{
	Use:   "rm",
	Short: "Remove overrides and restore the base schedule",
	RunE:  runOverrideRm,
}

func init() {
	overrideApplyCmd.Flags().StringVar(&overrideEngineer, "engineer", "", "engineer email")
	overrideApplyCmd.Flags().StringVar(&overrideRotation, "rotation", "", "rotation: am, core or pm")
	overrideApplyCmd.Flags().StringVar(&overrideStart, "start", "", "first date (YYYY-MM-DD)")
	overrideApplyCmd.Flags().StringVar(&overrideEnd, "end", "", "last date, defaults to start")

	overrideRmCmd.Flags().StringVar(&overrideRotation, "rotation", "", "rotation: am, core or pm")
	overrideRmCmd.Flags().StringVar(&overrideStart, "start", "", "first date (YYYY-MM-DD)")
	overrideRmCmd.Flags().StringVar(&overrideEnd, "end", "", "last date, defaults to start")

	overrideCmd.AddCommand(overrideApplyCmd)
	overrideCmd.AddCommand(overrideRmCmd)
	rootCmd.AddCommand(overrideCmd)
}

func runOverrideApply(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if overrideEngineer == "" || overrideRotation == "" || overrideStart == "" {
		return fmt.Errorf("--engineer, --rotation and --start are required")
	}
	rot, err := model.ParseRotation(overrideRotation)
	if err != nil {
		return err
	}
	end := overrideEnd
	if end == "" {
		end = overrideStart
	}

	svc, err := newService()
	if err != nil {
		return err
	}
	defer closeService(svc)

	res := svc.ApplyOverride(ctx, override.Request{
		Engineer:  overrideEngineer,
		Rotation:  rot,
		StartDate: overrideStart,
		EndDate:   end,
	})
	if !res.Success {
		return fmt.Errorf("override rejected (%s): %s", res.ErrorType, res.Error)
	}
	fmt.Println(res.Message)
	if len(res.ReplacedEngineers) > 0 {
		fmt.Printf("replaced: %s\n", strings.Join(res.ReplacedEngineers, ", "))
	}
	return nil
}

func runOverrideRm(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if overrideRotation == "" || overrideStart == "" {
		return fmt.Errorf("--rotation and --start are required")
	}
	rot, err := model.ParseRotation(overrideRotation)
	if err != nil {
		return err
	}
	start, err := model.ParseDate(overrideStart)
	if err != nil {
		return fmt.Errorf("invalid start date %q", overrideStart)
	}
	end := start
	if overrideEnd != "" {
		if end, err = model.ParseDate(overrideEnd); err != nil {
			return fmt.Errorf("invalid end date %q", overrideEnd)
		}
	}

	svc, err := newService()
	if err != nil {
		return err
	}
	defer closeService(svc)

	n, err := svc.RemoveOverride(ctx, start, end, rot)
	if err != nil {
		return err
	}
	fmt.Printf("removed %d override rows\n", n)
	return nil
}
