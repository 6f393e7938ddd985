package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rotaops/rota/core/model"
)

var (
	syncStart string
	syncEnd   string
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Synchronise external systems",
}

var syncDirectoryCmd = &cobra.Command{
	Use:   "directory",
	Short: "Pull the engineer roster from the identity connector",
	RunE:  runSyncDirectory,
}

var syncMirrorCmd = &cobra.Command{
	Use:   "mirror",
	Short: "Push a schedule window to the document mirror",
	RunE:  runSyncMirror,
}

func init() {
	syncMirrorCmd.Flags().StringVar(&syncStart, "start", "", "first date (YYYY-MM-DD), defaults to today")
	syncMirrorCmd.Flags().StringVar(&syncEnd, "end", "", "last date, defaults to start plus 13 days")
	syncCmd.AddCommand(syncDirectoryCmd)
	syncCmd.AddCommand(syncMirrorCmd)
	rootCmd.AddCommand(syncCmd)
}

func runSyncDirectory(cmd *cobra.Command, args []string) error {
	svc, err := newService()
	if err != nil {
		return err
	}
	defer closeService(svc)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := svc.SyncDirectory(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("synced %d engineers\n", n)
	return nil
}

func runSyncMirror(cmd *cobra.Command, args []string) error {
	start := model.Day(time.Now())
	if syncStart != "" {
		var err error
		if start, err = model.ParseDate(syncStart); err != nil {
			return fmt.Errorf("invalid start date %q", syncStart)
		}
	}
	end := start.AddDate(0, 0, 13)
	if syncEnd != "" {
		var err error
		if end, err = model.ParseDate(syncEnd); err != nil {
			return fmt.Errorf("invalid end date %q", syncEnd)
		}
	}

	svc, err := newService()
	if err != nil {
		return err
	}
	defer closeService(svc)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	res, err := svc.SyncMirror(ctx, start, end)
	if err != nil {
		return err
	}
	fmt.Printf("mirror: %d dates, %d created, %d updated, %d skipped\n",
		res.Dates, res.Created, res.Updated, res.Skipped)
	return nil
}
