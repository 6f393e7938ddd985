package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var presenceCmd = &cobra.Command{
	Use:   "presence",
	Short: "Push the on-call window to the chat presence store",
	RunE:  runPresence,
}

func init() {
	rootCmd.AddCommand(presenceCmd)
}

func runPresence(cmd *cobra.Command, args []string) error {
	svc, err := newService()
	if err != nil {
		return err
	}
	defer closeService(svc)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := svc.PushPresence(ctx); err != nil {
		return err
	}
	fmt.Println("presence updated")
	return nil
}
