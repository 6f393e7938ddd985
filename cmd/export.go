package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rotaops/rota/core/model"
	"github.com/rotaops/rota/pkg/export"
)

var (
	exportStart  string
	exportEnd    string
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the effective schedule",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportStart, "start", "", "first date (YYYY-MM-DD), defaults to today")
	exportCmd.Flags().StringVar(&exportEnd, "end", "", "last date, defaults to start plus 13 days")
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "output format: csv or json")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output file, defaults to stdout")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	start := model.Day(time.Now())
	if exportStart != "" {
		var err error
		if start, err = model.ParseDate(exportStart); err != nil {
			return fmt.Errorf("invalid start date %q", exportStart)
		}
	}
	end := start.AddDate(0, 0, 13)
	if exportEnd != "" {
		var err error
		if end, err = model.ParseDate(exportEnd); err != nil {
			return fmt.Errorf("invalid end date %q", exportEnd)
		}
	}

	svc, err := newService()
	if err != nil {
		return err
	}
	defer closeService(svc)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	rows, err := svc.Effective(ctx, start, end)
	if err != nil {
		return err
	}

	out := os.Stdout
	if exportOut != "" {
		f, err := os.Create(exportOut)
		if err != nil {
			return fmt.Errorf("create %s: %w", exportOut, err)
		}
		defer func() {
			if err := f.Close(); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "close %s: %v\n", exportOut, err)
			}
		}()
		out = f
	}

	switch exportFormat {
	case "csv":
		return export.WriteCSV(out, rows)
	case "json":
		return export.WriteJSON(out, rows)
	default:
		return fmt.Errorf("unsupported format %q", exportFormat)
	}
}
