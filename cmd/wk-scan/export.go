package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"wk-scan/scanlog"
)

func newExportCmd(a *app) *cobra.Command {
	var objectID int
	var dates []string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export partitions to <work-dir>/downloads/<object>/<date>.xlsx",
		RunE: func(_ *cobra.Command, _ []string) error {
			res := a.svc.ExportRecords(objectID, dates)
			outcomes, _ := res.Data.([]scanlog.ExportOutcome)
			for _, o := range outcomes {
				if o.OK() {
					color.New(color.FgGreen).Fprintf(os.Stdout, "%s  %d rows  %s\n", o.Date, o.Rows, o.Path)
				} else {
					color.New(color.FgRed).Fprintf(os.Stdout, "%s  %s\n", o.Date, o.Error)
				}
			}
			if !res.OK() {
				return fmt.Errorf("%s: %s", res.Code, res.Message)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&objectID, "object", 1, "Scan object id.")
	cmd.Flags().StringSliceVar(&dates, "date", nil, "Date YYYY-MM-DD to export; repeatable or comma separated.")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}

func newBackupCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "backup <destination>",
		Short: "Copy the whole working directory to <destination>/wk-scan",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			res := a.svc.ExportWorkingDirectory(args[0])
			if err := check(res); err != nil {
				return err
			}
			b := res.Data.(scanlog.BackupResult)
			success("copied %d files (%s) to %s", b.Files, humanize.Bytes(uint64(b.Bytes)), b.Path)
			return nil
		},
	}
}

func newJournalCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Show recent commands from the journal",
		RunE: func(_ *cobra.Command, _ []string) error {
			res := a.svc.Journal(limit)
			if err := check(res); err != nil {
				return err
			}
			for _, e := range res.Data.([]scanlog.JournalEntry) {
				line := fmt.Sprintf("%s  %-26s %-3d %-12s %-10s %s",
					e.At.Format(recordTimeLayout), e.Command, e.Code, e.ObjectValue, e.ScanDate, humanize.Time(e.At))
				if e.Code == int(scanlog.CodeSuccess) {
					fmt.Println(line)
				} else {
					color.New(color.FgYellow).Fprintf(os.Stdout, "%s  %s\n", line, e.Message)
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "Number of entries.")
	return cmd
}
