package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"wk-scan/scanlog"
)

const recordTimeLayout = "2006-01-02 15:04:05"

func newScanCmd(a *app) *cobra.Command {
	var objectID int
	var date string
	cmd := &cobra.Command{
		Use:   "scan [qrcode...]",
		Short: "Save scan records; reads one barcode per line from stdin when no args are given",
		RunE: func(_ *cobra.Command, args []string) error {
			save := func(code string) {
				res := a.svc.SaveRecord(objectID, date, code, time.Time{})
				switch {
				case res.OK():
					rec := res.Data.(scanlog.ScanRecord)
					color.New(color.FgGreen).Fprintf(os.Stdout, "#%d %s\n", rec.ID, rec.QRCode)
				case res.Code == scanlog.CodeDuplicate:
					color.New(color.FgYellow).Fprintf(os.Stdout, "%s %s\n", code, res.Message)
				default:
					color.New(color.FgRed).Fprintf(os.Stdout, "%s %s: %s\n", code, res.Code, res.Message)
				}
			}
			if len(args) > 0 {
				for _, code := range args {
					save(code)
				}
				return nil
			}
			sc := bufio.NewScanner(os.Stdin)
			for sc.Scan() {
				if code := strings.TrimSpace(sc.Text()); code != "" {
					save(code)
				}
			}
			return sc.Err()
		},
	}
	cmd.Flags().IntVar(&objectID, "object", 1, "Scan object id.")
	cmd.Flags().StringVar(&date, "date", "", "Partition date YYYY-MM-DD (default today).")
	return cmd
}

func newRecordsCmd(a *app) *cobra.Command {
	var objectID int
	var date string
	var q scanlog.PageQuery
	cmd := &cobra.Command{
		Use:   "records",
		Short: "List a page of records, newest first",
		RunE: func(_ *cobra.Command, _ []string) error {
			res := a.svc.QueryPage(objectID, date, q)
			if err := check(res); err != nil {
				return err
			}
			page := res.Data.(scanlog.PageResult)
			tbl := table.NewWriter()
			tbl.SetOutputMirror(os.Stdout)
			tbl.SetStyle(table.StyleLight)
			tbl.AppendHeader(table.Row{"ID", "Object", "QR code", "Time"})
			for _, r := range page.Records {
				tbl.AppendRow(table.Row{r.ID, r.ObjectName, r.QRCode, r.Time().Format(recordTimeLayout)})
			}
			tbl.AppendFooter(table.Row{"", "", fmt.Sprintf("page %d, size %d", page.PageIndex, page.PageSize), fmt.Sprintf("total %d", page.Total)})
			tbl.Render()
			return nil
		},
	}
	cmd.Flags().IntVar(&objectID, "object", 1, "Scan object id.")
	cmd.Flags().StringVar(&date, "date", "", "Partition date YYYY-MM-DD (default today).")
	cmd.Flags().StringVar(&q.QRCode, "qrcode", "", "Keep records whose qrcode contains this text.")
	cmd.Flags().IntVar(&q.PageIndex, "page", 1, "1-based page index.")
	cmd.Flags().IntVar(&q.PageSize, "size", scanlog.DefaultPageSize, "Page size.")
	return cmd
}

func newSnapshotCmd(a *app) *cobra.Command {
	var objectID int
	var date string
	var chartPath string
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Hourly capacity, speed and growth of one partition",
		RunE: func(_ *cobra.Command, _ []string) error {
			res := a.svc.Snapshot(objectID, date)
			if err := check(res); err != nil {
				return err
			}
			snap := res.Data.(scanlog.Snapshot)
			fmt.Printf("total=%d last_hour=%d speed=%.2f/h growth=%.1f%%\n",
				snap.TotalCapacity, snap.LastHourCapacity, snap.Speed, snap.Growth*100)

			tbl := table.NewWriter()
			tbl.SetOutputMirror(os.Stdout)
			tbl.SetStyle(table.StyleLight)
			tbl.AppendHeader(table.Row{"Hour", "Capacity"})
			for _, p := range snap.ChartData {
				tbl.AppendRow(table.Row{p.Time, p.Capacity})
			}
			tbl.Render()

			if chartPath == "" {
				return nil
			}
			if err := renderChart(chartPath, date, snap); err != nil {
				return err
			}
			success("chart written to %s", chartPath)
			return nil
		},
	}
	cmd.Flags().IntVar(&objectID, "object", 1, "Scan object id.")
	cmd.Flags().StringVar(&date, "date", "", "Partition date YYYY-MM-DD (default today).")
	cmd.Flags().StringVar(&chartPath, "chart", "", "Also write an HTML line chart to this path.")
	return cmd
}

func renderChart(path string, date string, snap scanlog.Snapshot) error {
	labels := make([]string, 0, len(snap.ChartData))
	data := make([]opts.LineData, 0, len(snap.ChartData))
	for _, p := range snap.ChartData {
		labels = append(labels, p.Time)
		data = append(data, opts.LineData{Value: p.Capacity})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Capacity per hour", Subtitle: date}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
	)
	line.SetXAxis(labels).AddSeries("capacity", data,
		charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}),
	)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := line.Render(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func newHistoryCmd(a *app) *cobra.Command {
	var objectID int
	var year string
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List dates that have a partition on disk",
		RunE: func(_ *cobra.Command, _ []string) error {
			res := a.svc.History(objectID, year)
			if err := check(res); err != nil {
				return err
			}
			for _, h := range res.Data.([]scanlog.HistoryEntry) {
				fmt.Println(h.Date)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&objectID, "object", 1, "Scan object id.")
	cmd.Flags().StringVar(&year, "year", "", "Year YYYY (default current year).")
	return cmd
}
