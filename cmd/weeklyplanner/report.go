package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"weekly-planner/internal/calendar"
	"weekly-planner/internal/render"
	"weekly-planner/internal/service"
)

func reportCmd() *cobra.Command {
	var (
		date        string
		format      string
		out         string
		toClipboard bool
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the weekly report for the week containing --date",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.close(context.Background())

			if date == "" {
				date = calendar.Date(time.Now().In(a.cfg.Location())).Format(calendar.DateLayout)
			}
			report, err := a.reports.BuildReport(ctx, date)
			if err != nil {
				return err
			}

			w := io.Writer(os.Stdout)
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("create %s: %w", out, err)
				}
				defer f.Close()
				w = f
			}
			if err := writeReport(w, report, format); err != nil {
				return err
			}

			if toClipboard {
				if err := clipboard.WriteAll(render.Text(report)); err != nil {
					return fmt.Errorf("copy to clipboard: %w", err)
				}
				log.Println("[info] report copied to clipboard")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "any date inside the week, YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&format, "format", "panel", "output format: panel, text, pdf or json")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write to a file instead of stdout")
	cmd.Flags().BoolVar(&toClipboard, "copy", false, "also copy the text report to the clipboard")
	return cmd
}

func writeReport(w io.Writer, report *service.Report, format string) error {
	switch format {
	case "panel":
		_, err := fmt.Fprintln(w, render.Panel(report))
		return err
	case "text":
		_, err := fmt.Fprintln(w, render.Text(report))
		return err
	case "pdf":
		return render.PDF(w, report)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	default:
		return fmt.Errorf("unknown format %q (want panel, text, pdf or json)", format)
	}
}
