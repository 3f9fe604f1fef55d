package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
)

func generateCmd() *cobra.Command {
	var weeks int
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Materialize recurring task instances once and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.close(context.Background())

			if weeks <= 0 {
				weeks = a.cfg.WeeksBuffer
			}
			result, err := a.generator.Run(ctx, weeks)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}
	cmd.Flags().IntVar(&weeks, "weeks", 0, "weeks past the current one to fill (default WEEKS_BUFFER)")
	return cmd
}
