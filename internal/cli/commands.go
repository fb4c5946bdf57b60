package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewExportCmd writes the saved ledger as CSV, JSON and text.
func NewExportCmd(configPath *string) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the saved ledger to csv, json and txt",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := loadRuntime(ctx, *configPath, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer rt.Close()

			if _, err := rt.service.Load(ctx); err != nil {
				return err
			}
			paths, err := rt.service.Export(out)
			if err != nil {
				return err
			}
			for _, format := range []string{"csv", "json", "txt"} {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", format, paths[format])
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "report", "output path without extension")
	return cmd
}

// NewAuditCmd prints the tail of the audit log.
func NewAuditCmd(configPath *string) *cobra.Command {
	var n int
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show the latest audit records",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := loadRuntime(ctx, *configPath, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer rt.Close()

			records, err := rt.service.AuditTail(ctx, n)
			if err != nil {
				return err
			}
			for _, rec := range records {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s %s %v\n",
					rec.ID, rec.Timestamp.Format("2006-01-02T15:04:05"), rec.Event, rec.Username, rec.Meta)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&n, "lines", "n", 20, "number of records")
	return cmd
}

// NewLeaderboardCmd ranks the saved ledger, or the external provider with --external.
func NewLeaderboardCmd(configPath *string) *cobra.Command {
	var (
		limit    int
		external bool
	)
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the top players",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := loadRuntime(ctx, *configPath, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer rt.Close()

			entries := rt.service.ExternalLeaderboard(limit)
			if !external {
				if _, err := rt.service.Load(ctx); err != nil {
					return err
				}
				entries = rt.service.Leaderboard(limit)
			}
			for i, e := range entries {
				fmt.Fprintf(cmd.OutOrStdout(), "%d. %s %d\n", i+1, e.Username, e.Points)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "number of entries")
	cmd.Flags().BoolVar(&external, "external", false, "use the external ranking provider")
	return cmd
}
