package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"expensetracker/internal/core"
)

func reportCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report <userID> <year> <month>",
		Short: "Print a user's monthly spending by category",
		Long: `Print the per-category totals and the grand total of one user's
expenses for a calendar month. With --export the report is also appended
to the configured Google spreadsheet.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid user id %q", args[0])
			}
			year, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid year %q", args[1])
			}
			month, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid month %q", args[2])
			}
			ym, err := core.NewYearMonth(year, month)
			if err != nil {
				return err
			}

			res, err := opts.openBackend(cmd)
			if err != nil {
				return err
			}
			defer res.Close()

			ctx := cmd.Context()
			ov, err := res.Reports.MonthOverview(ctx, userID, ym)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Report %s for user %d\n", ym, userID)
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
			for _, c := range ov.ByCategory {
				fmt.Fprintf(w, "%s\t%s\t\n", c.Name, c.Amount)
			}
			fmt.Fprintf(w, "Total\t%s\t\n", ov.Total)
			if err := w.Flush(); err != nil {
				return err
			}

			if export, _ := cmd.Flags().GetBool("export"); export {
				ref, err := res.Reports.ExportMonth(ctx, userID, ym)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "exported to %s\n", ref)
			}
			return nil
		},
	}
	cmd.Flags().Bool("export", false, "also append the report to Google Sheets")
	return cmd
}
