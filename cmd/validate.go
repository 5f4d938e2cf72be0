package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/pricechart/internal/pipeline"
	"github.com/sells-group/pricechart/internal/series"
	"github.com/sells-group/pricechart/internal/source"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the price table for duplicate years, inverted ranges, and missing years",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("validate"); err != nil {
			return err
		}

		ds, err := pipeline.Load(cmd.Context(), source.FromConfig(cfg.Data))
		if err != nil {
			return eris.Wrap(err, "validate")
		}

		formatReport(cmd.OutOrStdout(), ds)
		if len(ds.Report.Duplicates) > 0 {
			return eris.Errorf("validate: %d duplicate year(s)", len(ds.Report.Duplicates))
		}
		return nil
	},
}

func formatReport(out io.Writer, ds *pipeline.Dataset) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "CHECK\tCOUNT\tYEARS")
	_, _ = fmt.Fprintln(w, "-----\t-----\t-----")

	missing := series.MissingYears(ds.Rows)
	_, _ = fmt.Fprintf(w, "rows\t%d\t%s\n", len(ds.Rows), span(ds))
	_, _ = fmt.Fprintf(w, "dropped (no year)\t%d\t\n", ds.Report.Dropped)
	_, _ = fmt.Fprintf(w, "duplicate years\t%d\t%s\n", len(ds.Report.Duplicates), joinYears(ds.Report.Duplicates))
	_, _ = fmt.Fprintf(w, "min above max\t%d\t%s\n", len(ds.Report.Inverted), joinYears(ds.Report.Inverted))
	_, _ = fmt.Fprintf(w, "missing years\t%d\t%s\n", len(missing), joinYears(missing))
	_ = w.Flush()
}

func span(ds *pipeline.Dataset) string {
	if len(ds.Rows) == 0 {
		return ""
	}
	return fmt.Sprintf("%d-%d", ds.Rows[0].Year, ds.Rows[len(ds.Rows)-1].Year)
}

func joinYears(years []int) string {
	parts := make([]string, len(years))
	for i, y := range years {
		parts[i] = fmt.Sprint(y)
	}
	return strings.Join(parts, ", ")
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
