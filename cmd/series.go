package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/pricechart/internal/model"
	"github.com/sells-group/pricechart/internal/pipeline"
	"github.com/sells-group/pricechart/internal/series"
	"github.com/sells-group/pricechart/internal/source"
)

var (
	seriesMode    string
	seriesNoHover bool
	seriesRange   bool
	seriesFill    bool
	seriesFormat  string
)

var seriesCmd = &cobra.Command{
	Use:   "series",
	Short: "Print the chart series built from the price table",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("series"); err != nil {
			return err
		}
		opts, err := seriesOptionsFromFlags(cmd)
		if err != nil {
			return err
		}

		_, set, err := pipeline.Run(cmd.Context(), source.FromConfig(cfg.Data), opts)
		if err != nil {
			return eris.Wrap(err, "series")
		}
		return writeSeries(cmd.OutOrStdout(), set, seriesFormat)
	},
}

// seriesOptionsFromFlags applies explicitly set flags over the configured
// chart settings.
func seriesOptionsFromFlags(cmd *cobra.Command) (series.Options, error) {
	opts := pipeline.SeriesOptions(cfg.Chart)
	flags := cmd.Flags()
	if flags.Changed("mode") {
		opts.Mode = model.Mode(seriesMode)
	}
	if !opts.Mode.Valid() {
		return opts, eris.Errorf("invalid mode %q: want gap or available", opts.Mode)
	}
	if flags.Changed("no-hover") {
		opts.HoverProxy = !seriesNoHover
	}
	if flags.Changed("range") {
		opts.RangeBars = seriesRange
	}
	if flags.Changed("fill-years") {
		opts.FillYears = seriesFill
	}
	return opts, nil
}

func writeSeries(out io.Writer, set model.SeriesSet, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(set), "encode json")
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(set); err != nil {
			return eris.Wrap(err, "encode yaml")
		}
		return eris.Wrap(enc.Close(), "encode yaml")
	case "table":
		formatSeriesTable(out, set)
		return nil
	default:
		return eris.Errorf("unknown format %q: want json, yaml, or table", format)
	}
}

func formatSeriesTable(out io.Writer, set model.SeriesSet) {
	minSr, _ := set.Lookup(model.SeriesMinPrice)
	maxSr, _ := set.Lookup(model.SeriesMaxPrice)

	missing := make(map[int]bool, len(set.MissingYears))
	for _, y := range set.MissingYears {
		missing[y] = true
	}

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Year", "Min", "Max", "Availability", "Marker", "Sources"})
	table.SetAutoWrapText(false)
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER, tablewriter.ALIGN_LEFT,
	})

	for i, year := range set.Years {
		var lo, hi *float64
		if i < len(minSr.Points) {
			lo = minSr.Points[i].Value
		}
		if i < len(maxSr.Points) {
			hi = maxSr.Points[i].Value
		}
		p, _ := set.PointAt(i)
		marker := ""
		if missing[year] {
			marker = "×"
		}
		table.Append([]string{
			strconv.Itoa(year),
			series.FormatPrice(lo),
			series.FormatPrice(hi),
			series.AvailabilityLabel(p.Available),
			marker,
			truncateText(p.SourceSummary, 60),
		})
	}
	table.SetFooter([]string{"", "", "", "", fmt.Sprintf("%d missing", len(set.MissingYears)), ""})
	table.Render()
}

func truncateText(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

func init() {
	seriesCmd.Flags().StringVar(&seriesMode, "mode", "gap", "x-axis mode: gap or available")
	seriesCmd.Flags().BoolVar(&seriesNoHover, "no-hover", false, "omit the hover proxy series")
	seriesCmd.Flags().BoolVar(&seriesRange, "range", false, "add the price range series")
	seriesCmd.Flags().BoolVar(&seriesFill, "fill-years", false, "include absent years between the first and last year")
	seriesCmd.Flags().StringVar(&seriesFormat, "format", "json", "output format: json, yaml, or table")
	rootCmd.AddCommand(seriesCmd)
}
