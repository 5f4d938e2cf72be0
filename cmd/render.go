package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/pricechart/internal/interact"
	"github.com/sells-group/pricechart/internal/model"
	"github.com/sells-group/pricechart/internal/pipeline"
	"github.com/sells-group/pricechart/internal/render"
	"github.com/sells-group/pricechart/internal/source"
)

var (
	renderOut      string
	renderFormat   string
	renderLockYear int
	renderMode     string
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the price chart to a PNG or SVG file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("render"); err != nil {
			return err
		}

		opts := pipeline.SeriesOptions(cfg.Chart)
		if cmd.Flags().Changed("mode") {
			opts.Mode = model.Mode(renderMode)
		}
		if !opts.Mode.Valid() {
			return eris.Errorf("invalid mode %q: want gap or available", opts.Mode)
		}

		format, err := renderFormatFor(renderFormat, renderOut)
		if err != nil {
			return err
		}

		_, set, err := pipeline.Run(cmd.Context(), source.FromConfig(cfg.Data), opts)
		if err != nil {
			return eris.Wrap(err, "render")
		}

		state, err := lockState(set, renderLockYear)
		if err != nil {
			return err
		}

		c := render.New(set, pipeline.RenderOptions(cfg.Chart))
		interact.Restore(set, c, state)

		if err := writeChart(renderOut, c, format); err != nil {
			return err
		}
		zap.L().Info("chart rendered",
			zap.String("out", renderOut),
			zap.String("format", string(format)),
			zap.Int("years", len(set.Years)),
			zap.Ints("missing_years", set.MissingYears),
		)
		return nil
	},
}

// renderFormatFor uses the explicit format, else the output extension.
func renderFormatFor(explicit, out string) (render.Format, error) {
	f := strings.ToLower(explicit)
	if f == "" {
		f = strings.TrimPrefix(strings.ToLower(filepath.Ext(out)), ".")
	}
	switch render.Format(f) {
	case render.FormatPNG, render.FormatSVG:
		return render.Format(f), nil
	case "":
		return render.FormatPNG, nil
	}
	return "", eris.Errorf("unknown format %q: want png or svg", f)
}

// lockState pins the tooltip on year; 0 leaves the chart unlocked.
func lockState(set model.SeriesSet, year int) (interact.State, error) {
	if year == 0 {
		return interact.Unlocked, nil
	}
	for i, y := range set.Years {
		if y == year {
			return interact.Locked(i), nil
		}
	}
	return interact.Unlocked, eris.Errorf("year %d is not on the chart axis", year)
}

// writeChart renders into a temporary sibling file and renames it over out.
func writeChart(out string, c *render.Chart, format render.Format) error {
	dir := filepath.Dir(out)
	tmp := filepath.Join(dir, "."+filepath.Base(out)+"."+uuid.NewString()+".tmp")

	f, err := os.Create(tmp) //nolint:gosec // operator-supplied output path
	if err != nil {
		return eris.Wrap(err, "create output")
	}
	if err := c.Render(f, format); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return eris.Wrap(err, "close output")
	}
	if err := os.Rename(tmp, out); err != nil {
		_ = os.Remove(tmp)
		return eris.Wrap(err, "rename output")
	}
	return nil
}

func init() {
	renderCmd.Flags().StringVar(&renderOut, "out", "chart.png", "output file")
	renderCmd.Flags().StringVar(&renderFormat, "format", "", "png or svg (default from --out extension)")
	renderCmd.Flags().IntVar(&renderLockYear, "lock-year", 0, "pin the tooltip on this year")
	renderCmd.Flags().StringVar(&renderMode, "mode", "gap", "x-axis mode: gap or available")
	rootCmd.AddCommand(renderCmd)
}
