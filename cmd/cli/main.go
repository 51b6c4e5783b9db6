package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"gobrix/adapters/excel"
	"gobrix/app"
	"gobrix/domain/core"
	"gobrix/internal"
	"gobrix/internal/config"
	"gobrix/internal/container"
	"gobrix/internal/gdd"
	"gobrix/internal/inference"
	"gobrix/internal/quality"
	"gobrix/internal/report"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "gobrix",
		Short: "Brix prediction, calibration and GDD tools",
	}

	rootCmd.AddCommand(
		newPredictCmd(),
		newInferCmd(),
		newCalibrateCmd(),
		newGDDCmd(),
		newExportWorkbookCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// withContainer loads configuration from the environment and runs fn
// against a fully wired container.
func withContainer(ctx context.Context, fn func(c *container.Container) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel))
	c, err := container.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer c.Shutdown(ctx)
	return fn(c)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseDay(v string) (time.Time, error) {
	if v == "" {
		return time.Now().UTC().Truncate(24 * time.Hour), nil
	}
	t, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD): %w", v, err)
	}
	return t, nil
}

func newPredictCmd() *cobra.Command {
	var cultivar, region, rootstock, asOf, format string
	var currentGDD float64

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict Brix for a cultivar grown in a region",
		Long: `Predict Brix, quality tier and harvest timing.

Calibration recorded for the cultivar, region and season is applied when
enough measurements exist.

Example: gobrix predict --cultivar navel_orange --region indian_river_fl --as-of 2025-12-15 --format markdown`,
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := parseDay(asOf)
			if err != nil {
				return err
			}
			in := quality.Input{
				CultivarID:  core.CultivarID(cultivar),
				RegionID:    core.RegionID(region),
				RootstockID: core.RootstockID(rootstock),
				AsOf:        day,
			}
			if cmd.Flags().Changed("gdd") {
				in.CurrentGDD = &currentGDD
			}
			return withContainer(cmd.Context(), func(c *container.Container) error {
				p, err := c.Predictions.Predict(cmd.Context(), in)
				if err != nil {
					return err
				}
				if format == "markdown" {
					fmt.Print(report.Markdown(report.Input{
						Result:       p.Result,
						RawScore:     p.RawScore,
						Calibration:  &p.Calibration,
						Distribution: &p.Distribution,
					}))
					return nil
				}
				return printJSON(p)
			})
		},
	}

	cmd.Flags().StringVar(&cultivar, "cultivar", "", "Cultivar id")
	cmd.Flags().StringVar(&region, "region", "", "Growing region id")
	cmd.Flags().StringVar(&rootstock, "rootstock", "", "Rootstock id (optional)")
	cmd.Flags().StringVar(&asOf, "as-of", "", "Observation date, YYYY-MM-DD (default today)")
	cmd.Flags().Float64Var(&currentGDD, "gdd", 0, "Accumulated GDD so far this season")
	cmd.Flags().StringVar(&format, "format", "json", "Output format: json|markdown")
	_ = cmd.MarkFlagRequired("cultivar")
	_ = cmd.MarkFlagRequired("region")
	return cmd
}

func newInferCmd() *cobra.Command {
	var signals inference.Signals
	var asOf string
	var brix float64

	cmd := &cobra.Command{
		Use:   "infer",
		Short: "Predict from shelf signals such as a PLU sticker and store location",
		Long: `Resolve a cultivar and region from consumer-visible signals and predict
when both could be resolved. Unresolved signals are listed as data gaps.

Example: gobrix infer --plu 94012 --origin "Indian River" --brix 12.5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := parseDay(asOf)
			if err != nil {
				return err
			}
			signals.AsOf = day
			if cmd.Flags().Changed("brix") {
				signals.Brix = &brix
			}
			return withContainer(cmd.Context(), func(c *container.Container) error {
				out, err := c.Inference.Infer(cmd.Context(), signals)
				if err != nil {
					return err
				}
				return printJSON(out)
			})
		},
	}

	cmd.Flags().StringVar(&signals.PLU, "plu", "", "4 or 5 digit PLU code")
	cmd.Flags().StringVar(&signals.TradeName, "trade-name", "", "Marketing name on the label")
	cmd.Flags().StringVar(&signals.Origin, "origin", "", "Origin label")
	cmd.Flags().StringVar(&signals.StoreState, "state", "", "Two letter state of the store")
	cmd.Flags().StringVar(&asOf, "as-of", "", "Observation date, YYYY-MM-DD (default today)")
	cmd.Flags().Float64Var(&brix, "brix", 0, "Refractometer reading, if one was taken")
	return cmd
}

func newCalibrateCmd() *cobra.Command {
	var in app.MeasurementInput
	var cultivar, region, measuredAt string
	var predicted float64

	cmd := &cobra.Command{
		Use:   "calibrate",
		Short: "Record a measured Brix value against a prediction",
		Long: `Fold a lab or field measurement into the calibration for its cultivar,
region and season. Without --predicted the measurement is scored against a
fresh uncalibrated prediction for the measurement date.

Only persistent drivers keep the result between runs (DATABASE_DRIVER=sqlite|postgres).

Example: gobrix calibrate --cultivar navel_orange --region indian_river_fl --actual 12.4 --measured-at 2025-12-01`,
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := parseDay(measuredAt)
			if err != nil {
				return err
			}
			in.CultivarID = core.CultivarID(cultivar)
			in.RegionID = core.RegionID(region)
			in.MeasuredAt = day
			if cmd.Flags().Changed("predicted") {
				in.Predicted = &predicted
			}
			return withContainer(cmd.Context(), func(c *container.Container) error {
				rec, err := c.Calibration.RecordMeasurement(cmd.Context(), in)
				if err != nil {
					return err
				}
				return printJSON(rec)
			})
		},
	}

	cmd.Flags().StringVar(&cultivar, "cultivar", "", "Cultivar id")
	cmd.Flags().StringVar(&region, "region", "", "Growing region id")
	cmd.Flags().IntVar(&in.SeasonYear, "season", 0, "Season year (default: year of --measured-at)")
	cmd.Flags().Float64Var(&predicted, "predicted", 0, "Predicted Brix the measurement is compared against")
	cmd.Flags().Float64Var(&in.Actual, "actual", 0, "Measured Brix")
	cmd.Flags().StringVar(&in.Source, "source", "cli", "Measurement source")
	cmd.Flags().StringVar(&measuredAt, "measured-at", "", "Measurement date, YYYY-MM-DD (default today)")
	_ = cmd.MarkFlagRequired("cultivar")
	_ = cmd.MarkFlagRequired("region")
	_ = cmd.MarkFlagRequired("actual")
	return cmd
}

func newGDDCmd() *cobra.Command {
	var cultivar, region, from, to, version string
	var compare bool

	cmd := &cobra.Command{
		Use:   "gdd",
		Short: "Accumulate growing degree days over a date range",
		Long: `Accumulate GDD for a cultivar in a region with the formula version chosen
for it, or an explicit --version. --compare runs every registered version.

Example: gobrix gdd --cultivar elberta_peach --region georgia_piedmont --from 2025-03-01 --to 2025-06-30`,
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := parseDay(from)
			if err != nil {
				return err
			}
			end, err := parseDay(to)
			if err != nil {
				return err
			}
			return withContainer(cmd.Context(), func(c *container.Container) error {
				if compare {
					out, err := c.GDD.Compare(cmd.Context(), core.CultivarID(cultivar), core.RegionID(region), start, end)
					if err != nil {
						return err
					}
					return printJSON(out)
				}
				acc, err := c.GDD.Accumulate(cmd.Context(), core.CultivarID(cultivar), core.RegionID(region), start, end, gdd.Version(version))
				if err != nil {
					return err
				}
				return printJSON(acc)
			})
		},
	}

	cmd.Flags().StringVar(&cultivar, "cultivar", "", "Cultivar id")
	cmd.Flags().StringVar(&region, "region", "", "Growing region id")
	cmd.Flags().StringVar(&from, "from", "", "First day, YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "Last day, YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&version, "version", "", "Formula version: v1|v2|v3 (default: selected per cultivar)")
	cmd.Flags().BoolVar(&compare, "compare", false, "Compare every registered version")
	_ = cmd.MarkFlagRequired("cultivar")
	_ = cmd.MarkFlagRequired("region")
	_ = cmd.MarkFlagRequired("from")
	return cmd
}

func newExportWorkbookCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export-workbook [path]",
		Short: "Write the built-in reference data to an Excel workbook",
		Long: `Write the built-in cultivars, regions, rootstocks, PLU codes and trade
names to a workbook that can be edited and loaded with REFERENCE_WORKBOOK.

Example: gobrix export-workbook reference.xlsx`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := excel.WriteWorkbook(args[0], container.FixtureWorkbook()); err != nil {
				return err
			}
			fmt.Printf("Wrote reference workbook to %s\n", args[0])
			return nil
		},
	}
}
