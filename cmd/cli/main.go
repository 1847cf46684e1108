package main

import (
	"fmt"
	"io"
	"os"

	"airsense/adapters/stats/temporal"
	"airsense/internal/airquality"
	"airsense/internal/config"
	apperrors "airsense/internal/errors"
	"airsense/internal/pipeline"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// columnFlags are shared by every command that runs the pipeline
type columnFlags struct {
	timeCol  string
	valueCol string
}

func (f *columnFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.timeCol, "time-col", "", "Use this column as the time column instead of detecting it")
	cmd.Flags().StringVar(&f.valueCol, "value-col", "", "Use this column as the value column instead of detecting it")
}

func (f *columnFlags) override() pipeline.ColumnOverride {
	return pipeline.ColumnOverride{TimeColumn: f.timeCol, ValueColumn: f.valueCol}
}

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:           "airsense-cli",
		Short:         "Inspect and analyze sensor exports offline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newInspectCmd(),
		newAnalyzeCmd(),
		newReportCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error [%s]: %v\n", apperrors.GetCode(err), err)
		os.Exit(1)
	}
}

func newInspectCmd() *cobra.Command {
	var cols columnFlags
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "inspect [file]",
		Short: "Detect columns and normalize the time axis",
		Long: `Read a CSV, CSV.GZ or XLSX export, detect the time and value columns,
normalize timestamps to UTC and print the diagnostics.

Example: airsense-cli inspect influxdata.csv --value-col co2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			result, table, err := runPipeline(cfg, args[0], cols.override())
			if err != nil {
				if table != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "columns: %v\n", table.ColumnNames())
				}
				if result != nil && pipeline.IsRecoverable(err) {
					fmt.Fprintln(cmd.ErrOrStderr(), "pick the columns with --time-col and --value-col")
				}
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			printInspection(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cols.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full result, series included, as JSON")
	return cmd
}

func newAnalyzeCmd() *cobra.Command {
	var cols columnFlags
	var alert float64
	var interval string

	cmd := &cobra.Command{
		Use:   "analyze [file]",
		Short: "Summarize CO2 readings: bands, statistics, alerts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			result, _, err := runPipeline(cfg, args[0], cols.override())
			if err != nil {
				return err
			}
			analysis, err := analyze(cfg, result, alertFlag(cmd, alert), interval)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), analysis)
		},
	}

	cols.register(cmd)
	cmd.Flags().Float64Var(&alert, "alert", 0, "Alert threshold in ppm (default: midway between the band edges)")
	cmd.Flags().StringVar(&interval, "interval", string(temporal.IntervalHour), "Resample interval: minute, hour, day or week")
	return cmd
}

func newReportCmd() *cobra.Command {
	var cols columnFlags
	var alert float64
	var format string
	var output string

	cmd := &cobra.Command{
		Use:   "report [file]",
		Short: "Write a Markdown or HTML report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "markdown" && format != "html" {
				return apperrors.InvalidInput(fmt.Sprintf("unknown format %q (use markdown or html)", format))
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			result, _, err := runPipeline(cfg, args[0], cols.override())
			if err != nil {
				return err
			}
			analysis, err := analyze(cfg, result, alertFlag(cmd, alert), "")
			if err != nil {
				return err
			}

			report := airquality.RenderReport(airquality.ReportInput{
				Source:      result.Source,
				Detection:   result.Detection,
				Diagnostics: result.Diagnostics,
				Warnings:    result.Warnings,
				Analysis:    analysis,
			})
			body := report.Markdown
			if format == "html" {
				body = report.HTML
			}

			if output == "" {
				_, err = io.WriteString(cmd.OutOrStdout(), body)
				return err
			}
			if err := os.WriteFile(output, []byte(body), 0o644); err != nil {
				return apperrors.Wrapf(err, "failed to write %s", output)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "report written to %s\n", output)
			return nil
		},
	}

	cols.register(cmd)
	cmd.Flags().Float64Var(&alert, "alert", 0, "Alert threshold in ppm (default: midway between the band edges)")
	cmd.Flags().StringVar(&format, "format", "markdown", "Output format: markdown or html")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of stdout")
	return cmd
}

// alertFlag is nil unless --alert was given, so an explicit 0 is kept.
func alertFlag(cmd *cobra.Command, alert float64) *float64 {
	if !cmd.Flags().Changed("alert") {
		return nil
	}
	return &alert
}
