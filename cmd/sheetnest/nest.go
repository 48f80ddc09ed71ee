package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/piwi3910/sheetnest/internal/config"
	"github.com/piwi3910/sheetnest/internal/export"
	"github.com/piwi3910/sheetnest/internal/importer"
	"github.com/piwi3910/sheetnest/internal/model"
	"github.com/piwi3910/sheetnest/internal/nesting"
	"github.com/piwi3910/sheetnest/internal/quality"
)

// nestCmd represents the nest command
var nestCmd = &cobra.Command{
	Use:   "nest <job.yaml | parts.csv | parts.xlsx>",
	Short: "Nest parts onto sheets and export the layout",
	Long: `Runs the nesting optimizer on a job. YAML job files carry their own
sheets and settings; CSV and Excel part lists use the configured default
sheet. Output formats are chosen by the extension of each --out path.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig(cmd)

		parts, sheets, settings, err := loadJobInput(args[0], cfg)
		if err != nil {
			return err
		}
		settings = applySettingsFlags(cmd, settings)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		sched := nesting.NewScheduler(settings)
		sched.Progress = func(sheetIndex, placedSoFar, remaining int) {
			log.Debug("Sheet complete", "sheet", sheetIndex+1, "placed", placedSoFar, "remaining", remaining)
		}

		var result model.NestingResult
		if refine, _ := cmd.Flags().GetBool("refine"); refine {
			result, err = nesting.RefineOrder(ctx, parts, sheets, settings, nesting.DefaultRefineConfig())
		} else {
			result, err = sched.Run(ctx, parts, sheets)
		}
		if err != nil {
			return err
		}

		printResultSummary(result)

		if check, _ := cmd.Flags().GetBool("check"); check {
			report := quality.Check(result, settings, parts)
			printQualityReport(report)
			if !report.Passed() {
				return fmt.Errorf("quality check failed with score %d", report.Score)
			}
		}

		if offcuts, _ := cmd.Flags().GetBool("offcuts"); offcuts {
			for _, oc := range model.DetectAllOffcuts(result, settings.Kerf) {
				log.Info("Reusable offcut", "sheet", oc.SheetIndex+1,
					"size", fmt.Sprintf("%.0fx%.0f", oc.Width, oc.Height))
			}
		}

		outputs, _ := cmd.Flags().GetStringArray("out")
		for _, out := range outputs {
			if err := writeOutput(out, result, settings); err != nil {
				return err
			}
			log.Info("Exported", "path", out)

			if labels, _ := cmd.Flags().GetBool("labels"); labels && strings.EqualFold(filepath.Ext(out), ".pdf") {
				labelPath := strings.TrimSuffix(out, filepath.Ext(out)) + "_labels.pdf"
				if err := export.ExportLabels(labelPath, result); err != nil {
					return err
				}
				log.Info("Exported labels", "path", labelPath)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(nestCmd)

	addSettingsFlags(nestCmd)
	nestCmd.Flags().StringArray("out", nil, "Output file (.pdf, .dxf, .csv, .xlsx); repeatable")
	nestCmd.Flags().Bool("refine", false, "Refine part order with the genetic optimizer")
	nestCmd.Flags().Bool("check", false, "Run the quality checker and fail on critical issues")
	nestCmd.Flags().Bool("labels", false, "Also export QR part labels next to each PDF output")
	nestCmd.Flags().Bool("offcuts", false, "Report reusable offcuts after nesting")
}

// loadJobInput reads the job from YAML, CSV, or Excel. Part-list formats
// borrow the default sheet and settings from the application config.
func loadJobInput(path string, cfg config.AppConfig) ([]model.Part, []model.SheetDefinition, model.Settings, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return config.LoadJob(path, cfg.DefaultSettings)
	case ".csv":
		return partListInput(importer.ImportCSV(path), cfg)
	case ".xlsx", ".xls":
		return partListInput(importer.ImportExcel(path), cfg)
	default:
		return nil, nil, model.Settings{}, fmt.Errorf("unsupported input format %q", filepath.Ext(path))
	}
}

func partListInput(res importer.ImportResult, cfg config.AppConfig) ([]model.Part, []model.SheetDefinition, model.Settings, error) {
	for _, w := range res.Warnings {
		log.Warn(w)
	}
	if len(res.Errors) > 0 {
		return nil, nil, model.Settings{}, fmt.Errorf("import failed: %s", strings.Join(res.Errors, "; "))
	}
	return res.Parts, []model.SheetDefinition{cfg.DefaultSheet}, cfg.DefaultSettings, nil
}

// writeOutput dispatches on the output file extension.
func writeOutput(path string, result model.NestingResult, settings model.Settings) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return export.ExportPDF(path, result, settings)
	case ".dxf":
		base := strings.TrimSuffix(path, filepath.Ext(path))
		_, err := export.ExportDXFAll(base, result, settings)
		return err
	case ".csv":
		return export.ExportCSV(path, result)
	case ".xlsx":
		return export.ExportXLSX(path, result, settings)
	default:
		return fmt.Errorf("unsupported output format %q", filepath.Ext(path))
	}
}

func printResultSummary(result model.NestingResult) {
	log.Info("Nesting complete",
		"sheets", result.SheetCount(),
		"placed", len(result.Placements),
		"unplaced", len(result.Unplaced),
		"utilization", fmt.Sprintf("%.1f%%", result.TotalUtilization()*100))

	for _, up := range result.Unplaced {
		log.Warn("Unplaced part", "label", up.Part.Label,
			"size", fmt.Sprintf("%.0fx%.0f", up.Part.Width, up.Part.Height),
			"reason", up.Reason)
	}
}

func printQualityReport(report quality.Report) {
	critical, warning := report.Counts()
	log.Info("Quality check", "score", report.Score, "critical", critical, "warnings", warning)
	for _, iss := range report.Issues {
		if iss.Severity == quality.SeverityCritical {
			log.Error(iss.Message, "sheet", iss.SheetIndex+1, "code", iss.Code)
		} else {
			log.Warn(iss.Message, "sheet", iss.SheetIndex+1, "code", iss.Code)
		}
	}
}
