package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/piwi3910/sheetnest/internal/model"
)

// estimateCmd represents the estimate command
var estimateCmd = &cobra.Command{
	Use:   "estimate <job.yaml | parts.csv | parts.xlsx>",
	Short: "Estimate sheet purchase quantity and cost",
	Long: `Computes an area-based purchase estimate for a part list without
running the full optimizer: total part area plus a waste allowance, divided
by the sheet area.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig(cmd)

		parts, sheets, settings, err := loadJobInput(args[0], cfg)
		if err != nil {
			return err
		}
		settings = applySettingsFlags(cmd, settings)

		waste, _ := cmd.Flags().GetFloat64("waste")
		price, _ := cmd.Flags().GetFloat64("price")

		sheet := cfg.DefaultSheet
		if len(sheets) > 0 {
			sheet = sheets[0]
		}

		est := model.CalculatePurchaseEstimate(parts, sheet, settings.Kerf, waste, price)

		units := 0
		for _, p := range parts {
			units += p.Quantity
		}

		fmt.Printf("Parts:           %d (%.0f mm² total)\n", units, est.TotalPartArea)
		fmt.Printf("Sheet:           %s (%.0f x %.0f mm)\n", sheet.Label, sheet.Width, sheet.Height)
		fmt.Printf("Waste allowance: %.0f%%\n", waste)
		fmt.Printf("Sheets minimum:  %d\n", est.SheetsNeededMin)
		fmt.Printf("Sheets to buy:   %d\n", est.SheetsWithWaste)
		if price > 0 {
			fmt.Printf("Estimated cost:  %.2f\n", est.EstimatedCost)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(estimateCmd)
	addSettingsFlags(estimateCmd)
	estimateCmd.Flags().Float64("waste", 15, "Waste allowance percentage")
	estimateCmd.Flags().Float64("price", 0, "Price per sheet for cost estimation")
}
