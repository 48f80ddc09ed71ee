package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/piwi3910/sheetnest/internal/nesting"
)

// compareCmd represents the compare command
var compareCmd = &cobra.Command{
	Use:   "compare <job.yaml | parts.csv | parts.xlsx>",
	Short: "Compare nesting strategies and settings side by side",
	Long: `Runs the same job through every strategy plus kerf and margin
variations and prints a comparison table, so the best settings can be picked
before committing to a cut.`,
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

		scenarios := nesting.BuildDefaultScenarios(settings)
		results, err := nesting.CompareScenarios(ctx, scenarios, parts, sheets)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
		fmt.Fprintln(w, "SCENARIO\tSHEETS\tPLACED\tUNPLACED\tWASTE")
		for _, r := range results {
			fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%.1f%%\n",
				r.Scenario.Name, r.SheetsUsed, r.PlacedCount, r.UnplacedCount, r.WastePercent)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(compareCmd)
	addSettingsFlags(compareCmd)
}
