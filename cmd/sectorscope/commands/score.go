package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/wrenlab/sectorscope/internal/contracts"
)

// scoreCmd represents the score command
var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Compute sector opportunity scores once and print them",
	Long: `Runs one scoring cycle and prints the ranked sector table.

Weights may be partial and unnormalized; they are renormalized to sum
to 1. Omitted weights fall back to the defaults
(momentum 0.25, valuation 0.20, growth 0.20, innovation 0.20, macro 0.15).

Example:
  go run ./cmd/sectorscope score
  go run ./cmd/sectorscope score --momentum 2 --valuation 1 --refresh
  go run ./cmd/sectorscope score --json`,
	RunE: runScore,
}

var (
	scoreRefresh bool
	scoreJSON    bool
	weightFlags  = map[contracts.Indicator]*float64{}
)

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().BoolVar(&scoreRefresh, "refresh", false, "bypass cache validity and re-hit providers")
	scoreCmd.Flags().BoolVar(&scoreJSON, "json", false, "print the raw JSON payload")
	for _, ind := range contracts.Indicators() {
		weightFlags[ind] = scoreCmd.Flags().Float64(string(ind), 0, fmt.Sprintf("weight for the %s indicator", ind))
	}
}

func runScore(cmd *cobra.Command, args []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.close()

	weights := make(contracts.Weights)
	for ind, v := range weightFlags {
		if v != nil && *v > 0 {
			weights[ind] = *v
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	res, err := a.engine.Score(ctx, weights, scoreRefresh)
	if err != nil {
		return err
	}

	if scoreJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tSECTOR\tSCORE\tMOM\tVAL\tGRW\tINN\tMAC")
	for _, sc := range res.Scores {
		fmt.Fprintf(w, "%d\t%s\t%.1f\t%.1f\t%.1f\t%.1f\t%.1f\t%.1f\n",
			sc.Rank, sc.Sector, sc.OpportunityScore,
			sc.MomentumScore, sc.ValuationScore, sc.GrowthScore,
			sc.InnovationScore, sc.MacroScore)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\nweights: %v\ncomputed: %s\n", res.WeightsUsed, res.Timestamp.Format(time.RFC3339))
	for _, st := range res.Sources {
		if st.Status != contracts.StatusOK {
			fmt.Printf("source %s: %s (%s)\n", st.Source, st.Status, st.Message)
		}
	}
	return nil
}
