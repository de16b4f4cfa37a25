package commands

import (
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sectorscope",
	Short: "Sector opportunity scoring pipeline",
	Long: `sectorscope ranks the eleven GICS sectors by a composite opportunity
score built from five signals: momentum, valuation, growth, innovation
and macro rate sensitivity. Each signal is fetched from a different
external provider, cached with a TTL, z-score normalized across the
sector cross-section and combined with adjustable weights.

Usage:
  go run ./cmd/sectorscope [command]

Examples:
  go run ./cmd/sectorscope api
  go run ./cmd/sectorscope score --momentum 0.4 --refresh
  go run ./cmd/sectorscope cache info
  go run ./cmd/sectorscope quality`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}
