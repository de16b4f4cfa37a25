package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

// qualityCmd represents the quality command
var qualityCmd = &cobra.Command{
	Use:   "quality",
	Short: "Probe all data sources and report their health",
	RunE:  runQuality,
}

func init() {
	rootCmd.AddCommand(qualityCmd)
}

func runQuality(cmd *cobra.Command, args []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.close()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	report := a.monitor.Check(ctx)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SOURCE\tSTATUS\tMESSAGE")
	for _, s := range report.Sources {
		fmt.Fprintf(w, "%s\t%s\t%s\n", s.Source, s.Status, s.Message)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\noverall: %s\n", report.Overall)
	return nil
}
