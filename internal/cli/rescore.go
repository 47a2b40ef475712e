package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var rescoreTimeout time.Duration

// rescoreCmd represents the rescore command
var rescoreCmd = &cobra.Command{
	Use:   "rescore",
	Short: "Recompute credibility scores for all sources",
	Long: `Rescore recomputes every source's credibility snapshot from its
resolved-claim history. Scores use shrinkage toward the prior, so
sources with thin track records stay near the baseline until the
evidence accumulates.

Example:
  confirmd rescore --storage postgres --dsn "postgres://..."`,
	RunE: runRescore,
}

func init() {
	rootCmd.AddCommand(rescoreCmd)

	rescoreCmd.Flags().DurationVar(&rescoreTimeout, "timeout", 5*time.Minute, "overall rescore timeout")
	addStackFlags(rescoreCmd)
}

func runRescore(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), rescoreTimeout)
	defer cancel()

	p, err := buildPipeline()
	if err != nil {
		return err
	}

	scores, err := p.RunRescore(ctx)
	if err != nil {
		return fmt.Errorf("rescore failed: %w", err)
	}

	if len(scores) == 0 {
		fmt.Println("No sources to score.")
		return nil
	}

	fmt.Printf("%-24s %8s %8s %6s %16s\n", "SOURCE", "TRACK", "METHOD", "N", "95% CI")
	for _, s := range scores {
		fmt.Printf("%-24s %8.1f %8.1f %6d [%5.1f, %5.1f]\n",
			s.SourceID, s.TrackRecord, s.MethodDiscipline, s.SampleSize, s.CILow, s.CIHigh)
	}
	return nil
}
