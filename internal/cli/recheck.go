package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var recheckTimeout time.Duration

// recheckCmd represents the recheck command
var recheckCmd = &cobra.Command{
	Use:   "recheck",
	Short: "Re-verify claims awaiting a scheduled re-check",
	Long: `Recheck runs a fresh verification round for every reviewed claim that
is pending re-check. Claims whose resolve-by deadline has passed are
settled from the new verdict; the rest get an updated entry in their
verdict log.

Example:
  confirmd recheck --storage postgres --dsn "postgres://..."`,
	RunE: runRecheck,
}

func init() {
	rootCmd.AddCommand(recheckCmd)

	recheckCmd.Flags().DurationVar(&recheckTimeout, "timeout", 10*time.Minute, "overall re-check timeout")
	addStackFlags(recheckCmd)
}

func runRecheck(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), recheckTimeout)
	defer cancel()

	p, err := buildPipeline()
	if err != nil {
		return err
	}

	summary, err := p.RunRecheck(ctx)
	if err != nil {
		return fmt.Errorf("recheck failed: %w", err)
	}

	fmt.Printf("Checked:  %d\n", summary.Checked)
	fmt.Printf("Resolved: %d\n", summary.Resolved)
	fmt.Printf("Failed:   %d\n", summary.Failed)
	return nil
}
