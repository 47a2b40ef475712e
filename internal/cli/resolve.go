package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/LewisWJackson/confirmd-sub001/internal/model"
)

var (
	resolveOutcome  string
	resolveEvidence string
	resolveNotes    string
	correctedText   string
)

// resolveCmd represents the resolve command
var resolveCmd = &cobra.Command{
	Use:   "resolve <claim-id>",
	Short: "Record a ground-truth resolution for a claim",
	Long: `Resolve settles a claim against ground truth and feeds the outcome
into the source's credibility history. This is the only path for
indefinite claims, which never auto-resolve.

Outcomes: true, false, partially_true, unresolved.

Example:
  confirmd resolve 4f9c... --outcome true --evidence-url https://www.sec.gov/...`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

// correctCmd represents the correct command
var correctCmd = &cobra.Command{
	Use:   "correct <claim-id>",
	Short: "Open a correction for a resolved claim",
	Long: `Correct creates a new unreviewed claim superseding a resolved one.
Settled records are never rewritten; the correction goes through the
full verification lifecycle on its own.

Example:
  confirmd correct 4f9c... --text "SEC fined ExampleCorp $2M, not $20M"`,
	Args: cobra.ExactArgs(1),
	RunE: runCorrect,
}

func init() {
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(correctCmd)

	resolveCmd.Flags().StringVar(&resolveOutcome, "outcome", "", "resolution outcome (required)")
	resolveCmd.Flags().StringVar(&resolveEvidence, "evidence-url", "", "URL of the settling evidence")
	resolveCmd.Flags().StringVar(&resolveNotes, "notes", "", "resolution notes")
	_ = resolveCmd.MarkFlagRequired("outcome")
	addStackFlags(resolveCmd)

	correctCmd.Flags().StringVar(&correctedText, "text", "", "corrected claim text (defaults to the original)")
	addStackFlags(correctCmd)
}

func parseOutcome(s string) (model.ResolutionOutcome, error) {
	switch model.ResolutionOutcome(s) {
	case model.OutcomeTrue, model.OutcomeFalse, model.OutcomePartiallyTrue, model.OutcomeUnresolved:
		return model.ResolutionOutcome(s), nil
	}
	return "", fmt.Errorf("invalid outcome %q (want true, false, partially_true, or unresolved)", s)
}

func runResolve(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	outcome, err := parseOutcome(resolveOutcome)
	if err != nil {
		return err
	}

	p, err := buildPipeline()
	if err != nil {
		return err
	}

	if err := p.Resolve(ctx, args[0], outcome, resolveEvidence, resolveNotes); err != nil {
		return fmt.Errorf("resolve claim: %w", err)
	}

	fmt.Printf("Resolved claim %s as %s\n", args[0], outcome)
	return nil
}

func runCorrect(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	p, err := buildPipeline()
	if err != nil {
		return err
	}

	claim, err := p.Correct(ctx, args[0], correctedText)
	if err != nil {
		return fmt.Errorf("open correction: %w", err)
	}

	fmt.Printf("Opened correction %s superseding %s\n", claim.ID, claim.SupersedesID)
	return nil
}
