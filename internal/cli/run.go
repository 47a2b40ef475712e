package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/LewisWJackson/confirmd-sub001/internal/logging"
	"github.com/LewisWJackson/confirmd-sub001/internal/pipeline"
	"github.com/LewisWJackson/confirmd-sub001/internal/worker"
)

var (
	runInput       string
	runWorkers     int
	runTimeout     time.Duration
	storageEngine  string
	storageDSN     string
	llmProvider    string
	llmModel       string
	searchBackend  string
	searchEndpoint string
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Verify a batch of ingested news items",
	Long: `Run processes ingested items end to end: claim extraction, evidence
retrieval and grading, verdict synthesis, and resolution transitions.

Items are read from a JSON-lines file, one item object per line.
Duplicate content (by normalized hash) is skipped.

Example:
  confirmd run --input items.jsonl
  confirmd run --input items.jsonl --llm-provider openai --llm-model gpt-4o-mini
  confirmd run --input items.jsonl --storage postgres --dsn "postgres://..."`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runInput, "input", "", "JSON-lines file of items to verify (required)")
	runCmd.Flags().IntVar(&runWorkers, "workers", 0, "concurrent item workers (default from config)")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 10*time.Minute, "overall batch timeout")
	_ = runCmd.MarkFlagRequired("input")

	addStackFlags(runCmd)
}

// addStackFlags registers the storage/LLM/search selection flags shared by
// the verification commands.
func addStackFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&storageEngine, "storage", "", "storage engine (memory, postgres)")
	cmd.Flags().StringVar(&storageDSN, "dsn", "", "Postgres DSN (with --storage postgres)")
	cmd.Flags().StringVar(&llmProvider, "llm-provider", "", "completion provider (openai, ollama; empty for rule-based)")
	cmd.Flags().StringVar(&llmModel, "llm-model", "", "completion model name")
	cmd.Flags().StringVar(&searchBackend, "search-backend", "", "evidence search backend (http, static)")
	cmd.Flags().StringVar(&searchEndpoint, "search-endpoint", "", "evidence search endpoint URL")
}

// buildPipeline resolves configuration, applies stack flag overrides, and
// wires the pipeline.
func buildPipeline() (*pipeline.Pipeline, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	if storageEngine != "" {
		cfg.Storage.Engine = storageEngine
	}
	if storageDSN != "" {
		cfg.Storage.DSN = storageDSN
	}
	if llmProvider != "" {
		cfg.LLM.Provider = llmProvider
	}
	if llmModel != "" {
		cfg.LLM.Model = llmModel
	}
	if searchBackend != "" {
		cfg.Search.Backend = searchBackend
	}
	if searchEndpoint != "" {
		cfg.Search.Endpoint = searchEndpoint
	}
	if runWorkers > 0 {
		cfg.Concurrency.Workers = runWorkers
	}

	logger, err := logging.New(cfg.Output.Verbose)
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}

	return pipeline.NewFromConfig(cfg, logger)
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	items, err := worker.ReadItemsFromFile(runInput)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	if len(items) == 0 {
		fmt.Fprintln(os.Stderr, "No items to process.")
		return nil
	}

	p, err := buildPipeline()
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Processing %d items\n", len(items))
	}

	summary := p.RunBatch(ctx, items)

	fmt.Printf("Items:      %d\n", summary.Items)
	fmt.Printf("Duplicates: %d\n", summary.Duplicates)
	fmt.Printf("Claims:     %d\n", summary.Claims)
	fmt.Printf("Resolved:   %d\n", summary.Resolved)
	fmt.Printf("Failed:     %d\n", summary.Failed)

	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d items failed", summary.Failed, summary.Items)
	}
	return nil
}
