package worker

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/LewisWJackson/confirmd-sub001/internal/model"
)

// Processor verifies a single ingested item end to end.
type Processor interface {
	ProcessItem(ctx context.Context, item model.Item) (ItemReport, error)
}

// ItemReport summarizes one item's trip through the pipeline.
type ItemReport struct {
	ItemID    string
	Duplicate bool
	ClaimIDs  []string
	Resolved  int
}

// ItemJob wraps one item for pool execution.
type ItemJob struct {
	Item      model.Item
	Processor Processor
}

// Execute runs the item through the processor. Errors are carried in the
// result, never panicked or swallowed.
func (j *ItemJob) Execute(ctx context.Context) Result {
	report, err := j.Processor.ProcessItem(ctx, j.Item)
	return &ItemResult{
		Item:   j.Item,
		Report: report,
		Error:  err,
	}
}

// ItemResult is the result of an item job.
type ItemResult struct {
	Item   model.Item
	Report ItemReport
	Error  error
}

// GetError returns the processing error, if any.
func (r *ItemResult) GetError() error {
	return r.Error
}

// BatchProcessor fans a set of items out over a worker pool.
type BatchProcessor struct {
	processor   Processor
	concurrency int
}

// NewBatchProcessor creates a batch processor with the given concurrency.
func NewBatchProcessor(processor Processor, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		processor:   processor,
		concurrency: concurrency,
	}
}

// ProcessItems processes items concurrently and returns one result per
// item. A failure on one item does not stop the others.
func (b *BatchProcessor) ProcessItems(ctx context.Context, items []model.Item) []*ItemResult {
	if len(items) == 0 {
		return []*ItemResult{}
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	// Submissions run on their own goroutine so result draining keeps
	// pace with batches larger than the pool's channel buffers.
	go func() {
		for _, item := range items {
			pool.Submit(&ItemJob{
				Item:      item,
				Processor: b.processor,
			})
		}
		close(pool.jobQueue)
		pool.wg.Wait()
		pool.closeResults()
	}()

	itemResults := make([]*ItemResult, 0, len(items))
	for result := range pool.results {
		itemResults = append(itemResults, result.(*ItemResult))
	}

	return itemResults
}

// ProcessFile reads items from a JSON-lines file and processes them.
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*ItemResult, error) {
	items, err := ReadItemsFromFile(filePath)
	if err != nil {
		return nil, errors.Wrap(err, "read items")
	}

	return b.ProcessItems(ctx, items), nil
}

// ReadItemsFromFile reads ingested items from a file, one JSON object per
// line. Blank lines and # comments are skipped.
func ReadItemsFromFile(filePath string) ([]model.Item, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, errors.Wrap(err, "open file")
	}
	defer func() { _ = file.Close() }()

	var items []model.Item

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		var item model.Item
		if err := json.Unmarshal([]byte(text), &item); err != nil {
			return nil, errors.Wrapf(err, "parse item at line %d", line)
		}
		items = append(items, item)
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "scan file")
	}

	return items, nil
}
