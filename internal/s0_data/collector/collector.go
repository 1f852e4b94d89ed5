// Package collector loads cleaned sales records into PostgreSQL with a
// pool of batch writers.
package collector

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/wonny/salescast/internal/contracts"
)

// BatchSaver writes one batch (s0_data.OrderRepository).
type BatchSaver interface {
	SaveBatch(ctx context.Context, records []contracts.SalesRecord) error
}

// Collector imports records into the order store
// ⭐ SSOT: DB 적재는 이 패키지에서만
type Collector struct {
	repo BatchSaver
	log  zerolog.Logger
}

// Config holds collector configuration
type Config struct {
	Workers   int // Number of concurrent workers
	BatchSize int // records per round trip
}

// DefaultConfig 4 workers, 500 records per batch
func DefaultConfig() Config {
	return Config{Workers: 4, BatchSize: 500}
}

// NewCollector creates a new Collector instance
func NewCollector(repo BatchSaver, log zerolog.Logger) *Collector {
	return &Collector{
		repo: repo,
		log:  log.With().Str("component", "collector").Logger(),
	}
}

// BatchResult represents the result of one batch write
type BatchResult struct {
	Batch int
	Count int
	Error error
}

// Summary totals of an import
type Summary struct {
	Batches  int
	Imported int
	Failed   int // records in failed batches
	Errors   []error
}

// Import splits records into batches and writes them concurrently.
// A failed batch does not stop the others.
func (c *Collector) Import(ctx context.Context, records []contracts.SalesRecord, cfg Config) Summary {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultConfig().BatchSize
	}

	var batches [][]contracts.SalesRecord
	for i := 0; i < len(records); i += cfg.BatchSize {
		end := i + cfg.BatchSize
		if end > len(records) {
			end = len(records)
		}
		batches = append(batches, records[i:end])
	}

	c.log.Info().
		Int("records", len(records)).
		Int("batches", len(batches)).
		Int("workers", cfg.Workers).
		Msg("starting import")

	batchCh := make(chan int, len(batches))
	resultCh := make(chan BatchResult, len(batches))

	var wg sync.WaitGroup
	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			c.worker(ctx, workerID, batches, batchCh, resultCh)
		}(i)
	}

	for i := range batches {
		batchCh <- i
	}
	close(batchCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	sum := Summary{Batches: len(batches)}
	for res := range resultCh {
		if res.Error != nil {
			sum.Failed += res.Count
			sum.Errors = append(sum.Errors, res.Error)
			continue
		}
		sum.Imported += res.Count
	}

	c.log.Info().
		Int("imported", sum.Imported).
		Int("failed", sum.Failed).
		Msg("import completed")
	return sum
}

func (c *Collector) worker(ctx context.Context, workerID int, batches [][]contracts.SalesRecord, batchCh <-chan int, resultCh chan<- BatchResult) {
	for i := range batchCh {
		batch := batches[i]
		if err := ctx.Err(); err != nil {
			resultCh <- BatchResult{Batch: i, Count: len(batch), Error: err}
			continue
		}

		if err := c.repo.SaveBatch(ctx, batch); err != nil {
			c.log.Error().Err(err).Int("worker", workerID).Int("batch", i).Msg("failed to save batch")
			resultCh <- BatchResult{Batch: i, Count: len(batch), Error: err}
			continue
		}

		c.log.Debug().Int("worker", workerID).Int("batch", i).Int("count", len(batch)).Msg("saved batch")
		resultCh <- BatchResult{Batch: i, Count: len(batch)}
	}
}
