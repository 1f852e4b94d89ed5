package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/salescast/internal/s0_data"
	"github.com/wonny/salescast/internal/s0_data/collector"
	"github.com/wonny/salescast/pkg/database"
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "cleaned CSV → PostgreSQL 적재",
	Long: `정제된 CSV를 sales.orders 테이블에 upsert 합니다.
DATABASE_URL 설정이 필요합니다.

Example:
  go run ./cmd/salescast migrate
  go run ./cmd/salescast import --workers 8`,
	RunE: runImport,
}

var importWorkers int

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().IntVar(&importWorkers, "workers", collector.DefaultConfig().Workers, "concurrent batch writers")
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	return withApp(ctx, func(a *app) error {
		if a.db == nil {
			return database.ErrNotConfigured
		}

		src := s0_data.NewCSVSource(a.cfg.Paths.CleanedCSV, s0_data.NewCleaner(a.log))
		records, err := src.Records(ctx)
		if err != nil {
			return err
		}

		cfg := collector.DefaultConfig()
		cfg.Workers = importWorkers
		sum := collector.NewCollector(s0_data.NewOrderRepository(a.db.Pool), a.log).Import(ctx, records, cfg)

		PrintHeader("Import")
		PrintKeyValue("Records", fmt.Sprint(len(records)), 9)
		PrintKeyValue("Batches", fmt.Sprint(sum.Batches), 9)
		PrintKeyValue("Imported", fmt.Sprint(sum.Imported), 9)
		if sum.Failed > 0 {
			return fmt.Errorf("%d records in %d batches failed: %w", sum.Failed, len(sum.Errors), sum.Errors[0])
		}
		PrintSuccess("import completed")
		return nil
	})
}
