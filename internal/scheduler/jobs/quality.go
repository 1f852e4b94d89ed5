package jobs

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/wonny/salescast/internal/s0_data"
	"github.com/wonny/salescast/internal/s0_data/quality"
)

// ReportSaver persists quality reports (quality.Repository).
type ReportSaver interface {
	SaveReport(ctx context.Context, source string, report *quality.Report) error
}

// QualityReportJob validates the input data daily and stores the report
type QualityReportJob struct {
	source s0_data.RecordSource
	gate   *quality.QualityGate
	saver  ReportSaver
	log    zerolog.Logger
}

// NewQualityReportJob creates a new quality report job
func NewQualityReportJob(source s0_data.RecordSource, gate *quality.QualityGate, saver ReportSaver, log zerolog.Logger) *QualityReportJob {
	return &QualityReportJob{
		source: source,
		gate:   gate,
		saver:  saver,
		log:    log.With().Str("component", "jobs.quality").Logger(),
	}
}

// Name returns the job name
func (j *QualityReportJob) Name() string {
	return "quality_report"
}

// Schedule returns the cron schedule (every day at 2 AM)
func (j *QualityReportJob) Schedule() string {
	return "0 0 2 * * *"
}

// Run executes the quality check
func (j *QualityReportJob) Run(ctx context.Context) error {
	records, err := j.source.Records(ctx)
	if err != nil {
		return fmt.Errorf("load records: %w", err)
	}

	rep := j.gate.Validate(records)
	if err := j.saver.SaveReport(ctx, j.source.Name(), rep); err != nil {
		return fmt.Errorf("save quality report: %w", err)
	}

	j.log.Info().
		Str("source", j.source.Name()).
		Int("rows", rep.Rows).
		Int("total_issues", rep.TotalIssues()).
		Msg("quality report stored")
	return nil
}
