package pipeline

import (
	"context"

	"github.com/couchcryptid/pv-monitoring-etl/internal/domain"
)

// DayRunner processes one stored day file.
type DayRunner interface {
	ProcessDay(ctx context.Context, name string, coefficient float64) (domain.DaySummary, error)
}

// DayTransformer implements Transformer by processing the day file a job
// names with the job's coefficient, or the calibrated one when it has none.
type DayTransformer struct {
	days        DayRunner
	coefficient float64
}

// NewTransformer creates a DayTransformer applying coefficient by default.
func NewTransformer(days DayRunner, coefficient float64) *DayTransformer {
	return &DayTransformer{
		days:        days,
		coefficient: coefficient,
	}
}

func (t *DayTransformer) Transform(ctx context.Context, raw domain.RawMessage) (domain.DaySummary, error) {
	job, err := domain.ParseDayJob(raw)
	if err != nil {
		return domain.DaySummary{}, err
	}

	coefficient := t.coefficient
	if job.Coefficient != nil {
		coefficient = *job.Coefficient
	}
	return t.days.ProcessDay(ctx, job.FileName(), coefficient)
}
