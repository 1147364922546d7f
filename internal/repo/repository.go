package repo

import (
	"context"

	"github.com/hamed0406/miradors/internal/domain"
)

// ReportStore keeps the most recent cycle report. Save overwrites; there is
// no history.
type ReportStore interface {
	Save(ctx context.Context, r domain.CycleReport) error
	// Latest reports ok=false until the first Save.
	Latest(ctx context.Context) (domain.CycleReport, bool, error)
}
