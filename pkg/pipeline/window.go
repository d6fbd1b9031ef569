package pipeline

import (
	"context"
	"time"

	"github.com/Ramsey-B/sorrel/pkg/models"
)

// WindowFilter keeps records created inside the reporting window: from
// midnight `months` calendar months before the reference date up to, but not
// including, the reference date itself. The reference time is injected once
// per run; the stage never reads the clock. Records created today, in the
// future, or with no creation timestamp at all are dropped.
type WindowFilter struct {
	start time.Time
	end   time.Time
}

// NewWindowFilter resolves the window for the given reference time
func NewWindowFilter(months int, referenceNow time.Time) *WindowFilter {
	start, end := WindowBounds(months, referenceNow)
	return &WindowFilter{
		start: start,
		end:   end,
	}
}

// WindowBounds resolves the reporting window for a reference time. The end is
// the reference date at midnight, exclusive; the start is the same date the
// given number of calendar months earlier.
func WindowBounds(months int, referenceNow time.Time) (time.Time, time.Time) {
	end := dateOnly(referenceNow)
	return end.AddDate(0, -months, 0), end
}

func (s *WindowFilter) Name() string {
	return StageWindowFilter
}

// Window returns the resolved bounds, start inclusive and end exclusive.
func (s *WindowFilter) Window() (time.Time, time.Time) {
	return s.start, s.end
}

func (s *WindowFilter) Apply(ctx context.Context, records []models.ServiceRequest) []models.ServiceRequest {
	out := make([]models.ServiceRequest, 0, len(records))
	for i := range records {
		rec := records[i]
		if rec.CreatedAt == nil {
			continue
		}
		day := dateOnly(rec.CreatedAt.In(s.end.Location()))
		if day.Before(s.start) || !day.Before(s.end) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// dateOnly truncates to midnight in the value's own location.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
