package pipeline

import (
	"context"

	"github.com/Ramsey-B/sorrel/pkg/models"
)

// DurationDeriver computes hoursToClose, the fractional hours between
// creation and closure. Rows whose duration falls outside the plausibility
// clamp are dropped entirely; durations inside the clamp are kept as-is,
// including small negatives from out-of-order upstream timestamps. A row with
// either timestamp missing is kept with a null duration.
//
// This is the only stage that drops rows for a value-level reason.
type DurationDeriver struct {
	minHours float64
	maxHours float64
}

// NewDurationDeriver creates the duration stage for the given clamp
func NewDurationDeriver(minHours, maxHours float64) *DurationDeriver {
	return &DurationDeriver{minHours: minHours, maxHours: maxHours}
}

func (s *DurationDeriver) Name() string {
	return StageDurationDeriver
}

func (s *DurationDeriver) Apply(ctx context.Context, records []models.ServiceRequest) []models.ServiceRequest {
	out := make([]models.ServiceRequest, 0, len(records))
	for i := range records {
		rec := records[i]

		if rec.CreatedAt == nil || rec.ClosedAt == nil {
			rec.HoursToClose = nil
			out = append(out, rec)
			continue
		}

		hours := rec.ClosedAt.Sub(*rec.CreatedAt).Hours()
		if hours < s.minHours || hours > s.maxHours {
			continue
		}

		rec.HoursToClose = &hours
		out = append(out, rec)
	}
	return out
}
