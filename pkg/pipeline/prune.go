package pipeline

import (
	"context"

	"github.com/Ramsey-B/sorrel/pkg/models"
)

// ColumnPruner projects each record down to the fields the fact schema and
// the dedup stage consume. The verbose source columns end here. Row count,
// order and the kept values are untouched; restoring a column is one line in
// the keep list below.
type ColumnPruner struct{}

// NewColumnPruner creates the prune stage
func NewColumnPruner() *ColumnPruner {
	return &ColumnPruner{}
}

func (s *ColumnPruner) Name() string {
	return StageColumnPruner
}

func (s *ColumnPruner) Apply(ctx context.Context, records []models.ServiceRequest) []models.ServiceRequest {
	out := make([]models.ServiceRequest, len(records))
	for i := range records {
		rec := records[i]
		out[i] = models.ServiceRequest{
			UniqueKey:           rec.UniqueKey,
			CreatedAt:           rec.CreatedAt,
			ClosedAt:            rec.ClosedAt,
			ResolutionUpdatedAt: rec.ResolutionUpdatedAt,
			Agency:              rec.Agency,
			ComplaintType:       rec.ComplaintType,
			Descriptor:          rec.Descriptor,
			Status:              rec.Status,
			Borough:             rec.Borough,
			City:                rec.City,
			IncidentZip:         rec.IncidentZip,
			LocationType:        rec.LocationType,
			AddressType:         rec.AddressType,
			Latitude:            rec.Latitude,
			Longitude:           rec.Longitude,
			HoursToClose:        rec.HoursToClose,
		}
	}
	return out
}
