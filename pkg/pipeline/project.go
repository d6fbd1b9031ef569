package pipeline

import (
	"context"

	"github.com/Gobusters/ectolinq"

	"github.com/Ramsey-B/sorrel/pkg/models"
)

// Projector maps surviving records onto the published fact schema. Only the
// published columns cross this boundary; dedup derivations never leave the
// pipeline. Row count and order are preserved.
type Projector struct{}

// NewProjector creates the projection step
func NewProjector() *Projector {
	return &Projector{}
}

// Project converts each record to its fact row.
func (p *Projector) Project(ctx context.Context, records []models.ServiceRequest) []models.RequestFact {
	return ectolinq.Map(records, func(rec models.ServiceRequest) models.RequestFact {
		return models.RequestFact{
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
	})
}
