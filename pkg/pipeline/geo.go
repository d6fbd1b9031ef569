package pipeline

import (
	"context"

	"github.com/Ramsey-B/sorrel/pkg/models"
)

// GeoValidator keeps a coordinate pair only when both values are present and
// both lie inside the plausibility box, bounds inclusive. On any failure both
// fields are nulled together; a record never leaves this stage with exactly
// one coordinate. Rows are never dropped here.
type GeoValidator struct {
	minLat float64
	maxLat float64
	minLng float64
	maxLng float64
}

// NewGeoValidator creates the geo stage for the given bounding box
func NewGeoValidator(minLat, maxLat, minLng, maxLng float64) *GeoValidator {
	return &GeoValidator{minLat: minLat, maxLat: maxLat, minLng: minLng, maxLng: maxLng}
}

func (s *GeoValidator) Name() string {
	return StageGeoValidator
}

func (s *GeoValidator) Apply(ctx context.Context, records []models.ServiceRequest) []models.ServiceRequest {
	out := make([]models.ServiceRequest, len(records))
	for i := range records {
		rec := records[i]
		if !s.plausible(rec.Latitude, rec.Longitude) {
			rec.Latitude = nil
			rec.Longitude = nil
		}
		out[i] = rec
	}
	return out
}

func (s *GeoValidator) plausible(lat, lng *float64) bool {
	if lat == nil || lng == nil {
		return false
	}
	return *lat >= s.minLat && *lat <= s.maxLat && *lng >= s.minLng && *lng <= s.maxLng
}
