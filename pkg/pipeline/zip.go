package pipeline

import (
	"context"

	"github.com/Ramsey-B/sorrel/pkg/models"
	"github.com/Ramsey-B/sorrel/pkg/normalize"
)

// ZipNormalizer reduces incidentZip to its digits. A value whose digit count
// matches the configured length (5 for US zips) is kept as a fixed-width
// string, leading zeros intact. Any other digit count, including 9-digit
// zip+4 values, becomes null. The field stays a string end to end; the stage
// never goes through a numeric type.
type ZipNormalizer struct {
	digits int
}

// NewZipNormalizer creates the zip stage for the given digit count
func NewZipNormalizer(digits int) *ZipNormalizer {
	return &ZipNormalizer{digits: digits}
}

func (s *ZipNormalizer) Name() string {
	return StageZipNormalizer
}

func (s *ZipNormalizer) Apply(ctx context.Context, records []models.ServiceRequest) []models.ServiceRequest {
	out := make([]models.ServiceRequest, len(records))
	for i := range records {
		rec := records[i]
		rec.IncidentZip = s.normalizeZip(rec.IncidentZip)
		out[i] = rec
	}
	return out
}

func (s *ZipNormalizer) normalizeZip(zip *string) *string {
	if zip == nil {
		return nil
	}
	digits := normalize.DigitsOnly(*zip)
	if len(digits) != s.digits {
		return nil
	}
	return &digits
}
