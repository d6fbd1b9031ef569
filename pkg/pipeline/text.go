package pipeline

import (
	"context"

	"github.com/Ramsey-B/sorrel/pkg/models"
	"github.com/Ramsey-B/sorrel/pkg/normalize"
)

// TextNormalizer canonicalizes the categorical text fields: whitespace is
// trimmed and collapsed, agency and borough are uppercased, the remaining
// categoricals are title cased. Dedup runs downstream of this stage, so
// casing variants of the same value land in one group.
//
// Null stays null and present stays present; a value that collapses to the
// empty string is kept as an empty string. Identifier and zip fields are not
// touched here.
type TextNormalizer struct{}

// NewTextNormalizer creates the casing stage
func NewTextNormalizer() *TextNormalizer {
	return &TextNormalizer{}
}

func (s *TextNormalizer) Name() string {
	return StageTextNormalizer
}

func (s *TextNormalizer) Apply(ctx context.Context, records []models.ServiceRequest) []models.ServiceRequest {
	out := make([]models.ServiceRequest, len(records))
	for i := range records {
		rec := records[i]

		rec.Agency = upper(rec.Agency)
		rec.Borough = upper(rec.Borough)

		rec.ComplaintType = title(rec.ComplaintType)
		rec.Descriptor = title(rec.Descriptor)
		rec.City = title(rec.City)
		rec.Status = title(rec.Status)
		rec.LocationType = title(rec.LocationType)
		rec.AddressType = title(rec.AddressType)

		out[i] = rec
	}
	return out
}

func upper(field *string) *string {
	return chain(field, "collapse_whitespace", "uppercase")
}

func title(field *string) *string {
	return chain(field, "collapse_whitespace", "titlecase")
}

// chain returns a pointer to the normalized value. Nil in, nil out; the
// original string is never written through.
func chain(field *string, normalizers ...string) *string {
	if field == nil {
		return nil
	}
	normalized := normalize.ApplyChain(*field, normalizers...)
	return &normalized
}
