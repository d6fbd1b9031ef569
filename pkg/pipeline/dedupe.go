package pipeline

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/Ramsey-B/sorrel/pkg/models"
)

// DedupeEngine collapses repeat reports of the same incident. Records are
// grouped by complaint type, borough, rounded coordinates and the wall-clock
// hour of creation; the earliest record of each group survives, with input
// order breaking timestamp ties. Output is ordered by ascending creation
// time.
//
// A null component is part of the key like any other value and groups with
// other nulls of the same field. uniqueKey plays no role. The survivor keeps
// its own descriptor and status; differing values on the collapsed records
// are intentionally discarded.
type DedupeEngine struct {
	precision int
}

// NewDedupeEngine creates the dedup stage with the given coordinate rounding
// precision
func NewDedupeEngine(precision int) *DedupeEngine {
	return &DedupeEngine{precision: precision}
}

func (s *DedupeEngine) Name() string {
	return StageDedupeEngine
}

// dedupeKey is the grouping key. Value/has pairs keep null a first-class key
// component while the struct stays comparable.
type dedupeKey struct {
	complaintType    string
	hasComplaintType bool
	borough          string
	hasBorough       bool
	lat              float64
	hasLat           bool
	lng              float64
	hasLng           bool
	hourBucket       int64
	hasHourBucket    bool
}

func (s *DedupeEngine) Apply(ctx context.Context, records []models.ServiceRequest) []models.ServiceRequest {
	sorted := make([]models.ServiceRequest, len(records))
	copy(sorted, records)

	// Stable sort: equal timestamps keep their input order, so the survivor
	// of a tie is the record that appeared first in the source.
	sort.SliceStable(sorted, func(i, j int) bool {
		return createdBefore(sorted[i].CreatedAt, sorted[j].CreatedAt)
	})

	seen := make(map[dedupeKey]struct{}, len(sorted))
	out := make([]models.ServiceRequest, 0, len(sorted))
	for i := range sorted {
		key := s.keyFor(sorted[i])
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, sorted[i])
	}
	return out
}

func (s *DedupeEngine) keyFor(rec models.ServiceRequest) dedupeKey {
	var key dedupeKey
	if rec.ComplaintType != nil {
		key.complaintType, key.hasComplaintType = *rec.ComplaintType, true
	}
	if rec.Borough != nil {
		key.borough, key.hasBorough = *rec.Borough, true
	}
	if rec.Latitude != nil {
		key.lat, key.hasLat = roundTo(*rec.Latitude, s.precision), true
	}
	if rec.Longitude != nil {
		key.lng, key.hasLng = roundTo(*rec.Longitude, s.precision), true
	}
	if rec.CreatedAt != nil {
		key.hourBucket, key.hasHourBucket = hourBucket(*rec.CreatedAt).Unix(), true
	}
	return key
}

// createdBefore orders timestamps ascending with nulls first.
func createdBefore(a, b *time.Time) bool {
	if a == nil {
		return b != nil
	}
	if b == nil {
		return false
	}
	return a.Before(*b)
}

// hourBucket zeroes everything below the hour, wall clock, location kept.
func hourBucket(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
}

func roundTo(value float64, precision int) float64 {
	factor := math.Pow(10, float64(precision))
	return math.Round(value*factor) / factor
}
