// Package pipeline turns loaded service requests into published fact rows.
//
// The pipeline is a fixed linear sequence of pure stages: text normalization,
// zip normalization, geo validation, duration derivation, window filtering,
// column pruning and deduplication, followed by the projection to the fact
// schema. Every stage takes the whole record collection and returns a new
// one; no stage touches the clock, the filesystem or the database, so the
// same input with the same reference time always produces the same output.
package pipeline

import (
	"context"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/sorrel/pkg/models"
	"github.com/Ramsey-B/sorrel/pkg/tracing"
)

// Stage transforms the full record collection. Implementations must be pure:
// the input slice and the records it holds are never modified.
type Stage interface {
	Name() string
	Apply(ctx context.Context, records []models.ServiceRequest) []models.ServiceRequest
}

// Stage names as they appear in run reports, spans and metrics.
const (
	StageTextNormalizer  = "text_normalizer"
	StageZipNormalizer   = "zip_normalizer"
	StageGeoValidator    = "geo_validator"
	StageDurationDeriver = "duration_deriver"
	StageWindowFilter    = "window_filter"
	StageColumnPruner    = "column_pruner"
	StageDedupeEngine    = "dedupe_engine"
)

// Config holds the externalized pipeline knobs.
type Config struct {
	// WindowMonths is how many calendar months back the reporting window reaches
	WindowMonths int
	// Geo plausibility box, inclusive on every edge
	GeoMinLat float64
	GeoMaxLat float64
	GeoMinLng float64
	GeoMaxLng float64
	// Duration plausibility clamp in fractional hours, inclusive
	DurationMinHours float64
	DurationMaxHours float64
	// ZipDigits is the exact digit count a valid postal code carries
	ZipDigits int
	// RoundPrecision is the decimal precision of the dedup coordinate rounding
	RoundPrecision int
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		WindowMonths:     6,
		GeoMinLat:        40.40,
		GeoMaxLat:        40.95,
		GeoMinLng:        -74.30,
		GeoMaxLng:        -73.65,
		DurationMinHours: -0.1,
		DurationMaxHours: 720.0,
		ZipDigits:        5,
		RoundPrecision:   5,
	}
}

// StageCount records the row movement of one stage.
type StageCount struct {
	Stage string `json:"stage"`
	In    int    `json:"in"`
	Out   int    `json:"out"`
}

// Pipeline runs the stage sequence for one refresh. Build a new Pipeline per
// run; the reference time is fixed at construction so the window does not
// drift while a run is in flight.
type Pipeline struct {
	stages    []Stage
	projector *Projector
	logger    ectologger.Logger
}

// New builds the stage sequence for the given reference time.
func New(cfg Config, referenceNow time.Time, logger ectologger.Logger) *Pipeline {
	return &Pipeline{
		stages: []Stage{
			NewTextNormalizer(),
			NewZipNormalizer(cfg.ZipDigits),
			NewGeoValidator(cfg.GeoMinLat, cfg.GeoMaxLat, cfg.GeoMinLng, cfg.GeoMaxLng),
			NewDurationDeriver(cfg.DurationMinHours, cfg.DurationMaxHours),
			NewWindowFilter(cfg.WindowMonths, referenceNow),
			NewColumnPruner(),
			NewDedupeEngine(cfg.RoundPrecision),
		},
		projector: NewProjector(),
		logger:    logger,
	}
}

// Run applies every stage in order and projects the survivors onto the fact
// schema. The returned counts hold the in/out row numbers per stage.
func (p *Pipeline) Run(ctx context.Context, records []models.ServiceRequest) ([]models.RequestFact, []StageCount) {
	ctx, span := tracing.StartSpan(ctx, "pipeline.Pipeline.Run")
	defer span.End()

	counts := make([]StageCount, 0, len(p.stages))
	for _, stage := range p.stages {
		in := len(records)
		records = p.applyStage(ctx, stage, records)

		counts = append(counts, StageCount{Stage: stage.Name(), In: in, Out: len(records)})
		p.logger.WithContext(ctx).WithFields(map[string]any{
			"stage": stage.Name(),
			"in":    in,
			"out":   len(records),
		}).Debug("stage applied")
	}

	return p.projector.Project(ctx, records), counts
}

func (p *Pipeline) applyStage(ctx context.Context, stage Stage, records []models.ServiceRequest) []models.ServiceRequest {
	ctx, span := tracing.StartSpan(ctx, "pipeline."+stage.Name())
	defer span.End()
	return stage.Apply(ctx, records)
}
