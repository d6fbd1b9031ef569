// Package ingest loads the service-request extract into typed records. The
// first row of the extract is promoted to the header; every following row is
// coerced cell by cell against the declared schema. Cell problems never fail
// a row, only structural problems (unreadable source, missing header, absent
// required column) fail the load.
package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/sorrel/pkg/models"
	"github.com/Ramsey-B/sorrel/pkg/schema"
	"github.com/Ramsey-B/sorrel/pkg/tracing"
)

// Config holds loader settings
type Config struct {
	// SourcePath is the extract location on disk
	SourcePath string
	// Location interprets naive timestamps in the extract
	Location *time.Location
}

// Stats reports what one load did
type Stats struct {
	// Rows is the number of data rows read
	Rows int
	// CoercedNull counts cells nulled by failed coercion, per column
	CoercedNull map[string]int
}

// Loader reads one extract into memory, preserving source row order.
type Loader struct {
	cfg    Config
	logger ectologger.Logger
}

// NewLoader creates a loader for the configured source
func NewLoader(cfg Config, logger ectologger.Logger) *Loader {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Loader{cfg: cfg, logger: logger}
}

// Load reads the whole extract and returns one typed record per data row.
func (l *Loader) Load(ctx context.Context) ([]models.ServiceRequest, *Stats, error) {
	ctx, span := tracing.StartSpan(ctx, "ingest.Loader.Load")
	defer span.End()

	file, err := os.Open(l.cfg.SourcePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open source %s: %w", l.cfg.SourcePath, err)
	}
	defer file.Close()

	records, stats, err := l.read(ctx, file)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load %s: %w", l.cfg.SourcePath, err)
	}
	return records, stats, nil
}

func (l *Loader) read(ctx context.Context, src io.Reader) ([]models.ServiceRequest, *Stats, error) {
	reader := csv.NewReader(src)
	// rows may be ragged; short rows load missing cells as null
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil, errors.New("source is empty, no header row")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read header: %w", err)
	}

	index, err := buildColumnIndex(header)
	if err != nil {
		return nil, nil, err
	}

	stats := &Stats{CoercedNull: make(map[string]int)}
	var records []models.ServiceRequest
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read row %d: %w", stats.Rows+2, err)
		}

		rr := &rowReader{row: row, index: index, loc: l.cfg.Location}
		records = append(records, l.buildRecord(rr))
		stats.Rows++

		for _, col := range rr.failed {
			stats.CoercedNull[col]++
			l.logger.WithContext(ctx).WithFields(map[string]any{
				"column": col,
				"row":    stats.Rows + 1,
			}).Debug("cell failed coercion, loaded as null")
		}
	}

	if len(stats.CoercedNull) > 0 {
		l.logger.WithContext(ctx).WithFields(map[string]any{
			"rows":         stats.Rows,
			"coerced_null": stats.CoercedNull,
		}).Warn("some cells failed coercion and were loaded as null")
	}

	return records, stats, nil
}

// buildColumnIndex maps each declared column to its header position. The first
// occurrence of a duplicated header wins. Unknown headers are ignored. A
// required column missing from the header fails the load.
func buildColumnIndex(header []string) (map[string]int, error) {
	positions := make(map[string]int, len(header))
	for i, h := range header {
		key := schema.CanonicalHeader(h)
		if _, seen := positions[key]; !seen {
			positions[key] = i
		}
	}

	index := make(map[string]int)
	for _, col := range schema.Columns() {
		found := false
		for _, key := range col.MatchKeys() {
			if pos, ok := positions[key]; ok {
				index[col.Name] = pos
				found = true
				break
			}
		}
		if !found && col.Required {
			return nil, fmt.Errorf("required column %q not found in header", col.Header)
		}
	}
	return index, nil
}

func (l *Loader) buildRecord(rr *rowReader) models.ServiceRequest {
	return models.ServiceRequest{
		UniqueKey:           rr.raw(schema.ColUniqueKey),
		CreatedAt:           rr.timestamp(schema.ColCreatedDate),
		ClosedAt:            rr.timestamp(schema.ColClosedDate),
		ResolutionUpdatedAt: rr.timestamp(schema.ColResolutionUpdatedDate),

		Agency:        rr.text(schema.ColAgency),
		ComplaintType: rr.text(schema.ColComplaintType),
		Descriptor:    rr.text(schema.ColDescriptor),
		Status:        rr.text(schema.ColStatus),
		Borough:       rr.text(schema.ColBorough),
		City:          rr.text(schema.ColCity),
		IncidentZip:   rr.text(schema.ColIncidentZip),
		LocationType:  rr.text(schema.ColLocationType),
		AddressType:   rr.text(schema.ColAddressType),

		Latitude:  rr.float(schema.ColLatitude),
		Longitude: rr.float(schema.ColLongitude),

		AgencyName:            rr.text(schema.ColAgencyName),
		IncidentAddress:       rr.text(schema.ColIncidentAddress),
		StreetName:            rr.text(schema.ColStreetName),
		CrossStreet1:          rr.text(schema.ColCrossStreet1),
		CrossStreet2:          rr.text(schema.ColCrossStreet2),
		Landmark:              rr.text(schema.ColLandmark),
		FacilityType:          rr.text(schema.ColFacilityType),
		ResolutionDescription: rr.text(schema.ColResolutionDescription),
		CommunityBoard:        rr.text(schema.ColCommunityBoard),
		BBL:                   rr.text(schema.ColBBL),
		OpenDataChannel:       rr.text(schema.ColOpenDataChannel),
		ParkBorough:           rr.text(schema.ColParkBorough),
		VehicleType:           rr.text(schema.ColVehicleType),
	}
}
