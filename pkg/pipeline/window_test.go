package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/sorrel/pkg/models"
)

func TestWindowBounds(t *testing.T) {
	tests := []struct {
		name          string
		months        int
		reference     time.Time
		expectedStart time.Time
		expectedEnd   time.Time
	}{
		{
			name:          "six months back from mid-month",
			months:        6,
			reference:     time.Date(2026, 8, 15, 10, 30, 45, 0, time.UTC),
			expectedStart: time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC),
			expectedEnd:   time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:          "time of day never shifts the bounds",
			months:        6,
			reference:     time.Date(2026, 8, 15, 23, 59, 59, 0, time.UTC),
			expectedStart: time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC),
			expectedEnd:   time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:          "month arithmetic crosses the year boundary",
			months:        6,
			reference:     time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC),
			expectedStart: time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC),
			expectedEnd:   time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "short target month normalizes forward",
			months:    1,
			reference: time.Date(2026, 3, 31, 12, 0, 0, 0, time.UTC),
			// March 31 minus one month lands on February 31, which Go
			// normalizes to March 3.
			expectedStart: time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC),
			expectedEnd:   time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			start, end := WindowBounds(test.months, test.reference)
			assert.True(t, test.expectedStart.Equal(start), "start = %s", start)
			assert.True(t, test.expectedEnd.Equal(end), "end = %s", end)
		})
	}
}

func TestWindowFilter(t *testing.T) {
	reference := time.Date(2026, 8, 15, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name      string
		createdAt *time.Time
		kept      bool
	}{
		{
			name:      "midnight of the window start day",
			createdAt: timePtr(time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)),
			kept:      true,
		},
		{
			name:      "last second of the window start day",
			createdAt: timePtr(time.Date(2026, 2, 15, 23, 59, 59, 0, time.UTC)),
			kept:      true,
		},
		{
			name:      "day before the window start",
			createdAt: timePtr(time.Date(2026, 2, 14, 23, 59, 59, 0, time.UTC)),
			kept:      false,
		},
		{
			name:      "day before the reference date",
			createdAt: timePtr(time.Date(2026, 8, 14, 23, 59, 59, 0, time.UTC)),
			kept:      true,
		},
		{
			name:      "midnight of the reference date",
			createdAt: timePtr(time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)),
			kept:      false,
		},
		{
			name:      "created earlier today",
			createdAt: timePtr(time.Date(2026, 8, 15, 9, 0, 0, 0, time.UTC)),
			kept:      false,
		},
		{
			name:      "created in the future",
			createdAt: timePtr(time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)),
			kept:      false,
		},
		{
			name:      "no creation timestamp",
			createdAt: nil,
			kept:      false,
		},
	}

	stage := NewWindowFilter(6, reference)
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			out := stage.Apply(context.Background(), []models.ServiceRequest{
				{UniqueKey: "10000001", CreatedAt: test.createdAt},
			})

			if test.kept {
				assert.Len(t, out, 1)
			} else {
				assert.Empty(t, out)
			}
		})
	}
}

func TestWindowFilter_ConvertsRecordZoneToReferenceZone(t *testing.T) {
	est := time.FixedZone("EST", -5*60*60)
	reference := time.Date(2026, 8, 15, 10, 30, 0, 0, time.UTC)
	stage := NewWindowFilter(6, reference)

	// 2026-02-14 21:00 EST is 2026-02-15 02:00 UTC, inside the window once
	// converted to the reference zone.
	out := stage.Apply(context.Background(), []models.ServiceRequest{
		{UniqueKey: "10000002", CreatedAt: timePtr(time.Date(2026, 2, 14, 21, 0, 0, 0, est))},
	})
	require.Len(t, out, 1)
}

func TestWindowFilter_PreservesOrder(t *testing.T) {
	reference := time.Date(2026, 8, 15, 10, 30, 0, 0, time.UTC)
	stage := NewWindowFilter(6, reference)

	records := []models.ServiceRequest{
		{UniqueKey: "1", CreatedAt: timePtr(time.Date(2026, 7, 3, 12, 0, 0, 0, time.UTC))},
		{UniqueKey: "2", CreatedAt: timePtr(time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC))},
		{UniqueKey: "3", CreatedAt: timePtr(time.Date(2026, 4, 20, 12, 0, 0, 0, time.UTC))},
	}

	out := stage.Apply(context.Background(), records)
	require.Len(t, out, 2)
	assert.Equal(t, "1", out[0].UniqueKey)
	assert.Equal(t, "3", out[1].UniqueKey)
}
