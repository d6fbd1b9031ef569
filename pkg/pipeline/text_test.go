package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/sorrel/pkg/models"
)

func TestTextNormalizer_Casing(t *testing.T) {
	stage := NewTextNormalizer()

	records := []models.ServiceRequest{
		{
			UniqueKey:     "10000001",
			Agency:        strPtr("  nypd "),
			Borough:       strPtr("brooklyn"),
			ComplaintType: strPtr("NOISE -  RESIDENTIAL"),
			Descriptor:    strPtr("loud   music/party"),
			City:          strPtr("NEW  YORK"),
			Status:        strPtr("closed"),
			LocationType:  strPtr("RESIDENTIAL BUILDING"),
			AddressType:   strPtr("address"),
		},
	}

	out := stage.Apply(context.Background(), records)
	require.Len(t, out, 1)

	rec := out[0]
	assert.Equal(t, "NYPD", *rec.Agency)
	assert.Equal(t, "BROOKLYN", *rec.Borough)
	assert.Equal(t, "Noise - Residential", *rec.ComplaintType)
	assert.Equal(t, "Loud Music/party", *rec.Descriptor)
	assert.Equal(t, "New York", *rec.City)
	assert.Equal(t, "Closed", *rec.Status)
	assert.Equal(t, "Residential Building", *rec.LocationType)
	assert.Equal(t, "Address", *rec.AddressType)
}

func TestTextNormalizer_NullStaysNull(t *testing.T) {
	stage := NewTextNormalizer()

	out := stage.Apply(context.Background(), []models.ServiceRequest{
		{UniqueKey: "10000002"},
	})
	require.Len(t, out, 1)

	rec := out[0]
	assert.Nil(t, rec.Agency)
	assert.Nil(t, rec.Borough)
	assert.Nil(t, rec.ComplaintType)
	assert.Nil(t, rec.Descriptor)
	assert.Nil(t, rec.City)
	assert.Nil(t, rec.Status)
	assert.Nil(t, rec.LocationType)
	assert.Nil(t, rec.AddressType)
}

func TestTextNormalizer_WhitespaceOnlyStaysPresent(t *testing.T) {
	stage := NewTextNormalizer()

	// present-but-blank collapses to the empty string, it does not become null
	out := stage.Apply(context.Background(), []models.ServiceRequest{
		{UniqueKey: "10000003", Descriptor: strPtr("   ")},
	})
	require.Len(t, out, 1)
	require.NotNil(t, out[0].Descriptor)
	assert.Equal(t, "", *out[0].Descriptor)
}

func TestTextNormalizer_Idempotent(t *testing.T) {
	stage := NewTextNormalizer()

	records := []models.ServiceRequest{
		{
			UniqueKey:     "10000004",
			Agency:        strPtr(" dep\t"),
			Borough:       strPtr("staten   island"),
			ComplaintType: strPtr("WATER SYSTEM"),
			Descriptor:    strPtr("hydrant leaking"),
		},
	}

	once := stage.Apply(context.Background(), records)
	twice := stage.Apply(context.Background(), once)
	assert.Equal(t, once, twice)
}

func TestTextNormalizer_LeavesOtherFieldsAlone(t *testing.T) {
	stage := NewTextNormalizer()

	records := []models.ServiceRequest{
		{
			UniqueKey:   " 10000005 ",
			IncidentZip: strPtr(" 10001 "),
			Latitude:    floatPtr(40.71234),
		},
	}

	out := stage.Apply(context.Background(), records)
	require.Len(t, out, 1)
	assert.Equal(t, " 10000005 ", out[0].UniqueKey)
	assert.Equal(t, " 10001 ", *out[0].IncidentZip)
	assert.Equal(t, 40.71234, *out[0].Latitude)
}

func TestTextNormalizer_DoesNotMutateInput(t *testing.T) {
	stage := NewTextNormalizer()

	original := strPtr("brooklyn")
	records := []models.ServiceRequest{{UniqueKey: "10000006", Borough: original}}

	out := stage.Apply(context.Background(), records)
	require.Len(t, out, 1)
	assert.Equal(t, "BROOKLYN", *out[0].Borough)
	assert.Equal(t, "brooklyn", *original)
	assert.Equal(t, "brooklyn", *records[0].Borough)
}
