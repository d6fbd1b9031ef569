// Package schema declares the source extract layout for municipal service requests.
package schema

import "strings"

// Kind is the declared value type of a source column.
type Kind int

const (
	KindText Kind = iota
	KindFloat
	KindTimestamp
)

// Canonical column names. These are the names the rest of the pipeline uses;
// the Header field on Column is the label the upstream 311 export ships.
const (
	ColUniqueKey             = "unique_key"
	ColCreatedDate           = "created_date"
	ColClosedDate            = "closed_date"
	ColResolutionUpdatedDate = "resolution_action_updated_date"
	ColAgency                = "agency"
	ColAgencyName            = "agency_name"
	ColComplaintType         = "complaint_type"
	ColDescriptor            = "descriptor"
	ColLocationType          = "location_type"
	ColIncidentZip           = "incident_zip"
	ColIncidentAddress       = "incident_address"
	ColStreetName            = "street_name"
	ColCrossStreet1          = "cross_street_1"
	ColCrossStreet2          = "cross_street_2"
	ColAddressType           = "address_type"
	ColCity                  = "city"
	ColLandmark              = "landmark"
	ColFacilityType          = "facility_type"
	ColStatus                = "status"
	ColResolutionDescription = "resolution_description"
	ColCommunityBoard        = "community_board"
	ColBBL                   = "bbl"
	ColBorough               = "borough"
	ColOpenDataChannel       = "open_data_channel_type"
	ColParkBorough           = "park_borough"
	ColVehicleType           = "vehicle_type"
	ColLatitude              = "latitude"
	ColLongitude             = "longitude"
)

// Column describes one declared source column.
type Column struct {
	// Name is the canonical column name used throughout the pipeline
	Name string
	// Header is the column label in the source extract
	Header string
	// Kind is the declared value type cells are coerced to
	Kind Kind
	// Required marks columns whose absence from the header fails the load
	Required bool
}

// Columns returns the declared source schema in extract order. Cells are
// coerced to the column kind; a cell that fails coercion becomes null, it
// never fails the row. Missing optional columns load as null for every row.
func Columns() []Column {
	return []Column{
		{Name: ColUniqueKey, Header: "Unique Key", Kind: KindText, Required: true},
		{Name: ColCreatedDate, Header: "Created Date", Kind: KindTimestamp, Required: true},
		{Name: ColClosedDate, Header: "Closed Date", Kind: KindTimestamp, Required: true},
		{Name: ColAgency, Header: "Agency", Kind: KindText, Required: true},
		{Name: ColAgencyName, Header: "Agency Name", Kind: KindText},
		{Name: ColComplaintType, Header: "Complaint Type", Kind: KindText, Required: true},
		{Name: ColDescriptor, Header: "Descriptor", Kind: KindText, Required: true},
		{Name: ColLocationType, Header: "Location Type", Kind: KindText, Required: true},
		{Name: ColIncidentZip, Header: "Incident Zip", Kind: KindText, Required: true},
		{Name: ColIncidentAddress, Header: "Incident Address", Kind: KindText},
		{Name: ColStreetName, Header: "Street Name", Kind: KindText},
		{Name: ColCrossStreet1, Header: "Cross Street 1", Kind: KindText},
		{Name: ColCrossStreet2, Header: "Cross Street 2", Kind: KindText},
		{Name: ColAddressType, Header: "Address Type", Kind: KindText, Required: true},
		{Name: ColCity, Header: "City", Kind: KindText, Required: true},
		{Name: ColLandmark, Header: "Landmark", Kind: KindText},
		{Name: ColFacilityType, Header: "Facility Type", Kind: KindText},
		{Name: ColStatus, Header: "Status", Kind: KindText, Required: true},
		{Name: ColResolutionDescription, Header: "Resolution Description", Kind: KindText},
		{Name: ColResolutionUpdatedDate, Header: "Resolution Action Updated Date", Kind: KindTimestamp, Required: true},
		{Name: ColCommunityBoard, Header: "Community Board", Kind: KindText},
		{Name: ColBBL, Header: "BBL", Kind: KindText},
		{Name: ColBorough, Header: "Borough", Kind: KindText, Required: true},
		{Name: ColOpenDataChannel, Header: "Open Data Channel Type", Kind: KindText},
		{Name: ColParkBorough, Header: "Park Borough", Kind: KindText},
		{Name: ColVehicleType, Header: "Vehicle Type", Kind: KindText},
		{Name: ColLatitude, Header: "Latitude", Kind: KindFloat, Required: true},
		{Name: ColLongitude, Header: "Longitude", Kind: KindFloat, Required: true},
	}
}

// CanonicalHeader normalizes a header cell for matching: trimmed, lowercased,
// runs of spaces collapsed. "Unique  Key " and "unique key" match the same column.
func CanonicalHeader(h string) string {
	return strings.Join(strings.Fields(strings.ToLower(h)), " ")
}

// MatchKeys returns the canonical header labels a column is recognized by.
// Both the export label ("Unique Key") and the snake name ("unique_key") are
// accepted so hand-built fixtures and API exports load the same way.
func (c Column) MatchKeys() []string {
	return []string{CanonicalHeader(c.Header), c.Name}
}
