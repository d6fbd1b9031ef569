package models

import "time"

// ServiceRequest is one typed row of the source extract. Every field except
// UniqueKey is nullable; a nil pointer means the source cell was empty or
// failed coercion. Verbose columns ride along until the prune stage drops them.
type ServiceRequest struct {
	UniqueKey           string     `json:"unique_key"`
	CreatedAt           *time.Time `json:"created_at"`
	ClosedAt            *time.Time `json:"closed_at"`
	ResolutionUpdatedAt *time.Time `json:"resolution_updated_at"`

	Agency        *string `json:"agency"`
	ComplaintType *string `json:"complaint_type"`
	Descriptor    *string `json:"descriptor"`
	Status        *string `json:"status"`
	Borough       *string `json:"borough"`
	City          *string `json:"city"`
	IncidentZip   *string `json:"incident_zip"`
	LocationType  *string `json:"location_type"`
	AddressType   *string `json:"address_type"`

	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`

	// Derived by the duration stage, published in the fact table.
	HoursToClose *float64 `json:"hours_to_close"`

	// Verbose source columns, dropped by the prune stage.
	AgencyName            *string `json:"agency_name,omitempty"`
	IncidentAddress       *string `json:"incident_address,omitempty"`
	StreetName            *string `json:"street_name,omitempty"`
	CrossStreet1          *string `json:"cross_street_1,omitempty"`
	CrossStreet2          *string `json:"cross_street_2,omitempty"`
	Landmark              *string `json:"landmark,omitempty"`
	FacilityType          *string `json:"facility_type,omitempty"`
	ResolutionDescription *string `json:"resolution_description,omitempty"`
	CommunityBoard        *string `json:"community_board,omitempty"`
	BBL                   *string `json:"bbl,omitempty"`
	OpenDataChannel       *string `json:"open_data_channel_type,omitempty"`
	ParkBorough           *string `json:"park_borough,omitempty"`
	VehicleType           *string `json:"vehicle_type,omitempty"`
}

// RequestFact is one published row of the fact table. The field order is the
// published column order; FactColumns must stay in sync with it.
type RequestFact struct {
	UniqueKey           string     `json:"unique_key" db:"unique_key"`
	CreatedAt           *time.Time `json:"created_at" db:"created_at"`
	ClosedAt            *time.Time `json:"closed_at" db:"closed_at"`
	ResolutionUpdatedAt *time.Time `json:"resolution_updated_at" db:"resolution_updated_at"`
	Agency              *string    `json:"agency" db:"agency"`
	ComplaintType       *string    `json:"complaint_type" db:"complaint_type"`
	Descriptor          *string    `json:"descriptor" db:"descriptor"`
	Status              *string    `json:"status" db:"status"`
	Borough             *string    `json:"borough" db:"borough"`
	City                *string    `json:"city" db:"city"`
	IncidentZip         *string    `json:"incident_zip" db:"incident_zip"`
	LocationType        *string    `json:"location_type" db:"location_type"`
	AddressType         *string    `json:"address_type" db:"address_type"`
	Latitude            *float64   `json:"latitude" db:"latitude"`
	Longitude           *float64   `json:"longitude" db:"longitude"`
	HoursToClose        *float64   `json:"hours_to_close" db:"hours_to_close"`
}

// FactListResponse is the payload for the fact listing endpoint
type FactListResponse struct {
	Items      []RequestFact `json:"items"`
	TotalCount int           `json:"total_count"`
}

// FactColumns is the published fact table schema in column order.
var FactColumns = []string{
	"unique_key",
	"created_at",
	"closed_at",
	"resolution_updated_at",
	"agency",
	"complaint_type",
	"descriptor",
	"status",
	"borough",
	"city",
	"incident_zip",
	"location_type",
	"address_type",
	"latitude",
	"longitude",
	"hours_to_close",
}
