/* Apache v2 license
*  Copyright (C) <2019> Intel Corporation
*
*  SPDX-License-Identifier: Apache-2.0
 */

package tag

import (
	"time"

	"github.com/google/uuid"
	"github.com/intel/rsp-sw-toolkit-im-suite-tid-service/pkg/tid"
)

const (
	// StatusActive is the status of every newly registered tag
	StatusActive = "active"

	// TopReadTags is the number of tags listed in the report's top read tags
	TopReadTags = 10
)

// Tag is the model containing the registry record of a tag
//
//swagger:model Tag
type Tag struct {
	// Record id
	ID uuid.UUID `json:"id"`
	// Canonical 24 digit TID
	TID string `json:"tid"`
	// Vendor display name
	Vendor string `json:"vendor"`
	// Model display name
	ModelName string `json:"model_name"`
	// Tag model number as 3 hex digits
	ModelNumber string `json:"model_number"`
	// Serial as 10 hex digits
	SerialHex string `json:"serial_hex"`
	// Serial as an unsigned integer
	SerialDecimal uint64 `json:"serial_decimal"`
	// Monza series id, only set for Impinj tags
	MonzaSeriesID *int `json:"monza_series_id,omitempty"`
	IsImpinj      bool `json:"is_impinj"`
	IsNXPUcode9   bool `json:"is_nxp_ucode9"`
	// Time of the first reading
	FirstSeen time.Time `json:"first_seen"`
	// Time of the latest reading
	LastSeen time.Time `json:"last_seen"`
	// Number of readings
	ReadCount int `json:"read_count"`
	// Location of the latest reading
	Location string `json:"location,omitempty"`
	Status   string `json:"status"`
}

// ReadEvent is a single reading of a tag
//
//swagger:model ReadEvent
type ReadEvent struct {
	ID             int64     `json:"id"`
	TID            string    `json:"tid"`
	ReaderID       string    `json:"reader_id"`
	Location       string    `json:"location"`
	SignalStrength *int      `json:"signal_strength,omitempty"`
	AntennaID      *int      `json:"antenna_id,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

// Reading is the input of RegisterReading
type Reading struct {
	TID            string `json:"tid"`
	ReaderID       string `json:"reader_id"`
	Location       string `json:"location"`
	SignalStrength *int   `json:"signal_strength,omitempty"`
	AntennaID      *int   `json:"antenna_id,omitempty"`
	// Timestamp of the reading; the zero value means now
	Timestamp time.Time `json:"timestamp"`
}

// Filter narrows a List query. Empty fields match everything.
type Filter struct {
	// Vendor matches a case-insensitive substring of the vendor name
	Vendor string
	// Model matches a case-insensitive substring of the model name
	Model string
	// Location must match exactly
	Location string
	// Limit caps the number of results when positive
	Limit int
}

// Report is the summary of the whole registry
type Report struct {
	Timestamp            time.Time      `json:"timestamp"`
	Summary              Summary        `json:"summary"`
	VendorDistribution   map[string]int `json:"vendor_distribution"`
	ModelDistribution    map[string]int `json:"model_distribution"`
	LocationDistribution map[string]int `json:"location_distribution"`
	TopReadTags          []TopTag       `json:"top_read_tags"`
}

// Summary holds the registry totals
type Summary struct {
	TotalTags       int `json:"total_tags"`
	TotalReadings   int `json:"total_readings"`
	UniqueVendors   int `json:"unique_vendors"`
	UniqueModels    int `json:"unique_models"`
	UniqueLocations int `json:"unique_locations"`
}

// TopTag is an entry of the most read tags
type TopTag struct {
	TID       string `json:"tid"`
	Model     string `json:"model"`
	ReadCount int    `json:"read_count"`
	Location  string `json:"location,omitempty"`
}

// Response wraps list results the way every list endpoint returns them
type Response struct {
	Results interface{} `json:"results"`
	Count   int         `json:"count"`
}

// newTag builds the registry record of a first reading
func newTag(descriptor tid.Descriptor, location string, seen time.Time) Tag {
	tag := Tag{
		ID:            uuid.New(),
		TID:           descriptor.TID(),
		Vendor:        descriptor.Vendor,
		ModelName:     descriptor.Model.Name,
		ModelNumber:   descriptor.Model.Hex(),
		SerialHex:     descriptor.Serial.Hex,
		SerialDecimal: descriptor.Serial.Decimal(),
		IsImpinj:      descriptor.IsImpinj(),
		IsNXPUcode9:   descriptor.IsNXPUcode9(),
		FirstSeen:     seen,
		LastSeen:      seen,
		ReadCount:     1,
		Location:      location,
		Status:        StatusActive,
	}
	if descriptor.MonzaSeriesID != nil {
		seriesID := int(*descriptor.MonzaSeriesID)
		tag.MonzaSeriesID = &seriesID
	}
	return tag
}
