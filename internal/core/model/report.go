package model

import (
	"time"

	"zxtrack/internal/core/util"
)

// Report is a rectified, protocol-agnostic position: either straight
// from a GPS fix or approximated from a Wi-Fi/GSM scan lookup.
type Report struct {
	ID        string    `bson:"_id" json:"id"`
	IMEI      string    `bson:"imei" json:"imei"`
	DevTime   time.Time `bson:"devtime" json:"devTime"`
	Latitude  float64   `bson:"latitude" json:"latitude"`
	Longitude float64   `bson:"longitude" json:"longitude"`
	Accuracy  float64   `bson:"accuracy,omitempty" json:"accuracy,omitempty"` // meters, 0 for a GPS fix
	Speed     float64   `bson:"speed" json:"speed"`
	Heading   float64   `bson:"heading" json:"heading"`
	Battery   int       `bson:"battery,omitempty" json:"battery,omitempty"`
	Valid     bool      `bson:"valid" json:"valid"`
	Source    string    `bson:"source" json:"source"` // kind name the report came from
}

// NewReport stamps an ID and normalizes the device time to UTC.
func NewReport(imei string, devtime time.Time, lat, lon float64, source string) *Report {
	if devtime.IsZero() {
		devtime = time.Now()
	}
	return &Report{
		ID:        util.GenerateID(),
		IMEI:      imei,
		DevTime:   devtime.UTC(),
		Latitude:  lat,
		Longitude: lon,
		Source:    source,
		Valid:     true,
	}
}
