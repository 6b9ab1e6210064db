package loadboard

import "time"

// Load is a posted load on the board. Only the columns the report needs are
// selected.
type Load struct {
	ID                    string     `json:"id"`
	Status                string     `json:"status"`
	OrgID                 string     `json:"org_id"`
	CustomLoadID          string     `json:"custom_load_id"`
	PickupDateClose       *time.Time `json:"pickup_date_close"`
	OriginLocationID      string     `json:"origin_location_id"`
	DestinationLocationID string     `json:"destination_location_id"`
}

// Location carries the city/state pair used to render a lane.
type Location struct {
	ID    string `json:"id"`
	City  string `json:"city"`
	State string `json:"state"`
}

// Carrier identifies the carrier behind an option.
type Carrier struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	MCNumber  string `json:"mc_number"`
	DOTNumber string `json:"dot_number"`
}

// Option is one carrier offer on a load, enriched with the load and carrier
// context the email renders. The enrichment fields are filled in by the
// client, not returned by the options table.
type Option struct {
	ID          string     `json:"id"`
	LoadID      string     `json:"load_id"`
	CarrierID   string     `json:"carrier_id"`
	Status      string     `json:"status"`
	OfferedRate *float64   `json:"offered_rate"`
	Phone       string     `json:"phone"`
	CreatedAt   *time.Time `json:"created_at"`

	Load        *LoadSummary `json:"-"`
	CarrierName string       `json:"-"`
	CarrierMC   string       `json:"-"`
	CarrierDOT  string       `json:"-"`
}

// LoadSummary is the slice of load data attached to each option.
type LoadSummary struct {
	ID              string
	Status          string
	OrgID           string
	CustomLoadID    string
	PickupDateClose *time.Time
	Origin          string
	Destination     string
}
