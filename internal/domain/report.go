package domain

import "time"

// Hazard is the category of a storm hazard measurement.
type Hazard string

const (
	HazardHail    Hazard = "hail"
	HazardWind    Hazard = "wind"
	HazardTornado Hazard = "tornado"
	// HazardDamage is a rule-only hazard: the threshold is compared against
	// the alert's SPC confidence score rather than a parsed measurement.
	HazardDamage Hazard = "damage"
)

// SPCReport is a post-event ground-truth storm report from the NOAA Storm
// Prediction Center. Read-only to this engine. Magnitude units depend on the
// hazard: inches for hail, mph for wind, EF-scale integer for tornado.
type SPCReport struct {
	ID        string    `json:"id"`
	Time      time.Time `json:"time"`
	Hazard    Hazard    `json:"hazard"`
	Lat       float64   `json:"lat"`
	Lon       float64   `json:"lon"`
	AreaCode  string    `json:"area_code"`
	Magnitude float64   `json:"magnitude"`
}
