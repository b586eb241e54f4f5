// Package farm holds the static farm profiles used as recommendation context
// and assembles them, together with their soil and weather notes, into a
// per-request Context.
package farm

import (
	"fmt"
	"math"
)

// ID identifies a farm profile.
type ID int

// Known farm identifiers.
const (
	Illinois    ID = 1
	NorthDakota ID = 2
)

func (id ID) String() string {
	switch id {
	case Illinois:
		return "Illinois"
	case NorthDakota:
		return "North Dakota"
	default:
		return fmt.Sprintf("farm(%d)", int(id))
	}
}

// Owner says who operates an equipment option.
type Owner string

// Equipment owner categories.
const (
	OwnerFarmer    Owner = "FARMER"
	OwnerCoopHired Owner = "CO-OP HIRED"
)

// Valid reports whether o is a known owner category.
func (o Owner) Valid() bool {
	return o == OwnerFarmer || o == OwnerCoopHired
}

// OperatingParams describe an implement the farmer runs themselves.
type OperatingParams struct {
	SpeedMPH float64 `yaml:"speed_mph" json:"speedMph"`
	WidthFt  float64 `yaml:"width_ft"  json:"widthFt"`
	SoilType string  `yaml:"soil_type" json:"soilType"`
}

// ServiceParams describe work hired from the co-op.
type ServiceParams struct {
	HoursPerAcre float64 `yaml:"hours_per_acre" json:"hoursPerAcre"`
	Provider     string  `yaml:"provider"       json:"provider"`
}

// EquipmentOption is one way of tilling a farm.
// TotalCost is derived from CostPerAcre and the farm acreage when the
// catalog is loaded.
type EquipmentOption struct {
	Owner       Owner            `yaml:"owner"              json:"owner"`
	Implement   string           `yaml:"implement"          json:"implement"`
	Operating   *OperatingParams `yaml:"operating,omitempty" json:"operating,omitempty"`
	Service     *ServiceParams   `yaml:"service,omitempty"   json:"service,omitempty"`
	CostPerAcre float64          `yaml:"cost_per_acre"      json:"costPerAcre"`
	TotalCost   float64          `yaml:"-"                  json:"totalCost"`
}

// CropYear records what was grown on a farm in a season.
type CropYear struct {
	Year  int    `yaml:"year"  json:"year"`
	Crop  string `yaml:"crop"  json:"crop"`
	Notes string `yaml:"notes" json:"notes,omitempty"`
}

// Profile is the fixed data set describing one farm.
type Profile struct {
	ID              ID                `yaml:"id"                json:"id"`
	Name            string            `yaml:"name"              json:"name"`
	Location        string            `yaml:"location"          json:"location"`
	Acreage         float64           `yaml:"acreage"           json:"acreage"`
	Coordinates     []string          `yaml:"coordinates"       json:"coordinates"`
	Equipment       []EquipmentOption `yaml:"equipment"         json:"equipment"`
	CropHistory     []CropYear        `yaml:"crop_history"      json:"cropHistory"`
	SoilWeatherFile string            `yaml:"soil_weather_file" json:"-"`
}

// TotalCost returns unitCost * acreage rounded to cents.
func TotalCost(unitCost, acreage float64) float64 {
	return math.Round(unitCost*acreage*100) / 100
}

// PreviousCrop returns the most recent crop in the history, or "".
func (p Profile) PreviousCrop() string {
	var latest CropYear
	for _, cy := range p.CropHistory {
		if cy.Year >= latest.Year {
			latest = cy
		}
	}
	return latest.Crop
}
