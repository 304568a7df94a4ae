// Package models contains domain types for carbon-engine.
package models

import "fmt"

// Domain is one of the five emission categories the engine knows about.
type Domain string

const (
	DomainElectricity   Domain = "electricity"
	DomainTransport     Domain = "transport"
	DomainManufacturing Domain = "manufacturing"
	DomainConstruction  Domain = "construction"
	DomainAgriculture   Domain = "agriculture"
)

// AllDomains lists every valid domain, in route-registration order.
var AllDomains = []Domain{
	DomainElectricity,
	DomainTransport,
	DomainManufacturing,
	DomainConstruction,
	DomainAgriculture,
}

// EmissionFactors maps each domain to its fixed kg-CO2 factor per input unit.
// Fixed at process start, read-only afterwards.
var EmissionFactors = map[Domain]float64{
	DomainElectricity:   0.92,  // kg CO2 per kWh
	DomainTransport:     0.411, // kg CO2 per mile
	DomainManufacturing: 50,    // kg CO2 per unit product
	DomainConstruction:  100,   // kg CO2 per ton of material
	DomainAgriculture:   200,   // kg CO2 per ton of crops
}

// InputFields maps each domain to the request field name its input has
// historically been posted under. The unit is documentation only and is not
// enforced at the type level.
var InputFields = map[Domain]string{
	DomainElectricity:   "energyConsumed",
	DomainTransport:     "milesDriven",
	DomainManufacturing: "productsProduced",
	DomainConstruction:  "materialsUsed",
	DomainAgriculture:   "cropsGrown",
}

// ParseDomain validates a raw category string against the closed enumeration.
func ParseDomain(s string) (Domain, error) {
	d := Domain(s)
	if _, ok := EmissionFactors[d]; !ok {
		return "", fmt.Errorf("unknown domain %q", s)
	}
	return d, nil
}

// IsValid reports whether the domain belongs to the enumeration.
func (d Domain) IsValid() bool {
	_, ok := EmissionFactors[d]
	return ok
}

// InputField returns the request field name for the domain's input value.
func (d Domain) InputField() string {
	if f, ok := InputFields[d]; ok {
		return f
	}
	return "input"
}
