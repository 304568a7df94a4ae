package services

import (
	"fmt"

	"github.com/carbonlens/carbon-engine/pkg/models"
)

// suggestionTier is one severity bracket: the tier applies when the computed
// footprint strictly exceeds Threshold. Tables are evaluated top-down, so
// thresholds must be strictly descending and end at 0 (the best-practice
// tier, which every positive footprint falls through to).
type suggestionTier struct {
	Threshold float64
	Message   string
}

// fallbackSuggestion is returned for domains outside the enumeration. A
// missing suggestion is not a request-breaking condition, so this degrades
// instead of failing.
const fallbackSuggestion = "No specific suggestion available for this category. General advice: Monitor your emissions regularly and look for opportunities to switch to renewable energy."

// suggestionTables holds the per-domain severity tiers. Thresholds are the
// reference boundaries; wording may evolve but the tier count and the
// strictly descending boundaries are load-bearing.
var suggestionTables = map[models.Domain][]suggestionTier{
	models.DomainElectricity: {
		{1000, "Critical: Your electricity emissions are very high. Immediately switch to renewable energy sources, install solar panels, and replace all appliances with energy-efficient models."},
		{700, "High usage detected. Consider switching to renewable energy providers, installing LED lighting throughout, and using smart thermostats to optimize heating/cooling."},
		{500, "Moderate emissions. Switch to energy-efficient appliances, unplug devices when not in use, and consider solar panels for your home."},
		{300, "Good performance. Further reduce by using energy monitoring systems and setting devices to eco-mode."},
		{0, "Excellent! Your electricity footprint is low. Maintain these habits and consider sharing your energy-saving tips with others."},
	},
	models.DomainTransport: {
		{800, "Very high transport emissions. Consider switching to electric vehicles, carpooling, or relocating closer to work. Use public transport whenever possible."},
		{500, "High emissions detected. Try using public transport for daily commutes, consider hybrid vehicles, and combine multiple errands in one trip."},
		{300, "Moderate transport footprint. Increase use of public transport, cycle for short distances, or explore electric scooters/bikes."},
		{150, "Good transport habits. Further optimize by carpooling, using bike-sharing programs, and walking for nearby destinations."},
		{0, "Outstanding! Your transport emissions are minimal. Keep using sustainable transport methods and inspire others to do the same."},
	},
	models.DomainManufacturing: {
		{2000, "Critical manufacturing emissions. Urgently implement circular economy principles, invest in clean technology, and conduct a full energy audit."},
		{1500, "Very high emissions. Optimize production processes, switch to renewable energy, implement waste recycling systems, and use sustainable raw materials."},
		{1000, "High manufacturing footprint. Reduce waste through lean manufacturing, invest in energy-efficient machinery, and explore carbon offset programs."},
		{600, "Moderate emissions. Continue improving with predictive maintenance to reduce energy waste and implement closed-loop water systems."},
		{0, "Excellent manufacturing practices. Your emissions are low. Maintain efficiency and consider obtaining environmental certifications."},
	},
	models.DomainConstruction: {
		{1200, "Extremely high construction emissions. Use recycled materials, implement modular construction, switch to electric machinery, and minimize concrete usage."},
		{800, "High construction footprint. Use sustainable materials like bamboo and recycled steel, implement green building standards (LEED), and optimize site logistics."},
		{500, "Moderate emissions. Use locally-sourced materials to reduce transport emissions, implement efficient waste management, and use low-carbon concrete alternatives."},
		{300, "Good construction practices. Further reduce by using renewable energy on-site and implementing rainwater harvesting systems."},
		{0, "Outstanding! Your construction emissions are well-controlled. Share your sustainable building practices as best practices in the industry."},
	},
	models.DomainAgriculture: {
		{1500, "Very high agricultural emissions. Implement regenerative agriculture, reduce livestock density, use precision farming, and minimize chemical fertilizer use."},
		{1000, "High emissions detected. Adopt crop rotation, use organic fertilizers, implement drip irrigation, and consider agroforestry practices."},
		{800, "Moderate agricultural footprint. Reduce by using cover crops, implementing no-till farming, and optimizing livestock feed for lower methane emissions."},
		{500, "Good sustainable practices. Further improve with composting, integrated pest management, and renewable energy for farm operations."},
		{0, "Excellent sustainable agriculture! Your emissions are low. Continue these practices and consider carbon farming for additional benefits."},
	},
}

// GetSuggestion returns the reduction suggestion for a domain and computed
// footprint. Deterministic and total over footprint > 0; unknown domains get
// the generic fallback message.
func GetSuggestion(domain models.Domain, footprint float64) string {
	tiers, ok := suggestionTables[domain]
	if !ok {
		return fallbackSuggestion
	}
	for _, tier := range tiers {
		if footprint > tier.Threshold {
			return tier.Message
		}
	}
	// footprint <= 0 is rejected upstream; this is unreachable for valid input.
	return tiers[len(tiers)-1].Message
}

// SuggestionTierCount is the required number of severity tiers per domain.
const SuggestionTierCount = 5

// ValidateSuggestionTables checks the startup invariant: every domain in the
// enumeration has a complete tier table with strictly descending thresholds
// ending at zero. The orchestrator fails fast on a malformed table rather
// than guessing at request time.
func ValidateSuggestionTables() error {
	for _, domain := range models.AllDomains {
		tiers, ok := suggestionTables[domain]
		if !ok {
			return fmt.Errorf("domain %s has no suggestion table", domain)
		}
		if len(tiers) != SuggestionTierCount {
			return fmt.Errorf("domain %s has %d suggestion tiers, want %d", domain, len(tiers), SuggestionTierCount)
		}
		for i := 1; i < len(tiers); i++ {
			if tiers[i].Threshold >= tiers[i-1].Threshold {
				return fmt.Errorf("domain %s tier thresholds not strictly descending at index %d", domain, i)
			}
		}
		if tiers[len(tiers)-1].Threshold != 0 {
			return fmt.Errorf("domain %s lowest tier threshold must be 0", domain)
		}
		for i, tier := range tiers {
			if tier.Message == "" {
				return fmt.Errorf("domain %s tier %d has an empty message", domain, i)
			}
		}
	}
	return nil
}
