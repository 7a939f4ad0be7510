package geo

import (
	"github.com/sells-group/leadgen-cli/internal/dataset"
	"github.com/sells-group/leadgen-cli/internal/normalize"
)

// Rates holds the simulated pricing constants for opportunity downloads.
type Rates struct {
	PerCompany  float64 `yaml:"per_company" mapstructure:"per_company"`
	PerDistrict float64 `yaml:"per_district" mapstructure:"per_district"`
	PerCity     float64 `yaml:"per_city" mapstructure:"per_city"`
	PerEnriched float64 `yaml:"per_enriched" mapstructure:"per_enriched"`
}

// DefaultRates are the standard simulated prices in BRL.
func DefaultRates() Rates {
	return Rates{
		PerCompany:  0.10,
		PerDistrict: 0.03,
		PerCity:     0.07,
		PerEnriched: 0.05,
	}
}

// CostEstimate breaks an opportunity download price into its components.
type CostEstimate struct {
	Total     float64 `json:"total"`
	Companies int     `json:"companies"`
	Districts int     `json:"districts"`
	Cities    int     `json:"cities"`
}

// EstimateCost prices an opportunity dataset: a base rate per company plus
// increments per distinct district and distinct city. Districts and cities
// are counted on their normalized forms.
func EstimateCost(ds *dataset.Dataset, r Rates) CostEstimate {
	if ds == nil || ds.Len() == 0 {
		return CostEstimate{}
	}

	districts := map[string]struct{}{}
	cities := map[string]struct{}{}
	for i := 0; i < ds.Len(); i++ {
		if b := ds.Cell(i, "bairro"); b.Valid && !b.IsBlank() {
			districts[normalize.District(b.String)] = struct{}{}
		}
		if m := ds.Cell(i, "municipio"); m.Valid && !m.IsBlank() {
			cities[normalize.Scalar(m.String)] = struct{}{}
		}
	}

	est := CostEstimate{
		Companies: ds.Len(),
		Districts: len(districts),
		Cities:    len(cities),
	}
	est.Total = float64(est.Companies)*r.PerCompany +
		float64(est.Districts)*r.PerDistrict +
		float64(est.Cities)*r.PerCity
	return est
}

// EnrichmentCost prices enriching n companies from the full view.
func EnrichmentCost(n int, r Rates) float64 {
	if n <= 0 {
		return 0
	}
	return float64(n) * r.PerEnriched
}
