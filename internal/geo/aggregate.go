// Package geo aggregates opportunity datasets into mapping-ready location
// points and prices the unserved remainder. An opportunity is a universe
// row whose company key is not present in the served dataset.
package geo

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/dataset"
	"github.com/sells-group/leadgen-cli/internal/normalize"
)

// Key widths used to align identifiers before joining.
const (
	CNPJWidth = 14
	CEPWidth  = 8
)

// ErrMissingInput signals that aggregation preconditions were not met:
// the universe or coordinate dataset is absent. Distinct from a successful
// zero-opportunity result.
var ErrMissingInput = eris.New("geo: missing input dataset")

// Mode selects the location key the aggregation groups by.
type Mode string

const (
	ByPostalCode        Mode = "cep"
	ByStateCityDistrict Mode = "bairro"
)

// Point is one aggregated location with resolved coordinates.
type Point struct {
	Key          string  `json:"key"`
	Count        int     `json:"count"`
	CapitalTotal float64 `json:"capital_total"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
}

// Result is the outcome of one aggregation. Per-group counts plus Skipped
// always sum to Opportunities.
type Result struct {
	Points        []Point `json:"points"`
	Opportunities int     `json:"opportunities"` // universe rows not served
	Skipped       int     `json:"skipped"`       // opportunity rows with no usable location key
	Unresolved    int     `json:"unresolved"`    // grouped rows dropped for missing coordinates
}

type group struct {
	count   int
	capital float64
}

// Aggregate splits the universe into opportunities, groups them by the
// mode's location key, sums capital per group, and joins coordinates.
// Rows with no usable location key join no group and are counted in
// Skipped; groups without a numeric coordinate match are dropped from
// Points and counted in Unresolved. The served dataset is optional;
// universe and coords are not.
func Aggregate(universe, served, coords *dataset.Dataset, mode Mode) (*Result, error) {
	if universe == nil || coords == nil {
		return nil, ErrMissingInput
	}
	if mode != ByPostalCode && mode != ByStateCityDistrict {
		return nil, eris.Errorf("geo: unknown location mode %q", mode)
	}

	servedKeys := map[string]struct{}{}
	if served != nil {
		servedKeys = served.KeySet("cnpj", CNPJWidth)
	}

	opportunities := universe.Filter(func(i int) bool {
		key := dataset.ZeroPad(universe.Cell(i, "cnpj").String, CNPJWidth)
		_, hit := servedKeys[key]
		return !hit
	})

	groups := map[string]*group{}
	var order []string
	skipped := 0
	for i := 0; i < opportunities.Len(); i++ {
		key := locationKey(opportunities, i, mode)
		if key == "" {
			skipped++
			continue
		}
		g, ok := groups[key]
		if !ok {
			g = &group{}
			groups[key] = g
			order = append(order, key)
		}
		g.count++
		g.capital += opportunities.Cell(i, "capital_social").Float()
	}

	lookup := coordinateIndex(coords, mode)

	res := &Result{Opportunities: opportunities.Len(), Skipped: skipped}
	for _, key := range order {
		g := groups[key]
		coord, ok := lookup[key]
		if !ok {
			res.Unresolved++
			continue
		}
		res.Points = append(res.Points, Point{
			Key:          key,
			Count:        g.count,
			CapitalTotal: g.capital,
			Latitude:     coord[0],
			Longitude:    coord[1],
		})
	}

	zap.L().Debug("geo: aggregated",
		zap.String("mode", string(mode)),
		zap.Int("opportunities", res.Opportunities),
		zap.Int("points", len(res.Points)),
		zap.Int("skipped", res.Skipped),
		zap.Int("unresolved", res.Unresolved))

	return res, nil
}

// locationKey builds the normalized group key for one row, or "" when the
// row has no usable location.
func locationKey(ds *dataset.Dataset, i int, mode Mode) string {
	if mode == ByPostalCode {
		cep := ds.Cell(i, "cep")
		if !cep.Valid || cep.IsBlank() {
			return ""
		}
		return dataset.ZeroPad(strings.TrimSpace(cep.String), CEPWidth)
	}

	uf := normalize.Scalar(ds.Cell(i, "uf").String)
	municipio := normalize.Scalar(ds.Cell(i, "municipio").String)
	bairro := normalize.District(ds.Cell(i, "bairro").String)
	if uf == "" && municipio == "" && bairro == "" {
		return ""
	}
	return uf + " | " + municipio + " | " + bairro
}

// coordinateIndex maps normalized location keys to [lat, lon]. The first
// dataset row with numeric coordinates wins for a key.
func coordinateIndex(coords *dataset.Dataset, mode Mode) map[string][2]float64 {
	index := make(map[string][2]float64)
	for i := 0; i < coords.Len(); i++ {
		key := locationKey(coords, i, mode)
		if key == "" {
			continue
		}
		if _, dup := index[key]; dup {
			continue
		}
		lat, okLat := parseCoord(coords.Cell(i, "latitude"))
		lon, okLon := parseCoord(coords.Cell(i, "longitude"))
		if !okLat || !okLon {
			continue
		}
		index[key] = [2]float64{lat, lon}
	}
	return index
}

// parseCoord reads a coordinate cell, accepting comma decimal separators.
// Unlike capital coercion, a garbage coordinate is a miss, not a zero.
func parseCoord(c dataset.Cell) (float64, bool) {
	if !c.Valid || c.IsBlank() {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(c.String), ",", "."), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
